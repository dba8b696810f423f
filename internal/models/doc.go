// Package models defines domain entities for the cfx feed archiver.
//
// The package contains two categories of types:
//
// 1. Remote entities decoded from the feed API
//   - [Account] : A resolved user with its numeric id and post count
//   - [Post] : One timeline entry with up to four asset paths
//   - [Plan] : An access plan attached to a post (not inspected by the pipeline)
//
// 2. Ledger entities persisted after a run
//   - [ArchiveRun] : Summary of one archive run
//   - [OutcomeRecord] : Terminal classification of one asset reference within a run
//
// Ledger entities implement the [Model] interface for ID access and validation.
package models
