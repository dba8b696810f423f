// Package tasks implements the archive pipeline: a sequential feed crawl followed by an unbounded download fan-out.
//
// # Core Operations
//
// [ArchiveEngine] exposes three operations:
//
//  1. [ArchiveEngine.Crawl] : resolve an account and page through its timeline
//     - Resolves the user code exactly once
//     - Requests [MaxPages] pages, or fewer when a page limit is given
//     - Pages are fetched one at a time and the first error aborts the crawl
//
//  2. [ArchiveEngine.DownloadAll] : fetch every reference concurrently
//     - One goroutine per reference, no cap
//     - Extension filtering happens before any network call
//     - Returns exactly one [Outcome] per reference, in input order
//
//  3. [ArchiveEngine.Run] : crawl, extract, create the output directory, download
//
// [ExtractReferences] is the pure step between the two phases.
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on an optional channel. Sends use select with default and never block.
//
// # Recording
//
// The optional [OutcomeRecorder] receives the finished run for persistence (repositories.LedgerAdapter).
// Recorder errors are logged and never fail the run.
package tasks
