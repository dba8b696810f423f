// Package repositories implements the SQLite archive ledger.
//
// Key Implementations:
//   - [RunRepository] : runs and their per-reference outcomes
//   - [LedgerAdapter] : tasks.OutcomeRecorder backed by a [RunRepository]
//
// Runs carry a sequence number for human-readable ordering (e.g. run #12) independent of their UUIDs.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
//
// The ledger is written after each run and read by the history command. It is never consulted to skip downloads.
package repositories
