// Package integration contains the inbound side of catalog ingestion:
// the candidate records delivered by source platforms, the run
// configuration of one import, and the session and sync-log records
// that make every run auditable.
//
// Key concepts:
//   - Candidate: raw product data from a source platform, never stored as-is
//   - RunConfig: the settings of one ingestion run, persisted verbatim
//   - ImportSession: one run, pending -> processing -> completed
//   - SyncLogEntry: append-only outcome of one stage for one candidate
package integration
