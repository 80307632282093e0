// Package audit keeps the install history for aper.
//
// Every install attempt (including skips and failures), package creation and
// forget is appended to a JSON Lines log at:
//
//	~/.aperium/history.jsonl
//
// Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC) and a random entry ID
//   - Operation name (install, create, forget)
//   - Package name, version and combined hash
//   - The platform the payload was chosen for
//   - Outcome (installed, skipped, failed, created, forgotten) and error text
//
// # Failure Handling
//
// History logging is best-effort. An install never fails because its history
// entry could not be written.
//
// # Reading Logs
//
// Use ReadEntries() to parse the history for aper history. Malformed lines
// are silently skipped to handle partial writes.
package audit
