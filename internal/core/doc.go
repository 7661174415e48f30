// Package core provides the billcycle operations behind the CLI.
//
// Core operations include:
//   - Compute: derive the milestone set for a start date, optionally sealing
//     the payload into an encrypted record, and remember it in history
//   - Open: turn a payload or encrypted record back into a milestone set
//   - Show/Remove/History: work with the history store
//   - Diff: line diff of two milestone sets
//   - WriteOutput: confined, owner-only output files with git exposure checks
//
// The tracker never prints; it returns typed errors from package errs and
// leaves messaging and exit codes to the caller.
package core
