// Package storage provides the BBolt history store for billcycle.
//
// Database structure uses three buckets:
//   - config: store version, timestamps and store ID (unencrypted)
//   - index: one entry per start date with its encrypted flag and creation
//     time (unencrypted, so history listing never needs a password)
//   - records: the stored payload, either a plaintext milestone JSON document
//     or an encrypted record
//
// Keys in index and records are YYYY-MM-DD so cursor order is chronological.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
