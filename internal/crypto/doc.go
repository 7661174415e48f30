// Package crypto provides the cryptographic primitives behind billcycle records.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key derived from password via PBKDF2
//   - 12-byte random nonce per Seal call
//   - no associated data; the 16-byte tag is appended to the ciphertext
//
// Key derivation uses PBKDF2-HMAC-SHA256 with:
//   - 16-byte random salt, generated anew for every record
//   - 100,000 iterations
//
// Keys are never cached. Every record gets its own salt and therefore its own
// key, so a nonce is never reused under the same key.
//
// Memory safety:
//   - Use ClearBytes() to zero keys and passwords after use
package crypto
