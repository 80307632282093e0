// Package vault encrypts and verifies package payloads.
//
// Payloads are encrypted with AES-256-CBC under a single local key. Each
// encryption uses a fresh random IV, and the result is serialised as
//
//	hex(iv) ":" hex(ciphertext)
//
// Every payload is also hashed (SHA-256, hex) before encryption. The hash
// travels next to the ciphertext in package.json and is re-checked after
// decryption, so a payload that decrypts to the wrong bytes is rejected.
//
// The key lives at ~/.aperium/key.enc as 64 hex characters. A missing key is
// generated on first use; an unreadable one is replaced with a warning, which
// means packages built with the old key stop decrypting.
package vault
