// Package gocrypto provides the default in-process cryptoprov backend.
//
// The backend is built on the Go standard library and golang.org/x/crypto,
// and is driven through an engine API:
//   - digests: open, write, read, reset, close
//   - ciphers: open, set key, set IV, encrypt, decrypt, close
//   - PBKDF2: a single derivation call
//
// Engine calls report failures as errors, including the weak key advisory
// for DES and Triple DES keys. Contexts pass every status through
// cryptoprov.CheckError and return failures to the caller.
//
// The provider registers itself with cryptoprov under ProviderName.
package gocrypto
