// Package cryptoprov provides a unified interface to named cryptographic
// primitives across different backends.
//
// The package defines:
//   - a closed catalogue of algorithm names (digests, block ciphers in
//     ECB, CBC and CFB modes, and PBKDF2) mapped to their descriptors
//   - the Provider interface that advertises features and creates contexts
//   - the Hash, Cipher and KDF context contracts
//   - the error bridge that classifies backend failures
//   - a registry of provider loaders and the Crypto set that probes
//     several providers for a name
//
// Backends live in sub-packages:
//   - gocrypto is the default in-process backend
//   - p11crypto dispatches to a PKCS#11 token
//
// Providers are typically configured through YAML or JSON files that specify
// the provider name and its specific settings.
package cryptoprov
