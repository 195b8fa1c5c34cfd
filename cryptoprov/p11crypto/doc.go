// Package p11crypto provides a cryptoprov backend on a PKCS#11 token,
// such as SoftHSM or a Hardware Security Module.
//
// Only the algorithms with a PKCS#11 mechanism available on the token
// are advertised. Cipher keys are imported as session objects and
// never persisted on the token.
package p11crypto
