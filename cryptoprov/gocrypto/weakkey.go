package gocrypto

import (
	"bytes"

	"github.com/effective-security/xcrypt/cryptoprov"
)

// desWeakKeys lists the weak and semi-weak DES keys
var desWeakKeys = [][]byte{
	// weak
	{0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01},
	{0xFE, 0xFE, 0xFE, 0xFE, 0xFE, 0xFE, 0xFE, 0xFE},
	{0xE0, 0xE0, 0xE0, 0xE0, 0xF1, 0xF1, 0xF1, 0xF1},
	{0x1F, 0x1F, 0x1F, 0x1F, 0x0E, 0x0E, 0x0E, 0x0E},
	// semi-weak
	{0x01, 0xFE, 0x01, 0xFE, 0x01, 0xFE, 0x01, 0xFE},
	{0xFE, 0x01, 0xFE, 0x01, 0xFE, 0x01, 0xFE, 0x01},
	{0x1F, 0xE0, 0x1F, 0xE0, 0x0E, 0xF1, 0x0E, 0xF1},
	{0xE0, 0x1F, 0xE0, 0x1F, 0xF1, 0x0E, 0xF1, 0x0E},
	{0x01, 0xE0, 0x01, 0xE0, 0x01, 0xF1, 0x01, 0xF1},
	{0xE0, 0x01, 0xE0, 0x01, 0xF1, 0x01, 0xF1, 0x01},
	{0x1F, 0xFE, 0x1F, 0xFE, 0x0E, 0xFE, 0x0E, 0xFE},
	{0xFE, 0x1F, 0xFE, 0x1F, 0xFE, 0x0E, 0xFE, 0x0E},
	{0x01, 0x1F, 0x01, 0x1F, 0x01, 0x0E, 0x01, 0x0E},
	{0x1F, 0x01, 0x1F, 0x01, 0x0E, 0x01, 0x0E, 0x01},
	{0xE0, 0xFE, 0xE0, 0xFE, 0xF1, 0xFE, 0xF1, 0xFE},
	{0xFE, 0xE0, 0xFE, 0xE0, 0xFE, 0xF1, 0xFE, 0xF1},
}

// isWeakKey returns true for a weak or semi-weak DES key,
// or a Triple DES key with any weak component.
func isWeakKey(kind cryptoprov.CipherKind, key []byte) bool {
	switch kind {
	case cryptoprov.DES:
		return isWeakDESKey(key)
	case cryptoprov.TripleDES:
		for i := 0; i+8 <= len(key); i += 8 {
			if isWeakDESKey(key[i : i+8]) {
				return true
			}
		}
	}
	return false
}

// isWeakDESKey compares the key ignoring the parity bits
func isWeakDESKey(key []byte) bool {
	if len(key) != 8 {
		return false
	}
	var k [8]byte
	for i, b := range key {
		k[i] = b & 0xFE
	}
	for _, w := range desWeakKeys {
		var m [8]byte
		for i, b := range w {
			m[i] = b & 0xFE
		}
		if bytes.Equal(k[:], m[:]) {
			return true
		}
	}
	return false
}
