package gocrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xcrypt/cryptoprov"
	"golang.org/x/crypto/blowfish"
)

type cipherInfo struct {
	blockLen int
	minKey   int
	maxKey   int
	newBlock func(key []byte) (cipher.Block, error)
}

var ciphers = map[cryptoprov.CipherKind]cipherInfo{
	cryptoprov.DES: {
		blockLen: des.BlockSize, minKey: 8, maxKey: 8,
		newBlock: des.NewCipher,
	},
	cryptoprov.TripleDES: {
		blockLen: des.BlockSize, minKey: 24, maxKey: 24,
		newBlock: des.NewTripleDESCipher,
	},
	cryptoprov.Blowfish: {
		blockLen: blowfish.BlockSize, minKey: 1, maxKey: 56,
		newBlock: func(key []byte) (cipher.Block, error) {
			return blowfish.NewCipher(key)
		},
	},
	cryptoprov.AES128: {
		blockLen: aes.BlockSize, minKey: 16, maxKey: 16,
		newBlock: aes.NewCipher,
	},
	cryptoprov.AES192: {
		blockLen: aes.BlockSize, minKey: 24, maxKey: 24,
		newBlock: aes.NewCipher,
	},
	cryptoprov.AES256: {
		blockLen: aes.BlockSize, minKey: 32, maxKey: 32,
		newBlock: aes.NewCipher,
	},
}

// cipherBlockLen returns the block length of the cipher, or 0 for unknown kind
func cipherBlockLen(kind cryptoprov.CipherKind) int {
	return ciphers[kind].blockLen
}

// cipherKeyRange returns the key sizes accepted by the cipher
func cipherKeyRange(kind cryptoprov.CipherKind) (min, max int, ok bool) {
	info, ok := ciphers[kind]
	if !ok {
		return 0, 0, false
	}
	return info.minKey, info.maxKey, true
}

// cipherEngine is an open cipher handle.
// The mode transformers are created on first use after the key and IV are set,
// and keep the chaining state across calls.
type cipherEngine struct {
	kind  cryptoprov.CipherKind
	mode  cryptoprov.Mode
	info  cipherInfo
	block cipher.Block
	iv    []byte

	encrypter cipher.BlockMode
	decrypter cipher.BlockMode
	encStream cipher.Stream
	decStream cipher.Stream
	open      bool
}

// cipherOpen opens a cipher handle for the kind and mode
func cipherOpen(kind cryptoprov.CipherKind, mode cryptoprov.Mode) (*cipherEngine, error) {
	info, ok := ciphers[kind]
	if !ok {
		return nil, errors.WithMessagef(errAlgorithm, "cipher %d", kind)
	}
	switch mode {
	case cryptoprov.ECB, cryptoprov.CBC, cryptoprov.CFB:
	default:
		return nil, errors.WithMessagef(errAlgorithm, "mode %d", mode)
	}
	return &cipherEngine{
		kind: kind,
		mode: mode,
		info: info,
		iv:   make([]byte, info.blockLen),
		open: true,
	}, nil
}

// setKey installs the key. The weak key status is returned
// with the key installed.
func (e *cipherEngine) setKey(key []byte) error {
	if !e.open {
		return errNotOpened
	}
	if len(key) < e.info.minKey || len(key) > e.info.maxKey {
		return errors.WithMessagef(errInvalidKeyLength, "%s key size %d, accepted %d..%d",
			e.kind, len(key), e.info.minKey, e.info.maxKey)
	}
	block, err := e.info.newBlock(key)
	if err != nil {
		return errors.WithStack(err)
	}
	e.block = block
	e.resetModes()

	if isWeakKey(e.kind, key) {
		return errors.WithMessagef(errWeakKey, "%s", e.kind)
	}
	return nil
}

// setIV installs the IV. Empty IV resets to zero IV.
// ECB ignores the IV.
func (e *cipherEngine) setIV(iv []byte) error {
	if !e.open {
		return errNotOpened
	}
	if e.mode == cryptoprov.ECB {
		return nil
	}
	switch len(iv) {
	case 0:
		e.iv = make([]byte, e.info.blockLen)
	case e.info.blockLen:
		e.iv = append([]byte(nil), iv...)
	default:
		return errors.WithMessagef(errInvalidIVLength, "IV size %d, expected %d", len(iv), e.info.blockLen)
	}
	e.resetModes()
	return nil
}

func (e *cipherEngine) resetModes() {
	e.encrypter = nil
	e.decrypter = nil
	e.encStream = nil
	e.decStream = nil
}

// encrypt transforms in into out; nil in encrypts out in place
func (e *cipherEngine) encrypt(out, in []byte) error {
	return e.transform(cryptoprov.Encrypt, out, in)
}

// decrypt transforms in into out; nil in decrypts out in place
func (e *cipherEngine) decrypt(out, in []byte) error {
	return e.transform(cryptoprov.Decrypt, out, in)
}

func (e *cipherEngine) transform(dir cryptoprov.Direction, out, in []byte) error {
	if !e.open {
		return errNotOpened
	}
	if e.block == nil {
		return errMissingKey
	}
	if in == nil {
		in = out
	}
	if len(out) < len(in) {
		return errors.WithMessagef(errInvalidLength, "output %d is shorter than input %d", len(out), len(in))
	}

	switch e.mode {
	case cryptoprov.CFB:
		e.stream(dir).XORKeyStream(out[:len(in)], in)
	default:
		if len(in)%e.info.blockLen != 0 {
			return errors.WithMessagef(errInvalidLength, "input %d is not a multiple of block size %d",
				len(in), e.info.blockLen)
		}
		if len(in) > 0 {
			e.blockMode(dir).CryptBlocks(out[:len(in)], in)
		}
	}
	return nil
}

func (e *cipherEngine) blockMode(dir cryptoprov.Direction) cipher.BlockMode {
	if dir == cryptoprov.Encrypt {
		if e.encrypter == nil {
			if e.mode == cryptoprov.ECB {
				e.encrypter = newECBEncrypter(e.block)
			} else {
				e.encrypter = cipher.NewCBCEncrypter(e.block, e.iv)
			}
		}
		return e.encrypter
	}
	if e.decrypter == nil {
		if e.mode == cryptoprov.ECB {
			e.decrypter = newECBDecrypter(e.block)
		} else {
			e.decrypter = cipher.NewCBCDecrypter(e.block, e.iv)
		}
	}
	return e.decrypter
}

func (e *cipherEngine) stream(dir cryptoprov.Direction) cipher.Stream {
	if dir == cryptoprov.Encrypt {
		if e.encStream == nil {
			e.encStream = cipher.NewCFBEncrypter(e.block, e.iv)
		}
		return e.encStream
	}
	if e.decStream == nil {
		e.decStream = cipher.NewCFBDecrypter(e.block, e.iv)
	}
	return e.decStream
}

func (e *cipherEngine) close() {
	e.open = false
	e.block = nil
	e.resetModes()
	for i := range e.iv {
		e.iv[i] = 0
	}
}
