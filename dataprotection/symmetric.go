package dataprotection

import (
	"context"
	"crypto/rand"
	"crypto/subtle"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xcrypt/cryptoprov"
)

const (
	ivSize    = 16
	keySize   = 32
	macSize   = 32
	hmacBlock = 64
)

// KeyDerivationIterations is the PBKDF2 iterations count for the secret
var KeyDerivationIterations = 4096

var keyDerivationSalt = []byte("xcrypt/dataprotection")

type symProvider struct {
	prov   cryptoprov.Provider
	encKey []byte
	macKey []byte
}

// NewSymmetric returns `Provider` based on AES256-CFB encryption
// with HMAC-SHA256 authentication.
// The keys are derived from the secret with PBKDF2-HMAC-SHA1.
func NewSymmetric(prov cryptoprov.Provider, secret []byte) (Provider, error) {
	kdf, err := cryptoprov.CreateKDF(prov, cryptoprov.AlgPBKDF2SHA1)
	if err != nil {
		return nil, err
	}
	defer kdf.Close()

	keys, err := kdf.MakeKey(secret, keyDerivationSalt, keySize*2, KeyDerivationIterations)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to derive keys")
	}

	return &symProvider{
		prov:   prov,
		encKey: keys[:keySize],
		macKey: keys[keySize:],
	}, nil
}

// Protect returns protected blob
func (p *symProvider) Protect(_ context.Context, data []byte) ([]byte, error) {
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.WithStack(err)
	}

	ciphertext, err := p.transform(cryptoprov.Encrypt, iv, data)
	if err != nil {
		return nil, err
	}

	protected := make([]byte, 0, ivSize+len(ciphertext)+macSize)
	protected = append(protected, iv...)
	protected = append(protected, ciphertext...)

	mac, err := p.mac(protected)
	if err != nil {
		return nil, err
	}
	return append(protected, mac...), nil
}

// Unprotect returns unprotected data
func (p *symProvider) Unprotect(_ context.Context, protected []byte) ([]byte, error) {
	if len(protected) < ivSize+macSize {
		return nil, errors.Errorf("invalid data")
	}

	signed := protected[:len(protected)-macSize]
	mac, err := p.mac(signed)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(mac, protected[len(signed):]) != 1 {
		return nil, errors.New("failed to unprotect: message authentication failed")
	}

	return p.transform(cryptoprov.Decrypt, signed[:ivSize], signed[ivSize:])
}

// IsReady returns true when provider has encryption keys
func (p *symProvider) IsReady() bool {
	return len(p.encKey) == keySize
}

func (p *symProvider) transform(dir cryptoprov.Direction, iv, in []byte) ([]byte, error) {
	c, err := cryptoprov.CreateCipher(p.prov, cryptoprov.AlgAES256CFB)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if err = c.Setup(dir, p.encKey, iv); err != nil {
		return nil, err
	}
	out, err := c.Update(in)
	if err != nil {
		return nil, err
	}
	final, err := c.Final()
	if err != nil {
		return nil, err
	}
	return append(out, final...), nil
}

// mac returns HMAC-SHA256 of the data computed on the provider digest
func (p *symProvider) mac(data []byte) ([]byte, error) {
	h, err := cryptoprov.CreateHash(p.prov, cryptoprov.AlgSHA256)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	ipad := make([]byte, hmacBlock)
	opad := make([]byte, hmacBlock)
	copy(ipad, p.macKey)
	copy(opad, p.macKey)
	for i := range ipad {
		ipad[i] ^= 0x36
		opad[i] ^= 0x5c
	}

	if err = h.Update(ipad); err != nil {
		return nil, err
	}
	if err = h.Update(data); err != nil {
		return nil, err
	}
	inner, err := h.Final()
	if err != nil {
		return nil, err
	}

	if err = h.Clear(); err != nil {
		return nil, err
	}
	if err = h.Update(opad); err != nil {
		return nil, err
	}
	if err = h.Update(inner); err != nil {
		return nil, err
	}
	return h.Final()
}
