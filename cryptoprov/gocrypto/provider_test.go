package gocrypto_test

import (
	"encoding/hex"
	"testing"

	"github.com/effective-security/x/slices"
	"github.com/effective-security/xcrypt/cryptoprov"
	"github.com/effective-security/xcrypt/cryptoprov/gocrypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Registered(t *testing.T) {
	assert.True(t, slices.ContainsString(cryptoprov.Registered(), gocrypto.ProviderName))

	p, err := cryptoprov.LoadProvider("")
	require.NoError(t, err)
	assert.Equal(t, gocrypto.ProviderName, p.Name())
	assert.Equal(t, gocrypto.DefaultModel, p.Model())
}

func Test_Init(t *testing.T) {
	gocrypto.Init()
	gocrypto.Init()
	assert.True(t, gocrypto.IsInitialized())
	assert.NotEmpty(t, gocrypto.Version())
}

func Test_Features(t *testing.T) {
	p := gocrypto.New(nil)
	assert.Equal(t, cryptoprov.Features(), p.Features())
	assert.Len(t, p.Features(), 22)

	// the result is a copy
	f := p.Features()
	f[0] = "changed"
	assert.Equal(t, cryptoprov.AlgSHA1, p.Features()[0])

	for _, name := range p.Features() {
		c, err := p.CreateContext(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Type())
		assert.Equal(t, gocrypto.ProviderName, c.Provider())
		assert.NoError(t, c.Close())
		assert.NoError(t, c.Close())
	}
}

func Test_Disabled(t *testing.T) {
	cfg, err := cryptoprov.LoadProviderConfig("testdata/gocrypto_disabled.yaml")
	require.NoError(t, err)

	p := gocrypto.New(cfg)
	assert.Equal(t, "test", p.Model())
	assert.Len(t, p.Features(), 20)
	assert.False(t, slices.ContainsString(p.Features(), cryptoprov.AlgMD4))
	assert.False(t, slices.ContainsString(p.Features(), cryptoprov.AlgDESECB))

	_, err = p.CreateContext(cryptoprov.AlgMD4)
	require.Error(t, err)
	assert.True(t, cryptoprov.IsNotSupported(err))

	_, err = p.CreateContext(cryptoprov.AlgMD5)
	assert.NoError(t, err)
}

func Test_NotSupported(t *testing.T) {
	p := gocrypto.New(nil)
	for _, name := range []string{"", "sha3-256", "SHA1", "aes128-gcm", "pbkdf2(sha256)"} {
		_, err := p.CreateContext(name)
		require.Error(t, err, name)
		assert.True(t, cryptoprov.IsNotSupported(err), name)
		assert.EqualError(t, err, "algorithm not supported: \""+name+"\"")
	}
}

func Test_CreateKindMismatch(t *testing.T) {
	p := gocrypto.New(nil)

	_, err := cryptoprov.CreateHash(p, cryptoprov.AlgAES128ECB)
	require.Error(t, err)
	assert.True(t, cryptoprov.IsConfigurationError(err))
	assert.EqualError(t, err, "aes128-ecb is not a hash: cipher")

	_, err = cryptoprov.CreateCipher(p, cryptoprov.AlgSHA1)
	assert.EqualError(t, err, "sha1 is not a cipher: hash")

	_, err = cryptoprov.CreateKDF(p, cryptoprov.AlgSHA256)
	assert.EqualError(t, err, "sha256 is not a key derivation function: hash")
}

func mustHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}
