package p11crypto_test

import (
	"bytes"
	"encoding/hex"
	"os"
	"testing"

	"github.com/effective-security/x/fileutil"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xcrypt/cryptoprov"
	"github.com/effective-security/xcrypt/cryptoprov/p11crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SoftHSMConfig provides location for PKCS11 config
const SoftHSMConfig = "/tmp/xcrypt/softhsm_unittest.yaml"

func loadProvider(t *testing.T) *p11crypto.Provider {
	cfgFile := SoftHSMConfig
	if env := os.Getenv("XCRYPT_SOFTHSM_CONFIG"); env != "" {
		cfgFile = env
	}
	if fileutil.FileExists(cfgFile) != nil {
		t.Skipf("SoftHSM is not configured: %s", cfgFile)
	}

	cfg, err := cryptoprov.LoadProviderConfig(cfgFile)
	require.NoError(t, err)

	p, err := p11crypto.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = p.Close()
	})
	return p
}

func Test_Registered(t *testing.T) {
	assert.True(t, slices.ContainsString(cryptoprov.Registered(), p11crypto.ProviderName))
}

func Test_NewErrors(t *testing.T) {
	_, err := p11crypto.New(cryptoprov.NewProviderConfig(p11crypto.ProviderName, ""))
	assert.EqualError(t, err, "PKCS#11 library path not specified")
}

func Test_Provider(t *testing.T) {
	p := loadProvider(t)
	assert.Equal(t, p11crypto.ProviderName, p.Name())
	assert.NotEmpty(t, p.Model())

	list := p.Features()
	assert.NotEmpty(t, list)
	assert.False(t, slices.ContainsString(list, cryptoprov.AlgMD4))
	assert.False(t, slices.ContainsString(list, cryptoprov.AlgPBKDF2SHA1))

	_, err := p.CreateContext(cryptoprov.AlgMD4)
	assert.True(t, cryptoprov.IsNotSupported(err))

	tokens, err := p.TokensInfo()
	require.NoError(t, err)
	assert.NotEmpty(t, tokens)

	found := false
	for _, ti := range tokens {
		if ti.ID() == p.CurrentSlotID() {
			found = true
		}
	}
	assert.True(t, found, "slot %d is not in the tokens list", p.CurrentSlotID())
}

func Test_Hash(t *testing.T) {
	p := loadProvider(t)
	if !slices.ContainsString(p.Features(), cryptoprov.AlgSHA256) {
		t.Skip("sha256 is not supported by the token")
	}

	h, err := cryptoprov.CreateHash(p, cryptoprov.AlgSHA256)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Update([]byte("a")))
	require.NoError(t, h.Update([]byte("bc")))
	d, err := h.Final()
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", hex.EncodeToString(d))

	d2, err := h.Final()
	require.NoError(t, err)
	assert.Equal(t, d, d2)
	assert.True(t, cryptoprov.IsConfigurationError(h.Update([]byte("x"))))

	require.NoError(t, h.Clear())
	d, err = h.Final()
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", hex.EncodeToString(d))
}

func Test_Cipher(t *testing.T) {
	p := loadProvider(t)
	if !slices.ContainsString(p.Features(), cryptoprov.AlgAES128CBC) {
		t.Skip("aes128-cbc is not supported by the token")
	}

	key := make([]byte, 16)
	msg := make([]byte, 32)

	enc, err := cryptoprov.CreateCipher(p, cryptoprov.AlgAES128CBC)
	require.NoError(t, err)
	defer enc.Close()

	assert.Equal(t, 16, enc.BlockSize())
	assert.Equal(t, cryptoprov.KeyLength{Min: 16, Max: 16, Step: 1}, enc.KeyLength())

	err = enc.Setup(cryptoprov.Encrypt, make([]byte, 15), nil)
	assert.True(t, cryptoprov.IsConfigurationError(err))

	require.NoError(t, enc.Setup(cryptoprov.Encrypt, key, nil))
	ct, err := enc.Update(msg)
	require.NoError(t, err)
	assert.Equal(t, "66e94bd4ef8a2c3b884cfa59ca342b2e", hex.EncodeToString(ct[:16]))

	_, err = enc.Update(make([]byte, 3))
	assert.True(t, cryptoprov.IsBackendFailure(err))

	dec, err := cryptoprov.CreateCipher(p, cryptoprov.AlgAES128CBC)
	require.NoError(t, err)
	defer dec.Close()

	require.NoError(t, dec.Setup(cryptoprov.Decrypt, key, nil))
	pt, err := dec.Update(ct)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(msg, pt))
}
