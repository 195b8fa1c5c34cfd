package cryptoprov_test

import (
	"testing"

	"github.com/effective-security/xcrypt/cryptoprov"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatures(t *testing.T) {
	list := cryptoprov.Features()
	require.Len(t, list, 22)
	assert.Equal(t, cryptoprov.AlgSHA1, list[0])
	assert.Equal(t, cryptoprov.AlgMD4, list[1])
	assert.Equal(t, cryptoprov.AlgAES128ECB, list[7])
	assert.Equal(t, cryptoprov.AlgBlowfishECB, list[16])
	assert.Equal(t, cryptoprov.AlgPBKDF2SHA1, list[21])

	list[0] = "changed"
	assert.Equal(t, cryptoprov.AlgSHA1, cryptoprov.Features()[0])

	seen := map[string]bool{}
	for _, name := range cryptoprov.Features() {
		assert.False(t, seen[name], "duplicate: %s", name)
		seen[name] = true

		_, ok := cryptoprov.Lookup(name)
		assert.True(t, ok, name)
	}
}

func TestLookup(t *testing.T) {
	tcases := []struct {
		name string
		exp  cryptoprov.Descriptor
	}{
		{"sha384", cryptoprov.DigestDescriptor{Digest: cryptoprov.SHA384}},
		{"ripemd160", cryptoprov.DigestDescriptor{Digest: cryptoprov.RIPEMD160}},
		{"aes192-cfb", cryptoprov.CipherDescriptor{Cipher: cryptoprov.AES192, Mode: cryptoprov.CFB}},
		{"tripledes-ecb", cryptoprov.CipherDescriptor{Cipher: cryptoprov.TripleDES, Mode: cryptoprov.ECB}},
		{"des-cbc", cryptoprov.CipherDescriptor{Cipher: cryptoprov.DES, Mode: cryptoprov.CBC}},
		{"pbkdf2(sha1)", cryptoprov.KDFDescriptor{PRF: cryptoprov.SHA1}},
	}
	for _, tc := range tcases {
		d, ok := cryptoprov.Lookup(tc.name)
		require.True(t, ok, tc.name)
		assert.Equal(t, tc.exp, d)
	}

	for _, name := range []string{"", "SHA1", "sha3-256", "aes128-gcm", "des-ede3-cbc"} {
		_, ok := cryptoprov.Lookup(name)
		assert.False(t, ok, name)
	}
}

func TestDescriptors(t *testing.T) {
	d, _ := cryptoprov.Lookup(cryptoprov.AlgSHA512)
	assert.Equal(t, cryptoprov.KindHash, d.Kind())
	assert.Equal(t, 64, d.(cryptoprov.DigestDescriptor).Size())

	d, _ = cryptoprov.Lookup(cryptoprov.AlgDESCFB)
	assert.Equal(t, cryptoprov.KindCipher, d.Kind())
	assert.False(t, d.(cryptoprov.CipherDescriptor).Padding)

	d, _ = cryptoprov.Lookup(cryptoprov.AlgPBKDF2SHA1)
	assert.Equal(t, cryptoprov.KindKDF, d.Kind())

	sizes := map[cryptoprov.DigestKind]int{
		cryptoprov.SHA1:      20,
		cryptoprov.MD4:       16,
		cryptoprov.MD5:       16,
		cryptoprov.RIPEMD160: 20,
		cryptoprov.SHA256:    32,
		cryptoprov.SHA384:    48,
		cryptoprov.SHA512:    64,
	}
	for k, size := range sizes {
		assert.Equal(t, size, k.Size(), k.String())
	}
	assert.Equal(t, 0, cryptoprov.DigestKind(0).Size())
}

func TestNames(t *testing.T) {
	assert.Equal(t, "hash", cryptoprov.KindHash.String())
	assert.Equal(t, "cipher", cryptoprov.KindCipher.String())
	assert.Equal(t, "kdf", cryptoprov.KindKDF.String())
	assert.Equal(t, "unknown", cryptoprov.ContextKind(0).String())

	assert.Equal(t, "md4", cryptoprov.MD4.String())
	assert.Equal(t, "unknown", cryptoprov.DigestKind(0).String())
	assert.Equal(t, "blowfish", cryptoprov.Blowfish.String())
	assert.Equal(t, "unknown", cryptoprov.CipherKind(0).String())
	assert.Equal(t, "cfb", cryptoprov.CFB.String())
	assert.Equal(t, "unknown", cryptoprov.Mode(0).String())
	assert.Equal(t, "decrypt", cryptoprov.Decrypt.String())
	assert.Equal(t, "unknown", cryptoprov.Direction(0).String())
}

func TestKeyLength(t *testing.T) {
	l := cryptoprov.KeyLength{Min: 1, Max: 56, Step: 1}
	assert.True(t, l.IsValid(1))
	assert.True(t, l.IsValid(56))
	assert.False(t, l.IsValid(0))
	assert.False(t, l.IsValid(57))

	l = cryptoprov.KeyLength{Min: 16, Max: 32, Step: 8}
	assert.True(t, l.IsValid(24))
	assert.False(t, l.IsValid(20))

	assert.False(t, cryptoprov.KeyLength{Min: 8, Max: 8}.IsValid(8))
}
