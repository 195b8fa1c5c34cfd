package p11crypto

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xcrypt/cryptoprov"
	"github.com/miekg/pkcs11"
)

// digestMechanisms maps digests to PKCS#11 mechanisms.
// MD4 has no mechanism defined.
var digestMechanisms = map[cryptoprov.DigestKind]uint{
	cryptoprov.SHA1:      pkcs11.CKM_SHA_1,
	cryptoprov.MD5:       pkcs11.CKM_MD5,
	cryptoprov.RIPEMD160: pkcs11.CKM_RIPEMD160,
	cryptoprov.SHA256:    pkcs11.CKM_SHA256,
	cryptoprov.SHA384:    pkcs11.CKM_SHA384,
	cryptoprov.SHA512:    pkcs11.CKM_SHA512,
}

type cipherMech struct {
	cipher cryptoprov.CipherKind
	mode   cryptoprov.Mode
}

// cipherMechanisms maps ciphers in a mode to PKCS#11 mechanisms.
// Blowfish has no ECB mechanism defined.
var cipherMechanisms = map[cipherMech]uint{
	{cryptoprov.AES128, cryptoprov.ECB}:    pkcs11.CKM_AES_ECB,
	{cryptoprov.AES128, cryptoprov.CBC}:    pkcs11.CKM_AES_CBC,
	{cryptoprov.AES128, cryptoprov.CFB}:    pkcs11.CKM_AES_CFB128,
	{cryptoprov.AES192, cryptoprov.ECB}:    pkcs11.CKM_AES_ECB,
	{cryptoprov.AES192, cryptoprov.CBC}:    pkcs11.CKM_AES_CBC,
	{cryptoprov.AES192, cryptoprov.CFB}:    pkcs11.CKM_AES_CFB128,
	{cryptoprov.AES256, cryptoprov.ECB}:    pkcs11.CKM_AES_ECB,
	{cryptoprov.AES256, cryptoprov.CBC}:    pkcs11.CKM_AES_CBC,
	{cryptoprov.AES256, cryptoprov.CFB}:    pkcs11.CKM_AES_CFB128,
	{cryptoprov.TripleDES, cryptoprov.ECB}: pkcs11.CKM_DES3_ECB,
	{cryptoprov.DES, cryptoprov.ECB}:       pkcs11.CKM_DES_ECB,
	{cryptoprov.DES, cryptoprov.CBC}:       pkcs11.CKM_DES_CBC,
	{cryptoprov.DES, cryptoprov.CFB}:       pkcs11.CKM_DES_CFB64,
}

type keySpec struct {
	keyType  uint
	size     int
	blockLen int
}

var cipherKeys = map[cryptoprov.CipherKind]keySpec{
	cryptoprov.DES:       {keyType: pkcs11.CKK_DES, size: 8, blockLen: 8},
	cryptoprov.TripleDES: {keyType: pkcs11.CKK_DES3, size: 24, blockLen: 8},
	cryptoprov.AES128:    {keyType: pkcs11.CKK_AES, size: 16, blockLen: 16},
	cryptoprov.AES192:    {keyType: pkcs11.CKK_AES, size: 24, blockLen: 16},
	cryptoprov.AES256:    {keyType: pkcs11.CKK_AES, size: 32, blockLen: 16},
}

// mechanismFor returns the PKCS#11 mechanism for the descriptor
func mechanismFor(desc cryptoprov.Descriptor) (uint, bool) {
	switch d := desc.(type) {
	case cryptoprov.DigestDescriptor:
		m, ok := digestMechanisms[d.Digest]
		return m, ok
	case cryptoprov.CipherDescriptor:
		m, ok := cipherMechanisms[cipherMech{d.Cipher, d.Mode}]
		return m, ok
	}
	return 0, false
}

// mapError marks PKCS#11 return values caused by the caller
// as configuration or not supported errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var rv pkcs11.Error
	if !errors.As(err, &rv) {
		return err
	}
	switch rv {
	case pkcs11.CKR_MECHANISM_INVALID:
		return errors.Mark(err, cryptoprov.ErrNotSupported)
	case pkcs11.CKR_KEY_SIZE_RANGE,
		pkcs11.CKR_KEY_TYPE_INCONSISTENT,
		pkcs11.CKR_MECHANISM_PARAM_INVALID,
		pkcs11.CKR_ATTRIBUTE_VALUE_INVALID,
		pkcs11.CKR_ARGUMENTS_BAD,
		pkcs11.CKR_OPERATION_NOT_INITIALIZED,
		pkcs11.CKR_OPERATION_ACTIVE:
		return errors.Mark(err, cryptoprov.ErrConfiguration)
	}
	return err
}
