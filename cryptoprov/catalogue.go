package cryptoprov

// ContextKind identifies the capability of a context
type ContextKind int

// Context kinds
const (
	KindHash ContextKind = iota + 1
	KindCipher
	KindKDF
)

// String returns the kind name
func (k ContextKind) String() string {
	switch k {
	case KindHash:
		return "hash"
	case KindCipher:
		return "cipher"
	case KindKDF:
		return "kdf"
	}
	return "unknown"
}

// DigestKind identifies a hash function
type DigestKind int

// Digest kinds
const (
	SHA1 DigestKind = iota + 1
	MD4
	MD5
	RIPEMD160
	SHA256
	SHA384
	SHA512
)

var digestSizes = map[DigestKind]int{
	SHA1:      20,
	MD4:       16,
	MD5:       16,
	RIPEMD160: 20,
	SHA256:    32,
	SHA384:    48,
	SHA512:    64,
}

var digestNames = map[DigestKind]string{
	SHA1:      "sha1",
	MD4:       "md4",
	MD5:       "md5",
	RIPEMD160: "ripemd160",
	SHA256:    "sha256",
	SHA384:    "sha384",
	SHA512:    "sha512",
}

// Size returns the digest length in bytes, or 0 for unknown kind
func (k DigestKind) Size() int {
	return digestSizes[k]
}

// String returns the digest name
func (k DigestKind) String() string {
	if n, ok := digestNames[k]; ok {
		return n
	}
	return "unknown"
}

// CipherKind identifies a block cipher and its key length family
type CipherKind int

// Cipher kinds
const (
	DES CipherKind = iota + 1
	TripleDES
	Blowfish
	AES128
	AES192
	AES256
)

var cipherNames = map[CipherKind]string{
	DES:       "des",
	TripleDES: "tripledes",
	Blowfish:  "blowfish",
	AES128:    "aes128",
	AES192:    "aes192",
	AES256:    "aes256",
}

// String returns the cipher name
func (k CipherKind) String() string {
	if n, ok := cipherNames[k]; ok {
		return n
	}
	return "unknown"
}

// Mode is a block cipher mode
type Mode int

// Block cipher modes
const (
	ECB Mode = iota + 1
	CBC
	CFB
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case ECB:
		return "ecb"
	case CBC:
		return "cbc"
	case CFB:
		return "cfb"
	}
	return "unknown"
}

// Direction of a cipher transform
type Direction int

// Cipher directions
const (
	Encrypt Direction = iota + 1
	Decrypt
)

// String returns the direction name
func (d Direction) String() string {
	switch d {
	case Encrypt:
		return "encrypt"
	case Decrypt:
		return "decrypt"
	}
	return "unknown"
}

// KeyLength describes accepted symmetric key sizes in bytes
type KeyLength struct {
	Min  int `json:"min" yaml:"min"`
	Max  int `json:"max" yaml:"max"`
	Step int `json:"step" yaml:"step"`
}

// IsValid returns true if size is accepted by the key length
func (l KeyLength) IsValid(size int) bool {
	if size < l.Min || size > l.Max || l.Step <= 0 {
		return false
	}
	return (size-l.Min)%l.Step == 0
}

// Descriptor provides structural parameters of a catalogue algorithm.
// It is implemented by DigestDescriptor, CipherDescriptor and KDFDescriptor.
type Descriptor interface {
	// Kind returns the context kind created for the descriptor
	Kind() ContextKind
}

// DigestDescriptor describes a hash function
type DigestDescriptor struct {
	Digest DigestKind
}

// Kind returns KindHash
func (d DigestDescriptor) Kind() ContextKind { return KindHash }

// Size returns the digest length in bytes
func (d DigestDescriptor) Size() int { return d.Digest.Size() }

// CipherDescriptor describes a block cipher in a mode
type CipherDescriptor struct {
	Cipher  CipherKind
	Mode    Mode
	Padding bool
}

// Kind returns KindCipher
func (d CipherDescriptor) Kind() ContextKind { return KindCipher }

// KDFDescriptor describes a password-based key derivation function
type KDFDescriptor struct {
	PRF DigestKind
}

// Kind returns KindKDF
func (d KDFDescriptor) Kind() ContextKind { return KindKDF }

// Algorithm names
const (
	AlgSHA1         = "sha1"
	AlgMD4          = "md4"
	AlgMD5          = "md5"
	AlgRIPEMD160    = "ripemd160"
	AlgSHA256       = "sha256"
	AlgSHA384       = "sha384"
	AlgSHA512       = "sha512"
	AlgAES128ECB    = "aes128-ecb"
	AlgAES128CFB    = "aes128-cfb"
	AlgAES128CBC    = "aes128-cbc"
	AlgAES192ECB    = "aes192-ecb"
	AlgAES192CFB    = "aes192-cfb"
	AlgAES192CBC    = "aes192-cbc"
	AlgAES256ECB    = "aes256-ecb"
	AlgAES256CFB    = "aes256-cfb"
	AlgAES256CBC    = "aes256-cbc"
	AlgBlowfishECB  = "blowfish-ecb"
	AlgTripleDESECB = "tripledes-ecb"
	AlgDESECB       = "des-ecb"
	AlgDESCBC       = "des-cbc"
	AlgDESCFB       = "des-cfb"
	AlgPBKDF2SHA1   = "pbkdf2(sha1)"
)

// features is the fixed advertisement order
var features = []string{
	AlgSHA1,
	AlgMD4,
	AlgMD5,
	AlgRIPEMD160,
	AlgSHA256,
	AlgSHA384,
	AlgSHA512,
	AlgAES128ECB,
	AlgAES128CFB,
	AlgAES128CBC,
	AlgAES192ECB,
	AlgAES192CFB,
	AlgAES192CBC,
	AlgAES256ECB,
	AlgAES256CFB,
	AlgAES256CBC,
	AlgBlowfishECB,
	AlgTripleDESECB,
	AlgDESECB,
	AlgDESCBC,
	AlgDESCFB,
	AlgPBKDF2SHA1,
}

var catalogue = map[string]Descriptor{
	AlgSHA1:         DigestDescriptor{Digest: SHA1},
	AlgMD4:          DigestDescriptor{Digest: MD4},
	AlgMD5:          DigestDescriptor{Digest: MD5},
	AlgRIPEMD160:    DigestDescriptor{Digest: RIPEMD160},
	AlgSHA256:       DigestDescriptor{Digest: SHA256},
	AlgSHA384:       DigestDescriptor{Digest: SHA384},
	AlgSHA512:       DigestDescriptor{Digest: SHA512},
	AlgAES128ECB:    CipherDescriptor{Cipher: AES128, Mode: ECB},
	AlgAES128CFB:    CipherDescriptor{Cipher: AES128, Mode: CFB},
	AlgAES128CBC:    CipherDescriptor{Cipher: AES128, Mode: CBC},
	AlgAES192ECB:    CipherDescriptor{Cipher: AES192, Mode: ECB},
	AlgAES192CFB:    CipherDescriptor{Cipher: AES192, Mode: CFB},
	AlgAES192CBC:    CipherDescriptor{Cipher: AES192, Mode: CBC},
	AlgAES256ECB:    CipherDescriptor{Cipher: AES256, Mode: ECB},
	AlgAES256CFB:    CipherDescriptor{Cipher: AES256, Mode: CFB},
	AlgAES256CBC:    CipherDescriptor{Cipher: AES256, Mode: CBC},
	AlgBlowfishECB:  CipherDescriptor{Cipher: Blowfish, Mode: ECB},
	AlgTripleDESECB: CipherDescriptor{Cipher: TripleDES, Mode: ECB},
	AlgDESECB:       CipherDescriptor{Cipher: DES, Mode: ECB},
	AlgDESCBC:       CipherDescriptor{Cipher: DES, Mode: CBC},
	AlgDESCFB:       CipherDescriptor{Cipher: DES, Mode: CFB},
	AlgPBKDF2SHA1:   KDFDescriptor{PRF: SHA1},
}

// Features returns all catalogue names in the fixed order
func Features() []string {
	list := make([]string, len(features))
	copy(list, features)
	return list
}

// Lookup returns the descriptor for the algorithm name
func Lookup(name string) (Descriptor, bool) {
	d, ok := catalogue[name]
	return d, ok
}
