package cryptoprov

// Provider advertises the algorithms of a backend and creates contexts for them
type Provider interface {
	// Name returns the provider name, used to register its loader
	Name() string
	// Model returns the backend model
	Model() string
	// Features returns supported algorithm names in a fixed order
	Features() []string
	// CreateContext returns a new context for the algorithm,
	// or ErrNotSupported if the name is unknown to the provider
	CreateContext(name string) (Context, error)
}

// Context is an instance of an algorithm in use.
// The caller owns the context and must Close it.
type Context interface {
	// Type returns the algorithm name
	Type() string
	// Kind returns the capability of the context
	Kind() ContextKind
	// Provider returns the name of the provider created the context
	Provider() string
	// Close releases the backend handle. It is safe to call more than once.
	Close() error
}

// HashContext computes a message digest
type HashContext interface {
	Context

	// Clear resets the accumulated state
	Clear() error
	// Update absorbs the data
	Update(data []byte) error
	// Final returns the digest of all data absorbed since the last Clear.
	// It may be called more than once and returns the same value;
	// Update after Final fails until Clear is called.
	Final() ([]byte, error)
	// Size returns the digest length in bytes
	Size() int
	// Clone returns a new context of the same algorithm with a fresh handle
	Clone() (HashContext, error)
}

// CipherContext encrypts or decrypts with a block cipher
type CipherContext interface {
	Context

	// Setup opens the cipher engine with the key and IV for the direction.
	// Calling Setup again replaces the configuration.
	Setup(dir Direction, key, iv []byte) error
	// BlockSize returns the cipher block size in bytes
	BlockSize() int
	// Update transforms the input and returns output of the same length
	Update(in []byte) ([]byte, error)
	// Final returns one transformed block if the padding is set,
	// or empty output otherwise
	Final() ([]byte, error)
	// KeyLength returns accepted key sizes for the cipher
	KeyLength() KeyLength
	// Clone returns a new context with a copy of the configuration
	// and a fresh handle
	Clone() (CipherContext, error)
}

// KDFContext derives keys from a secret
type KDFContext interface {
	Context

	// MakeKey derives keyLen bytes from the secret and salt
	MakeKey(secret, salt []byte, keyLen, iterations int) ([]byte, error)
	// Clone returns a new context of the same algorithm
	Clone() (KDFContext, error)
}

// CreateHash returns a HashContext for the algorithm
func CreateHash(p Provider, name string) (HashContext, error) {
	c, err := p.CreateContext(name)
	if err != nil {
		return nil, err
	}
	hc, ok := c.(HashContext)
	if !ok {
		_ = c.Close()
		return nil, ConfigurationErrorf("%s is not a hash: %s", name, c.Kind())
	}
	return hc, nil
}

// CreateCipher returns a CipherContext for the algorithm
func CreateCipher(p Provider, name string) (CipherContext, error) {
	c, err := p.CreateContext(name)
	if err != nil {
		return nil, err
	}
	cc, ok := c.(CipherContext)
	if !ok {
		_ = c.Close()
		return nil, ConfigurationErrorf("%s is not a cipher: %s", name, c.Kind())
	}
	return cc, nil
}

// CreateKDF returns a KDFContext for the algorithm
func CreateKDF(p Provider, name string) (KDFContext, error) {
	c, err := p.CreateContext(name)
	if err != nil {
		return nil, err
	}
	kc, ok := c.(KDFContext)
	if !ok {
		_ = c.Close()
		return nil, ConfigurationErrorf("%s is not a key derivation function: %s", name, c.Kind())
	}
	return kc, nil
}
