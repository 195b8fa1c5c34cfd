package gocrypto

import (
	"time"

	"github.com/awnumar/memguard"
	"github.com/effective-security/xcrypt/cryptoprov"
	"github.com/effective-security/xcrypt/metricskey"
	"github.com/effective-security/xlog"
)

type kdfContext struct {
	name   string
	desc   cryptoprov.KDFDescriptor
	closed bool
}

// Ensure compiles
var _ cryptoprov.KDFContext = (*kdfContext)(nil)

func newKDFContext(name string, desc cryptoprov.KDFDescriptor) (*kdfContext, error) {
	if _, ok := digestFactories[desc.PRF]; !ok {
		return nil, cryptoprov.NotSupportedf("algorithm not supported: %q", name)
	}
	logger.KV(xlog.DEBUG, "context", "kdf", "alg", name)
	return &kdfContext{
		name: name,
		desc: desc,
	}, nil
}

func (c *kdfContext) Type() string                 { return c.name }
func (c *kdfContext) Kind() cryptoprov.ContextKind { return cryptoprov.KindKDF }
func (c *kdfContext) Provider() string             { return ProviderName }

func (c *kdfContext) Close() error {
	c.closed = true
	return nil
}

// MakeKey derives keyLen bytes with PBKDF2.
// The secret is copied into locked memory for the duration of the call.
func (c *kdfContext) MakeKey(secret, salt []byte, keyLen, iterations int) ([]byte, error) {
	if c.closed {
		return nil, cryptoprov.ConfigurationErrorf("%s: context is closed", c.name)
	}
	if iterations <= 0 {
		return nil, cryptoprov.ConfigurationErrorf("%s: invalid iterations: %d", c.name, iterations)
	}
	if keyLen <= 0 {
		return nil, cryptoprov.ConfigurationErrorf("%s: invalid key length: %d", c.name, keyLen)
	}

	defer metricskey.PerfKeyDerivation.MeasureSince(time.Now(), ProviderName, c.name)

	scratch := memguard.NewBufferFromBytes(append([]byte(nil), secret...))
	defer scratch.Destroy()

	key, err := pbkdf2Derive(c.desc.PRF, scratch.Bytes(), salt, iterations, keyLen)
	if err = cryptoprov.CheckError("pbkdf2", err); err != nil {
		return nil, err
	}
	return key, nil
}

func (c *kdfContext) Clone() (cryptoprov.KDFContext, error) {
	clone, err := newKDFContext(c.name, c.desc)
	if err != nil {
		return nil, err
	}
	return clone, nil
}
