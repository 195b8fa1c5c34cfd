package gocrypto

import (
	"time"

	"github.com/effective-security/xcrypt/cryptoprov"
	"github.com/effective-security/xcrypt/metricskey"
	"github.com/effective-security/xlog"
)

type hashContext struct {
	name   string
	desc   cryptoprov.DigestDescriptor
	engine *digestEngine
	// digest is cached by Final until Clear
	digest []byte
}

// Ensure compiles
var _ cryptoprov.HashContext = (*hashContext)(nil)

func newHashContext(name string, desc cryptoprov.DigestDescriptor) (*hashContext, error) {
	engine, err := mdOpen(desc.Digest)
	if err != nil {
		return nil, cryptoprov.CheckError("mdOpen", err)
	}
	logger.KV(xlog.DEBUG, "context", "hash", "alg", name)
	return &hashContext{
		name:   name,
		desc:   desc,
		engine: engine,
	}, nil
}

func (c *hashContext) Type() string                 { return c.name }
func (c *hashContext) Kind() cryptoprov.ContextKind { return cryptoprov.KindHash }
func (c *hashContext) Provider() string             { return ProviderName }

// Size returns the digest length reported by the backend
func (c *hashContext) Size() int {
	return mdAlgoLen(c.desc.Digest)
}

func (c *hashContext) Close() error {
	if c.engine != nil {
		c.engine.close()
		c.engine = nil
	}
	c.digest = nil
	return nil
}

func (c *hashContext) Clear() error {
	if c.engine == nil {
		return cryptoprov.ConfigurationErrorf("%s: context is closed", c.name)
	}
	c.digest = nil
	return cryptoprov.CheckError("mdReset", c.engine.reset())
}

func (c *hashContext) Update(data []byte) error {
	if c.engine == nil {
		return cryptoprov.ConfigurationErrorf("%s: context is closed", c.name)
	}
	if c.digest != nil {
		return cryptoprov.ConfigurationErrorf("%s: update after final, call Clear first", c.name)
	}
	return cryptoprov.CheckError("mdWrite", c.engine.write(data))
}

func (c *hashContext) Final() ([]byte, error) {
	if c.engine == nil {
		return nil, cryptoprov.ConfigurationErrorf("%s: context is closed", c.name)
	}
	if c.digest == nil {
		defer metricskey.PerfCryptoOperation.MeasureSince(time.Now(), ProviderName, "digest")

		d, err := c.engine.read()
		if err = cryptoprov.CheckError("mdRead", err); err != nil {
			return nil, err
		}
		c.digest = d
	}
	res := make([]byte, len(c.digest))
	copy(res, c.digest)
	return res, nil
}

// Clone returns a context of the same algorithm with empty state
func (c *hashContext) Clone() (cryptoprov.HashContext, error) {
	clone, err := newHashContext(c.name, c.desc)
	if err != nil {
		return nil, err
	}
	return clone, nil
}
