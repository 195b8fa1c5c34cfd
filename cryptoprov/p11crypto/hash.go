package p11crypto

import (
	"time"

	"github.com/effective-security/xcrypt/cryptoprov"
	"github.com/effective-security/xcrypt/metricskey"
	"github.com/miekg/pkcs11"
)

type hashContext struct {
	p       *Provider
	name    string
	desc    cryptoprov.DigestDescriptor
	mech    uint
	session pkcs11.SessionHandle
	open    bool
	// active is set while a digest operation is initialized
	active bool
	digest []byte
}

// Ensure compiles
var _ cryptoprov.HashContext = (*hashContext)(nil)

func newHashContext(p *Provider, name string, desc cryptoprov.DigestDescriptor, mech uint) (*hashContext, error) {
	sh, err := p.openSession()
	if err = cryptoprov.CheckError("OpenSession", mapError(err)); err != nil {
		return nil, err
	}
	c := &hashContext{
		p:       p,
		name:    name,
		desc:    desc,
		mech:    mech,
		session: sh,
		open:    true,
	}
	if err = c.init(); err != nil {
		p.closeSession(sh)
		return nil, err
	}
	return c, nil
}

func (c *hashContext) init() error {
	err := c.p.ctx.DigestInit(c.session, []*pkcs11.Mechanism{pkcs11.NewMechanism(c.mech, nil)})
	if err = cryptoprov.CheckError("DigestInit", mapError(err)); err != nil {
		return err
	}
	c.active = true
	c.digest = nil
	return nil
}

func (c *hashContext) Type() string                 { return c.name }
func (c *hashContext) Kind() cryptoprov.ContextKind { return cryptoprov.KindHash }
func (c *hashContext) Provider() string             { return ProviderName }
func (c *hashContext) Size() int                    { return c.desc.Size() }

func (c *hashContext) Close() error {
	if !c.open {
		return nil
	}
	if c.active {
		_, _ = c.p.ctx.DigestFinal(c.session)
	}
	c.p.closeSession(c.session)
	c.open = false
	c.active = false
	c.digest = nil
	return nil
}

func (c *hashContext) Clear() error {
	if !c.open {
		return cryptoprov.ConfigurationErrorf("%s: context is closed", c.name)
	}
	if c.active {
		// terminate the pending operation
		_, _ = c.p.ctx.DigestFinal(c.session)
		c.active = false
	}
	return c.init()
}

func (c *hashContext) Update(data []byte) error {
	if !c.open {
		return cryptoprov.ConfigurationErrorf("%s: context is closed", c.name)
	}
	if c.digest != nil {
		return cryptoprov.ConfigurationErrorf("%s: update after final, call Clear first", c.name)
	}
	if len(data) == 0 {
		return nil
	}
	return cryptoprov.CheckError("DigestUpdate", mapError(c.p.ctx.DigestUpdate(c.session, data)))
}

func (c *hashContext) Final() ([]byte, error) {
	if !c.open {
		return nil, cryptoprov.ConfigurationErrorf("%s: context is closed", c.name)
	}
	if c.digest == nil {
		defer metricskey.PerfCryptoOperation.MeasureSince(time.Now(), ProviderName, "digest")

		d, err := c.p.ctx.DigestFinal(c.session)
		c.active = false
		if err = cryptoprov.CheckError("DigestFinal", mapError(err)); err != nil {
			return nil, err
		}
		c.digest = d
	}
	res := make([]byte, len(c.digest))
	copy(res, c.digest)
	return res, nil
}

func (c *hashContext) Clone() (cryptoprov.HashContext, error) {
	clone, err := newHashContext(c.p, c.name, c.desc, c.mech)
	if err != nil {
		return nil, err
	}
	return clone, nil
}
