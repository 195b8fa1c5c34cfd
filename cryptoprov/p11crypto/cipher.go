package p11crypto

import (
	"time"

	"github.com/awnumar/memguard"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xcrypt/cryptoprov"
	"github.com/effective-security/xcrypt/metricskey"
	"github.com/jinzhu/copier"
	"github.com/miekg/pkcs11"
)

var (
	errInvalidLength = errors.New("invalid length")
)

type cipherConfig struct {
	Direction cryptoprov.Direction
	Key       []byte
	IV        []byte
}

type cipherContext struct {
	p       *Provider
	name    string
	desc    cryptoprov.CipherDescriptor
	spec    keySpec
	mech    uint
	session pkcs11.SessionHandle
	key     pkcs11.ObjectHandle
	cfg     *cipherConfig
	open    bool
}

// Ensure compiles
var _ cryptoprov.CipherContext = (*cipherContext)(nil)

func newCipherContext(p *Provider, name string, desc cryptoprov.CipherDescriptor, mech uint) (*cipherContext, error) {
	spec, ok := cipherKeys[desc.Cipher]
	if !ok {
		return nil, cryptoprov.NotSupportedf("algorithm not supported: %q", name)
	}
	sh, err := p.openSession()
	if err = cryptoprov.CheckError("OpenSession", mapError(err)); err != nil {
		return nil, err
	}
	return &cipherContext{
		p:       p,
		name:    name,
		desc:    desc,
		spec:    spec,
		mech:    mech,
		session: sh,
		open:    true,
	}, nil
}

func (c *cipherContext) Type() string                 { return c.name }
func (c *cipherContext) Kind() cryptoprov.ContextKind { return cryptoprov.KindCipher }
func (c *cipherContext) Provider() string             { return ProviderName }
func (c *cipherContext) BlockSize() int               { return c.spec.blockLen }

func (c *cipherContext) KeyLength() cryptoprov.KeyLength {
	return cryptoprov.KeyLength{Min: c.spec.size, Max: c.spec.size, Step: 1}
}

func (c *cipherContext) Setup(dir cryptoprov.Direction, key, iv []byte) error {
	if !c.open {
		return cryptoprov.ConfigurationErrorf("%s: context is closed", c.name)
	}
	if dir != cryptoprov.Encrypt && dir != cryptoprov.Decrypt {
		return cryptoprov.ConfigurationErrorf("%s: invalid direction: %d", c.name, dir)
	}
	if len(key) != c.spec.size {
		return cryptoprov.ConfigurationErrorf("%s: invalid key length: %d", c.name, len(key))
	}

	var param []byte
	if c.desc.Mode != cryptoprov.ECB {
		switch len(iv) {
		case 0:
			param = make([]byte, c.spec.blockLen)
		case c.spec.blockLen:
			param = append([]byte(nil), iv...)
		default:
			return cryptoprov.ConfigurationErrorf("%s: invalid IV length: %d", c.name, len(iv))
		}
	}

	c.release()

	tpl := []*pkcs11.Attribute{
		pkcs11.NewAttribute(pkcs11.CKA_CLASS, pkcs11.CKO_SECRET_KEY),
		pkcs11.NewAttribute(pkcs11.CKA_KEY_TYPE, c.spec.keyType),
		pkcs11.NewAttribute(pkcs11.CKA_TOKEN, false),
		pkcs11.NewAttribute(pkcs11.CKA_SENSITIVE, true),
		pkcs11.NewAttribute(pkcs11.CKA_ENCRYPT, dir == cryptoprov.Encrypt),
		pkcs11.NewAttribute(pkcs11.CKA_DECRYPT, dir == cryptoprov.Decrypt),
		pkcs11.NewAttribute(pkcs11.CKA_VALUE, key),
	}
	obj, err := c.p.ctx.CreateObject(c.session, tpl)
	if err = cryptoprov.CheckError("CreateObject", mapError(err)); err != nil {
		return err
	}

	mech := []*pkcs11.Mechanism{pkcs11.NewMechanism(c.mech, param)}
	if dir == cryptoprov.Encrypt {
		err = c.p.ctx.EncryptInit(c.session, mech, obj)
	} else {
		err = c.p.ctx.DecryptInit(c.session, mech, obj)
	}
	if err = cryptoprov.CheckError("CipherInit", mapError(err)); err != nil {
		_ = c.p.ctx.DestroyObject(c.session, obj)
		return err
	}

	c.key = obj
	c.cfg = &cipherConfig{
		Direction: dir,
		Key:       append([]byte(nil), key...),
		IV:        append([]byte(nil), iv...),
	}
	return nil
}

func (c *cipherContext) Update(in []byte) ([]byte, error) {
	if c.cfg == nil {
		return nil, cryptoprov.ConfigurationErrorf("%s: cipher is not set up", c.name)
	}
	if c.desc.Mode != cryptoprov.CFB && len(in)%c.spec.blockLen != 0 {
		return nil, cryptoprov.CheckError("CipherUpdate",
			errors.WithMessagef(errInvalidLength, "input %d is not a multiple of block size %d", len(in), c.spec.blockLen))
	}
	if len(in) == 0 {
		return []byte{}, nil
	}

	defer metricskey.PerfCryptoOperation.MeasureSince(time.Now(), ProviderName, c.cfg.Direction.String())

	var out []byte
	var err error
	if c.cfg.Direction == cryptoprov.Encrypt {
		out, err = c.p.ctx.EncryptUpdate(c.session, in)
	} else {
		out, err = c.p.ctx.DecryptUpdate(c.session, in)
	}
	if err = cryptoprov.CheckError("CipherUpdate", mapError(err)); err != nil {
		return nil, err
	}
	if len(out) != len(in) {
		return nil, cryptoprov.CheckError("CipherUpdate",
			errors.WithMessagef(errInvalidLength, "output %d does not match input %d", len(out), len(in)))
	}
	return out, nil
}

// Final transforms one zero block when the padding is set
func (c *cipherContext) Final() ([]byte, error) {
	if c.cfg == nil {
		return nil, cryptoprov.ConfigurationErrorf("%s: cipher is not set up", c.name)
	}
	if !c.desc.Padding {
		return []byte{}, nil
	}
	return c.Update(make([]byte, c.spec.blockLen))
}

func (c *cipherContext) Clone() (cryptoprov.CipherContext, error) {
	clone, err := newCipherContext(c.p, c.name, c.desc, c.mech)
	if err != nil {
		return nil, err
	}
	if c.cfg == nil {
		return clone, nil
	}

	var cfg cipherConfig
	if err = copier.CopyWithOption(&cfg, c.cfg, copier.Option{DeepCopy: true}); err != nil {
		_ = clone.Close()
		return nil, errors.WithMessage(err, "unable to copy cipher configuration")
	}
	if err = clone.Setup(cfg.Direction, cfg.Key, cfg.IV); err != nil {
		_ = clone.Close()
		return nil, err
	}
	return clone, nil
}

// release terminates the active operation and destroys the session key
func (c *cipherContext) release() {
	if c.cfg == nil {
		return
	}
	if c.cfg.Direction == cryptoprov.Encrypt {
		_, _ = c.p.ctx.EncryptFinal(c.session)
	} else {
		_, _ = c.p.ctx.DecryptFinal(c.session)
	}
	if c.key != 0 {
		_ = c.p.ctx.DestroyObject(c.session, c.key)
		c.key = 0
	}
	memguard.WipeBytes(c.cfg.Key)
	memguard.WipeBytes(c.cfg.IV)
	c.cfg = nil
}

func (c *cipherContext) Close() error {
	if !c.open {
		return nil
	}
	c.release()
	c.p.closeSession(c.session)
	c.open = false
	return nil
}
