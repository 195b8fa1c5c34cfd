package gocrypto

import (
	"time"

	"github.com/awnumar/memguard"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xcrypt/cryptoprov"
	"github.com/effective-security/xcrypt/metricskey"
	"github.com/effective-security/xlog"
	"github.com/jinzhu/copier"
)

// cipherConfig is the configuration applied by Setup
type cipherConfig struct {
	Direction cryptoprov.Direction
	Key       []byte
	IV        []byte
}

type cipherContext struct {
	name   string
	desc   cryptoprov.CipherDescriptor
	engine *cipherEngine
	cfg    *cipherConfig
}

// Ensure compiles
var _ cryptoprov.CipherContext = (*cipherContext)(nil)

func newCipherContext(name string, desc cryptoprov.CipherDescriptor) (*cipherContext, error) {
	if _, _, ok := cipherKeyRange(desc.Cipher); !ok {
		return nil, cryptoprov.CheckError("cipherOpen", errors.WithMessagef(errAlgorithm, "cipher %d", desc.Cipher))
	}
	logger.KV(xlog.DEBUG, "context", "cipher", "alg", name)
	return &cipherContext{
		name: name,
		desc: desc,
	}, nil
}

func (c *cipherContext) Type() string                 { return c.name }
func (c *cipherContext) Kind() cryptoprov.ContextKind { return cryptoprov.KindCipher }
func (c *cipherContext) Provider() string             { return ProviderName }

// BlockSize returns the cipher block size reported by the backend
func (c *cipherContext) BlockSize() int {
	return cipherBlockLen(c.desc.Cipher)
}

// KeyLength returns accepted key sizes reported by the backend
func (c *cipherContext) KeyLength() cryptoprov.KeyLength {
	min, max, ok := cipherKeyRange(c.desc.Cipher)
	if !ok {
		return cryptoprov.KeyLength{Min: 0, Max: 1, Step: 1}
	}
	return cryptoprov.KeyLength{Min: min, Max: max, Step: 1}
}

func (c *cipherContext) Setup(dir cryptoprov.Direction, key, iv []byte) error {
	if dir != cryptoprov.Encrypt && dir != cryptoprov.Decrypt {
		return cryptoprov.ConfigurationErrorf("%s: invalid direction: %d", c.name, dir)
	}

	c.closeEngine()
	c.cfg = nil

	engine, err := cipherOpen(c.desc.Cipher, c.desc.Mode)
	if err = cryptoprov.CheckError("cipherOpen", err); err != nil {
		return err
	}
	if err = cryptoprov.CheckError("cipherSetKey", engine.setKey(key)); err != nil {
		engine.close()
		return err
	}
	if err = cryptoprov.CheckError("cipherSetIV", engine.setIV(iv)); err != nil {
		engine.close()
		return err
	}

	c.engine = engine
	c.cfg = &cipherConfig{
		Direction: dir,
		Key:       append([]byte(nil), key...),
		IV:        append([]byte(nil), iv...),
	}
	return nil
}

func (c *cipherContext) Update(in []byte) ([]byte, error) {
	if c.engine == nil {
		return nil, cryptoprov.ConfigurationErrorf("%s: cipher is not set up", c.name)
	}

	defer metricskey.PerfCryptoOperation.MeasureSince(time.Now(), ProviderName, c.cfg.Direction.String())

	out := make([]byte, len(in))
	if err := c.transform(out, in); err != nil {
		return nil, err
	}
	return out, nil
}

// Final transforms one zero block in place when the padding is set
func (c *cipherContext) Final() ([]byte, error) {
	if c.engine == nil {
		return nil, cryptoprov.ConfigurationErrorf("%s: cipher is not set up", c.name)
	}
	if !c.desc.Padding {
		return []byte{}, nil
	}

	block := make([]byte, c.BlockSize())
	if err := c.transform(block, nil); err != nil {
		return nil, err
	}
	return block, nil
}

func (c *cipherContext) transform(out, in []byte) error {
	if c.cfg.Direction == cryptoprov.Encrypt {
		return cryptoprov.CheckError("cipherEncrypt", c.engine.encrypt(out, in))
	}
	return cryptoprov.CheckError("cipherDecrypt", c.engine.decrypt(out, in))
}

// Clone returns a context with a copy of the configuration.
// The chaining state of the source is not copied.
func (c *cipherContext) Clone() (cryptoprov.CipherContext, error) {
	clone, err := newCipherContext(c.name, c.desc)
	if err != nil {
		return nil, err
	}
	if c.cfg == nil {
		return clone, nil
	}

	var cfg cipherConfig
	if err = copier.CopyWithOption(&cfg, c.cfg, copier.Option{DeepCopy: true}); err != nil {
		return nil, errors.WithMessage(err, "unable to copy cipher configuration")
	}
	if err = clone.Setup(cfg.Direction, cfg.Key, cfg.IV); err != nil {
		return nil, err
	}
	return clone, nil
}

func (c *cipherContext) Close() error {
	c.closeEngine()
	if c.cfg != nil {
		memguard.WipeBytes(c.cfg.Key)
		memguard.WipeBytes(c.cfg.IV)
		c.cfg = nil
	}
	return nil
}

func (c *cipherContext) closeEngine() {
	if c.engine != nil {
		c.engine.close()
		c.engine = nil
	}
}
