package cli

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xcrypt/cryptoprov"
)

const chunkSize = 32 * 1024

// ProviderInfo is the output of the features command
type ProviderInfo struct {
	Name     string   `json:"name"`
	Model    string   `json:"model"`
	Features []string `json:"features"`
}

// FeaturesCmd prints algorithms supported by the providers
type FeaturesCmd struct {
	All bool `help:"print features of each provider"`
}

// Run the command
func (a *FeaturesCmd) Run(ctx *Cli) error {
	cp, err := ctx.CryptoProv()
	if err != nil {
		return err
	}

	if !a.All {
		return ctx.WriteJSON(cp.Features())
	}

	var res []ProviderInfo
	for _, p := range cp.Providers() {
		res = append(res, ProviderInfo{
			Name:     p.Name(),
			Model:    p.Model(),
			Features: p.Features(),
		})
	}
	return ctx.WriteJSON(res)
}

// DigestCmd prints the digest of the input
type DigestCmd struct {
	Alg  string `required:"" help:"hash algorithm name, e.g. sha256"`
	File string `arg:"" optional:"" help:"input file, stdin if not set or -" default:"-"`
}

// Run the command
func (a *DigestCmd) Run(ctx *Cli) error {
	cp, err := ctx.CryptoProv()
	if err != nil {
		return err
	}

	h, err := cryptoprov.CreateHash(cp, a.Alg)
	if err != nil {
		return err
	}
	defer h.Close()

	r := ctx.Reader()
	if a.File != "" && a.File != "-" {
		f, err := os.Open(a.File)
		if err != nil {
			return errors.WithMessage(err, "unable to open file")
		}
		defer f.Close()
		r = f
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if uerr := h.Update(buf[:n]); uerr != nil {
				return uerr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.WithMessage(err, "unable to read input")
		}
	}

	d, err := h.Final()
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Writer(), hex.EncodeToString(d))
	return nil
}

// CipherFlags are shared by encrypt and decrypt commands
type CipherFlags struct {
	Alg  string `required:"" help:"cipher algorithm name, e.g. aes128-cbc"`
	Key  string `required:"" help:"hex encoded key"`
	IV   string `name:"iv" help:"hex encoded IV, zero IV if not set"`
	File string `arg:"" optional:"" help:"input file, stdin if not set or -" default:"-"`
}

func (f *CipherFlags) run(ctx *Cli, dir cryptoprov.Direction, in []byte) ([]byte, error) {
	key, err := hex.DecodeString(f.Key)
	if err != nil {
		return nil, errors.WithMessage(err, "invalid key")
	}
	iv, err := hex.DecodeString(f.IV)
	if err != nil {
		return nil, errors.WithMessage(err, "invalid IV")
	}

	cp, err := ctx.CryptoProv()
	if err != nil {
		return nil, err
	}

	c, err := cryptoprov.CreateCipher(cp, f.Alg)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if err = c.Setup(dir, key, iv); err != nil {
		return nil, err
	}
	out, err := c.Update(in)
	if err != nil {
		return nil, err
	}
	final, err := c.Final()
	if err != nil {
		return nil, err
	}
	return append(out, final...), nil
}

// EncryptCmd encrypts the input and prints hex encoded result
type EncryptCmd struct {
	CipherFlags
}

// Run the command
func (a *EncryptCmd) Run(ctx *Cli) error {
	in, err := ctx.ReadInput(a.File)
	if err != nil {
		return err
	}
	out, err := a.run(ctx, cryptoprov.Encrypt, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Writer(), hex.EncodeToString(out))
	return nil
}

// DecryptCmd decrypts hex encoded input and prints hex encoded result
type DecryptCmd struct {
	CipherFlags
}

// Run the command
func (a *DecryptCmd) Run(ctx *Cli) error {
	in, err := ctx.ReadInput(a.File)
	if err != nil {
		return err
	}
	ct, err := hex.DecodeString(string(bytes.TrimSpace(in)))
	if err != nil {
		return errors.WithMessage(err, "invalid hex input")
	}
	out, err := a.run(ctx, cryptoprov.Decrypt, ct)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Writer(), hex.EncodeToString(out))
	return nil
}

// DeriveCmd derives a key from the secret
type DeriveCmd struct {
	Alg    string `help:"key derivation algorithm name" default:"pbkdf2(sha1)"`
	Secret string `required:"" help:"secret, prefix with file: to load from the file"`
	Salt   string `help:"hex encoded salt"`
	Len    int    `help:"derived key length in bytes" default:"32"`
	Iter   int    `help:"iterations count" default:"4096"`
}

// Run the command
func (a *DeriveCmd) Run(ctx *Cli) error {
	salt, err := hex.DecodeString(a.Salt)
	if err != nil {
		return errors.WithMessage(err, "invalid salt")
	}
	secret := []byte(a.Secret)
	if name, ok := strings.CutPrefix(a.Secret, "file:"); ok {
		secret, err = os.ReadFile(name)
		if err != nil {
			return errors.WithMessage(err, "unable to load secret")
		}
		secret = bytes.TrimSpace(secret)
	}

	cp, err := ctx.CryptoProv()
	if err != nil {
		return err
	}

	k, err := cryptoprov.CreateKDF(cp, a.Alg)
	if err != nil {
		return err
	}
	defer k.Close()

	key, err := k.MakeKey(secret, salt, a.Len, a.Iter)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Writer(), hex.EncodeToString(key))
	return nil
}

// KeyLengthInfo is the output of the keylen command
type KeyLengthInfo struct {
	Alg       string               `json:"alg"`
	Provider  string               `json:"provider"`
	BlockSize int                  `json:"block_size"`
	KeyLength cryptoprov.KeyLength `json:"key_length"`
}

// KeyLenCmd prints accepted key sizes of the cipher
type KeyLenCmd struct {
	Alg string `required:"" help:"cipher algorithm name, e.g. blowfish-ecb"`
}

// Run the command
func (a *KeyLenCmd) Run(ctx *Cli) error {
	cp, err := ctx.CryptoProv()
	if err != nil {
		return err
	}

	c, err := cryptoprov.CreateCipher(cp, a.Alg)
	if err != nil {
		return err
	}
	defer c.Close()

	return ctx.WriteJSON(KeyLengthInfo{
		Alg:       c.Type(),
		Provider:  c.Provider(),
		BlockSize: c.BlockSize(),
		KeyLength: c.KeyLength(),
	})
}
