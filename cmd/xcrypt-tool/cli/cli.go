package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xcrypt/cryptoprov"
	"github.com/effective-security/xlog"

	// register providers
	_ "github.com/effective-security/xcrypt/cryptoprov/gocrypto"
	_ "github.com/effective-security/xcrypt/cryptoprov/p11crypto"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xcrypt", "cli")

// Cli provides CLI context to run commands
type Cli struct {
	Cfg       string   `help:"Location of the default provider config file, the built-in provider is used if not set" type:"path"`
	Providers []string `help:"Locations of additional provider config files"`
	Debug     bool     `short:"D" help:"Enable debug mode"`
	LogLevel  string   `short:"l" help:"Set the logging level (debug|info|warn|error)" default:"error"`

	// Stdin is the source to read from, typically set to os.Stdin
	stdin io.Reader
	// Output is the destination for all output from the command, typically set to os.Stdout
	output io.Writer
	// ErrOutput is the destinaton for errors.
	// If not set, errors will be written to os.StdError
	errOutput io.Writer

	ctx    context.Context
	crypto *cryptoprov.Crypto
}

// Context for requests
func (c *Cli) Context() context.Context {
	if c.ctx == nil {
		c.ctx = context.Background()
	}
	return c.ctx
}

// Reader is the source to read from, typically set to os.Stdin
func (c *Cli) Reader() io.Reader {
	if c.stdin != nil {
		return c.stdin
	}
	return os.Stdin
}

// WithReader allows to specify a custom reader
func (c *Cli) WithReader(reader io.Reader) *Cli {
	c.stdin = reader
	return c
}

// Writer returns a writer for control output
func (c *Cli) Writer() io.Writer {
	if c.output != nil {
		return c.output
	}
	return os.Stdout
}

// WithWriter allows to specify a custom writer
func (c *Cli) WithWriter(out io.Writer) *Cli {
	c.output = out
	return c
}

// ErrWriter returns a writer for control output
func (c *Cli) ErrWriter() io.Writer {
	if c.errOutput != nil {
		return c.errOutput
	}
	return os.Stderr
}

// WithErrWriter allows to specify a custom error writer
func (c *Cli) WithErrWriter(out io.Writer) *Cli {
	c.errOutput = out
	return c
}

// AfterApply hook sets the log level
func (c *Cli) AfterApply(_ *kong.Kong, _ kong.Vars) error {
	if c.Debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		val := strings.TrimLeft(c.LogLevel, "=")
		l, err := xlog.ParseLevel(strings.ToUpper(val))
		if err != nil {
			return errors.WithStack(err)
		}
		xlog.SetGlobalLogLevel(l)
	}

	return nil
}

// WriteJSON prints response to out
func (c *Cli) WriteJSON(value any) error {
	return WriteJSON(c.Writer(), value)
}

// WithCrypto allows to specify loaded providers
func (c *Cli) WithCrypto(crypto *cryptoprov.Crypto) *Cli {
	c.crypto = crypto
	return c
}

// CryptoProv loads Crypto providers
func (c *Cli) CryptoProv() (*cryptoprov.Crypto, error) {
	if c.crypto != nil {
		return c.crypto, nil
	}

	crypto, err := cryptoprov.Load(c.Cfg, c.Providers)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to initialize crypto providers")
	}
	logger.KV(xlog.DEBUG,
		"default", crypto.Name(),
		"providers", len(crypto.Providers()))

	c.crypto = crypto
	return c.crypto, nil
}

// ReadInput returns the content of the file, or stdin for "-" or empty name
func (c *Cli) ReadInput(file string) ([]byte, error) {
	if file == "" || file == "-" {
		b, err := io.ReadAll(c.Reader())
		if err != nil {
			return nil, errors.WithMessage(err, "unable to read from stdin")
		}
		return b, nil
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to read file")
	}
	return b, nil
}
