package cryptoprov

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ProviderConfig holds provider configuration information.
//
// For PKCS#11 providers a token may be identified either by serial number
// or label. If both are specified then the first match wins.
type ProviderConfig interface {
	// Provider is the name of the provider loader
	Provider() string

	// Model name of the device
	Model() string

	// Full path to PKCS#11 library
	Path() string

	// Token serial number
	TokenSerial() string

	// Token label
	TokenLabel() string

	// Pin is a secret to access the token.
	// If it's prefixed with `file:`, then it will be loaded from the file.
	Pin() string

	// Comma separated key=value pair of attributes(e.g. "MinVersion=go1.22")
	Attributes() string

	// Disabled is the list of algorithm names the provider must not advertise
	Disabled() []string
}

type providerConfig struct {
	Prov   string   `json:"Provider"     yaml:"provider"     validate:"required"`
	Mod    string   `json:"Model"        yaml:"model"`
	Dir    string   `json:"Path"         yaml:"path"`
	Serial string   `json:"TokenSerial"  yaml:"token_serial"`
	Label  string   `json:"TokenLabel"   yaml:"token_label"`
	Pwd    string   `json:"Pin"          yaml:"pin"`
	Attrs  string   `json:"Attributes"   yaml:"attributes"`
	Off    []string `json:"Disabled"     yaml:"disabled"     validate:"dive,required"`
}

// Provider is the name of the provider loader
func (c *providerConfig) Provider() string {
	return c.Prov
}

// Model name of the device
func (c *providerConfig) Model() string {
	return c.Mod
}

// Full path to PKCS#11 library
func (c *providerConfig) Path() string {
	return c.Dir
}

// Token serial number
func (c *providerConfig) TokenSerial() string {
	return c.Serial
}

// Token label
func (c *providerConfig) TokenLabel() string {
	return c.Label
}

// Pin is a secret to access the token.
func (c *providerConfig) Pin() string {
	return c.Pwd
}

// Attributes is list of additional key=value pairs
func (c *providerConfig) Attributes() string {
	return c.Attrs
}

// Disabled is the list of algorithm names the provider must not advertise
func (c *providerConfig) Disabled() []string {
	return c.Off
}

// NewProviderConfig returns configuration for a provider without
// token settings
func NewProviderConfig(provider, model string) ProviderConfig {
	return &providerConfig{
		Prov: provider,
		Mod:  model,
	}
}

var validate = validator.New()

// LoadProviderConfig loads provider configuration
func LoadProviderConfig(filename string) (ProviderConfig, error) {
	cfr, err := os.Open(filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer cfr.Close()
	cfg := new(providerConfig)

	if strings.HasSuffix(filename, ".json") {
		err = json.NewDecoder(cfr).Decode(cfg)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to decode file: %s", filename)
		}
	} else {
		err = yaml.NewDecoder(cfr).Decode(cfg)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to decode file: %s", filename)
		}
	}

	if err = validate.Struct(cfg); err != nil {
		return nil, errors.WithMessagef(err, "invalid configuration: %s", filename)
	}
	for _, name := range cfg.Off {
		if _, ok := Lookup(name); !ok {
			return nil, errors.Errorf("invalid configuration: %s: unknown algorithm: %q", filename, name)
		}
	}

	pin := cfg.Pin()
	if strings.HasPrefix(pin, "file:") {
		pinfile := pin[5:]

		// try to resolve pin file
		cwd, _ := os.Getwd()
		folders := []string{
			"",
			cwd,
			filepath.Dir(filename),
		}

		for _, folder := range folders {
			if resolved, err := resolve(pinfile, folder); err == nil {
				pinfile = resolved
				break
			}
			logger.KV(xlog.WARNING, "reason", "resolve", "pinfile", pinfile, "basedir", folder)
		}

		pb, err := os.ReadFile(pinfile)
		if err != nil {
			return nil, errors.WithMessagef(err, "unable to load PIN for configuration: %s", filename)
		}
		cfg.Pwd = strings.TrimSpace(string(pb))
	}

	return cfg, nil
}

// ParseAttributes returns a map of comma separated key=value pairs
func ParseAttributes(attributes string) map[string]string {
	res := make(map[string]string)
	for _, v := range strings.Split(attributes, ",") {
		if strings.TrimSpace(v) == "" {
			continue
		}
		key, val, _ := strings.Cut(v, "=")
		res[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return res
}

// resolve returns absolute file name relative to baseDir,
// or NewNotFound error.
func resolve(file string, baseDir string) (resolved string, err error) {
	if file == "" {
		return file, nil
	}
	if filepath.IsAbs(file) {
		resolved = file
	} else if baseDir != "" {
		resolved = filepath.Join(baseDir, file)
	}
	if _, err := os.Stat(resolved); os.IsNotExist(err) {
		return resolved, errors.WithMessagef(err, "not found: %v", resolved)
	}
	return resolved, nil
}
