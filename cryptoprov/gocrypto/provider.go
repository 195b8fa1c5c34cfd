package gocrypto

import (
	"github.com/effective-security/x/values"
	"github.com/effective-security/xcrypt/cryptoprov"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xcrypt", "gocrypto")

// ProviderName specifies a provider name
const ProviderName = cryptoprov.DefaultProviderName

// DefaultModel is the model reported when the configuration does not specify one
const DefaultModel = "go"

func init() {
	_ = cryptoprov.Register(ProviderName, Loader)
}

// Provider implements cryptoprov.Provider on the Go crypto packages
type Provider struct {
	model    string
	features []string
	disabled map[string]bool
}

// Ensure compiles
var _ cryptoprov.Provider = (*Provider)(nil)

// Loader creates the provider from the configuration
func Loader(cfg cryptoprov.ProviderConfig) (cryptoprov.Provider, error) {
	return New(cfg), nil
}

// New returns the provider.
// The configuration may be nil.
func New(cfg cryptoprov.ProviderConfig) *Provider {
	Init()

	var model string
	var disabled []string
	if cfg != nil {
		model = cfg.Model()
		disabled = cfg.Disabled()
		if minVer := cryptoprov.ParseAttributes(cfg.Attributes())["MinVersion"]; minVer != "" {
			checkVersion(minVer)
		}
	}

	p := &Provider{
		model:    values.Select(model != "", model, DefaultModel),
		features: cryptoprov.FilterFeatures(cryptoprov.Features(), disabled),
		disabled: make(map[string]bool, len(disabled)),
	}
	for _, d := range disabled {
		p.disabled[d] = true
	}
	return p
}

// Name returns the provider name
func (p *Provider) Name() string {
	return ProviderName
}

// Model returns the backend model
func (p *Provider) Model() string {
	return p.model
}

// Features returns supported algorithm names in the catalogue order
func (p *Provider) Features() []string {
	list := make([]string, len(p.features))
	copy(list, p.features)
	return list
}

// CreateContext returns a new context for the algorithm
func (p *Provider) CreateContext(name string) (cryptoprov.Context, error) {
	Init()

	desc, ok := cryptoprov.Lookup(name)
	if !ok || p.disabled[name] {
		return nil, cryptoprov.NotSupportedf("algorithm not supported: %q", name)
	}

	var ctx cryptoprov.Context
	var err error
	switch d := desc.(type) {
	case cryptoprov.DigestDescriptor:
		ctx, err = newHashContext(name, d)
	case cryptoprov.CipherDescriptor:
		ctx, err = newCipherContext(name, d)
	case cryptoprov.KDFDescriptor:
		ctx, err = newKDFContext(name, d)
	default:
		err = cryptoprov.NotSupportedf("algorithm not supported: %q", name)
	}
	if err != nil {
		return nil, err
	}
	return ctx, nil
}
