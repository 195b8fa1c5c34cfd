package cryptoprov

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

// Crypto exposes a default provider and a list of additional providers.
// Contexts are created by the first provider that supports the algorithm.
type Crypto struct {
	lock      sync.RWMutex
	provider  Provider
	providers []Provider
}

// Ensure compiles
var _ Provider = (*Crypto)(nil)

// New returns Crypto with the default provider and the additional ones
func New(defaultProvider Provider, providers []Provider) (*Crypto, error) {
	if defaultProvider == nil {
		return nil, errors.New("default provider not specified")
	}
	c := &Crypto{
		provider:  defaultProvider,
		providers: []Provider{defaultProvider},
	}
	for _, p := range providers {
		if err := c.Add(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add appends the provider, if a provider with the same name and model
// is not already present
func (c *Crypto) Add(p Provider) error {
	if p == nil {
		return errors.New("provider not specified")
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	for _, existing := range c.providers {
		if existing.Name() == p.Name() && existing.Model() == p.Model() {
			return nil
		}
	}
	c.providers = append(c.providers, p)
	return nil
}

// Default returns the default provider
func (c *Crypto) Default() Provider {
	return c.provider
}

// Providers returns the list of providers, starting with the default
func (c *Crypto) Providers() []Provider {
	c.lock.RLock()
	defer c.lock.RUnlock()

	list := make([]Provider, len(c.providers))
	copy(list, c.providers)
	return list
}

// ByName returns provider by name and model.
// Empty model matches any model.
func (c *Crypto) ByName(name, model string) (Provider, error) {
	for _, p := range c.Providers() {
		if p.Name() == name && (model == "" || p.Model() == model) {
			return p, nil
		}
	}
	return nil, errors.Errorf("provider for %q and model %q not found", name, model)
}

// Name returns the name of the default provider
func (c *Crypto) Name() string {
	return c.provider.Name()
}

// Model returns the model of the default provider
func (c *Crypto) Model() string {
	return c.provider.Model()
}

// Features returns the union of features of all providers,
// in the order of providers
func (c *Crypto) Features() []string {
	seen := map[string]bool{}
	var list []string
	for _, p := range c.Providers() {
		for _, f := range p.Features() {
			if !seen[f] {
				seen[f] = true
				list = append(list, f)
			}
		}
	}
	return list
}

// CreateContext returns a context from the first provider supporting the name
func (c *Crypto) CreateContext(name string) (Context, error) {
	for _, p := range c.Providers() {
		ctx, err := p.CreateContext(name)
		if err == nil {
			return ctx, nil
		}
		if !IsNotSupported(err) {
			return nil, err
		}
		logger.KV(xlog.DEBUG, "reason", "not_supported", "provider", p.Name(), "alg", name)
	}
	return nil, NotSupportedf("algorithm not supported: %q", name)
}
