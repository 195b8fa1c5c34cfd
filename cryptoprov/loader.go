package cryptoprov

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/slices"
)

// DefaultProviderName is the provider loaded when no configuration is given
const DefaultProviderName = "gocrypto"

// ProviderLoader is interface for loading provider by name
type ProviderLoader func(cfg ProviderConfig) (Provider, error)

var (
	lockLoaders sync.RWMutex
	loaders     = make(map[string]ProviderLoader)
)

// Register provider loader by name
func Register(name string, loader ProviderLoader) error {
	lockLoaders.Lock()
	defer lockLoaders.Unlock()

	if _, ok := loaders[name]; ok {
		return errors.Errorf("already registered: %s", name)
	}

	loaders[name] = loader

	return nil
}

// Unregister provider loader by name
func Unregister(name string) (ProviderLoader, error) {
	lockLoaders.Lock()
	defer lockLoaders.Unlock()

	if loader, ok := loaders[name]; ok {
		delete(loaders, name)
		return loader, nil
	}

	return nil, errors.Errorf("not registered: %s", name)
}

// Registered returns registered providers
func Registered() []string {
	lockLoaders.RLock()
	defer lockLoaders.RUnlock()

	list := []string{}
	for m := range loaders {
		list = append(list, m)
	}
	sort.Strings(list)
	return list
}

func loaderFor(name string) (ProviderLoader, error) {
	lockLoaders.RLock()
	defer lockLoaders.RUnlock()

	loader, ok := loaders[name]
	if !ok {
		return nil, errors.Errorf("provider not registered: %s", name)
	}
	return loader, nil
}

// LoadProviderWithConfig loads a single provider with the configuration
func LoadProviderWithConfig(cfg ProviderConfig) (Provider, error) {
	loader, err := loaderFor(cfg.Provider())
	if err != nil {
		return nil, err
	}

	prov, err := loader(cfg)
	if err != nil {
		return nil, err
	}

	return prov, nil
}

// LoadProvider load a single provider.
// Empty configLocation loads the default provider.
func LoadProvider(configLocation string) (Provider, error) {
	if configLocation == "" {
		return LoadProviderWithConfig(NewProviderConfig(DefaultProviderName, ""))
	}

	cfg, err := LoadProviderConfig(configLocation)
	if err != nil {
		return nil, err
	}
	return LoadProviderWithConfig(cfg)
}

// Load returns Crypto with loaded providers from the given config locations
func Load(defaultConfig string, providersConfigs []string) (*Crypto, error) {
	p, err := LoadProvider(defaultConfig)
	if err != nil {
		return nil, err
	}

	c, err := New(p, nil)
	if err != nil {
		return nil, err
	}
	for _, configLocation := range providersConfigs {
		p, err := LoadProvider(configLocation)
		if err != nil {
			return nil, err
		}
		err = c.Add(p)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// FilterFeatures returns the list without the disabled names
func FilterFeatures(list []string, disabled []string) []string {
	if len(disabled) == 0 {
		return list
	}
	res := make([]string, 0, len(list))
	for _, f := range list {
		if !slices.ContainsString(disabled, f) {
			res = append(res, f)
		}
	}
	return res
}
