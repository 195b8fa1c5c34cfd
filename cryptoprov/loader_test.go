package cryptoprov_test

import (
	"testing"

	"github.com/effective-security/x/slices"
	"github.com/effective-security/xcrypt/cryptoprov"
	"github.com/effective-security/xcrypt/cryptoprov/gocrypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistered(t *testing.T) {
	l := cryptoprov.Registered()
	require.NotEmpty(t, l)
	assert.True(t, slices.ContainsString(l, gocrypto.ProviderName))

	err := cryptoprov.Register(gocrypto.ProviderName, gocrypto.Loader)
	assert.EqualError(t, err, "already registered: gocrypto")

	_, err = cryptoprov.Unregister("not_registered")
	assert.EqualError(t, err, "not registered: not_registered")
}

func TestRegisterUnregister(t *testing.T) {
	const name = "mocked"
	loader := func(_ cryptoprov.ProviderConfig) (cryptoprov.Provider, error) {
		m := &mockedProvider{}
		m.On("Name").Return(name)
		m.On("Model").Return("model123")
		return m, nil
	}

	require.NoError(t, cryptoprov.Register(name, loader))
	defer func() {
		_, _ = cryptoprov.Unregister(name)
	}()
	assert.True(t, slices.ContainsString(cryptoprov.Registered(), name))

	p, err := cryptoprov.LoadProviderWithConfig(cryptoprov.NewProviderConfig(name, ""))
	require.NoError(t, err)
	assert.Equal(t, name, p.Name())

	l, err := cryptoprov.Unregister(name)
	require.NoError(t, err)
	assert.NotNil(t, l)
	assert.False(t, slices.ContainsString(cryptoprov.Registered(), name))

	_, err = cryptoprov.LoadProviderWithConfig(cryptoprov.NewProviderConfig(name, ""))
	assert.EqualError(t, err, "provider not registered: mocked")
}

func TestLoadProvider(t *testing.T) {
	p, err := cryptoprov.LoadProvider("")
	require.NoError(t, err)
	assert.Equal(t, gocrypto.ProviderName, p.Name())

	p, err = cryptoprov.LoadProvider("testdata/gocrypto.yaml")
	require.NoError(t, err)
	assert.Equal(t, "yaml", p.Model())
	assert.Len(t, p.Features(), 21)

	_, err = cryptoprov.LoadProvider("testdata/unregistered.json")
	assert.EqualError(t, err, "provider not registered: unregistered")

	_, err = cryptoprov.LoadProvider("testdata/missing_provider.yaml")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	cp, err := cryptoprov.Load("", []string{"testdata/gocrypto.json", "testdata/gocrypto.yaml"})
	require.NoError(t, err)
	assert.Equal(t, gocrypto.ProviderName, cp.Default().Name())
	assert.Len(t, cp.Providers(), 3)

	p, err := cp.ByName(gocrypto.ProviderName, "json")
	require.NoError(t, err)
	assert.Equal(t, "json", p.Model())

	_, err = cryptoprov.Load("testdata/not_found.json", nil)
	assert.Error(t, err)

	_, err = cryptoprov.Load("", []string{"testdata/unregistered.json"})
	assert.Error(t, err)
}

func TestFilterFeatures(t *testing.T) {
	list := []string{"a", "b", "c"}
	assert.Equal(t, list, cryptoprov.FilterFeatures(list, nil))
	assert.Equal(t, []string{"a", "c"}, cryptoprov.FilterFeatures(list, []string{"b", "x"}))
	assert.Empty(t, cryptoprov.FilterFeatures(list, list))
}
