package cryptoprov_test

import (
	"testing"

	"github.com/effective-security/xcrypt/cryptoprov"
	"github.com/effective-security/xcrypt/cryptoprov/gocrypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockedProvider struct {
	mock.Mock
}

func (m *mockedProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockedProvider) Model() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockedProvider) Features() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *mockedProvider) CreateContext(name string) (cryptoprov.Context, error) {
	args := m.Called(name)
	c, _ := args.Get(0).(cryptoprov.Context)
	return c, args.Error(1)
}

func TestNew(t *testing.T) {
	_, err := cryptoprov.New(nil, nil)
	assert.EqualError(t, err, "default provider not specified")

	def := gocrypto.New(nil)
	c, err := cryptoprov.New(def, []cryptoprov.Provider{def})
	require.NoError(t, err)
	assert.Len(t, c.Providers(), 1)
	assert.Equal(t, def, c.Default())
	assert.Equal(t, gocrypto.ProviderName, c.Name())
	assert.Equal(t, gocrypto.DefaultModel, c.Model())

	assert.EqualError(t, c.Add(nil), "provider not specified")
}

func TestByName(t *testing.T) {
	mocked := &mockedProvider{}
	mocked.On("Name").Return("mocked")
	mocked.On("Model").Return("model123")

	c, err := cryptoprov.New(gocrypto.New(nil), []cryptoprov.Provider{mocked})
	require.NoError(t, err)

	// same name and model is not added twice
	require.NoError(t, c.Add(mocked))
	assert.Len(t, c.Providers(), 2)

	p, err := c.ByName("mocked", "")
	require.NoError(t, err)
	assert.Equal(t, mocked, p)

	p, err = c.ByName("mocked", "model123")
	require.NoError(t, err)
	assert.Equal(t, mocked, p)

	_, err = c.ByName("mocked", "other")
	assert.EqualError(t, err, `provider for "mocked" and model "other" not found`)
	_, err = c.ByName("NetHSM", "")
	assert.EqualError(t, err, `provider for "NetHSM" and model "" not found`)
}

func TestCryptoFeatures(t *testing.T) {
	mocked := &mockedProvider{}
	mocked.On("Name").Return("mocked")
	mocked.On("Model").Return("model123")
	mocked.On("Features").Return([]string{cryptoprov.AlgSHA256, cryptoprov.AlgMD4})

	def := gocrypto.New(cryptoprov.NewProviderConfig(gocrypto.ProviderName, ""))
	c, err := cryptoprov.New(mocked, []cryptoprov.Provider{def})
	require.NoError(t, err)

	list := c.Features()
	require.Len(t, list, 22)
	assert.Equal(t, cryptoprov.AlgSHA256, list[0])
	assert.Equal(t, cryptoprov.AlgMD4, list[1])
	assert.Equal(t, cryptoprov.AlgSHA1, list[2])
}

func TestCryptoCreateContext(t *testing.T) {
	mocked := &mockedProvider{}
	mocked.On("Name").Return("mocked")
	mocked.On("Model").Return("model123")
	mocked.On("CreateContext", cryptoprov.AlgSHA256).Return(nil, cryptoprov.NotSupportedf("not here"))
	mocked.On("CreateContext", cryptoprov.AlgMD5).Return(nil, cryptoprov.ConfigurationErrorf("token is locked"))
	mocked.On("CreateContext", mock.Anything).Return(nil, cryptoprov.NotSupportedf("not here"))

	c, err := cryptoprov.New(mocked, []cryptoprov.Provider{gocrypto.New(nil)})
	require.NoError(t, err)

	// falls back to the next provider
	h, err := cryptoprov.CreateHash(c, cryptoprov.AlgSHA256)
	require.NoError(t, err)
	assert.Equal(t, gocrypto.ProviderName, h.Provider())
	_ = h.Close()

	// other errors are returned
	_, err = c.CreateContext(cryptoprov.AlgMD5)
	require.Error(t, err)
	assert.True(t, cryptoprov.IsConfigurationError(err))

	_, err = c.CreateContext("sha3-256")
	require.Error(t, err)
	assert.True(t, cryptoprov.IsNotSupported(err))
	assert.EqualError(t, err, `algorithm not supported: "sha3-256"`)
}
