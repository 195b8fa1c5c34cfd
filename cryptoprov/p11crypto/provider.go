package p11crypto

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xcrypt/cryptoprov"
	"github.com/effective-security/xlog"
	"github.com/miekg/pkcs11"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xcrypt", "p11crypto")

// ProviderName specifies a provider name
const ProviderName = "PKCS11"

func init() {
	_ = cryptoprov.Register(ProviderName, Loader)
}

var (
	libsLock sync.Mutex
	// libs holds initialized libraries by path
	libs = map[string]*pkcs11.Ctx{}
)

// Provider implements cryptoprov.Provider on a PKCS#11 token
type Provider struct {
	ctx      *pkcs11.Ctx
	slot     *SlotTokenInfo
	model    string
	features []string
	disabled map[string]bool

	lock    sync.Mutex
	session pkcs11.SessionHandle
}

// Ensure compiles
var _ cryptoprov.Provider = (*Provider)(nil)

// Loader creates the provider from the configuration
func Loader(cfg cryptoprov.ProviderConfig) (cryptoprov.Provider, error) {
	p, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// New loads the PKCS#11 library, finds the token by serial or label
// and logs in with the configured PIN
func New(cfg cryptoprov.ProviderConfig) (*Provider, error) {
	if cfg.Path() == "" {
		return nil, errors.New("PKCS#11 library path not specified")
	}

	ctx, err := initLib(cfg.Path())
	if err != nil {
		return nil, err
	}

	attrs := cryptoprov.ParseAttributes(cfg.Attributes())
	if minVer := attrs["MinVersion"]; minVer != "" {
		checkVersion(ctx, minVer)
	}

	p := &Provider{
		ctx:      ctx,
		disabled: map[string]bool{},
	}

	p.slot, err = p.findSlot(cfg.TokenSerial(), cfg.TokenLabel())
	if err != nil {
		return nil, err
	}
	p.model = p.slot.model
	if cfg.Model() != "" {
		p.model = cfg.Model()
	}

	p.session, err = ctx.OpenSession(p.slot.id, pkcs11.CKF_SERIAL_SESSION)
	if err != nil {
		return nil, errors.WithMessagef(err, "OpenSession on slot %d", p.slot.id)
	}
	if cfg.Pin() != "" {
		err = ctx.Login(p.session, pkcs11.CKU_USER, cfg.Pin())
		if err != nil && !errors.Is(err, pkcs11.Error(pkcs11.CKR_USER_ALREADY_LOGGED_IN)) {
			_ = ctx.CloseSession(p.session)
			return nil, errors.WithMessagef(err, "Login on slot %d", p.slot.id)
		}
	}

	for _, d := range cfg.Disabled() {
		p.disabled[d] = true
	}
	p.features = cryptoprov.FilterFeatures(p.supported(), cfg.Disabled())

	logger.KV(xlog.INFO,
		"slot", p.CurrentSlotID(),
		"label", p.slot.label,
		"serial", p.slot.serial,
		"features", len(p.features))

	return p, nil
}

// initLib loads and initializes the library once per path
func initLib(path string) (*pkcs11.Ctx, error) {
	libsLock.Lock()
	defer libsLock.Unlock()

	if ctx, ok := libs[path]; ok {
		return ctx, nil
	}

	ctx := pkcs11.New(path)
	if ctx == nil {
		return nil, errors.Errorf("unable to load PKCS#11 library: %s", path)
	}
	err := ctx.Initialize()
	if err != nil && !errors.Is(err, pkcs11.Error(pkcs11.CKR_CRYPTOKI_ALREADY_INITIALIZED)) {
		ctx.Destroy()
		return nil, errors.WithMessagef(err, "unable to initialize PKCS#11 library: %s", path)
	}
	libs[path] = ctx
	return ctx, nil
}

// checkVersion logs a warning if the library is older than min,
// the library is still used.
func checkVersion(ctx *pkcs11.Ctx, min string) bool {
	info, err := ctx.GetInfo()
	if err != nil {
		logger.KV(xlog.WARNING, "reason", "GetInfo", "err", err.Error())
		return true
	}
	have := fmt.Sprintf("%d.%d", info.LibraryVersion.Major, info.LibraryVersion.Minor)
	if compareVersion(have, min) < 0 {
		logger.KV(xlog.WARNING, "reason", "backend_too_old", "need", min, "have", have)
		return false
	}
	return true
}

// compareVersion compares major.minor versions
func compareVersion(a, b string) int {
	var amaj, amin, bmaj, bmin int
	_, _ = fmt.Sscanf(strings.TrimSpace(a), "%d.%d", &amaj, &amin)
	_, _ = fmt.Sscanf(strings.TrimSpace(b), "%d.%d", &bmaj, &bmin)
	switch {
	case amaj != bmaj:
		return amaj - bmaj
	default:
		return amin - bmin
	}
}

// supported returns catalogue names with a mechanism available on the token
func (p *Provider) supported() []string {
	mechs, err := p.ctx.GetMechanismList(p.slot.id)
	if err != nil {
		logger.KV(xlog.WARNING, "reason", "GetMechanismList", "slot", p.slot.id, "err", err.Error())
		return nil
	}
	available := make(map[uint]bool, len(mechs))
	for _, m := range mechs {
		available[m.Mechanism] = true
	}

	var list []string
	for _, name := range cryptoprov.Features() {
		desc, _ := cryptoprov.Lookup(name)
		if m, ok := mechanismFor(desc); ok && available[m] {
			list = append(list, name)
		}
	}
	return list
}

// Name returns the provider name
func (p *Provider) Name() string {
	return ProviderName
}

// Model returns the token model
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
	desc, ok := cryptoprov.Lookup(name)
	if !ok || p.disabled[name] {
		return nil, cryptoprov.NotSupportedf("algorithm not supported: %q", name)
	}
	mech, ok := mechanismFor(desc)
	if !ok {
		return nil, cryptoprov.NotSupportedf("algorithm not supported: %q", name)
	}

	var ctx cryptoprov.Context
	var err error
	switch d := desc.(type) {
	case cryptoprov.DigestDescriptor:
		ctx, err = newHashContext(p, name, d, mech)
	case cryptoprov.CipherDescriptor:
		ctx, err = newCipherContext(p, name, d, mech)
	default:
		err = cryptoprov.NotSupportedf("algorithm not supported: %q", name)
	}
	if err != nil {
		return nil, err
	}
	return ctx, nil
}

// openSession opens a session for a context
func (p *Provider) openSession() (pkcs11.SessionHandle, error) {
	sh, err := p.ctx.OpenSession(p.slot.id, pkcs11.CKF_SERIAL_SESSION)
	if err != nil {
		return 0, errors.WithMessagef(err, "OpenSession on slot %d", p.slot.id)
	}
	return sh, nil
}

func (p *Provider) closeSession(sh pkcs11.SessionHandle) {
	if err := p.ctx.CloseSession(sh); err != nil {
		logger.KV(xlog.DEBUG, "reason", "CloseSession", "err", err.Error())
	}
}

// Close logs out and closes the provider session.
// The library stays initialized for other providers.
func (p *Provider) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.session == 0 {
		return nil
	}
	_ = p.ctx.Logout(p.session)
	err := p.ctx.CloseSession(p.session)
	p.session = 0
	return errors.WithStack(err)
}
