package gocrypto

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"go/version"
	"hash"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xcrypt/cryptoprov"
	"github.com/effective-security/xlog"
	"golang.org/x/crypto/md4"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/ripemd160"
)

// MinVersion is the minimum backend version the provider is tested with
const MinVersion = "go1.22"

var (
	initOnce       sync.Once
	initialized    atomic.Bool
	backendVersion string
)

// backend status
var (
	errAlgorithm        = errors.Mark(errors.New("invalid algorithm"), cryptoprov.ErrNotSupported)
	errInvalidKeyLength = errors.Mark(errors.New("invalid key length"), cryptoprov.ErrConfiguration)
	errInvalidIVLength  = errors.Mark(errors.New("invalid IV length"), cryptoprov.ErrConfiguration)
	errInvalidValue     = errors.Mark(errors.New("invalid value"), cryptoprov.ErrConfiguration)
	errInvalidLength    = errors.New("invalid length")
	errMissingKey       = errors.New("missing key")
	errNotOpened        = errors.New("handle is not open")
	errWeakKey          = errors.Mark(errors.New("weak key"), cryptoprov.ErrWeakKey)
)

// Init initializes the backend once per process.
// Calls after the first one are no-op.
func Init() {
	initOnce.Do(func() {
		backendVersion = runtime.Version()
		checkVersion(MinVersion)
		initialized.Store(true)
		logger.KV(xlog.DEBUG, "status", "initialized", "version", backendVersion)
	})
}

// IsInitialized returns true if the backend was initialized
func IsInitialized() bool {
	return initialized.Load()
}

// Version returns the backend version
func Version() string {
	Init()
	return backendVersion
}

// checkVersion logs a warning if the backend is older than min,
// the backend is still used.
func checkVersion(min string) bool {
	have := runtime.Version()
	if !version.IsValid(have) || !version.IsValid(min) {
		// development builds do not report a comparable version
		return true
	}
	if version.Compare(have, min) < 0 {
		logger.KV(xlog.WARNING, "reason", "backend_too_old", "need", min, "have", have)
		return false
	}
	return true
}

var digestFactories = map[cryptoprov.DigestKind]func() hash.Hash{
	cryptoprov.SHA1:      sha1.New,
	cryptoprov.MD4:       md4.New,
	cryptoprov.MD5:       md5.New,
	cryptoprov.RIPEMD160: ripemd160.New,
	cryptoprov.SHA256:    sha256.New,
	cryptoprov.SHA384:    sha512.New384,
	cryptoprov.SHA512:    sha512.New,
}

// digestEngine is an open digest handle
type digestEngine struct {
	kind cryptoprov.DigestKind
	h    hash.Hash
}

// mdOpen opens a digest handle for the kind
func mdOpen(kind cryptoprov.DigestKind) (*digestEngine, error) {
	f, ok := digestFactories[kind]
	if !ok {
		return nil, errors.WithMessagef(errAlgorithm, "digest %d", kind)
	}
	return &digestEngine{kind: kind, h: f()}, nil
}

// mdAlgoLen returns the digest length for the kind
func mdAlgoLen(kind cryptoprov.DigestKind) int {
	f, ok := digestFactories[kind]
	if !ok {
		return 0
	}
	return f().Size()
}

func (e *digestEngine) write(p []byte) error {
	if e.h == nil {
		return errNotOpened
	}
	_, _ = e.h.Write(p)
	return nil
}

// read returns the digest without changing the accumulated state
func (e *digestEngine) read() ([]byte, error) {
	if e.h == nil {
		return nil, errNotOpened
	}
	return e.h.Sum(nil), nil
}

func (e *digestEngine) reset() error {
	if e.h == nil {
		return errNotOpened
	}
	e.h.Reset()
	return nil
}

func (e *digestEngine) close() {
	e.h = nil
}

// pbkdf2Derive derives keyLen bytes with PBKDF2 and HMAC over the prf digest
func pbkdf2Derive(prf cryptoprov.DigestKind, secret, salt []byte, iterations, keyLen int) ([]byte, error) {
	f, ok := digestFactories[prf]
	if !ok {
		return nil, errors.WithMessagef(errAlgorithm, "digest %d", prf)
	}
	if iterations <= 0 {
		return nil, errors.WithMessagef(errInvalidValue, "iterations: %d", iterations)
	}
	if keyLen <= 0 {
		return nil, errors.WithMessagef(errInvalidValue, "key length: %d", keyLen)
	}
	return pbkdf2.Key(secret, salt, iterations, keyLen, f), nil
}
