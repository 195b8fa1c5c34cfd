package cryptoprov

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xcrypt", "cryptoprov")

var (
	// ErrNotSupported is returned when a provider does not implement
	// the requested algorithm. It is expected and recoverable.
	ErrNotSupported = errors.New("not supported")

	// ErrConfiguration is returned for an invalid key, IV, parameter,
	// or an operation invoked out of order.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrBackendFailure is returned when the underlying primitive failed.
	ErrBackendFailure = errors.New("backend failure")

	// ErrWeakKey is the advisory a backend reports for a structurally weak key.
	// CheckError never returns it.
	ErrWeakKey = errors.New("weak key")
)

// IsNotSupported returns true if the error is or wraps ErrNotSupported
func IsNotSupported(err error) bool {
	return errors.Is(err, ErrNotSupported)
}

// IsConfigurationError returns true if the error is or wraps ErrConfiguration
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsBackendFailure returns true if the error is or wraps ErrBackendFailure
func IsBackendFailure(err error) bool {
	return errors.Is(err, ErrBackendFailure)
}

// IsWeakKey returns true if the error is or wraps ErrWeakKey
func IsWeakKey(err error) bool {
	return errors.Is(err, ErrWeakKey)
}

// NotSupportedf returns ErrNotSupported with a formatted message
func NotSupportedf(format string, args ...any) error {
	return errors.Mark(errors.Errorf(format, args...), ErrNotSupported)
}

// ConfigurationErrorf returns ErrConfiguration with a formatted message
func ConfigurationErrorf(format string, args ...any) error {
	return errors.Mark(errors.Errorf(format, args...), ErrConfiguration)
}

// CheckError classifies the status returned by a backend call.
//
// A weak key advisory is logged and reported as success.
// A configuration error is returned as is, any other error
// is returned marked as ErrBackendFailure.
func CheckError(label string, err error) error {
	if err == nil {
		return nil
	}
	if IsWeakKey(err) {
		logger.KV(xlog.NOTICE, "reason", "weak_key", "call", label, "err", err.Error())
		return nil
	}

	logger.KV(xlog.ERROR, "reason", "failure", "call", label, "err", err.Error())

	if IsConfigurationError(err) || IsNotSupported(err) {
		return errors.WithMessage(err, label)
	}
	return errors.Mark(errors.WithMessage(err, label), ErrBackendFailure)
}
