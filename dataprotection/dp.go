// Package dataprotection seals data with keys derived on a crypto provider.
//
// The sealed blob is opaque to the caller, it carries everything
// Unprotect needs except the keys.
package dataprotection

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Provider seals and opens data blobs
type Provider interface {
	// Protect seals the data
	Protect(ctx context.Context, data []byte) ([]byte, error)
	// Unprotect opens a blob sealed by Protect,
	// an error is returned if the blob was modified
	Unprotect(ctx context.Context, protected []byte) ([]byte, error)
	// IsReady reports whether the keys are derived
	IsReady() bool
}

// ProtectObject seals the JSON form of v and returns it as unpadded base64url
func ProtectObject(ctx context.Context, p Provider, v any) (string, error) {
	js, err := json.Marshal(v)
	if err != nil {
		return "", errors.WithMessage(err, "failed to marshal")
	}
	sealed, err := p.Protect(ctx, js)
	if err != nil {
		return "", errors.WithMessage(err, "failed to protect")
	}
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// UnprotectObject opens the value produced by ProtectObject into v
func UnprotectObject(ctx context.Context, p Provider, protected string, v any) error {
	sealed, err := base64.RawURLEncoding.DecodeString(protected)
	if err != nil {
		return errors.WithMessage(err, "failed to base64 decode")
	}
	js, err := p.Unprotect(ctx, sealed)
	if err != nil {
		return errors.WithMessage(err, "failed to unprotect data")
	}

	if err = json.Unmarshal(js, v); err != nil {
		return errors.WithMessage(err, "failed to unmarshal")
	}
	return nil
}
