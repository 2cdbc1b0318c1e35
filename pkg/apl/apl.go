// Package apl persists Saleor auth data per tenant. A tenant is identified by
// its Saleor API URL; every backend implements APL and one is chosen at boot
// by Select.
package apl

import (
	"context"
	"errors"
)

var (
	// ErrConfiguration means required settings are absent. It is fatal at boot.
	ErrConfiguration = errors.New("apl: invalid configuration")
	// ErrConnectivity means the backing store could not be reached.
	ErrConnectivity = errors.New("apl: backend unreachable")
	// ErrNotSupported means the backend cannot perform the operation.
	ErrNotSupported = errors.New("apl: operation not supported by backend")
)

// AuthData is the credential record of one Saleor instance. It is always
// written whole; there is no partial update.
type AuthData struct {
	SaleorAPIURL string `json:"saleorApiUrl" yaml:"saleorApiUrl"`
	Token        string `json:"token" yaml:"token"`
	AppID        string `json:"appId" yaml:"appId"`
	JWKS         string `json:"jwks,omitempty" yaml:"jwks,omitempty"`
	Domain       string `json:"domain,omitempty" yaml:"domain,omitempty"`
}

type ReadyResult struct {
	Ready bool
	Err   error
}

type ConfiguredResult struct {
	Configured bool
	Err        error
}

// APL is the contract the host integration depends on.
type APL interface {
	// Get returns nil, nil when no record exists for saleorAPIURL.
	Get(ctx context.Context, saleorAPIURL string) (*AuthData, error)
	// Set creates or fully replaces the record keyed by data.SaleorAPIURL.
	Set(ctx context.Context, data AuthData) error
	// Delete is idempotent.
	Delete(ctx context.Context, saleorAPIURL string) error
	GetAll(ctx context.Context) ([]AuthData, error)
	// IsReady checks the backend is reachable and never panics.
	IsReady(ctx context.Context) ReadyResult
	// IsConfigured inspects settings only; it does no I/O.
	IsConfigured() ConfiguredResult
}

func ready() ReadyResult { return ReadyResult{Ready: true} }

func notReady(err error) ReadyResult { return ReadyResult{Ready: false, Err: err} }

func configured() ConfiguredResult { return ConfiguredResult{Configured: true} }

func notConfigured(err error) ConfiguredResult {
	return ConfiguredResult{Configured: false, Err: err}
}
