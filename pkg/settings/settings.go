package settings

import (
	"context"

	"smtpapl/pkg/repository"
)

const recordType = "AccountsAppSettings"

// AccountsAppSettings are the per-tenant app settings. Values are kept as
// strings to match what the dashboard submits.
type AccountsAppSettings struct {
	AutoConfirmAllAccounts string `json:"autoConfirmAllAccounts"`
}

func Default() AccountsAppSettings {
	return AccountsAppSettings{AutoConfirmAllAccounts: "false"}
}

// Repository keeps one AccountsAppSettings per Saleor API URL.
type Repository struct {
	records *repository.Repository
}

func NewRepository(records *repository.Repository) *Repository {
	return &Repository{records: records}
}

// Get returns nil when the tenant has no stored settings.
func (r *Repository) Get(ctx context.Context, saleorAPIURL string) (*AccountsAppSettings, error) {
	s, ok, err := repository.Get[AccountsAppSettings](ctx, r.records, recordType, saleorAPIURL)
	if err != nil || !ok {
		return nil, err
	}
	if s.AutoConfirmAllAccounts == "" {
		s.AutoConfirmAllAccounts = Default().AutoConfirmAllAccounts
	}
	return &s, nil
}

func (r *Repository) Set(ctx context.Context, saleorAPIURL string, s AccountsAppSettings) error {
	return r.records.Set(ctx, recordType, saleorAPIURL, s, repository.DefaultTTL)
}
