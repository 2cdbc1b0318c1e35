package settings

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smtpapl/pkg/repository"
)

func TestRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	records := repository.New("redis://"+mr.Addr(), "deploy", nil)
	repo := NewRepository(records)
	ctx := context.Background()
	url := "https://shop.example.com/graphql/"

	got, err := repo.Get(ctx, url)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Set(ctx, url, AccountsAppSettings{AutoConfirmAllAccounts: "true"}))
	assert.True(t, mr.Exists("app.saleor.accounts.manager:deploy:accountsappsettings:"+url))

	got, err = repo.Get(ctx, url)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "true", got.AutoConfirmAllAccounts)
}

func TestRepository_MissingFieldUsesDefault(t *testing.T) {
	mr := miniredis.RunT(t)
	records := repository.New("redis://"+mr.Addr(), "deploy", nil)
	require.NoError(t, mr.Set(records.Key(recordType, "u"), `{}`))

	got, err := NewRepository(records).Get(context.Background(), "u")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, Default(), *got)
}

func TestRepository_NotConfigured(t *testing.T) {
	repo := NewRepository(repository.New("", "deploy", nil))
	_, err := repo.Get(context.Background(), "u")
	assert.ErrorIs(t, err, repository.ErrNotConfigured)
}
