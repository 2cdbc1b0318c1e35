package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smtpapl/pkg/redisclient"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newRepo(t *testing.T) (*Repository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return New("redis://"+mr.Addr(), "deploy", nil), mr
}

func TestKeyFormat(t *testing.T) {
	r := New("", "deploy", nil)
	assert.Equal(t, "app.saleor.accounts.manager:deploy:accountsappsettings:https://shop.example.com",
		r.Key("AccountsAppSettings", "https://shop.example.com"))
}

func TestRoundTripAndDefaultTTL(t *testing.T) {
	r, mr := newRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "Widget", "1", record{Name: "a", Count: 2}, 0))
	key := r.Key("Widget", "1")
	assert.Equal(t, DefaultTTL, mr.TTL(key))

	got, ok, err := Get[record](ctx, r, "Widget", "1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, record{Name: "a", Count: 2}, got)

	require.NoError(t, r.Delete(ctx, "Widget", "1"))
	_, ok, err = Get[record](ctx, r, "Widget", "1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordExpires(t *testing.T) {
	r, mr := newRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "Widget", "1", record{Name: "a"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := Get[record](ctx, r, "Widget", "1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUndecodableIsAbsent(t *testing.T) {
	r, mr := newRepo(t)
	require.NoError(t, mr.Set(r.Key("Widget", "1"), "{not json"))

	_, ok, err := Get[record](context.Background(), r, "Widget", "1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNotConfigured(t *testing.T) {
	r := New("", "deploy", nil)
	ctx := context.Background()

	_, _, err := Get[record](ctx, r, "Widget", "1")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, r.Set(ctx, "Widget", "1", record{}, 0), ErrNotConfigured)
	assert.ErrorIs(t, r.Delete(ctx, "Widget", "1"), ErrNotConfigured)
}

func TestTransportErrorsPropagate(t *testing.T) {
	r, mr := newRepo(t)
	mr.Close()
	ctx := context.Background()

	_, _, err := Get[record](ctx, r, "Widget", "1")
	assert.Error(t, err)
	err = r.Set(ctx, "Widget", "1", record{}, 0)
	assert.ErrorIs(t, err, redisclient.ErrStorage)
	assert.Error(t, r.Delete(ctx, "Widget", "1"))
}
