package apl

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smtpapl/pkg/config"
)

func TestSelect_RedisWithoutSettingsFallsBackToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	for _, cfg := range []config.Config{
		{APL: "redis", FileAPLPath: path},
		{APL: "redis", FileAPLPath: path, RedisConnectionString: "redis://localhost:6379"},
		{APL: "redis", FileAPLPath: path, UniqueRecordKey: "k"},
		{APL: "redis", FileAPLPath: path, RedisConnectionString: "redis://localhost:6379", UniqueRecordKey: "  "},
		{APL: "redis", FileAPLPath: path, RedisConnectionString: " \t", UniqueRecordKey: "k"},
	} {
		a, backend, err := Select(context.Background(), cfg, Deps{})
		require.NoError(t, err)
		assert.Equal(t, BackendFile, backend)
		f, ok := a.(*FileAPL)
		require.True(t, ok)
		assert.Equal(t, path, f.Path())
	}
}

func TestSelect_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Config{APL: "redis", RedisConnectionString: "redis://" + mr.Addr(), UniqueRecordKey: "k"}
	a, backend, err := Select(context.Background(), cfg, Deps{})
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, backend)
	r, ok := a.(*RedisAPL)
	require.True(t, ok)
	assert.Equal(t, "app.saleor.smtp.auth:k", r.Bucket())
	assert.True(t, a.IsReady(context.Background()).Ready)
}

func TestSelect_File(t *testing.T) {
	a, backend, err := Select(context.Background(), config.Config{APL: "file", FileAPLPath: "x.json"}, Deps{})
	require.NoError(t, err)
	assert.Equal(t, BackendFile, backend)
	assert.IsType(t, &FileAPL{}, a)
}

func TestSelect_UpstashWithoutSettingsIsNotFatal(t *testing.T) {
	a, backend, err := Select(context.Background(), config.Config{APL: "upstash"}, Deps{})
	require.NoError(t, err)
	assert.Equal(t, BackendUpstash, backend)
	res := a.IsConfigured()
	assert.False(t, res.Configured)
	assert.ErrorIs(t, res.Err, ErrConfiguration)
}

func TestSelect_SaleorCloudWithoutTokenIsFatal(t *testing.T) {
	a, _, err := Select(context.Background(), config.Config{APL: "saleor-cloud", RestAPLEndpoint: "https://apl.example.com"}, Deps{})
	assert.Nil(t, a)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestSelect_SaleorCloud(t *testing.T) {
	srv := fakeCloud(t, "secret")
	cfg := config.Config{APL: "saleor-cloud", RestAPLEndpoint: srv.URL + "/apl", RestAPLToken: "secret"}
	a, backend, err := Select(context.Background(), cfg, Deps{HTTP: srv.Client()})
	require.NoError(t, err)
	assert.Equal(t, BackendSaleorCloud, backend)
	assert.True(t, a.IsReady(context.Background()).Ready)
}

func TestSelect_PostgresWithoutURLIsFatal(t *testing.T) {
	_, _, err := Select(context.Background(), config.Config{APL: "postgres"}, Deps{})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestSelect_UnknownValueIsFatal(t *testing.T) {
	for _, v := range []string{"", "vercel", "REDIS"} {
		_, _, err := Select(context.Background(), config.Config{APL: v}, Deps{})
		assert.ErrorIs(t, err, ErrConfiguration, v)
		assert.Contains(t, err.Error(), "invalid APL config")
	}
}
