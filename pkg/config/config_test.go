package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APL", "APP_ENV", "DEBUG", "APL_HTTP_ADDR", "FILE_APL_PATH", "APL_HTTP_TIMEOUT_SEC"} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}

	c := Load()
	assert.Equal(t, "file", c.APL)
	assert.Equal(t, "dev", c.Env)
	assert.False(t, c.Debug)
	assert.False(t, c.Prod())
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, ".saleor-app-auth.json", c.FileAPLPath)
	assert.Equal(t, 10*time.Second, c.HTTPTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APL", "redis")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("DEBUG", "1")
	t.Setenv("REDIS_CONNECTION_STRING", "redis://localhost:6379/0")
	t.Setenv("UNIQUE_REDIS_RECORD_KEY", "staging")
	t.Setenv("APL_HTTP_TIMEOUT_SEC", "3")

	c := Load()
	assert.Equal(t, "redis", c.APL)
	assert.True(t, c.Prod())
	assert.True(t, c.Debug)
	assert.Equal(t, "redis://localhost:6379/0", c.RedisConnectionString)
	assert.Equal(t, "staging", c.UniqueRecordKey)
	assert.Equal(t, 3*time.Second, c.HTTPTimeout)
}

func TestEnvHelpers_BadValuesFallBack(t *testing.T) {
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "soon")
	assert.True(t, envBool("X_BOOL", true))
	assert.Equal(t, time.Duration(7), envDur("X_DUR", 7))
}
