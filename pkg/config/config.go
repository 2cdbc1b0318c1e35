// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppID namespaces every key this app writes to shared stores.
const AppID = "app.saleor.smtp"

type Config struct {
	Env      string
	Debug    bool
	HTTPAddr string

	// APL selector: redis | file | upstash | saleor-cloud | postgres
	APL string

	// Redis hash-store backend (also used by the generic record repository)
	RedisConnectionString string
	UniqueRecordKey       string

	// Remote HTTP backends
	RestAPLEndpoint string
	RestAPLToken    string
	UpstashURL      string
	UpstashToken    string
	HTTPTimeout     time.Duration

	FileAPLPath string
	DatabaseURL string
	SeedFile    string

	// Admin surface auth
	AdminIssuer   string
	AdminAudience string
	AdminJWKSURL  string
	AdminToken    string

	OTLPEndpoint string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:                   env("APP_ENV", "dev"),
		Debug:                 envBool("DEBUG", false),
		HTTPAddr:              env("APL_HTTP_ADDR", ":8080"),
		APL:                   env("APL", "file"),
		RedisConnectionString: env("REDIS_CONNECTION_STRING", ""),
		UniqueRecordKey:       env("UNIQUE_REDIS_RECORD_KEY", ""),
		RestAPLEndpoint:       env("REST_APL_ENDPOINT", ""),
		RestAPLToken:          env("REST_APL_TOKEN", ""),
		UpstashURL:            env("UPSTASH_URL", ""),
		UpstashToken:          env("UPSTASH_TOKEN", ""),
		HTTPTimeout:           envDur("APL_HTTP_TIMEOUT_SEC", 10) * time.Second,
		FileAPLPath:           env("FILE_APL_PATH", ".saleor-app-auth.json"),
		DatabaseURL:           env("DATABASE_URL", ""),
		SeedFile:              env("APL_SEED_FILE", ""),
		AdminIssuer:           env("ADMIN_OIDC_ISSUER", ""),
		AdminAudience:         env("ADMIN_OIDC_AUDIENCE", ""),
		AdminJWKSURL:          env("ADMIN_JWKS_URL", ""),
		AdminToken:            env("ADMIN_TOKEN", ""),
		OTLPEndpoint:          env("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
	if cfg.AdminJWKSURL == "" && cfg.AdminToken == "" {
		log.Println("[WARN] neither ADMIN_JWKS_URL nor ADMIN_TOKEN set, admin endpoints will reject all requests")
	}
	return cfg
}

// Prod reports whether the process runs with production settings.
func (c Config) Prod() bool { return c.Env == "prod" }

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	}
	return def
}

func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return time.Duration(def)
		}
		return time.Duration(i)
	}
	return time.Duration(def)
}
