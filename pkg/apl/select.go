package apl

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"smtpapl/pkg/config"
	"smtpapl/pkg/db"
)

// Backend names accepted in the APL env var.
const (
	BackendRedis       = "redis"
	BackendFile        = "file"
	BackendUpstash     = "upstash"
	BackendSaleorCloud = "saleor-cloud"
	BackendPostgres    = "postgres"
)

type Deps struct {
	Log *zap.SugaredLogger
	// HTTP is used by the REST backends. Nil builds a traced client with cfg.HTTPTimeout.
	HTTP *http.Client
}

// Select builds the APL named by cfg.APL and returns it with the backend that
// was actually chosen. A redis selection with missing settings falls back to
// the file backend; the remote and postgres backends fail instead.
func Select(ctx context.Context, cfg config.Config, deps Deps) (APL, string, error) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	switch cfg.APL {
	case BackendRedis:
		if strings.TrimSpace(cfg.RedisConnectionString) == "" || strings.TrimSpace(cfg.UniqueRecordKey) == "" {
			log.Warnw("redis APL selected without REDIS_CONNECTION_STRING or UNIQUE_REDIS_RECORD_KEY, using file APL",
				"path", cfg.FileAPLPath)
			return NewFileAPL(cfg.FileAPLPath), BackendFile, nil
		}
		a, err := NewRedisAPL(RedisConfig{UniqueRecordKey: cfg.UniqueRecordKey, ConnectionString: cfg.RedisConnectionString}, log)
		if err != nil {
			return nil, "", err
		}
		return a, BackendRedis, nil

	case BackendFile:
		return NewFileAPL(cfg.FileAPLPath), BackendFile, nil

	case BackendUpstash:
		return NewUpstashAPL(UpstashConfig{URL: cfg.UpstashURL, Token: cfg.UpstashToken}, httpClient(cfg, deps)), BackendUpstash, nil

	case BackendSaleorCloud:
		if cfg.RestAPLEndpoint == "" || cfg.RestAPLToken == "" {
			return nil, "", fmt.Errorf("%w: rest APL is not configured, missing env variables, check .env.example", ErrConfiguration)
		}
		a, err := NewSaleorCloudAPL(SaleorCloudConfig{ResourceURL: cfg.RestAPLEndpoint, Token: cfg.RestAPLToken}, httpClient(cfg, deps))
		if err != nil {
			return nil, "", err
		}
		return a, BackendSaleorCloud, nil

	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, "", fmt.Errorf("%w: postgres APL requires DATABASE_URL", ErrConfiguration)
		}
		pool, err := db.Connect(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrConnectivity, err)
		}
		if err := EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, "", fmt.Errorf("postgres APL schema: %w", err)
		}
		key := cfg.UniqueRecordKey
		if key == "" {
			key = config.AppID
		}
		a, err := NewPostgresAPL(pool, key, log)
		if err != nil {
			pool.Close()
			return nil, "", err
		}
		return a, BackendPostgres, nil
	}
	return nil, "", fmt.Errorf("%w: invalid APL config %q", ErrConfiguration, cfg.APL)
}

func httpClient(cfg config.Config, deps Deps) *http.Client {
	if deps.HTTP != nil {
		return deps.HTTP
	}
	return &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
