package apl

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"smtpapl/pkg/config"
	"smtpapl/pkg/hashstore"
	"smtpapl/pkg/metrics"
	"smtpapl/pkg/redisclient"
)

type RedisConfig struct {
	// UniqueRecordKey separates deployments that share one Redis.
	UniqueRecordKey  string
	ConnectionString string
}

// RedisAPL keeps every tenant of one deployment as a field of a single hash.
//
// Transport failures are logged and reported to the caller as "not found",
// an empty list or a successful no-op. Only IsReady exposes connectivity.
type RedisAPL struct {
	cfg    RedisConfig
	client *redisclient.Client
	store  *hashstore.Store[AuthData]
	log    *zap.SugaredLogger
}

var _ APL = (*RedisAPL)(nil)

// NewRedisAPL fails before any network use when a setting is missing.
func NewRedisAPL(cfg RedisConfig, log *zap.SugaredLogger) (*RedisAPL, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if strings.TrimSpace(cfg.UniqueRecordKey) == "" {
		return nil, fmt.Errorf("%w: [%s] no unique record key provided for redis APL (UNIQUE_REDIS_RECORD_KEY)", ErrConfiguration, config.AppID)
	}
	if strings.TrimSpace(cfg.ConnectionString) == "" {
		return nil, fmt.Errorf("%w: [%s] missing REDIS_CONNECTION_STRING for redis APL", ErrConfiguration, config.AppID)
	}
	client, err := redisclient.New(cfg.ConnectionString, log)
	if err != nil {
		return nil, fmt.Errorf("%w: [%s] %v", ErrConfiguration, config.AppID, err)
	}
	log.Debugw("redis APL configured", "bucket", bucketKey(cfg.UniqueRecordKey), "addr", client.Addr())
	return &RedisAPL{
		cfg:    cfg,
		client: client,
		store:  hashstore.New[AuthData](client, log),
		log:    log,
	}, nil
}

func bucketKey(uniqueKey string) string {
	return config.AppID + ".auth:" + uniqueKey
}

// Bucket is the hash holding this deployment's records.
func (a *RedisAPL) Bucket() string { return bucketKey(a.cfg.UniqueRecordKey) }

func (a *RedisAPL) degraded(op string, err error) {
	metrics.RedisDegradedTotal.WithLabelValues(op).Inc()
	a.log.Errorw("redis APL "+op, "bucket", a.Bucket(), "err", err)
}

func (a *RedisAPL) Get(ctx context.Context, saleorAPIURL string) (*AuthData, error) {
	data, ok, err := a.store.Get(ctx, a.Bucket(), saleorAPIURL)
	if err != nil {
		a.degraded("get", err)
		return nil, nil
	}
	if !ok || data.SaleorAPIURL == "" {
		return nil, nil
	}
	return &data, nil
}

func (a *RedisAPL) Set(ctx context.Context, data AuthData) error {
	if err := a.store.Set(ctx, a.Bucket(), data.SaleorAPIURL, data); err != nil {
		a.degraded("set", err)
	}
	return nil
}

func (a *RedisAPL) Delete(ctx context.Context, saleorAPIURL string) error {
	if err := a.store.Delete(ctx, a.Bucket(), saleorAPIURL); err != nil {
		a.degraded("delete", err)
	}
	return nil
}

func (a *RedisAPL) GetAll(ctx context.Context) ([]AuthData, error) {
	all, err := a.store.GetAll(ctx, a.Bucket())
	if err != nil {
		a.degraded("getAll", err)
		return []AuthData{}, nil
	}
	out := all[:0]
	for _, d := range all {
		if d.SaleorAPIURL != "" {
			out = append(out, d)
		}
	}
	return out, nil
}

func (a *RedisAPL) IsReady(ctx context.Context) ReadyResult {
	if a.client.TestConnection(ctx) {
		return ready()
	}
	return notReady(fmt.Errorf("%w: [%s] redis hash client failed to connect to the redis server", ErrConnectivity, config.AppID))
}

func (a *RedisAPL) IsConfigured() ConfiguredResult {
	if strings.TrimSpace(a.cfg.UniqueRecordKey) != "" && strings.TrimSpace(a.cfg.ConnectionString) != "" {
		return configured()
	}
	return notConfigured(fmt.Errorf("%w: [%s] missing redis env variables for redis APL, provide REDIS_CONNECTION_STRING and UNIQUE_REDIS_RECORD_KEY", ErrConfiguration, config.AppID))
}
