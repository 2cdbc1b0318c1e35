package apl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresAPL stores one row per tenant, scoped by the deployment record key.
type PostgresAPL struct {
	pool      *pgxpool.Pool
	recordKey string
	log       *zap.SugaredLogger
}

var _ APL = (*PostgresAPL)(nil)

func NewPostgresAPL(pool *pgxpool.Pool, recordKey string, log *zap.SugaredLogger) (*PostgresAPL, error) {
	if pool == nil {
		return nil, fmt.Errorf("%w: postgres APL needs a connection pool", ErrConfiguration)
	}
	if strings.TrimSpace(recordKey) == "" {
		return nil, fmt.Errorf("%w: postgres APL needs a record key", ErrConfiguration)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &PostgresAPL{pool: pool, recordKey: recordKey, log: log}, nil
}

// EnsureSchema creates the auth table if it does not exist. Safe to call repeatedly.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS apl_auth_data (
  record_key text NOT NULL,
  saleor_api_url text NOT NULL,
  data jsonb NOT NULL,
  updated_at timestamptz NOT NULL DEFAULT NOW(),
  PRIMARY KEY (record_key, saleor_api_url)
);
`)
	return err
}

func (p *PostgresAPL) Get(ctx context.Context, saleorAPIURL string) (*AuthData, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx, `SELECT data FROM apl_auth_data WHERE record_key=$1 AND saleor_api_url=$2`,
		p.recordKey, saleorAPIURL).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var d AuthData
	if err := json.Unmarshal(raw, &d); err != nil {
		p.log.Warnw("postgres APL: skipping undecodable row", "saleorApiUrl", saleorAPIURL, "err", err)
		return nil, nil
	}
	return &d, nil
}

func (p *PostgresAPL) Set(ctx context.Context, data AuthData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `INSERT INTO apl_auth_data(record_key, saleor_api_url, data)
	  VALUES ($1,$2,$3::jsonb)
	  ON CONFLICT (record_key, saleor_api_url) DO UPDATE SET data=EXCLUDED.data, updated_at=NOW()`,
		p.recordKey, data.SaleorAPIURL, string(b))
	return err
}

func (p *PostgresAPL) Delete(ctx context.Context, saleorAPIURL string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM apl_auth_data WHERE record_key=$1 AND saleor_api_url=$2`, p.recordKey, saleorAPIURL)
	return err
}

func (p *PostgresAPL) GetAll(ctx context.Context) ([]AuthData, error) {
	rows, err := p.pool.Query(ctx, `SELECT saleor_api_url, data FROM apl_auth_data WHERE record_key=$1`, p.recordKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []AuthData{}
	for rows.Next() {
		var url string
		var raw []byte
		if err := rows.Scan(&url, &raw); err != nil {
			return nil, err
		}
		var d AuthData
		if err := json.Unmarshal(raw, &d); err != nil {
			p.log.Warnw("postgres APL: skipping undecodable row", "saleorApiUrl", url, "err", err)
			continue
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *PostgresAPL) IsReady(ctx context.Context) ReadyResult {
	if err := p.pool.Ping(ctx); err != nil {
		return notReady(fmt.Errorf("%w: postgres: %v", ErrConnectivity, err))
	}
	return ready()
}

func (p *PostgresAPL) IsConfigured() ConfiguredResult {
	if p.pool == nil || p.recordKey == "" {
		return notConfigured(fmt.Errorf("%w: postgres APL is missing DATABASE_URL or record key", ErrConfiguration))
	}
	return configured()
}

// Close releases the pool.
func (p *PostgresAPL) Close() { p.pool.Close() }
