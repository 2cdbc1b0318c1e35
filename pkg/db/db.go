// pkg/db/db.go
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var ErrNoDatabaseURL = errors.New("DATABASE_URL not set")

// Connect opens a pool and pings it once.
func Connect(ctx context.Context, databaseURL string, log *zap.SugaredLogger) (*pgxpool.Pool, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, ErrNoDatabaseURL
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	log.Infow("postgres ready", "host", RedactDSN(databaseURL))
	return pool, nil
}

// RedactDSN hides credentials in a connection string for logging.
func RedactDSN(dsn string) string {
	if i := strings.LastIndex(dsn, "@"); i > 0 {
		scheme := ""
		if j := strings.Index(dsn, "://"); j > 0 && j < i {
			scheme = dsn[:j+3]
		}
		return scheme + "***@" + dsn[i+1:]
	}
	return dsn
}
