// Package repository stores short-lived JSON records in the key-value store
// under "app.saleor.accounts.manager:<uniqueKey>:<recordType>:<recordId>".
//
// Unlike the Redis APL, every failure is logged and returned to the caller.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"smtpapl/pkg/config"
	"smtpapl/pkg/redisclient"
)

const (
	keyPrefix  = "app.saleor.accounts.manager"
	DefaultTTL = 24 * time.Hour
)

var ErrNotConfigured = errors.New("repository: redis connection failed, no connection string found")

type Repository struct {
	uniqueKey string
	client    *redisclient.Client
	log       *zap.SugaredLogger
}

// New never fails: a missing connection string is reported by every call.
func New(connectionString, uniqueKey string, log *zap.SugaredLogger) *Repository {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	r := &Repository{uniqueKey: uniqueKey, log: log}
	if strings.TrimSpace(connectionString) == "" {
		return r
	}
	c, err := redisclient.New(connectionString, log)
	if err != nil {
		log.Warnw("repository: invalid connection string", "err", err)
		return r
	}
	r.client = c
	return r
}

// Key builds the storage key; the record type is lowercased.
func (r *Repository) Key(recordType, recordID string) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, r.uniqueKey, strings.ToLower(recordType), recordID)
}

func (r *Repository) conn(op string) (*redisclient.Client, error) {
	if r.client == nil {
		r.log.Errorw("repository "+op, "err", ErrNotConfigured)
		return nil, fmt.Errorf("[%s] %w", config.AppID, ErrNotConfigured)
	}
	return r.client, nil
}

// Get decodes the record into T. Missing and undecodable records return ok=false.
func Get[T any](ctx context.Context, r *Repository, recordType, recordID string) (T, bool, error) {
	var zero T
	c, err := r.conn("get")
	if err != nil {
		return zero, false, err
	}
	key := r.Key(recordType, recordID)
	v, ok, err := redisclient.GetJSON[T](ctx, c, key)
	if err != nil {
		r.log.Errorw("repository get", "key", key, "err", err)
		return zero, false, fmt.Errorf("[%s] repository get %s: %w", config.AppID, key, err)
	}
	return v, ok, nil
}

// Set writes value with ttl; ttl <= 0 means DefaultTTL.
func (r *Repository) Set(ctx context.Context, recordType, recordID string, value any, ttl time.Duration) error {
	c, err := r.conn("set")
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	key := r.Key(recordType, recordID)
	if err := redisclient.SetJSON(ctx, c, key, value, ttl); err != nil {
		r.log.Errorw("repository set", "key", key, "err", err)
		return fmt.Errorf("[%s] repository set %s: %w", config.AppID, key, err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, recordType, recordID string) error {
	c, err := r.conn("delete")
	if err != nil {
		return err
	}
	key := r.Key(recordType, recordID)
	if err := c.Delete(ctx, key); err != nil {
		r.log.Errorw("repository delete", "key", key, "err", err)
		return fmt.Errorf("[%s] repository delete %s: %w", config.AppID, key, err)
	}
	return nil
}
