// Package hashstore stores typed values as JSON fields of a Redis hash.
//
// Reads are lossy: a field that is JSON null or no longer decodes into T is reported as
// absent (Get) or skipped (GetAll, GetAllAsMap) instead of failing the read.
// Transport failures are always returned.
package hashstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Hasher is the subset of redisclient.Client the store needs.
type Hasher interface {
	HGet(ctx context.Context, bucket, field string) (string, bool, error)
	HSet(ctx context.Context, bucket, field, value string) error
	HDelete(ctx context.Context, bucket, field string) error
	HGetAll(ctx context.Context, bucket string) (map[string]string, error)
}

type Store[T any] struct {
	client Hasher
	log    *zap.SugaredLogger
}

func New[T any](client Hasher, log *zap.SugaredLogger) *Store[T] {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store[T]{client: client, log: log}
}

// Get returns (value, true, nil) when the field exists and decodes.
func (s *Store[T]) Get(ctx context.Context, bucket, field string) (T, bool, error) {
	var zero T
	raw, ok, err := s.client.HGet(ctx, bucket, field)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}
	v, ok := s.decode(bucket, field, raw)
	return v, ok, nil
}

func (s *Store[T]) Set(ctx context.Context, bucket, field string, value T) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", bucket, field, err)
	}
	return s.client.HSet(ctx, bucket, field, string(b))
}

// Delete removes field. Removing a missing field is not an error.
func (s *Store[T]) Delete(ctx context.Context, bucket, field string) error {
	return s.client.HDelete(ctx, bucket, field)
}

// GetAll returns every decodable value in bucket, in no particular order.
func (s *Store[T]) GetAll(ctx context.Context, bucket string) ([]T, error) {
	m, err := s.GetAllAsMap(ctx, bucket)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out, nil
}

// GetAllAsMap returns every decodable value in bucket keyed by field.
func (s *Store[T]) GetAllAsMap(ctx context.Context, bucket string) (map[string]T, error) {
	rows, err := s.client.HGetAll(ctx, bucket)
	if err != nil {
		return nil, err
	}
	out := make(map[string]T, len(rows))
	for field, raw := range rows {
		if v, ok := s.decode(bucket, field, raw); ok {
			out[field] = v
		}
	}
	return out, nil
}

func (s *Store[T]) decode(bucket, field, raw string) (T, bool) {
	var v T
	// null unmarshals into the zero value without error; it holds no record.
	if strings.TrimSpace(raw) == "null" {
		s.log.Warnw("hashstore: skipping null field", "bucket", bucket, "field", field)
		return v, false
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		s.log.Warnw("hashstore: skipping undecodable field", "bucket", bucket, "field", field, "err", err)
		var zero T
		return zero, false
	}
	return v, true
}
