// Package redisclient talks to Redis one connection at a time: every call dials,
// runs a single command and closes the connection before returning.
package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"smtpapl/pkg/metrics"
)

var (
	ErrMissingConnectionString = errors.New("redis connection string is missing")
	ErrStorage                 = errors.New("redis storage error")
)

// pong is the only PING reply accepted as a healthy connection.
const pong = "PONG"

type Client struct {
	url  string
	addr string
	log  *zap.SugaredLogger
}

// New validates the connection string without dialing.
func New(connectionString string, log *zap.SugaredLogger) (*Client, error) {
	if strings.TrimSpace(connectionString) == "" {
		return nil, ErrMissingConnectionString
	}
	opts, err := redis.ParseURL(connectionString)
	if err != nil {
		return nil, fmt.Errorf("redis parse: %w", err)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log.Debugw("redis client configured", "addr", opts.Addr, "db", opts.DB)
	return &Client{url: connectionString, addr: opts.Addr, log: log}, nil
}

// Addr is the host:port taken from the connection string.
func (c *Client) Addr() string { return c.addr }

// options builds single-connection settings. MaxRetries -1 disables
// go-redis retries so each call sends its command at most once.
func (c *Client) options() (*redis.Options, error) {
	opts, err := redis.ParseURL(c.url)
	if err != nil {
		return nil, fmt.Errorf("redis parse: %w", err)
	}
	opts.PoolSize = 1
	opts.MaxRetries = -1
	return opts, nil
}

// withConn opens a dedicated connection for fn and always closes it.
func (c *Client) withConn(cmd string, fn func(rdb *redis.Client) error) error {
	opts, err := c.options()
	if err != nil {
		return err
	}
	rdb := redis.NewClient(opts)
	metrics.RedisConnectionsTotal.Inc()
	defer func() {
		if cerr := rdb.Close(); cerr != nil {
			c.log.Warnw("redis close", "cmd", cmd, "err", cerr)
		}
	}()
	if err := fn(rdb); err != nil && !errors.Is(err, redis.Nil) {
		metrics.RedisCommandErrorsTotal.WithLabelValues(cmd).Inc()
		return err
	}
	return nil
}

// TestConnection reports whether a PING answers with PONG. It never returns an error.
func (c *Client) TestConnection(ctx context.Context) bool {
	var reply string
	err := c.withConn("ping", func(rdb *redis.Client) error {
		var err error
		reply, err = rdb.Ping(ctx).Result()
		return err
	})
	if err != nil {
		c.log.Errorw("redis ping", "addr", c.addr, "err", err)
		return false
	}
	c.log.Debugw("redis ping", "addr", c.addr, "reply", reply)
	return reply == pong
}

// Get returns the string value at key. A missing key is ("", false, nil).
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	var val string
	found := true
	err := c.withConn("get", func(rdb *redis.Client) error {
		v, err := rdb.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			found = false
			return nil
		}
		val = v
		return err
	})
	if err != nil {
		c.log.Errorw("redis get", "key", key, "err", err)
		return "", false, err
	}
	c.log.Debugw("redis get", "key", key, "found", found)
	return val, found, nil
}

// Set writes value at key. ttl <= 0 stores without expiry.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	err := c.withConn("set", func(rdb *redis.Client) error {
		return rdb.Set(ctx, key, value, ttl).Err()
	})
	if err != nil {
		c.log.Errorw("redis set", "key", key, "err", err)
		return fmt.Errorf("%w: set %s: %v", ErrStorage, key, err)
	}
	c.log.Debugw("redis set", "key", key, "ttl", ttl)
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	err := c.withConn("del", func(rdb *redis.Client) error {
		return rdb.Del(ctx, key).Err()
	})
	if err != nil {
		c.log.Errorw("redis del", "key", key, "err", err)
		return err
	}
	c.log.Debugw("redis del", "key", key)
	return nil
}

// HGet returns one field of the hash at bucket. A missing field is ("", false, nil).
func (c *Client) HGet(ctx context.Context, bucket, field string) (string, bool, error) {
	var val string
	found := true
	err := c.withConn("hget", func(rdb *redis.Client) error {
		v, err := rdb.HGet(ctx, bucket, field).Result()
		if errors.Is(err, redis.Nil) {
			found = false
			return nil
		}
		val = v
		return err
	})
	if err != nil {
		c.log.Errorw("redis hget", "bucket", bucket, "field", field, "err", err)
		return "", false, err
	}
	c.log.Debugw("redis hget", "bucket", bucket, "field", field, "found", found)
	return val, found, nil
}

func (c *Client) HSet(ctx context.Context, bucket, field, value string) error {
	err := c.withConn("hset", func(rdb *redis.Client) error {
		return rdb.HSet(ctx, bucket, field, value).Err()
	})
	if err != nil {
		c.log.Errorw("redis hset", "bucket", bucket, "field", field, "err", err)
		return fmt.Errorf("%w: hset %s: %v", ErrStorage, bucket, err)
	}
	c.log.Debugw("redis hset", "bucket", bucket, "field", field)
	return nil
}

// HSetRecords writes several fields of one hash in a single HSET.
func (c *Client) HSetRecords(ctx context.Context, bucket string, records map[string]string) error {
	if len(records) == 0 {
		return nil
	}
	values := make(map[string]any, len(records))
	for k, v := range records {
		values[k] = v
	}
	err := c.withConn("hset", func(rdb *redis.Client) error {
		return rdb.HSet(ctx, bucket, values).Err()
	})
	if err != nil {
		c.log.Errorw("redis hset records", "bucket", bucket, "count", len(records), "err", err)
		return fmt.Errorf("%w: hset %s: %v", ErrStorage, bucket, err)
	}
	c.log.Debugw("redis hset records", "bucket", bucket, "count", len(records))
	return nil
}

func (c *Client) HDelete(ctx context.Context, bucket, field string) error {
	err := c.withConn("hdel", func(rdb *redis.Client) error {
		return rdb.HDel(ctx, bucket, field).Err()
	})
	if err != nil {
		c.log.Errorw("redis hdel", "bucket", bucket, "field", field, "err", err)
		return err
	}
	c.log.Debugw("redis hdel", "bucket", bucket, "field", field)
	return nil
}

// HGetAll returns every raw field of the hash. A missing hash is an empty map.
func (c *Client) HGetAll(ctx context.Context, bucket string) (map[string]string, error) {
	var rows map[string]string
	err := c.withConn("hgetall", func(rdb *redis.Client) error {
		var err error
		rows, err = rdb.HGetAll(ctx, bucket).Result()
		return err
	})
	if err != nil {
		c.log.Errorw("redis hgetall", "bucket", bucket, "err", err)
		return nil, err
	}
	if rows == nil {
		rows = map[string]string{}
	}
	c.log.Debugw("redis hgetall", "bucket", bucket, "count", len(rows))
	return rows, nil
}

// GetJSON reads key and decodes it into T. Missing keys and undecodable
// values both come back as not found.
func GetJSON[T any](ctx context.Context, c *Client, key string) (T, bool, error) {
	var out T
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		c.log.Warnw("redis decode", "key", key, "err", err)
		var zero T
		return zero, false, nil
	}
	return out, true, nil
}

// SetJSON encodes v and writes it at key.
func SetJSON(ctx context.Context, c *Client, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStorage, key, err)
	}
	return c.Set(ctx, key, string(b), ttl)
}
