package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New("redis://"+mr.Addr(), nil)
	require.NoError(t, err)
	return c, mr
}

func TestNew_RejectsMissingConnectionString(t *testing.T) {
	for _, s := range []string{"", "   "} {
		c, err := New(s, nil)
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrMissingConnectionString)
	}
}

func TestNew_RejectsInvalidURL(t *testing.T) {
	c, err := New("http://not-redis", nil)
	assert.Nil(t, c)
	assert.Error(t, err)
}

func TestClient_TestConnection(t *testing.T) {
	c, mr := newTestClient(t)
	assert.True(t, c.TestConnection(context.Background()))

	mr.Close()
	assert.False(t, c.TestConnection(context.Background()))
}

func TestClient_SetGetDelete(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	assert.Zero(t, mr.TTL("k"))

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_SetWithTTL(t *testing.T) {
	c, mr := newTestClient(t)
	require.NoError(t, c.Set(context.Background(), "k", "v", 90*time.Second))
	assert.Equal(t, 90*time.Second, mr.TTL("k"))

	mr.FastForward(91 * time.Second)
	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_SetFailureIsStorageError(t *testing.T) {
	c, mr := newTestClient(t)
	mr.Close()
	err := c.Set(context.Background(), "k", "v", 0)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestClient_HashOperations(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	_, ok, err := c.HGet(ctx, "bucket", "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.HSet(ctx, "bucket", "a", "1"))
	require.NoError(t, c.HSetRecords(ctx, "bucket", map[string]string{"b": "2", "c": "3"}))
	assert.Equal(t, "2", mr.HGet("bucket", "b"))

	v, ok, err := c.HGet(ctx, "bucket", "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	all, err := c.HGetAll(ctx, "bucket")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2", "c": "3"}, all)

	require.NoError(t, c.HDelete(ctx, "bucket", "a"))
	require.NoError(t, c.HDelete(ctx, "bucket", "a"))
	all, err = c.HGetAll(ctx, "bucket")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	empty, err := c.HGetAll(ctx, "nothing-here")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestClient_OneConnectionPerCall(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	before := mr.TotalConnectionCount()
	require.NoError(t, c.HSet(ctx, "bucket", "a", "1"))
	_, _, err := c.HGet(ctx, "bucket", "a")
	require.NoError(t, err)
	_ = c.TestConnection(ctx)
	assert.Equal(t, before+3, mr.TotalConnectionCount())

	assert.Eventually(t, func() bool { return mr.CurrentConnectionCount() == 0 },
		2*time.Second, 10*time.Millisecond, "connections must be released after every call")
}

func TestClient_OptionsDisableRetries(t *testing.T) {
	c, err := New("redis://localhost:6379/2", nil)
	require.NoError(t, err)
	opts, err := c.options()
	require.NoError(t, err)
	assert.Equal(t, 1, opts.PoolSize)
	assert.Equal(t, -1, opts.MaxRetries)
	assert.Equal(t, 2, opts.DB)
}

func TestGetJSON_DecodeFailureIsAbsent(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()
	type rec struct {
		Name string `json:"name"`
	}

	require.NoError(t, SetJSON(ctx, c, "good", rec{Name: "x"}, 0))
	require.NoError(t, mr.Set("bad", "{not json"))

	got, ok, err := GetJSON[rec](ctx, c, "good")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", got.Name)

	_, ok, err = GetJSON[rec](ctx, c, "bad")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = GetJSON[rec](ctx, c, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
