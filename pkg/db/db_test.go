package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "postgres://***@db:5432/apl", RedactDSN("postgres://user:pa@ss@db:5432/apl"))
	assert.Equal(t, "***@db/apl", RedactDSN("user:pw@db/apl"))
	assert.Equal(t, "redis://localhost:6379", RedactDSN("redis://localhost:6379"))
}

func TestConnect_RequiresURL(t *testing.T) {
	pool, err := Connect(context.Background(), " ", zap.NewNop().Sugar())
	assert.Nil(t, pool)
	assert.ErrorIs(t, err, ErrNoDatabaseURL)
}
