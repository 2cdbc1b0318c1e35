package apl

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smtpapl/pkg/metrics"
)

func TestInstrument_CountsCalls(t *testing.T) {
	backend := "file-instrument-test"
	a := Instrument(NewFileAPL(filepath.Join(t.TempDir(), "auth.json")), backend)
	ctx := context.Background()

	require.NoError(t, a.Set(ctx, authData("https://shop.example.com", "abc")))
	got, err := a.Get(ctx, "https://shop.example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	_, err = a.Get(ctx, "https://other.example.com")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.OperationsTotal.WithLabelValues(backend, "set", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.OperationsTotal.WithLabelValues(backend, "get", "ok")))

	assert.True(t, a.IsReady(ctx).Ready)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Ready.WithLabelValues(backend)))
	assert.True(t, a.IsConfigured().Configured)
}

func TestInstrument_CountsErrors(t *testing.T) {
	backend := "upstash-instrument-test"
	a := Instrument(NewUpstashAPL(UpstashConfig{}, nil), backend)

	_, err := a.GetAll(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.OperationsTotal.WithLabelValues(backend, "getAll", "error")))

	res := a.IsReady(context.Background())
	assert.False(t, res.Ready)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.Ready.WithLabelValues(backend)))
}
