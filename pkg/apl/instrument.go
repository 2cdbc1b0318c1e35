package apl

import (
	"context"
	"time"

	"smtpapl/pkg/metrics"
)

type instrumented struct {
	next    APL
	backend string
}

// Instrument records call counts, outcomes and latency for every APL call.
// RedisAPL reports degraded calls as successes; see apl_redis_degraded_total.
func Instrument(a APL, backend string) APL {
	return &instrumented{next: a, backend: backend}
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.OperationsTotal.WithLabelValues(i.backend, op, outcome).Inc()
	metrics.OperationSeconds.WithLabelValues(i.backend, op).Observe(time.Since(start).Seconds())
}

func (i *instrumented) Get(ctx context.Context, saleorAPIURL string) (*AuthData, error) {
	start := time.Now()
	d, err := i.next.Get(ctx, saleorAPIURL)
	i.observe("get", start, err)
	return d, err
}

func (i *instrumented) Set(ctx context.Context, data AuthData) error {
	start := time.Now()
	err := i.next.Set(ctx, data)
	i.observe("set", start, err)
	return err
}

func (i *instrumented) Delete(ctx context.Context, saleorAPIURL string) error {
	start := time.Now()
	err := i.next.Delete(ctx, saleorAPIURL)
	i.observe("delete", start, err)
	return err
}

func (i *instrumented) GetAll(ctx context.Context) ([]AuthData, error) {
	start := time.Now()
	all, err := i.next.GetAll(ctx)
	i.observe("getAll", start, err)
	return all, err
}

func (i *instrumented) IsReady(ctx context.Context) ReadyResult {
	start := time.Now()
	res := i.next.IsReady(ctx)
	i.observe("isReady", start, res.Err)
	v := 0.0
	if res.Ready {
		v = 1
	}
	metrics.Ready.WithLabelValues(i.backend).Set(v)
	return res
}

func (i *instrumented) IsConfigured() ConfiguredResult {
	return i.next.IsConfigured()
}

// Unwrap returns the decorated APL.
func (i *instrumented) Unwrap() APL { return i.next }
