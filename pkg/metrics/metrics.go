package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	RedisConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apl_redis_connections_total",
		Help: "Connections opened to the key-value store (one per command)",
	})
	RedisCommandErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "apl_redis_command_errors_total",
		Help: "Failed key-value store commands by command",
	}, []string{"command"})
	RedisDegradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "apl_redis_degraded_total",
		Help: "Redis APL calls that failed and were reported to the caller as absent/no-op",
	}, []string{"op"})
	OperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "apl_operations_total",
		Help: "APL calls by backend, operation and outcome",
	}, []string{"backend", "op", "outcome"})
	OperationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "apl_operation_seconds",
		Help:    "APL call latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "op"})
	Ready = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "apl_ready",
		Help: "1 when the last readiness check of the backend succeeded",
	}, []string{"backend"})
)

// Init registers all collectors plus Go/process collectors on a fresh registry.
func Init(log *zap.SugaredLogger) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		RedisConnectionsTotal, RedisCommandErrorsTotal, RedisDegradedTotal,
		OperationsTotal, OperationSeconds, Ready,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister {
		if err := reg.Register(c); err != nil {
			log.Warnw("metrics register", "err", err)
		}
	}
	log.Debugw("prometheus metrics initialized")
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
