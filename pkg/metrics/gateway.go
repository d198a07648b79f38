package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	GatewaySessionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "paygate",
			Subsystem: "gateway",
			Name:      "session_duration_seconds",
			Help:      "Checkout session creation latency in seconds, provider calls included",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
		[]string{"provider"},
	)

	GatewaySessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paygate",
			Subsystem: "gateway",
			Name:      "sessions_total",
			Help:      "Checkout session attempts by outcome",
		},
		[]string{"provider", "outcome"},
	)

	GatewayProviderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paygate",
			Subsystem: "gateway",
			Name:      "provider_errors_total",
			Help:      "Provider and token failures by kind",
		},
		[]string{"provider", "kind"},
	)

	// BreakerState is 0 closed, 1 half-open, 2 open.
	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "paygate",
			Subsystem: "breaker",
			Name:      "state",
			Help:      "Circuit breaker state per provider",
		},
		[]string{"provider"},
	)
)

func init() {
	Registry.MustRegister(GatewaySessionDuration, GatewaySessionsTotal, GatewayProviderErrors, BreakerState)
}
