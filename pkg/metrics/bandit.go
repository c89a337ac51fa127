package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the decide HTTP handler
	DecideLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bandit_decide_latency_seconds",
		Help:    "Latency of the decide handler",
		Buckets: prometheus.DefBuckets,
	})

	// Decide requests by result: decided, no_eligible_action, bad_request, error
	DecideRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bandit_decide_requests_total",
		Help: "Total number of decide requests by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		DecideLatency,
		DecideRequests,
	)
}
