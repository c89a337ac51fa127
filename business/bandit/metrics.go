package bandit

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	BanditDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_decisions_total",
			Help: "Count of decisions made, by exploration flag and channel.",
		},
		[]string{"exploration", "channel"},
	)

	BanditNoEligibleTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_no_eligible_action_total",
			Help: "Count of decide requests that produced no decision, by reason.",
		},
		[]string{"reason"},
	)

	BanditOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_outcomes_total",
			Help: "Count of outcomes recorded, by outcome.",
		},
		[]string{"outcome"},
	)

	BanditPersistFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_persist_failures_total",
			Help: "Repository writes that failed after retries, by operation.",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(
		BanditDecisionsTotal,
		BanditNoEligibleTotal,
		BanditOutcomesTotal,
		BanditPersistFailuresTotal,
	)
}
