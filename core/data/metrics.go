package data

import (
	"github.com/prometheus/client_golang/prometheus"
)

var policyDecisions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "brightspark",
		Name:      "policy_decisions_total",
		Help:      "Authorization decisions taken by the data layer.",
	},
	[]string{"resource", "action", "outcome"},
)

// Collectors returns the metrics of the data layer, to be registered by the application.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{policyDecisions}
}

func outcome(allowed bool) string {
	if allowed {
		return "allow"
	}
	return "deny"
}
