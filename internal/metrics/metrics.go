package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	AlertsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "panic_alerts_created_total",
			Help: "Total number of panic alerts recorded",
		},
	)

	AlertsResolvedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "panic_alerts_resolved_total",
			Help: "Total number of panic alerts transitioned to resolved",
		},
	)

	IssuanceRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "identity_issuance_requests_total",
			Help: "Total number of identity issuance requests received",
		},
	)

	IssuanceForwardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "identity_issuance_forwarded_total",
			Help: "Total number of issuance requests forwarded to the chain gateway",
		},
	)

	IssuanceChainErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "identity_issuance_chain_errors_total",
			Help: "Total number of chain gateway failures during issuance",
		},
	)
)

// Register registers all collectors; call once from main.
func Register() {
	prometheus.MustRegister(AlertsCreatedTotal)
	prometheus.MustRegister(AlertsResolvedTotal)
	prometheus.MustRegister(IssuanceRequestsTotal)
	prometheus.MustRegister(IssuanceForwardedTotal)
	prometheus.MustRegister(IssuanceChainErrorsTotal)
}
