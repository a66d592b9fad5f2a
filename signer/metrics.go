package signer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	totalContributionsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qsm_total_contributions_recorded",
		Help: "Total verified signature contributions recorded in the ledger",
	})

	totalUnknownOwnerContributions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qsm_error_total_unknown_owner_contributions",
		Help: "Total contributions refused because the owner is not registered",
	})

	totalBackendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qsm_error_total_backend_failures",
		Help: "Total contributions aborted by a signing backend failure",
	})

	totalRejectedSignatures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qsm_error_total_rejected_signatures",
		Help: "Total produced signatures that failed verification against the registered key",
	})

	walletValidSignatures = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "qsm_wallet_valid_signatures",
		Help: "Valid signatures currently held for the wallet's transaction message",
	})

	walletAuthorized = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "qsm_wallet_authorized",
		Help: "Whether the wallet holds enough valid signatures to authorize (0 or 1)",
	})

	timedContributionSignLag = promauto.NewSummary(prometheus.SummaryOpts{
		Name:       "qsm_contribution_sign_lag_seconds",
		Help:       "Seconds taken by the signing backend to produce one signature",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	})
)
