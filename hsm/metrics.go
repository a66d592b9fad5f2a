package hsm

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metricsTimer guards timestamps written by vault sessions and read by
// the metrics timer goroutine.
type metricsTimer struct {
	mu                     sync.Mutex
	previousVaultSignature time.Time
}

func newMetricsTimer() *metricsTimer {
	return &metricsTimer{previousVaultSignature: time.Now()}
}

func (mt *metricsTimer) SetPreviousVaultSignature(t time.Time) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.previousVaultSignature = t
}

func (mt *metricsTimer) UpdatePrometheusMetrics() {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	secondsSinceLastVaultSignature.Set(time.Since(mt.previousVaultSignature).Seconds())
}

var (
	// Variables to calculate Prometheus Metrics
	metricsTimeKeeper = newMetricsTimer()

	// Prometheus Metrics
	totalSessionsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qsm_gateway_total_sessions_opened",
		Help: "Total signing sessions opened on the gateway vault",
	})

	totalSessionsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qsm_gateway_total_sessions_closed",
		Help: "Total signing sessions closed on the gateway vault",
	})

	totalAuthFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qsm_gateway_error_total_auth_failures",
		Help: "Total failed token authentications on the gateway vault",
	})

	totalVaultSignatures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qsm_gateway_total_signatures",
		Help: "Total signatures produced by the gateway vault",
	})

	vaultOpenSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "qsm_gateway_open_sessions",
		Help: "Signing sessions currently open on the gateway vault",
	})

	secondsSinceLastVaultSignature = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "qsm_gateway_seconds_since_last_signature",
		Help: "Seconds since the gateway vault last produced a signature",
	})
)

// StartMetricsTimer updates elapsed times on an interval basis.
func StartMetricsTimer() {
	for {
		metricsTimeKeeper.UpdatePrometheusMetrics()
		<-time.After(100 * time.Millisecond)
	}
}
