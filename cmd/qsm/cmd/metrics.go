package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	cometlog "github.com/cometbft/cometbft/libs/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func StartMetrics() {
	logger := cometlog.NewTMLogger(cometlog.NewSyncWriter(os.Stdout)).With("module", "metrics")

	// Configure Prometheus HTTP Server and Handler

	if len(config.Config.DebugAddr) == 0 {
		logger.Error("debug-addr not defined")
		return
	}
	logger.Info("Prometheus Metrics Listening", "address", config.Config.DebugAddr)
	http.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              config.Config.DebugAddr,
		ReadTimeout:       1 * time.Second,
		WriteTimeout:      1 * time.Second,
		IdleTimeout:       30 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		logger.Error(fmt.Sprintf("Prometheus Endpoint failed to start: %s", err))
	}
}
