package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	// qnksCommandTotal counts editor commands by name and outcome
	qnksCommandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qnks_command_total",
			Help: "Total number of editor commands executed",
		},
		[]string{"command", "outcome"},
	)

	// qnksHistoryDepth tracks how many undo steps are available
	qnksHistoryDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "qnks_history_depth",
			Help: "Current number of entries on the undo stack",
		},
	)

	// qnksAIRequestTotal counts AI requests by provider and outcome
	qnksAIRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qnks_ai_request_total",
			Help: "Total number of AI text requests",
		},
		[]string{"provider", "outcome"},
	)

	// qnksSubmissionTotal counts submission attempts by outcome
	qnksSubmissionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qnks_submission_total",
			Help: "Total number of submission dispatch attempts",
		},
		[]string{"outcome"},
	)

	// qnksStoreErrorTotal counts failed persistence operations
	qnksStoreErrorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qnks_store_error_total",
			Help: "Total number of failed store operations",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(qnksCommandTotal)
	prometheus.MustRegister(qnksHistoryDepth)
	prometheus.MustRegister(qnksAIRequestTotal)
	prometheus.MustRegister(qnksSubmissionTotal)
	prometheus.MustRegister(qnksStoreErrorTotal)
}

func commandOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrNothingToUndo), errors.Is(err, ErrNothingToRedo):
		return "empty"
	default:
		return "error"
	}
}

func observeCommand(name string, err error) {
	qnksCommandTotal.WithLabelValues(name, commandOutcome(err)).Inc()
}

// serveMetrics exposes /metrics on addr until the process exits. An empty
// addr disables it.
func serveMetrics(addr string, logger *zap.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}
