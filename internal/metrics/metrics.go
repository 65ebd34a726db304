// Package metrics exposes Prometheus collectors for leaderboard reads, screentime uploads and
// live leaderboard subscriptions.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"sheesh.app/server/pkg/apperror"
)

var (
	leaderboardRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sheesh",
		Name:      "leaderboard_requests_total",
		Help:      "Leaderboard computations by mode and outcome.",
	}, []string{"mode", "outcome"})

	leaderboardDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sheesh",
		Name:      "leaderboard_duration_seconds",
		Help:      "Time spent loading and ranking a leaderboard.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"mode"})

	screentimeUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sheesh",
		Name:      "screentime_uploads_total",
		Help:      "Screentime uploads by outcome.",
	}, []string{"outcome"})

	liveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sheesh",
		Name:      "leaderboard_live_subscribers",
		Help:      "Open leaderboard websocket connections.",
	})
)

var knownModes = map[string]bool{"today": true, "yesterday": true, "weekly": true, "change": true}

// ObserveLeaderboard records one leaderboard request.
func ObserveLeaderboard(mode string, err error, elapsed time.Duration) {
	if !knownModes[mode] {
		mode = "invalid"
	}
	leaderboardRequests.WithLabelValues(mode, outcome(err)).Inc()
	leaderboardDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// ObserveUpload records one screentime upload attempt.
func ObserveUpload(err error) {
	screentimeUploads.WithLabelValues(outcome(err)).Inc()
}

func SubscriberConnected()    { liveSubscribers.Inc() }
func SubscriberDisconnected() { liveSubscribers.Dec() }

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperror.ErrInvalidMode), errors.Is(err, apperror.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, apperror.ErrRateLimitExceeded):
		return "rate_limited"
	case errors.Is(err, apperror.ErrDataSourceUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
