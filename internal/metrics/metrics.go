// Package metrics exposes the Prometheus instrumentation for animatch.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by route pattern and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "animatch",
		Name:      "http_requests_total",
		Help:      "HTTP requests handled, by route and status code.",
	}, []string{"route", "code"})

	// SignalsRecorded counts accepted preference signals by kind
	// (search, click, favorite).
	SignalsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "animatch",
		Name:      "signals_recorded_total",
		Help:      "Preference signals recorded, by kind.",
	}, []string{"kind"})

	// SignalsDropped counts signal writes dropped because the store was
	// unavailable. Dropped signals degrade personalization but never fail
	// the serving path.
	SignalsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "animatch",
		Name:      "signals_dropped_total",
		Help:      "Preference signal writes dropped on storage failure, by kind.",
	}, []string{"kind"})

	// Recommendations counts recommendation responses by source composition.
	Recommendations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "animatch",
		Name:      "recommendations_total",
		Help:      "Recommendation lists served.",
	})
)
