// Package metrics defines the Prometheus metrics exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chatbot"

var (
	// ChatRequestsTotal counts chat requests by outcome (answered, low_confidence, harmful, ...).
	ChatRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chat",
		Name:      "requests_total",
		Help:      "Chat requests by outcome.",
	}, []string{"outcome"})

	// ChatProcessingSeconds measures the time from validation to response.
	ChatProcessingSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "chat",
		Name:      "processing_seconds",
		Help:      "Time spent processing a chat request.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	// ChatConfidence records the confidence of every generated answer.
	ChatConfidence = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "chat",
		Name:      "confidence",
		Help:      "Confidence of generated answers.",
		Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
	})

	// ClassifierFailuresTotal counts collaborator failures that were turned into defaults.
	// Labels: classifier (moderation, structure, generation)
	ClassifierFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "classifier",
		Name:      "failures_total",
		Help:      "Classifier and generator failures converted to default results.",
	}, []string{"classifier"})
)
