// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_questions_total",
			Help: "Total number of chat questions by matched intent and outcome",
		},
		[]string{"intent", "outcome"},
	)

	QuestionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_question_duration_seconds",
			Help:    "End-to-end duration of answering a chat question",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"intent"},
	)

	CollaboratorCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collaborator_calls_total",
			Help: "Outbound calls to the Data API and the generative model",
		},
		[]string{"collaborator", "status"},
	)

	CacheRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_cache_refresh_total",
			Help: "Activity cache refresh attempts by result",
		},
		[]string{"result"},
	)

	CacheAgeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "activity_cache_age_seconds",
			Help: "Age of the cached activity list at the last read",
		},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Outcome labels for QuestionsTotal.
const (
	OutcomeAnswered = "answered"
	OutcomeFallback = "fallback"
	OutcomeNotFound = "not_found"
	OutcomeApology  = "apology"
	OutcomeRejected = "rejected"
)

// ObserveCollaborator records one outbound call.
func ObserveCollaborator(collaborator string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	CollaboratorCalls.WithLabelValues(collaborator, status).Inc()
}
