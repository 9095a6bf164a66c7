package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "attempt_service"

var (
	attemptsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attempts_created_total",
		Help:      "Attempts accepted for grading.",
	}, []string{"language", "mode"})

	attemptsFinalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attempts_finalized_total",
		Help:      "Attempts moved to a terminal status.",
	}, []string{"status", "reason"})

	gradingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "grading_duration_seconds",
		Help:      "Time spent grading a submission through the sandbox.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
	}, []string{"language", "outcome"})

	gatewayFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "execution_gateway_failures_total",
		Help:      "Sandbox calls that failed or timed out.",
	}, []string{"mode"})

	busMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bus_messages_total",
		Help:      "Inbound bus messages by subject and result.",
	}, []string{"subject", "result"})
)

// Finalize reasons.
const (
	ReasonGraded      = "graded"
	ReasonHarness     = "harness"
	ReasonDispatch    = "dispatch"
	ReasonTimeout     = "timeout"
	ReasonUnavailable = "unavailable"
)

// OutcomeDispatched labels grading time measured from dispatch to graded event.
const OutcomeDispatched = "dispatched"

func AttemptCreated(language, mode string) {
	attemptsCreated.WithLabelValues(language, mode).Inc()
}

func AttemptFinalized(status, reason string) {
	attemptsFinalized.WithLabelValues(status, reason).Inc()
}

func GradingObserved(language, outcome string, started time.Time) {
	gradingDuration.WithLabelValues(language, outcome).Observe(time.Since(started).Seconds())
}

func GatewayFailure(mode string) {
	gatewayFailures.WithLabelValues(mode).Inc()
}

func BusMessage(subject, result string) {
	busMessages.WithLabelValues(subject, result).Inc()
}
