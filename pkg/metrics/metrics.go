package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviewloop", Name: "submissions_total", Help: "Review submissions by outcome."},
		[]string{"outcome"}, // approved|rejected_duplicate|rejected_quality|invalid|error
	)
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviewloop", Name: "provider_requests_total", Help: "Outbound AI/OCR provider calls."},
		[]string{"service", "provider", "status"}, // status: ok|error
	)
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reviewloop", Name: "provider_request_duration_seconds",
			Help:    "Outbound provider call duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "provider"},
	)
	ValidatorFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "reviewloop", Name: "validator_fallbacks_total", Help: "Validations served by the heuristic fallback."},
	)
	BonusClaims = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviewloop", Name: "bonus_claims_total", Help: "Bonus claim attempts."},
		[]string{"result"}, // claimed|already_claimed|inactive|error
	)
)

func init() {
	prometheus.MustRegister(Submissions, ProviderRequests, ProviderLatency, ValidatorFallbacks, BonusClaims)
}

// Handler returns the Prometheus scrape handler for mounting on the router.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveProvider records one outbound provider call.
func ObserveProvider(service, provider string, err error, dur time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	ProviderRequests.WithLabelValues(service, provider, status).Inc()
	ProviderLatency.WithLabelValues(service, provider).Observe(dur.Seconds())
}
