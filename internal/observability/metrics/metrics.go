package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success Outcome = "success"
	Error   Outcome = "error"
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once                         sync.Once
	metricsRouter                *chi.Mux
	httpRequestDurationHistogram *prometheus.HistogramVec
	relayMessagesSentCounter     *prometheus.CounterVec
	relayMessagesReceivedCounter *prometheus.CounterVec
	relayMessagesRejectedCounter *prometheus.CounterVec
	claimsFinalizedCounter       *prometheus.CounterVec
	payoutsExecutedCounter       prometheus.Counter
	premiumAllocatedCounter      *prometheus.CounterVec
	unprocessableMessageCounter  prometheus.Counter
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	go func() {
		metricsAddr := fmt.Sprintf(":%d", metricsPort)
		err := http.ListenAndServe(metricsAddr, metricsRouter)
		if err != nil {
			log.Fatal().Err(err).Msgf("error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	httpRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of http request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"endpoint", "status"},
	)

	relayMessagesSentCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_sent_total",
			Help: "Total number of relay messages dispatched, by kind.",
		},
		[]string{"kind"},
	)

	relayMessagesReceivedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_received_total",
			Help: "Total number of relay messages accepted after authentication, by kind.",
		},
		[]string{"kind"},
	)

	relayMessagesRejectedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_rejected_total",
			Help: "Total number of relay messages rejected by allowlist checks.",
		},
		[]string{"kind", "reason"},
	)

	claimsFinalizedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_finalized_total",
			Help: "Total number of finalized claims, by outcome.",
		},
		[]string{"approved"},
	)

	payoutsExecutedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payouts_executed_total",
			Help: "Total number of reserve payouts executed.",
		},
	)

	premiumAllocatedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "premium_allocated_total",
			Help: "Total premium value allocated, by destination leg.",
		},
		[]string{"leg"},
	)

	unprocessableMessageCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "unprocessable_messages_total",
			Help: "Total number of inbound messages persisted as unprocessable.",
		},
	)

	prometheus.MustRegister(
		httpRequestDurationHistogram,
		relayMessagesSentCounter,
		relayMessagesReceivedCounter,
		relayMessagesRejectedCounter,
		claimsFinalizedCounter,
		payoutsExecutedCounter,
		premiumAllocatedCounter,
		unprocessableMessageCounter,
	)
}

// StartHttpRequestDurationTimer starts a timer for the endpoint and returns
// a callback to record the duration once the status code is known.
func StartHttpRequestDurationTimer(endpoint string) func(statusCode int) {
	startTime := time.Now()
	return func(statusCode int) {
		if httpRequestDurationHistogram == nil {
			return
		}
		duration := time.Since(startTime).Seconds()
		httpRequestDurationHistogram.WithLabelValues(
			endpoint,
			fmt.Sprintf("%d", statusCode),
		).Observe(duration)
	}
}

func RecordRelayMessageSent(kind string) {
	if relayMessagesSentCounter == nil {
		return
	}
	relayMessagesSentCounter.WithLabelValues(kind).Inc()
}

func RecordRelayMessageReceived(kind string) {
	if relayMessagesReceivedCounter == nil {
		return
	}
	relayMessagesReceivedCounter.WithLabelValues(kind).Inc()
}

func RecordRelayMessageRejected(kind, reason string) {
	if relayMessagesRejectedCounter == nil {
		return
	}
	relayMessagesRejectedCounter.WithLabelValues(kind, reason).Inc()
}

func RecordClaimFinalized(approved bool) {
	if claimsFinalizedCounter == nil {
		return
	}
	claimsFinalizedCounter.WithLabelValues(strconv.FormatBool(approved)).Inc()
}

func RecordPayoutExecuted() {
	if payoutsExecutedCounter == nil {
		return
	}
	payoutsExecutedCounter.Inc()
}

func RecordPremiumAllocated(toPool, toReserve uint64) {
	if premiumAllocatedCounter == nil {
		return
	}
	premiumAllocatedCounter.WithLabelValues("pool").Add(float64(toPool))
	premiumAllocatedCounter.WithLabelValues("reserve").Add(float64(toReserve))
}

func RecordUnprocessableMessage() {
	if unprocessableMessageCounter == nil {
		return
	}
	unprocessableMessageCounter.Inc()
}
