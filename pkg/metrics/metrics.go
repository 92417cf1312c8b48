package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
)

// Metrics holds the Prometheus collectors of the API. It replaces process-wide
// token and request counters.
type Metrics struct {
	registry *prometheus.Registry

	LLMRequests        *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec
	LLMTokens          *prometheus.CounterVec
	LLMCostUSD         *prometheus.CounterVec

	LoreGenerations *prometheus.CounterVec
	LoreCache       *prometheus.CounterVec

	TTSRequests *prometheus.CounterVec

	QuotaRejections *prometheus.CounterVec

	CircuitBreakerState       *prometheus.GaugeVec
	CircuitBreakerTransitions *prometheus.CounterVec

	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers every collector on a dedicated registry that also carries the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		LLMRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cineprep_llm_requests_total",
				Help: "Chat completion requests sent to the LLM",
			},
			[]string{"model", "outcome"},
		),
		LLMRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cineprep_llm_request_duration_seconds",
				Help:    "Latency of chat completion requests",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 90},
			},
			[]string{"model"},
		),
		LLMTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cineprep_llm_tokens_total",
				Help: "Tokens consumed by chat completions",
			},
			[]string{"model", "kind"},
		),
		LLMCostUSD: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cineprep_llm_estimated_cost_usd_total",
				Help: "Estimated LLM spend in USD",
			},
			[]string{"model"},
		),
		LoreGenerations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cineprep_lore_generations_total",
				Help: "Lore generation requests by outcome",
			},
			[]string{"outcome"},
		),
		LoreCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cineprep_lore_cache_lookups_total",
				Help: "Lore cache lookups by result",
			},
			[]string{"result"},
		),
		TTSRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cineprep_tts_requests_total",
				Help: "Text-to-speech requests by outcome",
			},
			[]string{"outcome"},
		),
		QuotaRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cineprep_quota_rejections_total",
				Help: "Requests refused because the plan ceiling was reached",
			},
			[]string{"resource"},
		),
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cineprep_circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
		CircuitBreakerTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cineprep_circuit_breaker_transitions_total",
				Help: "Circuit breaker state transitions",
			},
			[]string{"name", "from", "to"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cineprep_http_request_duration_seconds",
				Help:    "Latency of API requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// ObserveLLMCall records one chat completion.
func (m *Metrics) ObserveLLMCall(model, outcome string, elapsed time.Duration, promptTokens, completionTokens int, costUSD float64) {
	if m == nil {
		return
	}
	m.LLMRequests.WithLabelValues(model, outcome).Inc()
	m.LLMRequestDuration.WithLabelValues(model).Observe(elapsed.Seconds())
	if outcome != OutcomeSuccess {
		return
	}
	m.LLMTokens.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	m.LLMTokens.WithLabelValues(model, "completion").Add(float64(completionTokens))
	m.LLMCostUSD.WithLabelValues(model).Add(costUSD)
}

func (m *Metrics) LoreCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.LoreCache.WithLabelValues("hit").Inc()
		return
	}
	m.LoreCache.WithLabelValues("miss").Inc()
}

func (m *Metrics) LoreGenerated(outcome string) {
	if m == nil {
		return
	}
	m.LoreGenerations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) TTSRequest(outcome string) {
	if m == nil {
		return
	}
	m.TTSRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) QuotaRejected(resource string) {
	if m == nil {
		return
	}
	m.QuotaRejections.WithLabelValues(resource).Inc()
}

// BreakerRegistered publishes the closed state of a new breaker.
func (m *Metrics) BreakerRegistered(name string) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(0)
}

func (m *Metrics) BreakerStateChanged(name, from, to string, state float64) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(state)
	m.CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry, for tests and exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
