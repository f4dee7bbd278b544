package metrics

import (
	"expvar"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Expvar metrics (legacy)
	EmptyLLMResponse       = expvar.NewInt("empty_llm_response_count")
	SuccessfulLLMGen       = expvar.NewInt("successful_llm_gen_count")
	FailedLLMGen           = expvar.NewInt("failed_llm_gen_count")
	TwitchConnectionCount  = expvar.NewInt("twitch_connection_count")
	TwitchMessageReceived  = expvar.NewInt("twitch_message_received_count")
	TwitchMessageSentCount = expvar.NewInt("twitch_message_sent_count")
	DiscordMessageReceived = expvar.NewInt("discord_message_received")
	DiscordMessageSent     = expvar.NewInt("discord_message_sent")
	LiveStateLookupFailed  = expvar.NewInt("live_state_lookup_failed_count")
	ResponseLogWriteFailed = expvar.NewInt("response_log_write_failed_count")
	SnapshotFlushFailed    = expvar.NewInt("snapshot_flush_failed_count")

	// Prometheus metrics with labels
	MessagesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streambuddy_messages_received_total",
			Help: "Total number of chat messages handed to the pipeline by platform",
		},
		[]string{"platform"},
	)

	Rejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streambuddy_rejections_total",
			Help: "Total number of messages dropped by pipeline stage and reason",
		},
		[]string{"stage", "reason"},
	)

	Responses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streambuddy_responses_total",
			Help: "Total number of responses by the stage that produced them",
		},
		[]string{"source"},
	)

	TemplateCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streambuddy_template_cache_total",
			Help: "Template cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	FallbackCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streambuddy_fallback_calls_total",
			Help: "Completion service calls by outcome (success, error, empty, no_credential)",
		},
		[]string{"outcome"},
	)

	BudgetDenied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streambuddy_budget_denied_total",
			Help: "Total number of fallbacks skipped because the budget was exhausted",
		},
	)

	BudgetSpend = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "streambuddy_budget_spend_dollars",
			Help: "Estimated completion spend in the current period (daily, monthly)",
		},
		[]string{"period"},
	)

	ResolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "streambuddy_resolve_duration_seconds",
			Help:    "Duration of resolving one message into a response decision",
			Buckets: prometheus.DefBuckets,
		},
	)

	DiscordCommandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discord_command_total",
			Help: "Total number of Discord slash commands handled",
		},
		[]string{"command"},
	)

	DiscordCommandErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discord_command_errors_total",
			Help: "Total number of Discord slash commands that failed to respond",
		},
		[]string{"command"},
	)

	SnapshotsFlushed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streambuddy_snapshots_flushed_total",
			Help: "Total number of analytics snapshots handed to the sink",
		},
	)
)

type Server struct {
	*http.Server
	mux *http.ServeMux
}

// SetupServer builds the metrics server listening on addr, ":6060" when empty.
func SetupServer(addr string) *Server {
	if addr == "" {
		addr = ":6060"
	}
	mux := http.NewServeMux()
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// setup expvar cache
	EmptyLLMResponse.Set(0)
	SuccessfulLLMGen.Set(0)
	FailedLLMGen.Set(0)
	TwitchConnectionCount.Set(0)
	TwitchMessageReceived.Set(0)
	TwitchMessageSentCount.Set(0)
	DiscordMessageReceived.Set(0)
	DiscordMessageSent.Set(0)
	LiveStateLookupFailed.Set(0)
	ResponseLogWriteFailed.Set(0)
	SnapshotFlushFailed.Set(0)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewExpvarCollector(
			map[string]*prometheus.Desc{
				"twitch_connection_count":         prometheus.NewDesc("twitch_connection_count", "number of times twitch connection was established", nil, nil),
				"twitch_message_received_count":   prometheus.NewDesc("twitch_message_received_count", "number of times twitch received a message", nil, nil),
				"twitch_message_sent_count":       prometheus.NewDesc("twitch_message_sent_count", "number of times twitch sent a message", nil, nil),
				"discord_message_received":        prometheus.NewDesc("discord_message_received", "number of times discord received a message", nil, nil),
				"discord_message_sent":            prometheus.NewDesc("discord_message_sent", "number of times discord sent a message", nil, nil),
				"empty_llm_response_count":        prometheus.NewDesc("empty_llm_response_count", "number of times llm responded with an empty string", nil, nil),
				"successful_llm_gen_count":        prometheus.NewDesc("successful_llm_gen_count", "number of times llm generated a valid response", nil, nil),
				"failed_llm_gen_count":            prometheus.NewDesc("failed_llm_gen_count", "number of times errors occurred in llm generation", nil, nil),
				"live_state_lookup_failed_count":  prometheus.NewDesc("live_state_lookup_failed_count", "number of failed stream live state lookups", nil, nil),
				"response_log_write_failed_count": prometheus.NewDesc("response_log_write_failed_count", "number of failed response log writes", nil, nil),
				"snapshot_flush_failed_count":     prometheus.NewDesc("snapshot_flush_failed_count", "number of failed analytics snapshot writes", nil, nil),
			},
		),
		MessagesReceived,
		Rejections,
		Responses,
		TemplateCache,
		FallbackCalls,
		BudgetDenied,
		BudgetSpend,
		ResolveDuration,
		SnapshotsFlushed,
		DiscordCommandTotal,
		DiscordCommandErrors,
	)

	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", healthzHandler)
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return &Server{Server: server, mux: mux}
}

// RegisterAuthHealthHandler registers the auth health check endpoint
func (s *Server) RegisterAuthHealthHandler(handler http.HandlerFunc) {
	s.mux.HandleFunc("/healthz/auth", handler)
}

// healthzHandler returns a simple health check response
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) Run() {
	_ = s.ListenAndServe()
}
