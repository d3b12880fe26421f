package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Tool dispatch metrics
	ToolDispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sola_tool_dispatches_total",
			Help: "Total number of tool dispatches",
		},
		[]string{"tool", "status"}, // status: success|tool_not_found|validation_error|execution_error
	)

	ToolLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sola_tool_latency_seconds",
			Help:    "Tool execution latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"tool"},
	)

	ToolPanics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sola_tool_panics_total",
			Help: "Total number of panics recovered during tool execution",
		},
		[]string{"tool"},
	)

	// AI usage metrics
	AICalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sola_ai_calls_total",
			Help: "Total number of AI completion calls",
		},
		[]string{"provider", "model", "status"}, // status: success|error
	)

	AICost = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sola_ai_cost_usd",
			Help: "Total AI cost in USD",
		},
		[]string{"provider", "model"},
	)

	AITokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sola_ai_tokens_total",
			Help: "Total tokens consumed",
		},
		[]string{"provider", "model", "type"}, // type: input|output
	)

	// Usage gate metrics
	UsageChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sola_usage_checks_total",
			Help: "Total number of usage gate checks",
		},
		[]string{"outcome"}, // outcome: allowed|denied|failed_closed
	)

	UsagePercentUsed = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sola_usage_percent_used",
			Help:    "Distribution of window usage at check time",
			Buckets: []float64{10, 25, 50, 75, 90, 100},
		},
		[]string{"tier"},
	)

	// Tier resolution metrics
	TierResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sola_tier_resolutions_total",
			Help: "Total number of tier resolutions",
		},
		[]string{"tier", "source"}, // source: cache|rpc
	)

	BalanceAnomalies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sola_balance_anomalies_total",
			Help: "Total number of anomalous balance readings",
		},
		[]string{"kind"}, // kind: negative|rpc_error
	)

	// Database metrics
	DBQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sola_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"database", "operation", "status"}, // database: postgres|clickhouse|redis
	)

	// Kafka metrics
	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sola_kafka_messages_total",
			Help: "Total Kafka messages produced",
		},
		[]string{"topic", "status"},
	)

	// WebSocket metrics
	WebSocketConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sola_websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(ToolDispatches)
	prometheus.MustRegister(ToolLatency)
	prometheus.MustRegister(ToolPanics)

	prometheus.MustRegister(AICalls)
	prometheus.MustRegister(AICost)
	prometheus.MustRegister(AITokens)

	prometheus.MustRegister(UsageChecks)
	prometheus.MustRegister(UsagePercentUsed)

	prometheus.MustRegister(TierResolutions)
	prometheus.MustRegister(BalanceAnomalies)

	prometheus.MustRegister(DBQueries)
	prometheus.MustRegister(KafkaMessages)
	prometheus.MustRegister(WebSocketConnections)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordDispatch records a tool dispatch outcome
func RecordDispatch(tool string, status string, latency time.Duration) {
	ToolDispatches.WithLabelValues(tool, status).Inc()
	ToolLatency.WithLabelValues(tool).Observe(latency.Seconds())
}

// RecordDBQuery records a database query outcome
func RecordDBQuery(database, operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DBQueries.WithLabelValues(database, operation, status).Inc()
}

// RecordAICall records an AI completion call
func RecordAICall(provider, model string, promptTokens, completionTokens int, costUSD float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	AICalls.WithLabelValues(provider, model, status).Inc()
	if costUSD > 0 {
		AICost.WithLabelValues(provider, model).Add(costUSD)
	}
	if promptTokens > 0 {
		AITokens.WithLabelValues(provider, model, "input").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		AITokens.WithLabelValues(provider, model, "output").Add(float64(completionTokens))
	}
}
