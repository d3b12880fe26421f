package kafka

// Topic definitions for Kafka event streaming
const (
	// Usage metering events
	TopicUsageRecorded = "sola.usage.v1"
	TopicUsageDenied   = "sola.usage.denied.v1"

	// Tool dispatch events
	TopicToolDispatched = "sola.dispatch.v1"

	// Session events
	TopicSessionStarted = "sola.sessions.started"
	TopicSessionEnded   = "sola.sessions.ended"
)
