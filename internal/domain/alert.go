package domain

import (
	"time"

	"github.com/google/uuid"
)

// Alert severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// Alert is a fire-and-forget notification carrying a domain and its metrics.
// Handed to the alert manager and not tracked further by the pipeline.
type Alert struct {
	ID        string         `json:"id"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"`
	Payload   map[string]any `json:"payload"`
	Timestamp string         `json:"timestamp"`
}

// NewAlert builds an alert for a domain whose pipeline run produced metrics.
// The payload carries the domain tag plus every metric entry.
func NewAlert(d Domain, metrics MetricsBag) Alert {
	payload := make(map[string]any, len(metrics)+1)
	payload["domain"] = string(d)
	for k, v := range metrics {
		payload[k] = v
	}

	return Alert{
		ID:        uuid.NewString(),
		Category:  string(d) + "_alert",
		Message:   "New insights available for " + string(d),
		Severity:  severityFor(metrics),
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// severityFor escalates to warning when the extracted risk level is high.
func severityFor(metrics MetricsBag) string {
	switch metrics.GetString("risk_level", "") {
	case "high", "critical":
		return SeverityWarning
	}
	return SeverityInfo
}
