package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// LLMChecker checks LLM provider availability.
type LLMChecker interface {
	HealthCheck(ctx context.Context) error
}

// ProcessReporter reports liveness of supervised auxiliary services.
type ProcessReporter interface {
	Running() map[string]bool
}
