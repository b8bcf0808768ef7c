package chi

import (
	"context"

	"github.com/madhava-cloud/gateway/internal/domain"
	"github.com/madhava-cloud/gateway/internal/usecase/alert"
	healthuc "github.com/madhava-cloud/gateway/internal/usecase/health"
)

// QueryService runs the full answer pipeline for one query.
type QueryService interface {
	Process(ctx context.Context, q domain.Query) (domain.Response, error)
}

// ChatService answers a prompt directly, without retrieval or enrichment.
type ChatService interface {
	GenerateResponse(ctx context.Context, query string, passages []string, d domain.Domain) (string, error)
}

// HealthService aggregates component health checks.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// AlertHistory reads the persisted alert ring.
type AlertHistory interface {
	History(ctx context.Context, d, severity string, limit int) ([]domain.Alert, error)
}

// SnapshotReader reads the latest per-domain metric snapshot.
type SnapshotReader interface {
	Get(ctx context.Context, d domain.Domain) (domain.MetricsBag, error)
}

// AlertStream manages live alert subscribers.
type AlertStream interface {
	Subscribe(s alert.Subscriber)
	Unsubscribe(s alert.Subscriber)
}
