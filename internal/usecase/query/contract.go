package query

import (
	"context"

	"github.com/madhava-cloud/gateway/internal/domain"
)

// Extractor derives structured metrics from a single passage.
type Extractor interface {
	Extract(text string, d domain.Domain) (domain.MetricsBag, error)
}

// Generator produces answers and metric insights.
type Generator interface {
	GenerateResponse(ctx context.Context, query string, passages []string, d domain.Domain) (string, error)
	DomainInsights(ctx context.Context, d domain.Domain, bag domain.MetricsBag) (string, error)
}

// SnapshotWriter persists the merged metric bag per domain.
type SnapshotWriter interface {
	Record(ctx context.Context, d domain.Domain, bag domain.MetricsBag) error
}

// Notifier accepts alerts for asynchronous dispatch. Implementations must not
// block the caller.
type Notifier interface {
	Notify(a domain.Alert)
}

// Enricher attaches extra structured fields for one domain. Implementations
// are registered per domain tag; domains without an enricher contribute an
// empty mapping.
type Enricher interface {
	Enrich(
		ctx context.Context,
		passages []domain.Passage,
		bag domain.MetricsBag,
	) (map[string]any, error)
}
