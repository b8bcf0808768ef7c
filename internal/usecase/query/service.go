// Package query orchestrates the multi-stage answer pipeline: retrieval,
// metric extraction, generation, insights, domain enrichment, assembly, and
// fire-and-forget alerting.
//
// Every stage after domain validation has its own failure boundary: an error
// degrades that stage's contribution to a documented default instead of
// aborting the request.
package query

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/madhava-cloud/gateway/internal/domain"
	"github.com/madhava-cloud/gateway/internal/logger"
	"github.com/madhava-cloud/gateway/internal/metrics"
	"github.com/madhava-cloud/gateway/internal/usecase/registry"
)

// Apology is the fixed answer substituted when generation fails.
const Apology = "I apologize, but I encountered an error while processing your query. Please try again later."

// DefaultTopK is the retrieval depth used when none is configured.
const DefaultTopK = 3

// Service runs the query pipeline.
type Service struct {
	registry     *registry.Registry
	extract      Extractor
	gen          Generator
	snapshots    SnapshotWriter
	alerts       Notifier
	enrichers    map[domain.Domain]Enricher
	topK         int
	stageTimeout time.Duration
}

// New creates the pipeline service with the default enrichment variants
// (code and legal) registered.
func New(
	reg *registry.Registry,
	extract Extractor,
	gen Generator,
	snapshots SnapshotWriter,
	alerts Notifier,
) *Service {
	s := &Service{
		registry:  reg,
		extract:   extract,
		gen:       gen,
		snapshots: snapshots,
		alerts:    alerts,
		enrichers: map[domain.Domain]Enricher{},
		topK:      DefaultTopK,
	}
	s.enrichers[domain.Code] = &codeEnricher{gen: gen}
	s.enrichers[domain.Legal] = &legalEnricher{}
	return s
}

// WithTopK overrides the retrieval depth.
func (s *Service) WithTopK(k int) *Service {
	if k > 0 {
		s.topK = k
	}
	return s
}

// WithStageTimeout bounds each I/O stage. Zero disables the bound.
func (s *Service) WithStageTimeout(d time.Duration) *Service {
	s.stageTimeout = d
	return s
}

// WithEnricher registers an enrichment variant for a domain, replacing any
// existing one. New domains are supported by adding variants, not by
// changing the pipeline.
func (s *Service) WithEnricher(d domain.Domain, e Enricher) *Service {
	s.enrichers[d] = e
	return s
}

// Process runs the full pipeline for one query. The only returned errors are
// request-level: an invalid domain or empty query text. Everything else is
// contained per stage.
func (s *Service) Process(ctx context.Context, q domain.Query) (domain.Response, error) {
	if err := q.Validate(); err != nil {
		return domain.Response{}, err
	}

	d, backend, err := s.registry.Resolve(string(q.Domain))
	if err != nil {
		return domain.Response{}, err
	}

	start := time.Now()
	defer func() {
		metrics.QueryDuration.WithLabelValues(string(d)).Observe(time.Since(start).Seconds())
	}()

	log := logger.FromContext(ctx).With(zap.String("domain", string(d)))

	passages := s.retrieveStage(ctx, log, backend, q, d)
	bag := s.metricsStage(ctx, log, passages, d)
	answer := s.generationStage(ctx, log, q.Text, passages, d)
	insights := s.insightStage(ctx, log, d, bag)
	domainData := s.enrichmentStage(ctx, log, d, passages, bag)

	resp := domain.AssembleResponse(answer, passages, bag, insights, domainData)

	// Fire-and-forget: alerting never delays or fails response delivery.
	if !bag.IsEmpty() {
		s.alerts.Notify(domain.NewAlert(d, bag))
	}

	return resp, nil
}

// retrieveStage fetches the top-K passages. Contained: failure degrades to an
// empty context so generation still runs context-free.
func (s *Service) retrieveStage(
	ctx context.Context, log *zap.Logger, backend registry.Backend, q domain.Query, d domain.Domain,
) []domain.Passage {
	sctx, cancel := s.stageContext(ctx)
	defer cancel()

	passages, err := backend.Search(sctx, q.Text, s.topK, q.Filters)
	if err != nil {
		s.stageFailed(log, "retrieval", d, err)
		return nil
	}
	return passages
}

// metricsStage extracts and merges metrics passage by passage. Containment is
// per passage: a failing passage contributes nothing, the rest still merge.
func (s *Service) metricsStage(
	ctx context.Context, log *zap.Logger, passages []domain.Passage, d domain.Domain,
) domain.MetricsBag {
	bag := domain.MetricsBag{}

	for _, p := range passages {
		extracted, err := s.extract.Extract(p.Text, d)
		if err != nil {
			s.stageFailed(log, "metrics", d, err)
			continue
		}
		bag.Merge(extracted)
	}

	if !bag.IsEmpty() && s.snapshots != nil {
		sctx, cancel := s.stageContext(ctx)
		if err := s.snapshots.Record(sctx, d, bag); err != nil {
			s.stageFailed(log, "snapshot", d, err)
		}
		cancel()
	}

	return bag
}

// generationStage always runs, even with no context. Contained: failure
// substitutes the fixed apology string.
func (s *Service) generationStage(
	ctx context.Context, log *zap.Logger, queryText string, passages []domain.Passage, d domain.Domain,
) string {
	sctx, cancel := s.stageContext(ctx)
	defer cancel()

	answer, err := s.gen.GenerateResponse(sctx, queryText, passageTexts(passages), d)
	if err != nil {
		s.stageFailed(log, "generation", d, err)
		return Apology
	}
	return answer
}

// insightStage runs only when metrics exist. Contained: failure leaves the
// insights field null.
func (s *Service) insightStage(
	ctx context.Context, log *zap.Logger, d domain.Domain, bag domain.MetricsBag,
) *string {
	if bag.IsEmpty() {
		return nil
	}

	sctx, cancel := s.stageContext(ctx)
	defer cancel()

	text, err := s.gen.DomainInsights(sctx, d, bag)
	if err != nil {
		s.stageFailed(log, "insights", d, err)
		return nil
	}
	return &text
}

// enrichmentStage dispatches on the domain tag. Contained: a failing variant
// leaves its contribution partial or empty.
func (s *Service) enrichmentStage(
	ctx context.Context, log *zap.Logger, d domain.Domain, passages []domain.Passage, bag domain.MetricsBag,
) map[string]any {
	enricher, ok := s.enrichers[d]
	if !ok {
		return map[string]any{}
	}

	sctx, cancel := s.stageContext(ctx)
	defer cancel()

	data, err := enricher.Enrich(sctx, passages, bag)
	if err != nil {
		s.stageFailed(log, "enrichment", d, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data
}

func (s *Service) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.stageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.stageTimeout)
}

func (s *Service) stageFailed(log *zap.Logger, stage string, d domain.Domain, err error) {
	metrics.StageFailuresTotal.WithLabelValues(stage, string(d)).Inc()
	log.Warn("pipeline stage failed",
		zap.String("stage", stage),
		zap.Error(err),
	)
}

func passageTexts(passages []domain.Passage) []string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	return texts
}
