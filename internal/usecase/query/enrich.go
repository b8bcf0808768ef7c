package query

import (
	"context"

	"github.com/madhava-cloud/gateway/internal/domain"
)

// metricSentinel marks a metric the extractor did not produce.
const metricSentinel = "N/A"

// codeAnalysisPrompt drives the secondary generation call for the code domain.
const codeAnalysisPrompt = "Analyze this code and suggest improvements"

// codeEnricher attaches code_analysis: a secondary generation pass over the
// same context plus complexity/language pulled from the metric bag.
type codeEnricher struct {
	gen Generator
}

func (e *codeEnricher) Enrich(
	ctx context.Context, passages []domain.Passage, bag domain.MetricsBag,
) (map[string]any, error) {
	suggestions, err := e.gen.GenerateResponse(ctx, codeAnalysisPrompt, passageTexts(passages), domain.Code)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"code_analysis": map[string]any{
			"suggestions": suggestions,
			"complexity":  bag.GetString("complexity", metricSentinel),
			"language":    bag.GetString("language", metricSentinel),
		},
	}, nil
}

// legalEnricher attaches legal_analysis: a re-projection of the compliance
// metrics with N/A sentinels for anything the extractor missed.
type legalEnricher struct{}

func (e *legalEnricher) Enrich(
	_ context.Context, _ []domain.Passage, bag domain.MetricsBag,
) (map[string]any, error) {
	return map[string]any{
		"legal_analysis": map[string]any{
			"jurisdiction":      bag.GetString("jurisdiction", metricSentinel),
			"risk_level":        bag.GetString("risk_level", metricSentinel),
			"compliance_status": bag.GetString("compliance_status", metricSentinel),
		},
	}, nil
}
