package domain

import "time"

// Response is the composite answer assembled from all pipeline stages.
// Constructed once per request and never mutated after return.
//
// Context and Sources always have equal length and matching order. Metrics is
// nil exactly when no stage contributed any metric entry.
type Response struct {
	Answer     string         `json:"answer"`
	Context    []string       `json:"context"`
	Sources    []string       `json:"sources"`
	Metrics    MetricsBag     `json:"metrics,omitempty"`
	Insights   *string        `json:"insights"`
	DomainData map[string]any `json:"domain_specific_data"`
	Timestamp  string         `json:"timestamp"`
}

// AssembleResponse is the pure response assembler. The timestamp is computed
// at assembly time, not at request start. An empty metrics bag degrades to a
// nil Metrics field.
func AssembleResponse(
	answer string,
	passages []Passage,
	metrics MetricsBag,
	insights *string,
	domainData map[string]any,
) Response {
	contexts := make([]string, len(passages))
	sources := make([]string, len(passages))
	for i, p := range passages {
		contexts[i] = p.Text
		sources[i] = p.SourceID
	}

	if metrics.IsEmpty() {
		metrics = nil
	}
	if domainData == nil {
		domainData = map[string]any{}
	}

	return Response{
		Answer:     answer,
		Context:    contexts,
		Sources:    sources,
		Metrics:    metrics,
		Insights:   insights,
		DomainData: domainData,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}
