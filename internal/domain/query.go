package domain

// Query is a single natural-language request scoped to a domain.
// Created per request, never persisted.
type Query struct {
	Text    string
	Domain  Domain
	UserID  string
	Filters map[string]any
}

// Validate checks the request-level preconditions. Domain validity is the
// registry's concern; this only rejects structurally empty input.
func (q Query) Validate() error {
	if q.Text == "" {
		return ErrMissingQuery
	}
	return nil
}

// Passage is one unit of retrieved text plus its provenance identifier.
type Passage struct {
	Text     string
	SourceID string
}
