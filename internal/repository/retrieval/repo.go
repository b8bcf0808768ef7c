// Package retrieval implements per-domain similarity search over FT indexes.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/madhava-cloud/gateway/internal/db"
	"github.com/madhava-cloud/gateway/internal/domain"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Backend retrieves the top-K most relevant passages for one domain.
// Each domain owns a dedicated FT index named <prefix><domain>:idx.
type Backend struct {
	store  store
	embed  Embedder
	domain domain.Domain
	prefix string
}

// NewBackend creates a retrieval backend bound to a single domain index.
func NewBackend(s store, embed Embedder, d domain.Domain, keyPrefix string) *Backend {
	return &Backend{store: s, embed: embed, domain: d, prefix: keyPrefix}
}

// Domain returns the domain this backend serves.
func (b *Backend) Domain() domain.Domain { return b.domain }

// Search embeds the query and returns up to k passages ordered by relevance
// descending. Filters are applied as opaque metadata constraints.
func (b *Backend) Search(
	ctx context.Context, query string, k int, filters map[string]any,
) ([]domain.Passage, error) {
	vector, err := b.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	q := &db.KNNQuery{
		IndexName:    fmt.Sprintf("%s%s:idx", b.prefix, b.domain),
		Vector:       vector,
		K:            k,
		Filter:       buildFilter(filters),
		ReturnFields: []string{"__content", "source_id", "__vector_score"},
	}

	sr, err := b.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", b.domain, err)
	}

	return passagesFromResult(sr), nil
}

// passagesFromResult maps search hits to passages, preserving relevance order.
func passagesFromResult(sr *db.SearchResult) []domain.Passage {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	passages := make([]domain.Passage, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		sourceID := entry.Fields["source_id"]
		if sourceID == "" {
			sourceID = entry.Key
		}
		passages = append(passages, domain.Passage{
			Text:     entry.Fields["__content"],
			SourceID: sourceID,
		})
	}
	return passages
}

// buildFilter translates caller metadata constraints into an FT.SEARCH
// pre-filter string: every entry becomes a tag equality condition.
func buildFilter(filters map[string]any) string {
	if len(filters) == 0 {
		return ""
	}

	parts := make([]string, 0, len(filters))
	for key, value := range filters {
		parts = append(parts, fmt.Sprintf("@%s:{%s}", key, tagEscaper.Replace(fmt.Sprintf("%v", value))))
	}
	return strings.Join(parts, " ")
}

// tagEscaper escapes RediSearch tag syntax characters in filter values.
var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)
