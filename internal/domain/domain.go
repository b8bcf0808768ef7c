// Package domain holds the core gateway types: domains, queries, passages,
// metric bags, responses, and alerts.
package domain

import "fmt"

// Domain is a tag from the closed set of supported knowledge domains.
// It selects the retrieval backend and the enrichment branch for a query.
type Domain string

// Supported domains.
const (
	Finance    Domain = "finance"
	Healthcare Domain = "healthcare"
	Legal      Domain = "legal"
	News       Domain = "news"
	Ecommerce  Domain = "ecommerce"
	Code       Domain = "code"
	Education  Domain = "education"
	Support    Domain = "support"
	Travel     Domain = "travel"
	RealEstate Domain = "realestate"
)

// allDomains is the closed set. Order is stable for deterministic registry
// construction and /status output.
var allDomains = []Domain{
	Finance, Healthcare, Legal, News, Ecommerce,
	Code, Education, Support, Travel, RealEstate,
}

// Domains returns the closed set of supported domains.
func Domains() []Domain {
	out := make([]Domain, len(allDomains))
	copy(out, allDomains)
	return out
}

// ParseDomain validates a raw tag against the closed set.
func ParseDomain(s string) (Domain, error) {
	d := Domain(s)
	for _, known := range allDomains {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDomain, s)
}

// String implements fmt.Stringer.
func (d Domain) String() string { return string(d) }
