// Package extractor derives structured metrics from passage text using
// per-domain heuristics.
package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/madhava-cloud/gateway/internal/domain"
)

// Extractor extracts domain-specific metrics from retrieved passages.
type Extractor struct{}

// New creates an extractor.
func New() *Extractor { return &Extractor{} }

var (
	amountRe     = regexp.MustCompile(`\$\s?([\d,]+(?:\.\d+)?)`)
	percentRe    = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s?%`)
	tickerRe     = regexp.MustCompile(`\b[A-Z]{2,5}\b(?:\s+(?:stock|shares))`)
	complexityRe = regexp.MustCompile(`O\([^)]+\)`)
	dosageRe     = regexp.MustCompile(`(\d+(?:\.\d+)?)\s?(mg|ml|mcg|units)\b`)
	ratingRe     = regexp.MustCompile(`(\d(?:\.\d)?)\s?(?:/\s?5|stars?)`)
)

// riskTerms maps phrasing to the canonical risk level, checked in order so
// the most severe phrasing wins.
var riskTerms = []struct{ term, level string }{
	{"critical risk", "critical"},
	{"high risk", "high"},
	{"medium risk", "medium"},
	{"moderate risk", "medium"},
	{"low risk", "low"},
}

var jurisdictions = []string{"US", "EU", "UK", "California", "New York", "Germany", "France"}

// languageMarkers maps source-text fragments to a language tag. Order matters:
// more distinctive markers come first.
var languageMarkers = []struct{ marker, lang string }{
	{"func ", "go"},
	{"package main", "go"},
	{"def ", "python"},
	{"import numpy", "python"},
	{"const ", "javascript"},
	{"function ", "javascript"},
	{"public class", "java"},
	{"fn ", "rust"},
}

// Extract derives metrics from a single passage. Unrecognized text yields an
// empty bag, not an error.
func (e *Extractor) Extract(text string, d domain.Domain) (domain.MetricsBag, error) {
	bag := domain.MetricsBag{}

	switch d {
	case domain.Finance:
		extractFinance(text, bag)
	case domain.Legal:
		extractLegal(text, bag)
	case domain.Code:
		extractCode(text, bag)
	case domain.Healthcare:
		extractHealthcare(text, bag)
	case domain.Ecommerce:
		extractEcommerce(text, bag)
	default:
		extractGeneric(text, bag)
	}

	return bag, nil
}

func extractFinance(text string, bag domain.MetricsBag) {
	if m := amountRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			bag["price"] = v
		}
	}
	if m := percentRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			bag["change_percent"] = v
		}
	}
	if m := tickerRe.FindString(text); m != "" {
		bag["ticker"] = strings.Fields(m)[0]
	}
}

func extractLegal(text string, bag domain.MetricsBag) {
	lower := strings.ToLower(text)

	for _, j := range jurisdictions {
		if strings.Contains(text, j) {
			bag["jurisdiction"] = j
			break
		}
	}
	for _, rt := range riskTerms {
		if strings.Contains(lower, rt.term) {
			bag["risk_level"] = rt.level
			break
		}
	}
	// "non-compliant" contains "compliant"; check the negation first.
	if strings.Contains(lower, "non-compliant") {
		bag["compliance_status"] = "non-compliant"
	} else if strings.Contains(lower, "compliant") {
		bag["compliance_status"] = "compliant"
	}
}

func extractCode(text string, bag domain.MetricsBag) {
	for _, lm := range languageMarkers {
		if strings.Contains(text, lm.marker) {
			bag["language"] = lm.lang
			break
		}
	}
	if m := complexityRe.FindString(text); m != "" {
		bag["complexity"] = m
	}
}

func extractHealthcare(text string, bag domain.MetricsBag) {
	if m := dosageRe.FindStringSubmatch(text); m != nil {
		bag["dosage"] = m[1] + m[2]
	}
	if m := percentRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			bag["efficacy_percent"] = v
		}
	}
}

func extractEcommerce(text string, bag domain.MetricsBag) {
	if m := amountRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			bag["price"] = v
		}
	}
	if m := ratingRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			bag["rating"] = v
		}
	}
}

func extractGeneric(text string, bag domain.MetricsBag) {
	if m := percentRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			bag["percent"] = v
		}
	}
}
