package domain

// MetricsBag is the merged structured-metric mapping derived from retrieved
// passages. Values are strings, numbers, or enum-like strings.
type MetricsBag map[string]any

// Merge folds other into the bag. Later writes win on key collision; there is
// no conflict resolution beyond that.
func (b MetricsBag) Merge(other MetricsBag) {
	for k, v := range other {
		b[k] = v
	}
}

// IsEmpty reports whether no stage contributed any metric entry.
func (b MetricsBag) IsEmpty() bool { return len(b) == 0 }

// GetString returns the metric value as a string, or fallback when the key is
// absent or not a string.
func (b MetricsBag) GetString(key, fallback string) string {
	if v, ok := b[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}
