// Package snapshot persists the latest extracted metrics per domain.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/madhava-cloud/gateway/internal/domain"
)

// store is the consumer interface for snapshot operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo keeps a per-domain hash of the most recently extracted metric values.
type Repo struct {
	store  store
	prefix string
}

// New creates a metrics snapshot repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

func (r *Repo) key(d domain.Domain) string {
	return fmt.Sprintf("%smetrics:%s", r.prefix, d)
}

// Record merges a request's metric bag into the domain snapshot.
// Values are JSON-encoded so numbers round-trip.
func (r *Repo) Record(ctx context.Context, d domain.Domain, bag domain.MetricsBag) error {
	if bag.IsEmpty() {
		return nil
	}

	fields := make(map[string]string, len(bag))
	for k, v := range bag {
		data, err := json.Marshal(v)
		if err != nil {
			continue
		}
		fields[k] = string(data)
	}

	if err := r.store.HSet(ctx, r.key(d), fields); err != nil {
		return fmt.Errorf("record %s metrics: %w", d, err)
	}
	return nil
}

// Get returns the current snapshot for a domain. Missing domains yield an
// empty bag.
func (r *Repo) Get(ctx context.Context, d domain.Domain) (domain.MetricsBag, error) {
	fields, err := r.store.HGetAll(ctx, r.key(d))
	if err != nil {
		return nil, fmt.Errorf("read %s metrics: %w", d, err)
	}

	bag := make(domain.MetricsBag, len(fields))
	for k, raw := range fields {
		var v any
		if json.Unmarshal([]byte(raw), &v) != nil {
			v = raw
		}
		bag[k] = v
	}
	return bag, nil
}
