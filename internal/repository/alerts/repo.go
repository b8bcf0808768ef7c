// Package alerts persists the alert history ring in Redis.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/madhava-cloud/gateway/internal/domain"
)

// store is the consumer interface for history operations (ISP).
type store interface {
	LPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LTrim(ctx context.Context, key string, start, stop int64) error
}

// Repo stores alerts newest-first in a capped Redis list.
type Repo struct {
	store store
	key   string
	cap   int64
}

// New creates an alert history repository. maxEntries caps the ring.
func New(s store, keyPrefix string, maxEntries int) *Repo {
	return &Repo{store: s, key: keyPrefix + "alerts", cap: int64(maxEntries)}
}

// Append records an alert and trims the ring to its cap.
func (r *Repo) Append(ctx context.Context, a domain.Alert) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	if err := r.store.LPush(ctx, r.key, string(data)); err != nil {
		return fmt.Errorf("push alert: %w", err)
	}
	if err := r.store.LTrim(ctx, r.key, 0, r.cap-1); err != nil {
		return fmt.Errorf("trim alert history: %w", err)
	}
	return nil
}

// History returns up to limit alerts, newest first, optionally filtered by
// domain tag and severity. Entries that fail to decode are skipped.
func (r *Repo) History(ctx context.Context, d, severity string, limit int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = 50
	}

	raw, err := r.store.LRange(ctx, r.key, 0, r.cap-1)
	if err != nil {
		return nil, fmt.Errorf("read alert history: %w", err)
	}

	out := make([]domain.Alert, 0, limit)
	for _, item := range raw {
		var a domain.Alert
		if json.Unmarshal([]byte(item), &a) != nil {
			continue
		}
		if d != "" && a.Payload["domain"] != d {
			continue
		}
		if severity != "" && a.Severity != severity {
			continue
		}
		out = append(out, a)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
