package alerts

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/madhava-cloud/gateway/internal/domain"
)

// mockStore keeps the list in memory, newest first, honoring LTRIM.
type mockStore struct {
	items   []string
	pushErr error
}

func (m *mockStore) LPush(_ context.Context, _ string, values ...string) error {
	if m.pushErr != nil {
		return m.pushErr
	}
	for _, v := range values {
		m.items = append([]string{v}, m.items...)
	}
	return nil
}

func (m *mockStore) LRange(_ context.Context, _ string, start, stop int64) ([]string, error) {
	if start >= int64(len(m.items)) {
		return nil, nil
	}
	end := stop + 1
	if end > int64(len(m.items)) || stop < 0 {
		end = int64(len(m.items))
	}
	return m.items[start:end], nil
}

func (m *mockStore) LTrim(_ context.Context, _ string, start, stop int64) error {
	if start >= int64(len(m.items)) {
		m.items = nil
		return nil
	}
	end := stop + 1
	if end > int64(len(m.items)) {
		end = int64(len(m.items))
	}
	m.items = m.items[start:end]
	return nil
}

func TestAppend_NewestFirstAndCapped(t *testing.T) {
	store := &mockStore{}
	repo := New(store, "madhava:", 2)

	for _, d := range []domain.Domain{domain.Finance, domain.Legal, domain.News} {
		if err := repo.Append(context.Background(), domain.NewAlert(d, domain.MetricsBag{"k": "v"})); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if len(store.items) != 2 {
		t.Fatalf("ring not capped: %d entries", len(store.items))
	}

	var newest domain.Alert
	if err := json.Unmarshal([]byte(store.items[0]), &newest); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if newest.Category != "news_alert" {
		t.Errorf("newest = %q, want news_alert", newest.Category)
	}
}

func TestHistory_Filters(t *testing.T) {
	store := &mockStore{}
	repo := New(store, "madhava:", 100)

	ctx := context.Background()
	mustAppend(t, repo, ctx, domain.NewAlert(domain.Legal, domain.MetricsBag{"risk_level": "high"}))
	mustAppend(t, repo, ctx, domain.NewAlert(domain.Legal, domain.MetricsBag{"risk_level": "low"}))
	mustAppend(t, repo, ctx, domain.NewAlert(domain.Finance, domain.MetricsBag{"price": 10}))

	byDomain, err := repo.History(ctx, "legal", "", 50)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(byDomain) != 2 {
		t.Errorf("domain filter: got %d, want 2", len(byDomain))
	}

	bySeverity, err := repo.History(ctx, "", domain.SeverityWarning, 50)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(bySeverity) != 1 {
		t.Errorf("severity filter: got %d, want 1", len(bySeverity))
	}

	limited, err := repo.History(ctx, "", "", 1)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit: got %d, want 1", len(limited))
	}
}

func TestHistory_SkipsCorruptEntries(t *testing.T) {
	store := &mockStore{items: []string{"{not json"}}
	repo := New(store, "madhava:", 100)

	mustAppend(t, repo, context.Background(), domain.NewAlert(domain.Code, domain.MetricsBag{"language": "go"}))

	got, err := repo.History(context.Background(), "", "", 50)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d alerts, corrupt entry should be skipped", len(got))
	}
}

func mustAppend(t *testing.T, repo *Repo, ctx context.Context, a domain.Alert) {
	t.Helper()
	if err := repo.Append(ctx, a); err != nil {
		t.Fatalf("append: %v", err)
	}
}
