package query

import (
	"context"
	"errors"
	"testing"

	"github.com/madhava-cloud/gateway/internal/domain"
	"github.com/madhava-cloud/gateway/internal/usecase/registry"
)

// --- Mocks ---

type mockBackend struct {
	passages []domain.Passage
	err      error
	called   bool
	lastK    int
}

func (m *mockBackend) Search(
	_ context.Context, _ string, k int, _ map[string]any,
) ([]domain.Passage, error) {
	m.called = true
	m.lastK = k
	return m.passages, m.err
}

type mockExtractor struct {
	// perText maps passage text to its extraction result; absent text fails.
	perText map[string]domain.MetricsBag
	called  int
}

func (m *mockExtractor) Extract(text string, _ domain.Domain) (domain.MetricsBag, error) {
	m.called++
	bag, ok := m.perText[text]
	if !ok {
		return nil, errors.New("extraction blew up")
	}
	return bag, nil
}

type mockGenerator struct {
	answer      string
	answerErr   error
	insights    string
	insightsErr error

	genCalls      int
	insightCalls  int
	lastQuery     string
	lastPassages  []string
	analysisCalls int
	analysisErr   error
}

func (m *mockGenerator) GenerateResponse(
	_ context.Context, query string, passages []string, _ domain.Domain,
) (string, error) {
	if query == codeAnalysisPrompt {
		m.analysisCalls++
		if m.analysisErr != nil {
			return "", m.analysisErr
		}
		return "use better names", nil
	}
	m.genCalls++
	m.lastQuery = query
	m.lastPassages = passages
	return m.answer, m.answerErr
}

func (m *mockGenerator) DomainInsights(
	_ context.Context, _ domain.Domain, _ domain.MetricsBag,
) (string, error) {
	m.insightCalls++
	return m.insights, m.insightsErr
}

type mockSnapshots struct {
	recorded map[domain.Domain]domain.MetricsBag
	err      error
}

func (m *mockSnapshots) Record(_ context.Context, d domain.Domain, bag domain.MetricsBag) error {
	if m.err != nil {
		return m.err
	}
	if m.recorded == nil {
		m.recorded = map[domain.Domain]domain.MetricsBag{}
	}
	m.recorded[d] = bag
	return nil
}

type mockNotifier struct {
	alerts []domain.Alert
}

func (m *mockNotifier) Notify(a domain.Alert) { m.alerts = append(m.alerts, a) }

type fixture struct {
	backend   *mockBackend
	extract   *mockExtractor
	gen       *mockGenerator
	snapshots *mockSnapshots
	notifier  *mockNotifier
	svc       *Service
}

func newFixture(d domain.Domain) *fixture {
	f := &fixture{
		backend:   &mockBackend{},
		extract:   &mockExtractor{perText: map[string]domain.MetricsBag{}},
		gen:       &mockGenerator{answer: "generated answer", insights: "insightful"},
		snapshots: &mockSnapshots{},
		notifier:  &mockNotifier{},
	}
	reg := registry.FromMap(map[domain.Domain]registry.Backend{d: f.backend})
	f.svc = New(reg, f.extract, f.gen, f.snapshots, f.notifier)
	return f
}

func process(t *testing.T, f *fixture, q domain.Query) domain.Response {
	t.Helper()
	resp, err := f.svc.Process(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected pipeline error: %v", err)
	}
	return resp
}

// --- Tests ---

func TestProcess_UnknownDomain(t *testing.T) {
	f := newFixture(domain.Finance)

	_, err := f.svc.Process(context.Background(), domain.Query{Text: "hi", Domain: "astrology"})
	if !errors.Is(err, domain.ErrInvalidDomain) {
		t.Fatalf("expected ErrInvalidDomain, got %v", err)
	}

	// No stage may run and no alert may be emitted.
	if f.backend.called {
		t.Error("retrieval ran for an invalid domain")
	}
	if f.gen.genCalls != 0 {
		t.Error("generation ran for an invalid domain")
	}
	if len(f.notifier.alerts) != 0 {
		t.Error("alert emitted for an invalid domain")
	}
}

func TestProcess_MissingQueryText(t *testing.T) {
	f := newFixture(domain.Finance)

	_, err := f.svc.Process(context.Background(), domain.Query{Domain: domain.Finance})
	if !errors.Is(err, domain.ErrMissingQuery) {
		t.Fatalf("expected ErrMissingQuery, got %v", err)
	}
	if f.backend.called {
		t.Error("retrieval ran for an empty query")
	}
}

func TestProcess_ContextSourcesAligned(t *testing.T) {
	f := newFixture(domain.News)
	f.backend.passages = []domain.Passage{
		{Text: "alpha", SourceID: "s1"},
		{Text: "beta", SourceID: "s2"},
		{Text: "gamma", SourceID: "s3"},
	}
	f.extract.perText = map[string]domain.MetricsBag{"alpha": {}, "beta": {}, "gamma": {}}

	resp := process(t, f, domain.Query{Text: "q", Domain: domain.News})

	if len(resp.Context) != 3 || len(resp.Sources) != 3 {
		t.Fatalf("context/sources = %d/%d, want 3/3", len(resp.Context), len(resp.Sources))
	}
	for i, want := range []string{"s1", "s2", "s3"} {
		if resp.Sources[i] != want {
			t.Errorf("sources[%d] = %q, want %q (retrieval order must hold)", i, resp.Sources[i], want)
		}
	}
	if f.backend.lastK != DefaultTopK {
		t.Errorf("k = %d, want %d", f.backend.lastK, DefaultTopK)
	}
}

func TestProcess_EmptyMetrics_NoInsightsNoAlert(t *testing.T) {
	f := newFixture(domain.Travel)
	f.backend.passages = []domain.Passage{{Text: "plain", SourceID: "s1"}}
	f.extract.perText = map[string]domain.MetricsBag{"plain": {}}

	resp := process(t, f, domain.Query{Text: "q", Domain: domain.Travel})

	if resp.Metrics != nil {
		t.Errorf("metrics = %v, want nil for empty bag", resp.Metrics)
	}
	if resp.Insights != nil {
		t.Error("insights must be skipped when no metrics exist")
	}
	if f.gen.insightCalls != 0 {
		t.Error("insight stage invoked despite empty bag")
	}
	if len(f.notifier.alerts) != 0 {
		t.Error("alert stage invoked despite empty bag")
	}
}

func TestProcess_GenerationFailure_SubstitutesApology(t *testing.T) {
	f := newFixture(domain.Finance)
	f.backend.passages = []domain.Passage{{Text: "t", SourceID: "s1"}}
	f.extract.perText = map[string]domain.MetricsBag{"t": {"price": 10.0}}
	f.gen.answerErr = errors.New("model unavailable")

	resp := process(t, f, domain.Query{Text: "q", Domain: domain.Finance})

	if resp.Answer != Apology {
		t.Errorf("answer = %q, want apology string", resp.Answer)
	}
	// All other fields are unaffected.
	if len(resp.Context) != 1 || resp.Sources[0] != "s1" {
		t.Error("context/sources affected by generation failure")
	}
	if resp.Metrics == nil {
		t.Error("metrics affected by generation failure")
	}
	if resp.Insights == nil {
		t.Error("insights affected by generation failure")
	}
	if len(f.notifier.alerts) != 1 {
		t.Error("alert affected by generation failure")
	}
}

func TestProcess_MetricMergeLastWriteWins(t *testing.T) {
	f := newFixture(domain.Finance)
	f.backend.passages = []domain.Passage{
		{Text: "first", SourceID: "s1"},
		{Text: "second", SourceID: "s2"},
	}
	f.extract.perText = map[string]domain.MetricsBag{
		"first":  {"a": 1},
		"second": {"a": 2, "b": 3},
	}

	resp := process(t, f, domain.Query{Text: "q", Domain: domain.Finance})

	if resp.Metrics["a"] != 2 || resp.Metrics["b"] != 3 {
		t.Errorf("merged bag = %v, want {a:2 b:3}", resp.Metrics)
	}
}

func TestProcess_PerPassageExtractionIsolation(t *testing.T) {
	f := newFixture(domain.Finance)
	f.backend.passages = []domain.Passage{
		{Text: "poison", SourceID: "s1"}, // not in perText -> extraction error
		{Text: "good", SourceID: "s2"},
	}
	f.extract.perText = map[string]domain.MetricsBag{"good": {"price": 42.0}}

	resp := process(t, f, domain.Query{Text: "q", Domain: domain.Finance})

	if resp.Metrics["price"] != 42.0 {
		t.Errorf("surviving passage's metrics lost: %v", resp.Metrics)
	}
	if f.extract.called != 2 {
		t.Errorf("extractor called %d times, want 2", f.extract.called)
	}
}

func TestProcess_RetrievalFailure_StillAnswers(t *testing.T) {
	f := newFixture(domain.Support)
	f.backend.err = errors.New("index offline")

	resp := process(t, f, domain.Query{Text: "q", Domain: domain.Support})

	if len(resp.Context) != 0 || len(resp.Sources) != 0 {
		t.Error("expected empty context/sources after retrieval failure")
	}
	if resp.Answer != "generated answer" {
		t.Errorf("answer = %q, want context-free generation to proceed", resp.Answer)
	}
	if len(f.gen.lastPassages) != 0 {
		t.Error("generation should have received no context")
	}
}

func TestProcess_InsightFailureOnlyNullsInsights(t *testing.T) {
	f := newFixture(domain.Finance)
	f.backend.passages = []domain.Passage{{Text: "t", SourceID: "s1"}}
	f.extract.perText = map[string]domain.MetricsBag{"t": {"price": 1.0}}
	f.gen.insightsErr = errors.New("insight model down")

	resp := process(t, f, domain.Query{Text: "q", Domain: domain.Finance})

	if resp.Insights != nil {
		t.Error("insights must be nil on failure")
	}
	if resp.Answer != "generated answer" {
		t.Error("answer affected by insight failure")
	}
	if resp.Metrics == nil {
		t.Error("metrics affected by insight failure")
	}
	if len(f.notifier.alerts) != 1 {
		t.Error("alerting affected by insight failure")
	}
}

func TestProcess_SnapshotFailureContained(t *testing.T) {
	f := newFixture(domain.Finance)
	f.backend.passages = []domain.Passage{{Text: "t", SourceID: "s1"}}
	f.extract.perText = map[string]domain.MetricsBag{"t": {"price": 1.0}}
	f.snapshots.err = errors.New("redis down")

	resp := process(t, f, domain.Query{Text: "q", Domain: domain.Finance})

	if resp.Metrics == nil {
		t.Error("metrics lost to snapshot failure")
	}
}

func TestProcess_CodeEnrichment(t *testing.T) {
	f := newFixture(domain.Code)
	f.backend.passages = []domain.Passage{{Text: "func main() {}", SourceID: "s1"}}
	f.extract.perText = map[string]domain.MetricsBag{
		"func main() {}": {"complexity": "O(n)", "language": "go"},
	}

	resp := process(t, f, domain.Query{Text: "review this", Domain: domain.Code})

	analysis, ok := resp.DomainData["code_analysis"].(map[string]any)
	if !ok {
		t.Fatalf("code_analysis missing: %v", resp.DomainData)
	}
	if analysis["complexity"] != "O(n)" {
		t.Errorf("complexity = %v", analysis["complexity"])
	}
	if analysis["language"] != "go" {
		t.Errorf("language = %v", analysis["language"])
	}
	if analysis["suggestions"] != "use better names" {
		t.Errorf("suggestions = %v", analysis["suggestions"])
	}
	if f.gen.analysisCalls != 1 {
		t.Errorf("secondary generation calls = %d, want 1", f.gen.analysisCalls)
	}
}

func TestProcess_CodeEnrichment_AbsentMetricsYieldSentinels(t *testing.T) {
	f := newFixture(domain.Code)
	f.backend.passages = []domain.Passage{{Text: "snippet", SourceID: "s1"}}
	f.extract.perText = map[string]domain.MetricsBag{"snippet": {"unrelated": "x"}}

	resp := process(t, f, domain.Query{Text: "q", Domain: domain.Code})

	analysis := resp.DomainData["code_analysis"].(map[string]any)
	if analysis["complexity"] != "N/A" || analysis["language"] != "N/A" {
		t.Errorf("missing metrics must yield N/A sentinels: %v", analysis)
	}
}

func TestProcess_CodeEnrichmentFailureLeavesDataEmpty(t *testing.T) {
	f := newFixture(domain.Code)
	f.backend.passages = []domain.Passage{{Text: "snippet", SourceID: "s1"}}
	f.extract.perText = map[string]domain.MetricsBag{"snippet": {"language": "go"}}
	f.gen.analysisErr = errors.New("secondary generation failed")

	resp := process(t, f, domain.Query{Text: "q", Domain: domain.Code})

	if len(resp.DomainData) != 0 {
		t.Errorf("domain data = %v, want empty after enrichment failure", resp.DomainData)
	}
	// The rest of the response is unaffected.
	if resp.Answer != "generated answer" {
		t.Error("answer affected by enrichment failure")
	}
	if resp.Metrics == nil {
		t.Error("metrics affected by enrichment failure")
	}
}

func TestProcess_LegalScenario(t *testing.T) {
	f := newFixture(domain.Legal)
	f.backend.passages = []domain.Passage{{Text: "risk doc", SourceID: "case-1"}}
	f.extract.perText = map[string]domain.MetricsBag{
		"risk doc": {"jurisdiction": "US", "risk_level": "medium"},
	}

	resp := process(t, f, domain.Query{Text: "What are current risk factors?", Domain: domain.Legal})

	analysis, ok := resp.DomainData["legal_analysis"].(map[string]any)
	if !ok {
		t.Fatalf("legal_analysis missing: %v", resp.DomainData)
	}
	want := map[string]any{
		"jurisdiction":      "US",
		"risk_level":        "medium",
		"compliance_status": "N/A",
	}
	for k, v := range want {
		if analysis[k] != v {
			t.Errorf("%s = %v, want %v", k, analysis[k], v)
		}
	}
}

func TestProcess_OtherDomainsGetEmptyData(t *testing.T) {
	f := newFixture(domain.Education)
	f.backend.passages = []domain.Passage{{Text: "t", SourceID: "s1"}}
	f.extract.perText = map[string]domain.MetricsBag{"t": {}}

	resp := process(t, f, domain.Query{Text: "q", Domain: domain.Education})

	if len(resp.DomainData) != 0 {
		t.Errorf("domain data = %v, want empty mapping", resp.DomainData)
	}
}

func TestProcess_AlertCarriesDomainAndMetrics(t *testing.T) {
	f := newFixture(domain.Legal)
	f.backend.passages = []domain.Passage{{Text: "t", SourceID: "s1"}}
	f.extract.perText = map[string]domain.MetricsBag{"t": {"risk_level": "high"}}

	process(t, f, domain.Query{Text: "q", Domain: domain.Legal})

	if len(f.notifier.alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(f.notifier.alerts))
	}
	a := f.notifier.alerts[0]
	if a.Category != "legal_alert" {
		t.Errorf("category = %q", a.Category)
	}
	if a.Payload["domain"] != "legal" || a.Payload["risk_level"] != "high" {
		t.Errorf("payload = %v", a.Payload)
	}
	if a.Severity != domain.SeverityWarning {
		t.Errorf("severity = %q, want warning for high risk", a.Severity)
	}
}

func TestProcess_SnapshotRecordsMergedBag(t *testing.T) {
	f := newFixture(domain.Finance)
	f.backend.passages = []domain.Passage{{Text: "t", SourceID: "s1"}}
	f.extract.perText = map[string]domain.MetricsBag{"t": {"price": 5.0}}

	process(t, f, domain.Query{Text: "q", Domain: domain.Finance})

	if f.snapshots.recorded[domain.Finance]["price"] != 5.0 {
		t.Errorf("snapshot = %v", f.snapshots.recorded)
	}
}
