package guard

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pageguard/pageguard/internal/cache"
	"github.com/pageguard/pageguard/internal/extract"
	"github.com/pageguard/pageguard/internal/firewall"
	"github.com/pageguard/pageguard/internal/settings"
)

// testBackend is a stand-in safety service recording which endpoint was hit.
type testBackend struct {
	askCalls  atomic.Int32
	scanCalls atomic.Int32
	server    *httptest.Server
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	b := &testBackend{}
	mux := http.NewServeMux()
	mux.HandleFunc("/safe-ask", func(w http.ResponseWriter, r *http.Request) {
		b.askCalls.Add(1)
		_, _ = fmt.Fprint(w, `{"status": "ok", "answer": "A demo page.", "risk_score": 0.05}`)
	})
	mux.HandleFunc("/scan-html", func(w http.ResponseWriter, r *http.Request) {
		b.scanCalls.Add(1)
		_, _ = fmt.Fprint(w, `{"is_safe": true, "risk_score": 0.1, "request_id": "req-1"}`)
	})
	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *testBackend) factory() ClientFactory {
	return func(s settings.Settings) *firewall.Client {
		return firewall.NewClient(firewall.Config{
			Endpoint: b.server.URL,
			APIKey:   s.APIKey,
			Timeout:  time.Second,
		})
	}
}

func testStore(t *testing.T, p settings.Partial) *settings.Store {
	t.Helper()
	st := settings.NewStore(filepath.Join(t.TempDir(), "config.yaml"))
	if err := st.Save(p); err != nil {
		t.Fatal(err)
	}
	return st
}

func boolPtr(b bool) *bool { return &b }

func page(url string) *extract.PageContent {
	return &extract.PageContent{HTML: "<html><body>ten kilobytes of harmless text</body></html>", URL: url}
}

func TestAskPage_NormalModeUsesFullAnswerEndpoint(t *testing.T) {
	backend := newTestBackend(t)
	st := testStore(t, settings.Partial{})
	g := New(st, nil, WithClientFactory(backend.factory()))

	v, err := g.AskPage(context.Background(), page("https://example.com"), "Summarize this page")
	if err != nil {
		t.Fatalf("AskPage failed: %v", err)
	}
	if v.Outcome != firewall.OutcomeSafe || v.AnswerText != "A demo page." {
		t.Errorf("unexpected verdict: %+v", v)
	}
	if backend.askCalls.Load() != 1 || backend.scanCalls.Load() != 0 {
		t.Errorf("expected one /safe-ask call, got ask=%d scan=%d", backend.askCalls.Load(), backend.scanCalls.Load())
	}
}

func TestAskPage_ScanOnlySettingDowngradesQuery(t *testing.T) {
	backend := newTestBackend(t)
	st := testStore(t, settings.Partial{ScanOnly: boolPtr(true)})
	g := New(st, nil, WithClientFactory(backend.factory()))

	v, err := g.AskPage(context.Background(), page("https://example.com"), "Summarize this page")
	if err != nil {
		t.Fatal(err)
	}
	if v.AnswerText != "" {
		t.Errorf("scan-only action must not produce an answer: %+v", v)
	}
	if backend.askCalls.Load() != 0 || backend.scanCalls.Load() != 1 {
		t.Errorf("query must be dropped in scan-only mode, got ask=%d scan=%d", backend.askCalls.Load(), backend.scanCalls.Load())
	}
}

func TestPerform_EnterpriseDomainCheck(t *testing.T) {
	backend := newTestBackend(t)
	domains := []string{"docs.company.com"}
	st := testStore(t, settings.Partial{EnterpriseMode: boolPtr(true), AllowedDomains: &domains})
	g := New(st, nil, WithClientFactory(backend.factory()))

	// Off-list host: rejected before any dispatch.
	_, err := g.ScanPage(context.Background(), page("https://evil.com/x"))
	if !firewall.IsKind(err, firewall.KindDomainNotAllowed) {
		t.Fatalf("expected domain_not_allowed, got %v", err)
	}
	if backend.scanCalls.Load() != 0 {
		t.Errorf("blocked domain must not reach the network")
	}

	// Subdomain of a listed entry: allowed.
	if _, err := g.ScanPage(context.Background(), page("https://api.docs.company.com/x")); err != nil {
		t.Fatalf("allow-listed subdomain rejected: %v", err)
	}
	if backend.scanCalls.Load() != 1 {
		t.Errorf("expected one scan dispatch, got %d", backend.scanCalls.Load())
	}
}

func TestPerform_AllowListNotAppliedOutsideEnterprise(t *testing.T) {
	backend := newTestBackend(t)
	domains := []string{"docs.company.com"}
	st := testStore(t, settings.Partial{ScanOnly: boolPtr(true), AllowedDomains: &domains})
	g := New(st, nil, WithClientFactory(backend.factory()))

	if _, err := g.ScanPage(context.Background(), page("https://evil.com/x")); err != nil {
		t.Fatalf("allow-list must not gate non-enterprise modes: %v", err)
	}
}

func TestPerform_HooksFire(t *testing.T) {
	var blocked, allowed atomic.Int32
	hooks := Hooks{
		OnBlocked: func(*firewall.Verdict) { blocked.Add(1) },
		OnAllowed: func(*firewall.Verdict) { allowed.Add(1) },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/scan-html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"is_safe": false, "risk_score": 0.92, "reason": "Injection detected"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	st := testStore(t, settings.Partial{ScanOnly: boolPtr(true)})
	g := New(st, nil, WithHooks(hooks), WithClientFactory(func(s settings.Settings) *firewall.Client {
		return firewall.NewClient(firewall.Config{Endpoint: server.URL, Timeout: time.Second})
	}))

	v, err := g.ScanPage(context.Background(), page("https://hacker.com"))
	if err != nil {
		t.Fatal(err)
	}
	if v.Outcome != firewall.OutcomeBlocked || v.Reason != "Injection detected" {
		t.Errorf("unexpected verdict: %+v", v)
	}
	if blocked.Load() != 1 || allowed.Load() != 0 {
		t.Errorf("expected one blocked hook, got blocked=%d allowed=%d", blocked.Load(), allowed.Load())
	}
}

func TestPerform_CacheHitSkipsDispatch(t *testing.T) {
	backend := newTestBackend(t)
	st := testStore(t, settings.Partial{ScanOnly: boolPtr(true)})

	var allowed atomic.Int32
	g := New(st, nil,
		WithClientFactory(backend.factory()),
		WithVerdictCache(cache.NewVerdictsWith(cache.NewMemory(time.Minute))),
		WithHooks(Hooks{OnAllowed: func(*firewall.Verdict) { allowed.Add(1) }}),
	)

	p := page("https://example.com")
	if _, err := g.ScanPage(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if _, err := g.ScanPage(context.Background(), p); err != nil {
		t.Fatal(err)
	}

	if backend.scanCalls.Load() != 1 {
		t.Errorf("second scan of identical content must hit the cache, got %d dispatches", backend.scanCalls.Load())
	}
	if allowed.Load() != 2 {
		t.Errorf("cached verdicts must replay hooks, got %d", allowed.Load())
	}
}

func TestGate_SingleFlight(t *testing.T) {
	var gate Gate
	if err := gate.Acquire(); err != nil {
		t.Fatal(err)
	}
	if err := gate.Acquire(); err != ErrActionInFlight {
		t.Fatalf("expected ErrActionInFlight, got %v", err)
	}
	gate.Release()
	if err := gate.Acquire(); err != nil {
		t.Fatalf("gate must reopen after release: %v", err)
	}
}

func TestRun_EndToEnd(t *testing.T) {
	// Page host and safety backend are separate servers, like the real
	// topology.
	pageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `<html><head><title>Demo</title></head><body>content</body></html>`)
	}))
	defer pageServer.Close()

	backend := newTestBackend(t)
	st := testStore(t, settings.Partial{})
	g := New(st, extract.NewExtractor(time.Second, "test-agent"), WithClientFactory(backend.factory()))

	v, err := g.Ask(context.Background(), pageServer.URL, "Summarize this page")
	if err != nil {
		t.Fatalf("end-to-end ask failed: %v", err)
	}
	if v.Outcome != firewall.OutcomeSafe || v.AnswerText == "" {
		t.Errorf("expected safe verdict with answer, got %+v", v)
	}
}
