package httpapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/calltime/callboard/internal/callboard/service"
	"github.com/calltime/callboard/internal/callboard/store/memory"
	"github.com/calltime/callboard/internal/callboard/types"
	"github.com/calltime/callboard/internal/httpapi"
)

// newTestServer wires up the full dependency graph using in-memory stores
// and returns an httptest.Server whose URL can be hit with a plain http.Client.
func newTestServer(t *testing.T, opts ...func(*httpapi.Dependencies)) *httptest.Server {
	t.Helper()

	docs := memory.NewDocumentStore()
	audit := memory.NewAccessLog()
	svc := service.NewStatusService(docs, audit, log.New(io.Discard, "", 0))

	deps := httpapi.Dependencies{
		Logger:        log.New(io.Discard, "", 0),
		Addr:          ":0",
		StatusService: svc,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	srv := httpapi.NewServer(deps)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func withToken(token string) func(*httpapi.Dependencies) {
	return func(d *httpapi.Dependencies) { d.WriteToken = token }
}

func withMetrics() func(*httpapi.Dependencies) {
	return func(d *httpapi.Dependencies) { d.Metrics = httpapi.NewMetrics() }
}

// ── Fetch ────────────────────────────────────────────────────────────────────

func TestFetch_EmptyStore_ReturnsEmptyObject(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	if strings.TrimSpace(string(body)) != `{}` {
		t.Errorf("expected {}, got %q", body)
	}
}

func TestFetch_ResponseHeaders_CORSAndNoCache(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	h := resp.Header
	if got := h.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin: got %q", got)
	}
	if got := h.Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("allow-methods: got %q", got)
	}
	if got := h.Get("Cache-Control"); !strings.Contains(got, "no-cache") {
		t.Errorf("cache-control: got %q", got)
	}
	if h.Get("Pragma") != "no-cache" {
		t.Errorf("pragma: got %q", h.Get("Pragma"))
	}
	if h.Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}
}

// ── Replace ──────────────────────────────────────────────────────────────────

func TestReplace_ThenFetch_RoundTrips(t *testing.T) {
	ts := newTestServer(t)

	doc := `{"rec1":{"status":"called","timestamp":"2026-08-28T09:00:00Z"},"rec2":"pending"}`
	resp, err := http.Post(ts.URL+"/status", "application/json", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var ack types.ReplaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if !ack.Success {
		t.Error("expected success=true")
	}
	if ack.Items != 2 {
		t.Errorf("items: got %d, want 2", ack.Items)
	}

	getResp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer getResp.Body.Close()

	var m map[string]any
	if err := json.NewDecoder(getResp.Body).Decode(&m); err != nil {
		t.Fatalf("decode doc: %v", err)
	}
	if len(m) != 2 {
		t.Errorf("expected 2 keys, got %v", m)
	}
	if m["rec2"] != "pending" {
		t.Errorf("rec2: got %v", m["rec2"])
	}
}

func TestReplace_InvalidBody_Returns400(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []string{``, `not json`, `null`} {
		resp, err := http.Post(ts.URL+"/status", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("post %q: %v", body, err)
		}

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, resp.StatusCode)
		}

		var e types.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
			t.Errorf("body %q: decode error response: %v", body, err)
		} else if e.Error == "" {
			t.Errorf("body %q: expected an error message", body)
		}
		resp.Body.Close()
	}
}

func TestReplace_WrongMethod_Returns405(t *testing.T) {
	ts := newTestServer(t)

	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		req, _ := http.NewRequest(method, ts.URL+"/status", bytes.NewReader([]byte(`{}`)))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s: %v", method, err)
		}

		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected 405, got %d", method, resp.StatusCode)
		}

		var e types.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
			t.Errorf("%s: error body not JSON: %v", method, err)
		}
		resp.Body.Close()
	}

	// State must be untouched.
	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if strings.TrimSpace(string(body)) != `{}` {
		t.Errorf("state mutated by rejected method: %q", body)
	}
}

// ── Preflight ────────────────────────────────────────────────────────────────

func TestPreflight_OptionsSucceedsWithNoBody(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/status", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if len(body) != 0 {
		t.Errorf("preflight body should be empty, got %q", body)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin: got %q", got)
	}
}

// ── Write token ──────────────────────────────────────────────────────────────

func TestReplace_TokenConfigured_MissingToken401(t *testing.T) {
	ts := newTestServer(t, withToken("s3cret"))

	resp, err := http.Post(ts.URL+"/status", "application/json", strings.NewReader(`{"rec1":"called"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestReplace_TokenConfigured_CorrectTokenAccepted(t *testing.T) {
	ts := newTestServer(t, withToken("s3cret"))

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/status", strings.NewReader(`{"rec1":"called"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer s3cret")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestFetch_TokenConfigured_ReadsStayOpen(t *testing.T) {
	ts := newTestServer(t, withToken("s3cret"))

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

// ── Health and metrics ───────────────────────────────────────────────────────

func TestHealthz_OK(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestMetrics_CountsRequests(t *testing.T) {
	ts := newTestServer(t, withMetrics())

	if _, err := http.Get(ts.URL + "/status"); err != nil {
		t.Fatalf("get status: %v", err)
	}

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), httpapi.MetricHTTPRequestsTotal) {
		t.Errorf("exposition missing %s", httpapi.MetricHTTPRequestsTotal)
	}
}
