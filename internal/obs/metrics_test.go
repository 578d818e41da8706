package obs

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                 "/",
		"/metrics":                         "/metrics",
		"/api/todolists":                   "/api/todolists",
		"/api/todolists/01hv3k":            "/api/todolists/:id",
		"/api/todolists/01hv3k/assign":     "/api/todolists/:id/assign",
		"/api/todolists/01hv3k/extra":      "/api/todolists/01hv3k/extra",
		"/api/todolists?status=done":       "/api/todolists",
		"/api/auth/login":                  "/api/auth/login",
		"/api/todolists/01hv3k/assign?x=1": "/api/todolists/:id/assign",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}

func TestInstrumentExposesMetrics(t *testing.T) {
	Init()
	Init()

	h := Instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/todolists", nil))
	RecordAuthEvent("login", "success")
	RecordGuardRejection("revoked")
	RecordPruned(3)

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()
	for _, want := range []string{
		`http_requests_total{method="POST",path="/api/todolists",status="201"}`,
		`auth_events_total{event="login",outcome="success"}`,
		`guard_rejections_total{reason="revoked"}`,
		`revoked_tokens_pruned_total`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected metrics output to contain %s", want)
		}
	}
}

func TestNewLoggerRenamesTimeKey(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelInfo).Info("hello", "k", "v")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log is not valid JSON: %v", err)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
	if entry["msg"] != "hello" || entry["k"] != "v" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("DEBUG") != slog.LevelDebug || ParseLevel("warning") != slog.LevelWarn ||
		ParseLevel("error") != slog.LevelError || ParseLevel("") != slog.LevelInfo {
		t.Fatal("unexpected level mapping")
	}
}
