package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	constants "pimonitor/config"
	"pimonitor/internal/access"
	"pimonitor/internal/encoding"
	"pimonitor/internal/metrics"
	"pimonitor/internal/snapshot"
)

const testPasscode = "DEADBEEF12345678"

func newTestServer(t *testing.T, mutate func(*Config)) *Server {
	t.Helper()
	gate, err := access.NewGate(testPasscode)
	if err != nil {
		t.Fatalf("Failed to create gate: %v", err)
	}

	cfg := DefaultConfig()
	cfg.StaticDir = t.TempDir()
	cfg.RateLimit = rate.Inf
	if mutate != nil {
		mutate(cfg)
	}

	composer := snapshot.NewComposer(metrics.NewHost(0), 3*time.Second)
	return New(cfg, gate, composer)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Body is not a JSON object: %v (%q)", err, rec.Body.String())
	}
	return body
}

func TestLiveSync_Authorized(t *testing.T) {
	s := newTestServer(t, nil)
	rec := get(t, s, "/livesync?passcode="+testPasscode)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)

	virt, ok := body["virtdata"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected virtdata object, got %v", body["virtdata"])
	}
	percent, ok := virt["percent"].(float64)
	if !ok {
		t.Fatalf("Expected numeric percent, got %v", virt["percent"])
	}
	if percent < 0 || percent > 100 {
		t.Errorf("percent out of range: %v", percent)
	}

	for _, key := range []string{"swapinfo", "cpustats", "cputimes", "cpuprcnt", "cpuclock",
		"diousage", "netusage", "procinfo", "sensread"} {
		if _, ok := body[key]; !ok {
			t.Errorf("Missing key %q", key)
		}
	}
}

func TestEndpoints_DenyWrongPasscode(t *testing.T) {
	s := newTestServer(t, nil)

	paths := []string{"/livesync", "/deadsync", "/procinfo", "/killproc", "/termproc", "/suspproc", "/resmproc"}
	for _, p := range paths {
		for _, query := range []string{"?passcode=WRONG&prociden=1", "", "?passcode=" + strings.ToLower(testPasscode)} {
			rec := get(t, s, p+query)
			if rec.Code != http.StatusOK {
				t.Errorf("%s%s: expected 200, got %d", p, query, rec.Code)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != `{"retnmesg":"deny"}` {
				t.Errorf("%s%s: expected deny body, got %s", p, query, got)
			}
		}
	}
}

func TestKillProc_UnknownPIDIsNoOp(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		pid  string
	}{
		{"unused pid", "999999999"},
		{"above int32", "4294967296"},
		{"far out of range", "99999999999"},
		{"below int32", "-99999999999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, "/killproc?passcode="+testPasscode+"&prociden="+tt.pid)

			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", rec.Code)
			}
			if got := rec.Body.String(); got != `{"retnmesg":true}` {
				t.Errorf("Expected applied body, got %s", got)
			}
		})
	}
}

func TestControl_NonPositivePIDNeverSignalled(t *testing.T) {
	s := newTestServer(t, nil)
	for _, pid := range []string{"0", "-1"} {
		rec := get(t, s, "/termproc?passcode="+testPasscode+"&prociden="+pid)
		if rec.Code != http.StatusOK || rec.Body.String() != `{"retnmesg":true}` {
			t.Errorf("prociden=%s: got %d %s", pid, rec.Code, rec.Body.String())
		}
	}
}

func TestControl_MalformedPID(t *testing.T) {
	s := newTestServer(t, nil)

	for _, pid := range []string{"", "abc", "12.5", "0x10"} {
		rec := get(t, s, "/killproc?passcode="+testPasscode+"&prociden="+pid)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("prociden=%q: expected 400, got %d", pid, rec.Code)
			continue
		}
		body := decodeBody(t, rec)
		if body["retnmesg"] != constants.RESPONSE_FAIL || body["reason"] != ErrCodeInvalidRequest {
			t.Errorf("prociden=%q: unexpected body %v", pid, body)
		}
	}
}

func TestProcInfo_NotFound(t *testing.T) {
	s := newTestServer(t, nil)

	for _, pid := range []string{"999999999", "99999999999"} {
		rec := get(t, s, "/procinfo?passcode="+testPasscode+"&prociden="+pid)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("prociden=%s: expected 404, got %d", pid, rec.Code)
		}
		body := decodeBody(t, rec)
		if body["reason"] != ErrCodeNotFound {
			t.Errorf("prociden=%s: expected not_found reason, got %v", pid, body)
		}
		if body["request_id"] == "" || body["request_id"] == nil {
			t.Errorf("prociden=%s: expected request id in error body", pid)
		}
	}
}

func TestDeadSync_Authorized(t *testing.T) {
	s := newTestServer(t, nil)
	rec := get(t, s, "/deadsync?passcode="+testPasscode)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if _, ok := body["cpuquant"].(string); !ok {
		t.Errorf("Expected cpuquant string, got %v", body["cpuquant"])
	}
	if _, ok := body["boottime"].(string); !ok {
		t.Errorf("Expected boottime string, got %v", body["boottime"])
	}
	if _, ok := body["diskpart"].([]interface{}); !ok {
		t.Errorf("Expected diskpart list, got %v", body["diskpart"])
	}
}

func TestHeaders_CORSAndRequestID(t *testing.T) {
	s := newTestServer(t, nil)

	for _, target := range []string{"/healthz", "/livesync?passcode=WRONG", "/missing.js"} {
		rec := get(t, s, target)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("%s: Access-Control-Allow-Origin = %q", target, got)
		}
		if rec.Header().Get("X-Request-Id") == "" {
			t.Errorf("%s: missing X-Request-Id", target)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "1b4e28ba-2fa1-11d2-883f-0016d3cca427" {
		t.Errorf("Client request id not echoed: %q", got)
	}
}

func TestPreflight(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/livesync", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", rec.Code)
	}
}

func TestHealth_CBOR(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Accept", constants.CONTENT_TYPE_CBOR)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var health HealthResponse
	if err := encoding.ReadResponse(rec.Result(), &health); err != nil {
		t.Fatalf("Failed to decode CBOR health: %v", err)
	}
	if health.Status != "ok" || health.Version != constants.APP_VERSION {
		t.Errorf("Unexpected health %+v", health)
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *Config) {
		c.RateLimit = rate.Every(time.Hour)
		c.RateBurst = 1
	})

	if rec := get(t, s, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("First request should pass, got %d", rec.Code)
	}
	rec := get(t, s, "/healthz")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["reason"] != ErrCodeRateLimited {
		t.Errorf("Unexpected body %v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	get(t, s, "/healthz")
	get(t, s, "/deadsync?passcode="+testPasscode)

	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	for _, series := range []string{"pimonitor_http_requests_total", `pimonitor_snapshots_total{kind="dead"}`} {
		if !strings.Contains(rec.Body.String(), series) {
			t.Errorf("Expected %s in exposition", series)
		}
	}

	disabled := newTestServer(t, func(c *Config) { c.MetricsEnabled = false })
	if rec := get(t, disabled, "/metrics"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 with metrics disabled, got %d", rec.Code)
	}
}

func TestStatic(t *testing.T) {
	s := newTestServer(t, nil)
	dir := s.config.StaticDir
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0755); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>dashboard</html>"), 0644)
	os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0644)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{"root", "/", http.StatusOK, "dashboard"},
		{"asset", "/assets/app.js", http.StatusOK, "console.log"},
		{"client route falls back", "/processes/42", http.StatusOK, "dashboard"},
		{"missing asset", "/assets/gone.js", http.StatusNotFound, ""},
		{"traversal", "/../../etc/passwd", http.StatusForbidden, ""},
		{"encoded traversal", "/assets/%2e%2e/%2e%2e/etc/passwd", http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("Body %q does not contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}

	if cc := get(t, s, "/assets/app.js").Header().Get("Cache-Control"); !strings.Contains(cc, "immutable") {
		t.Errorf("Expected immutable caching for assets, got %q", cc)
	}
}

func TestHasDotDot(t *testing.T) {
	tests := map[string]bool{
		"/":              false,
		"/assets/app.js": false,
		"/a..b/c":        false,
		"/../etc":        true,
		"/assets/../x":   true,
		"/assets\\..\\x": true,
		"/assets/..":     true,
	}
	for in, want := range tests {
		if got := hasDotDot(in); got != want {
			t.Errorf("hasDotDot(%q) = %v, want %v", in, got, want)
		}
	}
}
