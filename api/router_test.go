package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/bestseller/config"
	"github.com/use-agent/bestseller/engine"
	"github.com/use-agent/bestseller/models"
)

type fakeExtractor struct {
	mu     sync.Mutex
	last   *models.ExtractRequest
	result *engine.Result
	err    error
}

func (f *fakeExtractor) Extract(_ context.Context, req *models.ExtractRequest) (*engine.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = req
	return f.result, f.err
}

type fakePool struct{ stats models.PoolStats }

func (p fakePool) Stats() models.PoolStats { return p.stats }

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.Server.Mode = gin.TestMode
	cfg.Auth = config.AuthConfig{Enabled: true, APIKeys: []string{"secret"}}
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100}
	return cfg
}

func okResult() *engine.Result {
	container := `<ul class="c-listInfoGrid__list"><li><a href="/prod/A">Widget A</a></li><li>Widget B</li></ul>`
	return &engine.Result{
		ExtractionResult: &models.ExtractionResult{
			Items:         []string{"Widget A: NT$100", "Widget B: NT$200"},
			ContainerHTML: &container,
			PageHTML:      "<html>...</html>",
			Warnings:      []string{},
		},
		FinalURL:   "https://24h.pchome.com.tw/",
		EngineName: "rod",
	}
}

func do(t *testing.T, r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) models.ExtractResponse {
	t.Helper()
	var resp models.ExtractResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return resp
}

var authed = map[string]string{"X-API-Key": "secret"}

func TestExtract_Success(t *testing.T) {
	ex := &fakeExtractor{result: okResult()}
	r := NewRouter(t.Context(), ex, fakePool{}, testConfig(), time.Now())

	w := do(t, r, http.MethodPost, "/api/v1/extract", `{"output_format":"text"}`, authed)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	resp := decode(t, w)
	if !resp.Success || resp.EngineUsed != "rod" {
		t.Errorf("resp = %+v", resp)
	}
	if got := resp.Result.Items; len(got) != 2 || got[0] != "Widget A: NT$100" {
		t.Errorf("items = %q", got)
	}
	if resp.Content != "1. Widget A: NT$100\n2. Widget B: NT$200\n" {
		t.Errorf("content = %q", resp.Content)
	}
	if len(resp.Links) != 1 || resp.Links[0].Href != "https://24h.pchome.com.tw/prod/A" {
		t.Errorf("links = %+v", resp.Links)
	}
	if len(resp.LayoutFingerprint) != 16 {
		t.Errorf("fingerprint = %q", resp.LayoutFingerprint)
	}

	// Defaults come from the configured target.
	if ex.last.URL != "https://24h.pchome.com.tw/" || ex.last.ContainerSelector != "#bestSellers" {
		t.Errorf("defaults not applied: %+v", ex.last)
	}
}

func TestExtract_EmptyBodyUsesDefaults(t *testing.T) {
	ex := &fakeExtractor{result: okResult()}
	r := NewRouter(t.Context(), ex, fakePool{}, testConfig(), time.Now())

	w := do(t, r, http.MethodPost, "/api/v1/extract", "", authed)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ex.last == nil || ex.last.ItemSelector != "li" {
		t.Errorf("request = %+v", ex.last)
	}
}

func TestExtract_PartialResultIsSuccess(t *testing.T) {
	partial := &engine.Result{
		ExtractionResult: &models.ExtractionResult{
			Items:    []string{},
			PageHTML: "<html></html>",
			Warnings: []string{"container not found, continuing with page capture only"},
		},
		EngineName: "rod",
	}
	r := NewRouter(t.Context(), &fakeExtractor{result: partial}, fakePool{}, testConfig(), time.Now())

	w := do(t, r, http.MethodPost, "/api/v1/extract", `{}`, authed)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode(t, w)
	if !resp.Success || resp.Result.ContainerHTML != nil || len(resp.Result.Warnings) != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Links == nil || resp.LayoutFingerprint != "" {
		t.Errorf("links = %v, fingerprint = %q", resp.Links, resp.LayoutFingerprint)
	}
	if resp.FinalURL != "https://24h.pchome.com.tw/" {
		t.Errorf("FinalURL should fall back to the request URL, got %q", resp.FinalURL)
	}
}

func TestExtract_ErrorStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{models.ErrCodeTimeout, http.StatusGatewayTimeout},
		{models.ErrCodeNavigation, http.StatusBadGateway},
		{models.ErrCodeSerialization, http.StatusInternalServerError},
		{models.ErrCodeBrowserCrash, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			ex := &fakeExtractor{err: models.NewScrapeError(tt.code, "failed", nil)}
			r := NewRouter(t.Context(), ex, fakePool{}, testConfig(), time.Now())

			w := do(t, r, http.MethodPost, "/api/v1/extract", `{}`, authed)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			resp := decode(t, w)
			if resp.Success || resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("resp = %+v", resp)
			}
		})
	}
}

func TestExtract_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"url":`},
		{"bad url", `{"url":"not a url"}`},
		{"bad fetch mode", `{"fetch_mode":"carrier-pigeon"}`},
		{"bad selector", `{"container_selector":"div["}`},
		{"bad timeout", `{"container_timeout_ms":-5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &fakeExtractor{result: okResult()}
			r := NewRouter(t.Context(), ex, fakePool{}, testConfig(), time.Now())

			w := do(t, r, http.MethodPost, "/api/v1/extract", tt.body, authed)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body = %s", w.Code, w.Body.String())
			}
			if ex.last != nil {
				t.Error("invalid input must not reach the extractor")
			}
		})
	}
}

func TestExtract_Auth(t *testing.T) {
	r := NewRouter(t.Context(), &fakeExtractor{result: okResult()}, fakePool{}, testConfig(), time.Now())

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"missing", nil, http.StatusUnauthorized},
		{"wrong", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"header", authed, http.StatusOK},
		{"bearer", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/v1/extract", `{}`, tt.headers)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestExtract_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.01, Burst: 1}
	r := NewRouter(t.Context(), &fakeExtractor{result: okResult()}, fakePool{}, cfg, time.Now())

	if w := do(t, r, http.MethodPost, "/api/v1/extract", `{}`, authed); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}
	w := do(t, r, http.MethodPost, "/api/v1/extract", `{}`, authed)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
	if resp := decode(t, w); resp.Error == nil || resp.Error.Code != models.ErrCodeRateLimited {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name  string
		stats models.PoolStats
		want  string
	}{
		{"idle", models.PoolStats{MaxPages: 4, ActivePages: 1}, "healthy"},
		{"saturated", models.PoolStats{MaxPages: 4, ActivePages: 4}, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(t.Context(), &fakeExtractor{}, fakePool{stats: tt.stats}, testConfig(), time.Now())

			w := do(t, r, http.MethodGet, "/api/v1/health", "", nil)
			if w.Code != http.StatusOK {
				t.Fatalf("health must not require auth, status = %d", w.Code)
			}
			var resp models.HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != tt.want || resp.PoolStats != tt.stats {
				t.Errorf("resp = %+v", resp)
			}
		})
	}
}

func TestHealth_NoPool(t *testing.T) {
	r := NewRouter(t.Context(), &fakeExtractor{}, nil, testConfig(), time.Now())

	if w := do(t, r, http.MethodGet, "/api/v1/health", "", nil); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}
