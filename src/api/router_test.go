package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ledgerly-server/src/config"
	"ledgerly-server/src/util"
)

func testRouter(t *testing.T, cfg config.Config) (http.Handler, *util.TokenIssuer) {
	t.Helper()
	if cfg.RateLimitPerMinute == 0 {
		cfg.RateLimitPerMinute = 100
	}
	if cfg.TransactionsRateLimitPerMinute == 0 {
		cfg.TransactionsRateLimitPerMinute = 100
	}
	cfg.CORSAllowedOrigins = []string{"*"}
	issuer := util.NewTokenIssuer("router-secret", time.Minute, time.Hour)
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(cfg, nil, nil, issuer, l), issuer
}

func serve(h http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h, _ := testRouter(t, config.Config{})
	rec := serve(h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("GET /health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h, _ := testRouter(t, config.Config{})
	paths := []string{
		"/api/users/me/",
		"/api/users/",
		"/api/budgets/",
		"/api/transactions/",
		"/api/transactions/5/",
		"/api/notifications/",
	}
	for _, p := range paths {
		if rec := serve(h, http.MethodGet, p, ""); rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s = %d, want 401", p, rec.Code)
		}
	}
}

func TestCategoryWritesRequireStaff(t *testing.T) {
	h, issuer := testRouter(t, config.Config{})
	tok, err := issuer.Issue(3, false, util.TokenAccess)
	if err != nil {
		t.Fatal(err)
	}

	if rec := serve(h, http.MethodPost, "/api/categories/", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous POST = %d, want 401", rec.Code)
	}
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		path := "/api/categories/1/"
		if m == http.MethodPost {
			path = "/api/categories/"
		}
		if rec := serve(h, m, path, "Bearer "+tok); rec.Code != http.StatusForbidden {
			t.Errorf("non-staff %s %s = %d, want 403", m, path, rec.Code)
		}
	}
}

func TestReadOnlyModeBlocksWrites(t *testing.T) {
	h, issuer := testRouter(t, config.Config{ReadOnly: true})
	tok, err := issuer.Issue(3, false, util.TokenAccess)
	if err != nil {
		t.Fatal(err)
	}
	if rec := serve(h, http.MethodPost, "/api/transactions/", "Bearer "+tok); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("POST in read-only mode = %d, want 503", rec.Code)
	}
}

func TestAnonymousRateLimit(t *testing.T) {
	h, _ := testRouter(t, config.Config{RateLimitPerMinute: 2})
	var last int
	for i := 0; i < 3; i++ {
		last = serve(h, http.MethodGet, "/api/users/me/", "").Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third anonymous request = %d, want 429", last)
	}
	if rec := serve(h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("/health is rate limited: %d", rec.Code)
	}
}
