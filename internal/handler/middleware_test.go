package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// --- SecurityHeaders ---

func TestSecurityHeaders_LandingPage(t *testing.T) {
	mux := NewRouter(Routes{Inquiries: NewInquiryHandler(&mockInquiryService{})})
	rec := serve(SecurityHeaders(mux), httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	for name, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"X-XSS-Protection":       "0",
	} {
		if got := rec.Header().Get(name); got != want {
			t.Errorf("%s: want %q, got %q", name, want, got)
		}
	}

	// the page loads script.js and style.css and posts its form back here
	csp := rec.Header().Get("Content-Security-Policy")
	for _, d := range []string{"script-src 'self'", "style-src 'self'", "form-action 'self'", "frame-ancestors 'none'"} {
		if !strings.Contains(csp, d) {
			t.Errorf("CSP missing %q: %s", d, csp)
		}
	}
	if !strings.HasPrefix(rec.Header().Get("Strict-Transport-Security"), "max-age=") {
		t.Errorf("unexpected HSTS: %q", rec.Header().Get("Strict-Transport-Security"))
	}
}

func TestSecurityHeaders_KeepsErrorResponses(t *testing.T) {
	svc := &mockInquiryService{readyFunc: unavailable(6)}
	mux := NewRouter(Routes{Inquiries: NewInquiryHandler(svc)})

	rec := serve(SecurityHeaders(mux), jsonRequest("POST", "/inquiries", `{}`))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("headers missing on error response")
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("expected JSON body, got %q", ct)
	}
}

// --- Recoverer ---

func TestRecoverer_ReturnsJSON500(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	req := httptest.NewRequest("GET", "/inquiries", nil)
	rec := httptest.NewRecorder()
	Recoverer(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "internal_error" || resp.Message != "boom" {
		t.Errorf("unexpected body: %+v", resp)
	}
}

func TestRecoverer_RepanicsAbortHandler(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	defer func() {
		if p := recover(); p != http.ErrAbortHandler {
			t.Errorf("expected ErrAbortHandler to propagate, got %v", p)
		}
	}()

	req := httptest.NewRequest("GET", "/", nil)
	Recoverer(inner).ServeHTTP(httptest.NewRecorder(), req)
}
