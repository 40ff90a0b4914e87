package handler

import "net/http"

// Routes bundles what NewRouter mounts. Metrics and Limiter may be nil.
type Routes struct {
	Health    *Handler
	Inquiries *InquiryHandler
	Metrics   http.Handler
	Limiter   *SubmissionLimiter
}

// NewRouter registers every endpoint on a new ServeMux.
func NewRouter(rt Routes) *http.ServeMux {
	mux := http.NewServeMux()

	submit := http.Handler(http.HandlerFunc(rt.Inquiries.Create))
	if rt.Limiter != nil {
		submit = rt.Limiter.Middleware(submit)
	}

	// Inquiries
	mux.HandleFunc("GET /inquiries", rt.Inquiries.List)
	mux.Handle("POST /inquiries", submit)
	mux.Handle("POST /inquiries/{$}", submit)
	mux.HandleFunc("PATCH /inquiries/{id}", rt.Inquiries.UpdateName)
	mux.HandleFunc("DELETE /inquiries/{id}", rt.Inquiries.Delete)
	mux.HandleFunc("GET /messages", rt.Inquiries.Messages)

	// Health & diagnostics
	mux.HandleFunc("GET /health", rt.Health.Health)
	mux.HandleFunc("GET /status", rt.Health.Status)
	mux.HandleFunc("GET /debug", rt.Health.Debug)
	mux.HandleFunc("GET /test-db", rt.Health.TestDB)
	mux.HandleFunc("GET /test-connection", rt.Health.TestConnection)
	mux.HandleFunc("GET /test-db-creation", rt.Health.TestDBCreation)

	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}

	mux.Handle("GET /", Static())

	return mux
}
