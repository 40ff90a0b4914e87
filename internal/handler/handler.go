package handler

import (
	"net/http"
	"time"

	"github.com/inquirydesk/backend/internal/dbconn"
	"github.com/inquirydesk/backend/internal/repository"
)

// ConnectionMonitor is the read-only view of the Connection Manager used by
// the diagnostic endpoints.
type ConnectionMonitor interface {
	Status() dbconn.Status
	Acquire() (repository.Store, bool)
}

var _ ConnectionMonitor = (*dbconn.Manager)(nil)

// DebugInfo is the non-secret store configuration reported by /debug.
type DebugInfo struct {
	Driver     string
	Host       string
	Port       int
	Database   string
	MaxRetries int
	RetryDelay time.Duration
}

// Handler serves health and diagnostic endpoints and carries CORS settings.
type Handler struct {
	conns       ConnectionMonitor
	frontendURL string
	info        DebugInfo
	started     time.Time
}

func New(conns ConnectionMonitor, frontendURL string, info DebugInfo) *Handler {
	return &Handler{conns: conns, frontendURL: frontendURL, info: info, started: time.Now()}
}

func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", h.frontendURL)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		// ワイルドカード origin と credentials は併用できない
		if h.frontendURL != "*" {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
