package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/inquirydesk/backend/internal/apperr"
	"github.com/inquirydesk/backend/internal/dbconn"
	"github.com/inquirydesk/backend/internal/repository"
)

const pingTimeout = 2 * time.Second

type healthResponse struct {
	Status   string `json:"status"`
	State    string `json:"state"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error,omitempty"`
}

// Health handles GET /health. It always answers 200; status is "connected",
// "disconnected" while the manager is still working, or "error" when the
// budget is exhausted or a live ping fails.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.conns.Status()
	resp := healthResponse{State: st.State.String(), Attempts: st.Attempts}

	switch store, ok := h.conns.Acquire(); {
	case ok:
		if err := ping(r.Context(), store); err != nil {
			resp.Status = "error"
			resp.Error = err.Error()
		} else {
			resp.Status = "connected"
		}
	case st.Terminal:
		resp.Status = "error"
		resp.Error = st.LastError
	default:
		resp.Status = "disconnected"
		resp.Error = st.LastError
	}

	writeJSON(w, http.StatusOK, resp)
}

type databaseStatus struct {
	State         string     `json:"state"`
	Connected     bool       `json:"connected"`
	Attempts      int        `json:"attempts"`
	Terminal      bool       `json:"terminal"`
	LastError     string     `json:"last_error,omitempty"`
	ConnectedAt   *time.Time `json:"connected_at,omitempty"`
	SuspectErrors int        `json:"suspect_errors"`
}

func newDatabaseStatus(st dbconn.Status) databaseStatus {
	ds := databaseStatus{
		State:         st.State.String(),
		Connected:     st.Connected,
		Attempts:      st.Attempts,
		Terminal:      st.Terminal,
		LastError:     st.LastError,
		SuspectErrors: st.SuspectErrors,
	}
	if !st.ConnectedAt.IsZero() {
		t := st.ConnectedAt
		ds.ConnectedAt = &t
	}
	return ds
}

type statusResponse struct {
	Server        string         `json:"server"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Database      databaseStatus `json:"database"`
}

// Status handles GET /status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Server:        "running",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Database:      newDatabaseStatus(h.conns.Status()),
	})
}

type debugConfig struct {
	Driver     string `json:"driver"`
	Host       string `json:"host,omitempty"`
	Port       int    `json:"port,omitempty"`
	Database   string `json:"database"`
	MaxRetries int    `json:"max_retries"`
	RetryDelay string `json:"retry_delay"`
}

type debugRuntime struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	CPUs       int    `json:"cpus"`
	GOMAXPROCS int    `json:"gomaxprocs"`
}

type debugResponse struct {
	Database databaseStatus `json:"database"`
	Config   debugConfig    `json:"config"`
	Runtime  debugRuntime   `json:"runtime"`
}

// Debug handles GET /debug. Credentials are never included.
func (h *Handler) Debug(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, debugResponse{
		Database: newDatabaseStatus(h.conns.Status()),
		Config: debugConfig{
			Driver:     h.info.Driver,
			Host:       h.info.Host,
			Port:       h.info.Port,
			Database:   h.info.Database,
			MaxRetries: h.info.MaxRetries,
			RetryDelay: h.info.RetryDelay.String(),
		},
		Runtime: debugRuntime{
			GoVersion:  runtime.Version(),
			Goroutines: runtime.NumGoroutine(),
			CPUs:       runtime.NumCPU(),
			GOMAXPROCS: runtime.GOMAXPROCS(0),
		},
	})
}

// TestDB handles GET /test-db: a live round trip to the store.
func (h *Handler) TestDB(w http.ResponseWriter, r *http.Request) {
	store, ok := h.acquire(w)
	if !ok {
		return
	}

	if err := ping(r.Context(), store); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "database_ping_failed",
			Message: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Database connection is working",
		"driver":  store.Driver(),
	})
}

// TestConnection handles GET /test-connection: reports the manager state and
// the round-trip latency of a ping.
func (h *Handler) TestConnection(w http.ResponseWriter, r *http.Request) {
	store, ok := h.acquire(w)
	if !ok {
		return
	}

	st := h.conns.Status()
	start := time.Now()
	err := ping(r.Context(), store)
	latency := time.Since(start)

	resp := map[string]any{
		"success":    err == nil,
		"state":      st.State.String(),
		"attempts":   st.Attempts,
		"latency_ms": latency.Milliseconds(),
	}
	status := http.StatusOK
	if err != nil {
		resp["error"] = err.Error()
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, resp)
}

// TestDBCreation handles GET /test-db-creation: verifies the inquiries table
// is queryable. It never writes.
func (h *Handler) TestDBCreation(w http.ResponseWriter, r *http.Request) {
	store, ok := h.acquire(w)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	n, err := store.Count(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"table":   "inquiries",
			"exists":  false,
			"error":   "table_check_failed",
			"message": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"table":   "inquiries",
		"exists":  true,
		"rows":    n,
	})
}

// acquire writes a 503 and returns false when the store is not connected.
func (h *Handler) acquire(w http.ResponseWriter) (repository.Store, bool) {
	store, ok := h.conns.Acquire()
	if !ok {
		writeError(w, apperr.Unavailable(h.conns.Status().Attempts))
		return nil, false
	}
	return store, true
}

func ping(ctx context.Context, db repository.DB) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return db.Ping(ctx)
}
