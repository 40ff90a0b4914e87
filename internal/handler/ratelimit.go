package handler

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SubmissionLimit configures SubmissionLimiter.
type SubmissionLimit struct {
	// Max is the number of submissions one client may make per Window.
	Max    int
	Window time.Duration
	// TrustedProxies is the number of X-Forwarded-For entries appended by
	// our own proxies. 0 keys clients by the socket address only.
	TrustedProxies int
	// Now defaults to time.Now.
	Now func() time.Time
}

// SubmissionLimiter throttles inquiry submissions per client address over a
// sliding window.
type SubmissionLimiter struct {
	limit SubmissionLimit
	now   func() time.Time

	mu   sync.Mutex
	sent map[string][]time.Time

	stopped chan struct{}
}

// NewSubmissionLimiter creates a limiter whose sweeper runs until ctx is done.
func NewSubmissionLimiter(ctx context.Context, limit SubmissionLimit) *SubmissionLimiter {
	if limit.Window <= 0 {
		limit.Window = time.Minute
	}
	now := limit.Now
	if now == nil {
		now = time.Now
	}
	l := &SubmissionLimiter{
		limit:   limit,
		now:     now,
		sent:    make(map[string][]time.Time),
		stopped: make(chan struct{}),
	}
	go l.sweep(ctx)
	return l
}

// Stopped is closed once the sweeper has exited.
func (l *SubmissionLimiter) Stopped() <-chan struct{} { return l.stopped }

func (l *SubmissionLimiter) sweep(ctx context.Context) {
	defer close(l.stopped)

	ticker := time.NewTicker(l.limit.Window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.forgetIdle()
		}
	}
}

// forgetIdle drops clients with no submission inside the current window.
func (l *SubmissionLimiter) forgetIdle() {
	cutoff := l.now().Add(-l.limit.Window)

	l.mu.Lock()
	defer l.mu.Unlock()
	for client, times := range l.sent {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(l.sent, client)
		}
	}
}

// admit records a submission for client and reports whether it is allowed.
// When it is not, wait is the time until the oldest recorded submission
// leaves the window.
func (l *SubmissionLimiter) admit(client string) (ok bool, wait time.Duration) {
	now := l.now()
	cutoff := now.Add(-l.limit.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	times := l.sent[client]
	first := 0
	for first < len(times) && !times[first].After(cutoff) {
		first++
	}
	times = times[first:]

	if len(times) >= l.limit.Max {
		l.sent[client] = times
		return false, times[0].Add(l.limit.Window).Sub(now)
	}
	l.sent[client] = append(times, now)
	return true, 0
}

// Middleware rejects submissions over the limit with 429 and Retry-After.
func (l *SubmissionLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := l.clientAddr(r)
		ok, wait := l.admit(client)
		if !ok {
			slog.Warn("submission rate limited", "client_ip", client, "retry_after", wait)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter(wait)))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Error:   "rate_limited",
				Message: "Too many submissions, please try again later",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// retryAfter rounds wait up to whole seconds, at least one.
func retryAfter(wait time.Duration) int {
	return max(1, int(math.Ceil(wait.Seconds())))
}

// clientAddr picks the X-Forwarded-For entry written by the outermost trusted
// proxy. Entries to its left are client supplied and ignored.
func (l *SubmissionLimiter) clientAddr(r *http.Request) string {
	if n := l.limit.TrustedProxies; n > 0 {
		if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
			hops := strings.Split(strings.Join(xff, ","), ",")
			if len(hops) >= n {
				if ip := net.ParseIP(strings.TrimSpace(hops[len(hops)-n])); ip != nil {
					return ip.String()
				}
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
