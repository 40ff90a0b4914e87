package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/inquirydesk/backend/internal/config"
	"github.com/inquirydesk/backend/internal/dbconn"
	"github.com/inquirydesk/backend/internal/handler"
	"github.com/inquirydesk/backend/internal/logging"
	"github.com/inquirydesk/backend/internal/repository"
	"github.com/inquirydesk/backend/internal/service"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	l := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		l.Debug(fmt.Sprintf(format, args...))
	})); err != nil {
		l.Warn("failed to set GOMAXPROCS", "error", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	dbMetrics := dbconn.NewMetrics()
	httpMetrics := handler.NewHTTPMetrics()
	reg.MustRegister(dbMetrics, httpMetrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 接続はバックグラウンドで行い、HTTP サーバーは先に起動する
	storeOpts := cfg.DB.StoreOptions()
	conns := dbconn.New(
		func(ctx context.Context) (repository.Store, error) { return repository.Open(ctx, storeOpts) },
		dbconn.Config{MaxRetries: cfg.DB.MaxRetries, RetryDelay: cfg.DB.RetryDelay},
		l.With("component", "dbconn"),
		dbconn.WithMetrics(dbMetrics),
	)
	conns.Start(ctx)
	defer conns.Close()

	inquiryService := service.NewInquiryService(conns, cfg.DB.OpTimeout, l.With("component", "service"))

	h := handler.New(conns, cfg.FrontendURL, handler.DebugInfo{
		Driver:     cfg.DB.Driver,
		Host:       cfg.DB.Host,
		Port:       cfg.DB.Port,
		Database:   cfg.DB.Name,
		MaxRetries: cfg.DB.MaxRetries,
		RetryDelay: cfg.DB.RetryDelay,
	})

	routes := handler.Routes{
		Health:    h,
		Inquiries: handler.NewInquiryHandler(inquiryService),
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError}),
	}
	if cfg.RateLimitPerMinute > 0 {
		routes.Limiter = handler.NewSubmissionLimiter(ctx, handler.SubmissionLimit{
			Max:            cfg.RateLimitPerMinute,
			Window:         cfg.RateLimitWindow,
			TrustedProxies: cfg.TrustedProxies,
		})
	}
	mux := handler.NewRouter(routes)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.RequestLogger(httpMetrics)(handler.Recoverer(handler.SecurityHeaders(h.CORS(mux)))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		l.Info("server listening", "addr", server.Addr, "driver", cfg.DB.Driver,
			"max_attempts", cfg.DB.MaxRetries+1)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	<-ctx.Done()
	l.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error("shutdown error", "error", err)
	}
}
