package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/inquirydesk/backend/internal/config"
	"github.com/inquirydesk/backend/internal/dbconn"
	"github.com/inquirydesk/backend/internal/logging"
	"github.com/inquirydesk/backend/internal/repository"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [command] [flags]

Commands:
  (default)   ストアの起動を待ち、inquiries テーブルを作成（既存なら何もしない）
  check       テーブルの存在だけを確認（作成しない）

Flags are the same as the server's (see: server --help).`)
	os.Exit(1)
}

var errUnknownCommand = errors.New("unknown command")

func main() {
	err := run(context.Background(), os.Args[1:])
	switch {
	case errors.Is(err, errUnknownCommand):
		usage()
	case err != nil:
		logging.Fatal("migrate failed", "error", err)
	}
}

// run executes one command. Every store handle it opens is closed before it
// returns.
func run(ctx context.Context, argv []string) error {
	cmd, args := splitCommand(argv)
	if cmd != "" && cmd != "check" {
		return fmt.Errorf("%w: %q", errUnknownCommand, cmd)
	}

	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if cmd == "check" {
		return runCheck(ctx, cfg.DB.StoreOptions())
	}
	return runApply(ctx, cfg, cfg.DB.StoreOptions())
}

// splitCommand separates a leading command word from flags.
func splitCommand(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0], args[1:]
	}
	return "", args
}

// ---------------------------------------------------------------------------
// (default) ストアを待ってスキーマ作成
// ---------------------------------------------------------------------------
func runApply(ctx context.Context, cfg *config.Config, opts repository.Options) error {
	m := dbconn.New(
		func(ctx context.Context) (repository.Store, error) { return repository.Open(ctx, opts) },
		dbconn.Config{MaxRetries: cfg.DB.MaxRetries, RetryDelay: cfg.DB.RetryDelay},
		slog.Default().With("component", "dbconn"),
	)
	m.Start(ctx)
	defer m.Close()
	<-m.Done()

	st := m.Status()
	store, ok := m.Acquire()
	if !ok {
		return fmt.Errorf("store unreachable after %d attempts: %s", st.Attempts, st.LastError)
	}

	n, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("schema verification failed: %w", err)
	}
	slog.Info("schema ready", "driver", store.Driver(), "attempts", st.Attempts, "rows", n)
	return nil
}

// ---------------------------------------------------------------------------
// check: 作成せずに確認
// ---------------------------------------------------------------------------
func runCheck(ctx context.Context, opts repository.Options) error {
	store, err := repository.Open(ctx, opts)
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}
	defer store.Close()

	n, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("inquiries table is not usable: %w", err)
	}
	slog.Info("inquiries table present", "driver", store.Driver(), "rows", n)
	return nil
}
