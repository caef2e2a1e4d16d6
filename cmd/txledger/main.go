package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"txledger/internal/backend"
	"txledger/internal/config"
	"txledger/internal/ledger"
	applog "txledger/internal/log"
	"txledger/internal/services"
)

const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run replays the transaction log named by args[0] and writes the account
// report to stdout. Diagnostics go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "usage: txledger <transactions.csv>")
		return exitUsage
	}
	path := args[0]

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitFatal
	}

	level, _ := applog.ParseLevel(cfg.LogLevel)
	logger := applog.New(applog.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: applog.ComponentApp,
		Output:    stderr,
	})
	applog.SetDefault(logger)

	f, err := os.Open(path)
	if err != nil {
		logger.Error("Failed to open transaction log",
			applog.NewFields().WithOperation(applog.OpStartup).WithError(err).ToSlice()...)
		return exitFatal
	}
	defer f.Close()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid sink configuration", applog.FieldError, err)
		return exitFatal
	}

	sinks, err := backend.NewFactory(logger).CreateSinks(ctx, backendCfg, stdout)
	if err != nil {
		logger.Error("Failed to initialize report sinks", applog.FieldError, err)
		return exitFatal
	}
	defer func() {
		if err := sinks.Cleanup(); err != nil {
			logger.Warn("Sink cleanup failed", applog.FieldError, err)
		}
	}()

	svcCfg := services.DefaultReplayServiceConfig()
	if cfg.EmitTimeout > 0 {
		svcCfg.EmitTimeout = cfg.EmitTimeout
	}

	svc := services.NewReplayService(
		ledger.NewProcessor(cfg.Policy()),
		sinks.Sink,
		logger,
		svcCfg,
	)

	logger.Debug("Starting replay",
		applog.FieldPath, path,
		"sinks", sinks.Names,
		"enforce_lock", cfg.EnforceLock,
		"reject_duplicate_tx", cfg.RejectDuplicateTx)

	if _, err := svc.Run(applog.NewContext(ctx, logger), f); err != nil {
		logger.Error("Replay failed", applog.FieldPath, path, applog.FieldError, err)
		return exitFatal
	}

	return exitOK
}
