package backend

import (
	"context"
	"errors"
	"fmt"
	"io"

	"txledger/internal/amqp"
	applog "txledger/internal/log"
	"txledger/internal/report"
	gsheet "txledger/internal/sheets/google"
	"txledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new sink factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateSinks implements Factory.CreateSinks. If any sink fails to open,
// the ones already opened are closed before returning the error.
func (f *DefaultFactory) CreateSinks(ctx context.Context, config Config, stdout io.Writer) (*SinkResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		sinks    []report.Sink
		names    []string
		cleanups []CleanupFunc
	)
	cleanup := func() error {
		var errs []error
		for i := len(cleanups) - 1; i >= 0; i-- {
			if err := cleanups[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	for _, st := range config.Sinks {
		sink, closeFn, err := f.createSink(ctx, st, config, stdout)
		if err != nil {
			if cerr := cleanup(); cerr != nil {
				f.logger.Warn("Cleanup after sink failure returned error", applog.FieldError, cerr)
			}
			return nil, fmt.Errorf("create %s sink: %w", st, err)
		}
		sinks = append(sinks, sink)
		names = append(names, sink.Name())
		if closeFn != nil {
			cleanups = append(cleanups, closeFn)
		}
	}

	var sink report.Sink = report.NewFanout(sinks...)
	if len(sinks) == 1 {
		sink = sinks[0]
	}

	return &SinkResult{
		Sink:    sink,
		Names:   names,
		Cleanup: cleanup,
	}, nil
}

func (f *DefaultFactory) createSink(ctx context.Context, st SinkType, config Config, stdout io.Writer) (report.Sink, CleanupFunc, error) {
	switch st {
	case StdoutSink:
		return f.createStdoutSink(stdout)
	case SQLiteSink:
		return f.createSQLiteSink(config)
	case AMQPSink:
		return f.createAMQPSink(config)
	case SheetsSink:
		return f.createSheetsSink(ctx, config)
	default:
		return nil, nil, fmt.Errorf("unsupported sink type: %s", st)
	}
}

func (f *DefaultFactory) createStdoutSink(stdout io.Writer) (report.Sink, CleanupFunc, error) {
	if stdout == nil {
		return nil, nil, fmt.Errorf("stdout sink requires a writer")
	}
	return report.NewCSVWriter(stdout), nil, nil
}

func (f *DefaultFactory) createSQLiteSink(config Config) (report.Sink, CleanupFunc, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite sink", applog.FieldPath, config.SQLiteDBPath)
	return repo, repo.Close, nil
}

func (f *DefaultFactory) createAMQPSink(config Config) (report.Sink, CleanupFunc, error) {
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
	}

	f.logger.Info("Initialized AMQP sink",
		"exchange", config.AMQPExchange,
		"routing_key", config.AMQPRoutingKey)
	return client, client.Close, nil
}

func (f *DefaultFactory) createSheetsSink(ctx context.Context, config Config) (report.Sink, CleanupFunc, error) {
	cli, err := gsheet.New(ctx, config.GoogleSpreadsheetID, config.GoogleSheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets sink", "sheet", config.GoogleSheetName)
	return cli, nil, nil
}
