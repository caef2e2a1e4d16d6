package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"txledger/internal/core"
	"txledger/internal/ledger"
	applog "txledger/internal/log"
	"txledger/internal/records"
	"txledger/internal/report"
)

// ReplayServiceConfig holds configuration for the replay service
type ReplayServiceConfig struct {
	// EmitTimeout bounds the time all sinks together may take (default: 30s)
	EmitTimeout time.Duration
}

// DefaultReplayServiceConfig returns sensible defaults
func DefaultReplayServiceConfig() ReplayServiceConfig {
	return ReplayServiceConfig{EmitTimeout: 30 * time.Second}
}

// Summary describes a finished replay.
type Summary struct {
	Records      int
	Applied      int
	Rejected     map[core.Outcome]int
	Accounts     int
	Transactions int
	OpenDisputes int
	Run          report.Run
}

// RejectedTotal returns the number of rejected records.
func (s Summary) RejectedTotal() int {
	total := 0
	for _, n := range s.Rejected {
		total += n
	}
	return total
}

// ReplayService feeds a transaction log through a processor in input order
// and hands the final snapshot to a report sink.
type ReplayService struct {
	processor *ledger.Processor
	sink      report.Sink
	logger    *applog.Logger
	config    ReplayServiceConfig
}

func NewReplayService(processor *ledger.Processor, sink report.Sink, logger *applog.Logger, config ReplayServiceConfig) *ReplayService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ReplayService{
		processor: processor,
		sink:      sink,
		logger:    logger.WithComponent(applog.ComponentReplay),
		config:    config,
	}
}

// Run replays the log and, only if every row was read successfully, emits
// the final snapshot. A fatal read error means no report is produced.
func (s *ReplayService) Run(ctx context.Context, r io.Reader) (Summary, error) {
	summary, err := s.Replay(ctx, r)
	if err != nil {
		return summary, err
	}

	summary.Run = report.NewRun()
	if err := s.Emit(ctx, summary.Run); err != nil {
		return summary, err
	}
	return summary, nil
}

// Replay applies every record from r. Rows applied before a fatal error keep
// their effect on the processor state.
func (s *ReplayService) Replay(ctx context.Context, r io.Reader) (Summary, error) {
	start := time.Now()
	summary := Summary{Rejected: make(map[core.Outcome]int)}

	reader, err := records.NewReader(r)
	if err != nil {
		return summary, fmt.Errorf("open transaction log: %w", err)
	}

	debug := s.logger.Enabled(ctx, slog.LevelDebug)
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.logger.ErrorContext(ctx, "Transaction log parse failed",
				applog.NewFields().WithOperation(applog.OpParse).WithError(err).ToSlice()...)
			return s.finish(summary), fmt.Errorf("read transaction log: %w", err)
		}

		summary.Records++
		outcome := s.processor.Apply(rec)
		if outcome.Rejected() {
			summary.Rejected[outcome]++
			if debug {
				s.logger.DebugContext(ctx, "Record rejected",
					applog.NewFields().WithRecord(rec).WithOutcome(outcome).ToSlice()...)
			}
			continue
		}
		summary.Applied++
	}

	summary = s.finish(summary)
	args := []any{
		applog.FieldOperation, applog.OpReplay,
		"records", summary.Records,
		"applied", summary.Applied,
		"rejected", summary.RejectedTotal(),
		"accounts", summary.Accounts,
		"transactions", summary.Transactions,
		"open_disputes", summary.OpenDisputes,
		applog.FieldDuration, time.Since(start).Milliseconds(),
	}
	for _, o := range core.Outcomes() {
		if n := summary.Rejected[o]; n > 0 {
			args = append(args, o.String(), n)
		}
	}
	s.logger.InfoContext(ctx, "Replay complete", args...)

	for _, a := range s.processor.Accounts().Snapshot() {
		if !a.Balanced() {
			s.logger.WarnContext(ctx, "Account out of balance",
				applog.FieldClient, uint16(a.ID),
				"available", core.FormatAmount(a.Available),
				"held", core.FormatAmount(a.Held),
				"total", core.FormatAmount(a.Total))
		}
	}

	return summary, nil
}

// Emit sends the current account snapshot to the sink.
func (s *ReplayService) Emit(ctx context.Context, run report.Run) error {
	if s.sink == nil {
		return errors.New("no report sink configured")
	}

	if s.config.EmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.EmitTimeout)
		defer cancel()
	}

	logger := s.logger.With(applog.FieldRunID, run.ID.String())
	accounts := s.processor.Accounts().Snapshot()
	if err := s.sink.Emit(applog.NewContext(ctx, logger), run, accounts); err != nil {
		return fmt.Errorf("emit report: %w", err)
	}

	logger.InfoContext(ctx, "Report emitted",
		applog.FieldOperation, applog.OpEmit,
		applog.FieldSink, s.sink.Name(),
		"accounts", len(accounts))
	return nil
}

func (s *ReplayService) finish(summary Summary) Summary {
	summary.Accounts = s.processor.Accounts().Len()
	summary.Transactions = s.processor.Ledger().Len()
	summary.OpenDisputes = s.processor.Disputes().Len()
	return summary
}
