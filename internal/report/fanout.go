package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"txledger/internal/core"
	applog "txledger/internal/log"
)

// Fanout emits the same snapshot to several sinks concurrently and fails if
// any of them fails.
type Fanout struct {
	sinks []Sink
}

var _ Sink = (*Fanout)(nil)

func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Name() string { return "fanout" }

// Emit logs through the logger carried by ctx, if any.
func (f *Fanout) Emit(ctx context.Context, run Run, accounts []core.Account) error {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentReport)
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range f.sinks {
		g.Go(func() error {
			start := time.Now()
			if err := s.Emit(gctx, run, accounts); err != nil {
				return fmt.Errorf("sink %s: %w", s.Name(), err)
			}
			logger.DebugContext(gctx, "Sink finished",
				applog.FieldSink, s.Name(),
				applog.FieldDuration, time.Since(start).Milliseconds())
			return nil
		})
	}
	return g.Wait()
}
