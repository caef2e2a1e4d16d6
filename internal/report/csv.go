// Package report emits the final account snapshot to one or more sinks.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"txledger/internal/core"
)

// CSVWriter writes the report as CSV, typically to stdout.
type CSVWriter struct {
	w io.Writer
}

var _ Sink = (*CSVWriter)(nil)

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: w}
}

func (c *CSVWriter) Name() string { return "stdout" }

func (c *CSVWriter) Emit(_ context.Context, _ Run, accounts []core.Account) error {
	cw := csv.NewWriter(c.w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, a := range accounts {
		if err := cw.Write(Row(a)); err != nil {
			return fmt.Errorf("write client %d: %w", a.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}

func formatClient(id core.ClientID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func formatLocked(locked bool) string {
	return strconv.FormatBool(locked)
}
