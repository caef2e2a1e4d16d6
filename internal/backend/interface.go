package backend

import (
	"context"
	"io"

	"txledger/internal/config"
	"txledger/internal/report"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// SinkResult contains the combined report sink and a cleanup function that
// releases every connection opened for it.
type SinkResult struct {
	Sink    report.Sink
	Names   []string
	Cleanup CleanupFunc
}

// Factory creates report sinks based on configuration
type Factory interface {
	// CreateSinks opens every sink named in config. stdout receives the CSV
	// report when the stdout sink is enabled.
	CreateSinks(ctx context.Context, config Config, stdout io.Writer) (*SinkResult, error)
}

// Config holds configuration for sink creation
type Config struct {
	Sinks []SinkType

	// SQLite specific
	SQLiteDBPath string

	// AMQP specific
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Google Sheets specific
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

// SinkType represents the type of report sink
type SinkType string

const (
	StdoutSink SinkType = config.SinkStdout
	SQLiteSink SinkType = config.SinkSQLite
	AMQPSink   SinkType = config.SinkAMQP
	SheetsSink SinkType = config.SinkSheets
)

// String implements fmt.Stringer
func (st SinkType) String() string {
	return string(st)
}

// IsValid returns true if the sink type is valid
func (st SinkType) IsValid() bool {
	switch st {
	case StdoutSink, SQLiteSink, AMQPSink, SheetsSink:
		return true
	default:
		return false
	}
}
