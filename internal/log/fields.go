package log

import "txledger/internal/core"

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldDuration  = "duration_ms"
	FieldRunID     = "run_id"
	FieldLine      = "line"
	FieldType      = "type"
	FieldClient    = "client"
	FieldTx        = "tx"
	FieldAmount    = "amount"
	FieldOutcome   = "outcome"
	FieldSink      = "sink"
	FieldPath      = "path"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentReplay  = "replay"
	ComponentReport  = "report"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentSheets  = "sheets"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpReplay  = "replay"
	OpParse   = "parse"
	OpEmit    = "emit"
	OpStartup = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds the fields identifying an input record
func (f LogFields) WithRecord(r core.Record) LogFields {
	f[FieldLine] = r.Line
	f[FieldType] = string(r.Type)
	f[FieldClient] = uint16(r.Client)
	f[FieldTx] = uint32(r.Tx)
	f[FieldAmount] = core.FormatAmount(r.Amount)
	return f
}

// WithOutcome adds the processor outcome
func (f LogFields) WithOutcome(o core.Outcome) LogFields {
	f[FieldOutcome] = o.String()
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
