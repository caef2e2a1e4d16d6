// Package records decodes the transaction log CSV into core.Record values,
// one row at a time.
package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"txledger/internal/core"
)

// Column names recognized in the header row.
const (
	ColumnType   = "type"
	ColumnClient = "client"
	ColumnTx     = "tx"
	ColumnAmount = "amount"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrInvalidField  = errors.New("invalid field")
)

// Reader streams records from a CSV source. Header columns may appear in any
// order, fields are trimmed, and rows may omit trailing columns.
type Reader struct {
	csv    *csv.Reader
	index  map[string]int
	amount int // -1 when the header has no amount column
	empty  bool
}

// NewReader reads the header row from r. Input with no header at all is an
// empty log: the reader yields no records.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Reader{csv: cr, amount: -1, empty: true}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, required := range []string{ColumnType, ColumnClient, ColumnTx} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("header: %w %q", ErrMissingColumn, required)
		}
	}

	amount := -1
	if i, ok := index[ColumnAmount]; ok {
		amount = i
	}

	return &Reader{csv: cr, index: index, amount: amount}, nil
}

// Next returns the next record, or io.EOF when the input is exhausted.
// Any other error is fatal for the run.
func (r *Reader) Next() (core.Record, error) {
	if r.empty {
		return core.Record{}, io.EOF
	}
	row, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return core.Record{}, io.EOF
		}
		return core.Record{}, fmt.Errorf("read row: %w", err)
	}
	line, _ := r.csv.FieldPos(0)

	rec, err := r.decode(row)
	if err != nil {
		return core.Record{}, fmt.Errorf("line %d: %w", line, err)
	}
	rec.Line = line
	return rec, nil
}

func (r *Reader) decode(row []string) (core.Record, error) {
	typ, ok := field(row, r.index[ColumnType])
	if !ok {
		return core.Record{}, fmt.Errorf("%w %q", ErrMissingColumn, ColumnType)
	}
	clientField, ok := field(row, r.index[ColumnClient])
	if !ok {
		return core.Record{}, fmt.Errorf("%w %q", ErrMissingColumn, ColumnClient)
	}
	txField, ok := field(row, r.index[ColumnTx])
	if !ok {
		return core.Record{}, fmt.Errorf("%w %q", ErrMissingColumn, ColumnTx)
	}

	client, err := core.ParseClientID(clientField)
	if err != nil {
		return core.Record{}, fmt.Errorf("%w: client %q: %w", ErrInvalidField, clientField, err)
	}
	tx, err := core.ParseTxID(txField)
	if err != nil {
		return core.Record{}, fmt.Errorf("%w: tx %q: %w", ErrInvalidField, txField, err)
	}

	var amountField string
	if r.amount >= 0 {
		amountField, _ = field(row, r.amount)
	}
	amount, err := core.ParseAmount(amountField)
	if err != nil {
		return core.Record{}, fmt.Errorf("%w: amount %q: %w", ErrInvalidField, amountField, err)
	}

	return core.Record{
		Type:   core.TxType(typ),
		Client: client,
		Tx:     tx,
		Amount: amount,
	}, nil
}

func field(row []string, i int) (string, bool) {
	if i >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[i]), true
}
