package records

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txledger/internal/core"
)

func readAll(t *testing.T, input string) ([]core.Record, error) {
	t.Helper()
	r, err := NewReader(strings.NewReader(input))
	if err != nil {
		return nil, err
	}
	var out []core.Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

func TestReaderParsesRows(t *testing.T) {
	input := "type, client, tx, amount\n" +
		"deposit, 1, 1, 1.0\n" +
		"  withdrawal ,2,  5 , 2.12345 \n" +
		"dispute, 1, 1,\n" +
		"resolve, 1, 1\n"

	recs, err := readAll(t, input)
	require.NoError(t, err)
	require.Len(t, recs, 4)

	assert.Equal(t, core.Deposit, recs[0].Type)
	assert.True(t, recs[0].Amount.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, 2, recs[0].Line)

	assert.Equal(t, core.Withdrawal, recs[1].Type)
	assert.Equal(t, core.ClientID(2), recs[1].Client)
	assert.Equal(t, core.TxID(5), recs[1].Tx)
	assert.True(t, recs[1].Amount.Equal(decimal.RequireFromString("2.1235")), "got %s", recs[1].Amount)

	assert.Equal(t, core.Dispute, recs[2].Type)
	assert.True(t, recs[2].Amount.IsZero(), "blank amount defaults to zero")

	assert.Equal(t, core.Resolve, recs[3].Type)
	assert.True(t, recs[3].Amount.IsZero(), "missing trailing amount defaults to zero")
	assert.Equal(t, 5, recs[3].Line)
}

func TestReaderColumnOrderAndOptionalAmount(t *testing.T) {
	recs, err := readAll(t, "tx,type,client\n7,chargeback,3\n")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, core.Chargeback, recs[0].Type)
	assert.Equal(t, core.ClientID(3), recs[0].Client)
	assert.Equal(t, core.TxID(7), recs[0].Tx)
	assert.True(t, recs[0].Amount.IsZero())
}

func TestReaderKeepsUnknownTypes(t *testing.T) {
	recs, err := readAll(t, "type,client,tx,amount\nTransfer,1,1,5\n")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, core.TxType("Transfer"), recs[0].Type)
	assert.False(t, recs[0].Type.IsValid())
}

func TestReaderHeaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing tx column", "type,client,amount\ndeposit,1,1\n"},
		{"missing type column", "kind,client,tx\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrMissingColumn)
		})
	}
}

func TestReaderEmptyInput(t *testing.T) {
	for _, input := range []string{"", "type,client,tx,amount\n"} {
		r, err := NewReader(strings.NewReader(input))
		require.NoError(t, err, "%q", input)

		_, err = r.Next()
		assert.ErrorIs(t, err, io.EOF, "%q", input)
	}
}

func TestReaderRowErrors(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		wantErr error
		detail  error
	}{
		{"non numeric client", "deposit,abc,1,1.0", ErrInvalidField, core.ErrInvalidClientID},
		{"client overflow", "deposit,70000,1,1.0", ErrInvalidField, core.ErrInvalidClientID},
		{"negative tx", "deposit,1,-1,1.0", ErrInvalidField, core.ErrInvalidTxID},
		{"bad amount", "deposit,1,1,ten", ErrInvalidField, core.ErrInvalidAmount},
		{"missing tx field", "deposit,1", ErrMissingColumn, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := readAll(t, "type,client,tx,amount\ndeposit,1,1,1.0\n"+tt.row+"\n")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.detail != nil {
				assert.ErrorIs(t, err, tt.detail)
			}
			assert.Contains(t, err.Error(), "line 3")
			assert.Len(t, recs, 1, "rows before the failure are still returned")
		})
	}
}
