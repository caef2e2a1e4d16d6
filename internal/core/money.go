// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from input
// fields and formatting them for reports.
package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of fractional digits kept for every amount.
const AmountPlaces = 4

// ParseAmount converts a decimal string to an amount rounded to AmountPlaces.
//
// Surrounding whitespace is ignored and a blank field yields zero, since
// dispute, resolve and chargeback rows carry no amount. Sign is preserved;
// amount validity is a policy of the processor, not the parser.
//
// Examples:
//   ParseAmount("1.5")     -> 1.5, nil
//   ParseAmount(" 2.0 ")   -> 2, nil
//   ParseAmount("")        -> 0, nil
//   ParseAmount("1.23456") -> 1.2346, nil (rounds half away from zero)
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(AmountPlaces), nil
}

// FormatAmount renders an amount with exactly AmountPlaces fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountPlaces)
}

// ParseClientID parses an unsigned 16-bit client identifier.
func ParseClientID(s string) (ClientID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, ErrInvalidClientID
	}
	return ClientID(v), nil
}

// ParseTxID parses an unsigned 32-bit transaction identifier.
func ParseTxID(s string) (TxID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, ErrInvalidTxID
	}
	return TxID(v), nil
}
