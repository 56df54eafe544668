package ast

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Units is the quantity side of a posting. It is a closed set of two variants:
//
//   - ExplicitUnits: number and currency are both known.
//   - IncompleteUnits: the number, the currency, or both are missing and have to be
//     inferred from the rest of the transaction.
//
// A nil Units value is treated as IncompleteUnits{} (an auto-posting).
type Units interface {
	units()
	String() string
}

// ExplicitUnits is a fully specified quantity.
type ExplicitUnits struct {
	Number   decimal.Decimal
	Currency string
}

func (ExplicitUnits) units() {}

// Amount returns the units as an Amount.
func (u ExplicitUnits) Amount() Amount {
	return Amount{Number: u.Number, Currency: u.Currency}
}

func (u ExplicitUnits) String() string {
	return u.Amount().String()
}

// IncompleteUnits is a quantity with a missing number, a missing currency, or both.
type IncompleteUnits struct {
	Number   *decimal.Decimal
	Currency string
}

func (IncompleteUnits) units() {}

// IsAuto returns true when neither number nor currency is given.
func (u IncompleteUnits) IsAuto() bool {
	return u.Number == nil && u.Currency == ""
}

func (u IncompleteUnits) String() string {
	parts := make([]string, 0, 2)
	if u.Number != nil {
		parts = append(parts, FormatNumber(*u.Number))
	}
	if u.Currency != "" {
		parts = append(parts, u.Currency)
	}
	return strings.Join(parts, " ")
}

// AutoUnits returns the empty incomplete variant used by auto-postings.
func AutoUnits() Units {
	return IncompleteUnits{}
}

var (
	_ Units = ExplicitUnits{}
	_ Units = IncompleteUnits{}
)
