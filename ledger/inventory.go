package ledger

import (
	"strings"

	"github.com/robinvdvleuten/beancount-complete/ast"
	"github.com/shopspring/decimal"
)

// Inventory accumulates signed per-currency balances. It is sparse: a currency whose
// balance reaches exactly zero is removed. Currencies iterate in the order they were
// first seen so that diagnostics built from an inventory are deterministic.
type Inventory struct {
	order    []string
	balances map[string]decimal.Decimal
}

// NewInventory creates a new empty inventory
func NewInventory() *Inventory {
	return &Inventory{
		order:    make([]string, 0, 4),
		balances: make(map[string]decimal.Decimal, 4), // typical transaction has 2-4 currencies
	}
}

// Add adds a signed number to the balance of currency using exact decimal addition.
func (inv *Inventory) Add(currency string, number decimal.Decimal) {
	current, ok := inv.balances[currency]
	if !ok {
		if number.IsZero() {
			return
		}
		inv.order = append(inv.order, currency)
		inv.balances[currency] = number
		return
	}

	total := current.Add(number)
	if total.IsZero() {
		inv.remove(currency)
		return
	}
	inv.balances[currency] = total
}

// AddAmount adds an amount to the inventory.
func (inv *Inventory) AddAmount(amount ast.Amount) {
	inv.Add(amount.Currency, amount.Number)
}

// remove drops currency from the inventory, keeping the order of the others.
func (inv *Inventory) remove(currency string) {
	delete(inv.balances, currency)
	for i, c := range inv.order {
		if c == currency {
			inv.order = append(inv.order[:i], inv.order[i+1:]...)
			return
		}
	}
}

// Get returns the balance of a currency, zero when absent.
func (inv *Inventory) Get(currency string) decimal.Decimal {
	return inv.balances[currency]
}

// Len returns the number of currencies with a nonzero balance.
func (inv *Inventory) Len() int {
	return len(inv.order)
}

// IsEmpty returns true if every balance is zero
func (inv *Inventory) IsEmpty() bool {
	return len(inv.order) == 0
}

// Currencies returns the currencies with a nonzero balance in first-seen order.
func (inv *Inventory) Currencies() []string {
	currencies := make([]string, len(inv.order))
	copy(currencies, inv.order)
	return currencies
}

// Amounts returns the nonzero balances in first-seen currency order.
func (inv *Inventory) Amounts() []ast.Amount {
	amounts := make([]ast.Amount, 0, len(inv.order))
	for _, currency := range inv.order {
		amounts = append(amounts, ast.Amount{Number: inv.balances[currency], Currency: currency})
	}
	return amounts
}

// Exceeding returns the balances whose absolute value is greater than the tolerance
// of their currency. Currencies missing from tolerances are compared exactly, so a
// nil map returns every balance.
func (inv *Inventory) Exceeding(tolerances map[string]decimal.Decimal) []ast.Amount {
	amounts := make([]ast.Amount, 0, len(inv.order))
	for _, currency := range inv.order {
		balance := inv.balances[currency]
		if tolerance, ok := tolerances[currency]; ok && AmountEqual(balance, decimal.Zero, tolerance) {
			continue
		}
		amounts = append(amounts, ast.Amount{Number: balance, Currency: currency})
	}
	return amounts
}

// IsSmall reports whether every balance is within the tolerance of its currency.
func (inv *Inventory) IsSmall(tolerances map[string]decimal.Decimal) bool {
	return len(inv.Exceeding(tolerances)) == 0
}

// Reset empties the inventory while keeping its allocations.
func (inv *Inventory) Reset() {
	for k := range inv.balances {
		delete(inv.balances, k)
	}
	inv.order = inv.order[:0]
}

// String returns a string representation of the inventory
func (inv *Inventory) String() string {
	if inv.IsEmpty() {
		return "{}"
	}

	var buf strings.Builder
	buf.WriteByte('{')
	for i, currency := range inv.order {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(ast.FormatNumber(inv.balances[currency]))
		buf.WriteByte(' ')
		buf.WriteString(currency)
	}
	buf.WriteByte('}')
	return buf.String()
}
