package ast

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Amount represents an exact decimal number with its associated currency or commodity
// symbol. Amounts are immutable values; two amounts are equal when both the number
// (compared as an exact decimal) and the currency match.
type Amount struct {
	Number   decimal.Decimal
	Currency string
}

// Equal reports whether a and b denote the same number in the same currency.
// Trailing zeros do not matter: 84.40 USD equals 84.4 USD.
func (a Amount) Equal(b Amount) bool {
	return a.Currency == b.Currency && a.Number.Equal(b.Number)
}

// Neg returns the amount with its sign flipped.
func (a Amount) Neg() Amount {
	return Amount{Number: a.Number.Neg(), Currency: a.Currency}
}

// IsZero returns true if the number is exactly zero.
func (a Amount) IsZero() bool {
	return a.Number.IsZero()
}

// String renders the amount as "<number> <currency>", keeping the number's own
// exponent so that 105.50 USD is not shortened to 105.5 USD.
func (a Amount) String() string {
	return FormatNumber(a.Number) + " " + a.Currency
}

// FormatNumber renders a decimal without trimming trailing zeros of its exponent.
func FormatNumber(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// NormalizeCurrency upper-cases a currency code and trims surrounding whitespace.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// Cost represents the per-unit acquisition cost of the posted quantity. When present
// it determines the posting's weight. The acquisition date and label identify lots
// for the booking pass and are opaque to balance completion.
//
// Example cost specifications:
//
//	10 HOOL {518.73 USD}              ; Per-unit cost
//	10 HOOL {518.73 USD, 2014-05-01}  ; Cost with acquisition date
//	-5 HOOL {502.12 USD, "first-lot"} ; Cost with label
type Cost struct {
	Number   decimal.Decimal
	Currency string
	Date     *Date
	Label    string
}

// Amount returns the per-unit cost as an Amount.
func (c *Cost) Amount() Amount {
	return Amount{Number: c.Number, Currency: c.Currency}
}

// String renders the cost in brace notation.
func (c *Cost) String() string {
	var buf strings.Builder
	buf.WriteByte('{')
	buf.WriteString(c.Amount().String())
	if c.Date != nil {
		buf.WriteString(", ")
		buf.WriteString(c.Date.String())
	}
	if c.Label != "" {
		fmt.Fprintf(&buf, ", %q", c.Label)
	}
	buf.WriteByte('}')
	return buf.String()
}

// Account represents an account name consisting of at least two colon-separated
// segments. The first segment must be one of the five account categories: Assets,
// Liabilities, Equity, Income, or Expenses.
//
// Example accounts:
//
//	Assets:US:BofA:Checking
//	Liabilities:CreditCard:CapitalOne
//	Expenses:Home:Rent
type Account string

// accountSegmentRegex validates account segments (after first).
// Must start with uppercase letter or digit, can contain alphanumerics and hyphens.
var accountSegmentRegex = regexp.MustCompile(`^[A-Z0-9][A-Za-z0-9-]*$`)

// Validate checks the account name against the naming rules.
func (a Account) Validate() error {
	parts := strings.Split(string(a), ":")
	if len(parts) < 2 {
		return fmt.Errorf("account must have at least two segments: %s", a)
	}

	switch parts[0] {
	case "Assets", "Liabilities", "Equity", "Income", "Expenses":
	default:
		return fmt.Errorf(`unexpected account type "%s"`, parts[0])
	}

	for i := 1; i < len(parts); i++ {
		if !accountSegmentRegex.MatchString(parts[i]) {
			return fmt.Errorf("invalid account segment at position %d: %s", i, parts[i])
		}
	}
	return nil
}

// Date represents a calendar date in ISO 8601 format (YYYY-MM-DD).
type Date struct {
	time.Time
}

// IsZero returns true if the Date is nil or represents the zero time.
func (d *Date) IsZero() bool {
	if d == nil {
		return true
	}
	return d.Time.IsZero()
}

// Precedes reports whether d is strictly before o. A nil date sorts first.
func (d *Date) Precedes(o *Date) bool {
	if d.IsZero() {
		return !o.IsZero()
	}
	if o.IsZero() {
		return false
	}
	return d.Time.Before(o.Time)
}

// String returns the date formatted as YYYY-MM-DD, or "" for a nil or zero date.
func (d *Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// Link represents a reference link (written with a ^ prefix) that connects related
// transactions together.
type Link string

// Tag represents a hashtag (written with a # prefix) used to categorize transactions.
type Tag string

// Metadata represents a key-value pair attached to a transaction or posting. Values
// are opaque to balance completion; entries keep their declaration order.
type Metadata struct {
	Key   string
	Value string
}

// withMetadata is an embeddable struct holding an ordered metadata bag.
type withMetadata struct {
	Metadata []*Metadata
}

// AddMetadata appends metadata entries.
func (w *withMetadata) AddMetadata(m ...*Metadata) {
	w.Metadata = append(w.Metadata, m...)
}

// HasMetadata returns true if any metadata entry is present.
func (w *withMetadata) HasMetadata() bool {
	return len(w.Metadata) > 0
}

// Meta returns the value of the first entry with the given key.
func (w *withMetadata) Meta(key string) (string, bool) {
	for _, m := range w.Metadata {
		if m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}
