package ast

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Constructor functions for programmatically building transactions, such as from
// importers or in tests. Transactions and postings use functional options, following
// Go idioms for configurable constructors.

// NewAmount creates a new Amount from a decimal string and a currency.
// The currency is upper-cased. Returns an error if the value is not a valid decimal.
//
// Example:
//
//	amount, err := ast.NewAmount("45.60", "USD")
func NewAmount(value, currency string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return Amount{}, fmt.Errorf("invalid number %q: %w", value, err)
	}
	return Amount{Number: d, Currency: NormalizeCurrency(currency)}, nil
}

// MustAmount is like NewAmount but panics on an invalid value.
// Use only in tests or with literal values.
func MustAmount(value, currency string) Amount {
	a, err := NewAmount(value, currency)
	if err != nil {
		panic(err)
	}
	return a
}

// NewDate parses a date string in YYYY-MM-DD format and returns a Date.
// Returns an error if the string cannot be parsed as a valid date.
//
// Example:
//
//	date, err := ast.NewDate("2024-01-15")
func NewDate(s string) (*Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %s", s)
	}
	return &Date{Time: t}, nil
}

// NewDateFromTime creates a Date from a time.Time value.
func NewDateFromTime(t time.Time) *Date {
	return &Date{Time: t}
}

// NewAccount creates an Account from the given name string and validates it.
//
// Example:
//
//	account, err := ast.NewAccount("Assets:US:BofA:Checking")
func NewAccount(name string) (Account, error) {
	account := Account(name)
	if err := account.Validate(); err != nil {
		return "", err
	}
	return account, nil
}

// NewLink creates a Link from the given name. A leading ^ is stripped.
func NewLink(name string) Link {
	return Link(strings.TrimPrefix(name, "^"))
}

// NewTag creates a Tag from the given name. A leading # is stripped.
func NewTag(name string) Tag {
	return Tag(strings.TrimPrefix(name, "#"))
}

// NewMetadata creates a metadata entry.
func NewMetadata(key, value string) *Metadata {
	return &Metadata{Key: key, Value: value}
}

// TransactionOption is a functional option for configuring a Transaction.
type TransactionOption func(*Transaction)

// NewTransaction creates a new Transaction with the given date and narration.
// Additional fields can be set using functional options.
//
// Example:
//
//	txn := ast.NewTransaction(date, "Buy groceries",
//	    ast.WithFlag("*"),
//	    ast.WithPayee("Whole Foods"),
//	    ast.WithPostings(
//	        ast.NewPosting("Expenses:Food", ast.WithUnits("45.60", "USD")),
//	        ast.NewPosting("Assets:Checking"),
//	    ),
//	)
func NewTransaction(date *Date, narration string, opts ...TransactionOption) *Transaction {
	txn := &Transaction{
		Date:      date,
		Narration: narration,
	}

	for _, opt := range opts {
		opt(txn)
	}

	return txn
}

// WithFlag sets the transaction flag.
// Common values: "*" (cleared), "!" (pending).
func WithFlag(flag string) TransactionOption {
	return func(t *Transaction) {
		t.Flag = flag
	}
}

// WithPayee sets the transaction payee.
func WithPayee(payee string) TransactionOption {
	return func(t *Transaction) {
		t.Payee = payee
	}
}

// WithPosition sets the source location of the transaction.
func WithPosition(pos Position) TransactionOption {
	return func(t *Transaction) {
		t.Pos = pos
	}
}

// WithTags adds tags to the transaction.
func WithTags(tags ...string) TransactionOption {
	return func(t *Transaction) {
		for _, tag := range tags {
			t.Tags = append(t.Tags, NewTag(tag))
		}
	}
}

// WithLinks adds links to the transaction.
func WithLinks(links ...string) TransactionOption {
	return func(t *Transaction) {
		for _, link := range links {
			t.Links = append(t.Links, NewLink(link))
		}
	}
}

// WithTransactionMetadata adds metadata entries to the transaction.
func WithTransactionMetadata(metadata ...*Metadata) TransactionOption {
	return func(t *Transaction) {
		t.AddMetadata(metadata...)
	}
}

// WithPostings sets the postings for the transaction.
func WithPostings(postings ...*Posting) TransactionOption {
	return func(t *Transaction) {
		t.Postings = postings
	}
}

// PostingOption is a functional option for configuring a Posting.
type PostingOption func(*Posting)

// NewPosting creates a new Posting for the given account. Without options the
// posting is an auto-posting whose units the ledger will infer.
//
// Example:
//
//	posting := ast.NewPosting("Assets:Stock",
//	    ast.WithUnits("10", "HOOL"),
//	    ast.WithCost(ast.NewCost(ast.MustAmount("518.73", "USD"))),
//	)
func NewPosting(account Account, opts ...PostingOption) *Posting {
	posting := &Posting{
		Account: account,
		Units:   AutoUnits(),
	}

	for _, opt := range opts {
		opt(posting)
	}

	return posting
}

// WithUnits sets explicit units on a posting. It panics if value is not a decimal,
// since builders are meant for literal values.
func WithUnits(value, currency string) PostingOption {
	return func(p *Posting) {
		a := MustAmount(value, currency)
		p.Units = ExplicitUnits{Number: a.Number, Currency: a.Currency}
	}
}

// WithUnitsAmount sets explicit units from an Amount.
func WithUnitsAmount(amount Amount) PostingOption {
	return func(p *Posting) {
		p.Units = ExplicitUnits{Number: amount.Number, Currency: amount.Currency}
	}
}

// WithNumberOnly sets a number without a currency, leaving the posting incomplete.
func WithNumberOnly(value string) PostingOption {
	return func(p *Posting) {
		d := decimal.RequireFromString(value)
		p.Units = IncompleteUnits{Number: &d}
	}
}

// WithCurrencyOnly sets a currency without a number, leaving the posting incomplete.
func WithCurrencyOnly(currency string) PostingOption {
	return func(p *Posting) {
		p.Units = IncompleteUnits{Currency: NormalizeCurrency(currency)}
	}
}

// WithCost sets the cost specification for a posting.
func WithCost(cost *Cost) PostingOption {
	return func(p *Posting) {
		p.Cost = cost
	}
}

// WithPrice sets the per-unit price for a posting.
// This records a conversion rate and determines the weight when no cost is given.
func WithPrice(price Amount) PostingOption {
	return func(p *Posting) {
		p.Price = &price
	}
}

// WithPostingFlag sets the flag for a posting.
func WithPostingFlag(flag string) PostingOption {
	return func(p *Posting) {
		p.Flag = flag
	}
}

// WithPostingPosition sets the source location of the posting.
func WithPostingPosition(pos Position) PostingOption {
	return func(p *Posting) {
		p.Pos = pos
	}
}

// WithPostingMetadata adds metadata entries to the posting.
func WithPostingMetadata(metadata ...*Metadata) PostingOption {
	return func(p *Posting) {
		p.AddMetadata(metadata...)
	}
}

// NewCost creates a Cost specification with just a per-unit amount.
//
// Example:
//
//	cost := ast.NewCost(ast.MustAmount("518.73", "USD"))
func NewCost(amount Amount) *Cost {
	return &Cost{
		Number:   amount.Number,
		Currency: amount.Currency,
	}
}

// NewCostWithLabel creates a Cost specification with an amount, acquisition date and label.
func NewCostWithLabel(amount Amount, date *Date, label string) *Cost {
	return &Cost{
		Number:   amount.Number,
		Currency: amount.Currency,
		Date:     date,
		Label:    label,
	}
}

// NewClearedTransaction creates a Transaction with flag="*" (cleared).
func NewClearedTransaction(date *Date, narration string, postings ...*Posting) *Transaction {
	return NewTransaction(date, narration,
		WithFlag("*"),
		WithPostings(postings...),
	)
}
