package ledger

import (
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beancount-complete/ast"
)

// Error types for balance completion. None of them is fatal: the resolver reports
// them as data and processing continues with the next transaction.

// location formats the bean-check style prefix of an error message: filename:line,
// or the transaction date when no file is known.
func location(pos ast.Position, date *ast.Date) string {
	if pos.Filename == "" {
		return date.String()
	}
	return fmt.Sprintf("%s:%d", pos.Filename, pos.Line)
}

// formatAmounts renders amounts as "(a CUR1, b CUR2)" in the given order.
func formatAmounts(amounts []ast.Amount) string {
	var buf strings.Builder
	buf.WriteByte('(')
	for i, amount := range amounts {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(amount.String())
	}
	buf.WriteByte(')')
	return buf.String()
}

// TransactionNotBalancedError is returned when the explicit postings of a transaction
// leave a residual and there is no incomplete posting to absorb it.
type TransactionNotBalancedError struct {
	Pos         ast.Position     // Position in source file (includes filename)
	Date        *ast.Date        // Transaction date
	Narration   string           // Transaction narration
	Residual    []ast.Amount     // Unbalanced amounts, in first-seen currency order
	Transaction *ast.Transaction // Full transaction for context rendering
}

// Error returns a bean-check style error message with filename:line prefix.
func (e *TransactionNotBalancedError) Error() string {
	return fmt.Sprintf("%s: Transaction does not balance: %s", location(e.Pos, e.Date), formatAmounts(e.Residual))
}

func (e *TransactionNotBalancedError) GetPosition() ast.Position {
	return e.Pos
}

func (e *TransactionNotBalancedError) GetTransaction() *ast.Transaction {
	return e.Transaction
}

func (e *TransactionNotBalancedError) GetDate() *ast.Date {
	return e.Date
}

// TooManyIncompleteError is returned when more than one posting of a transaction
// lacks its number or currency. Only the first of them is considered for completion.
type TooManyIncompleteError struct {
	Pos         ast.Position
	Date        *ast.Date
	Count       int // Number of incomplete postings found
	Transaction *ast.Transaction
}

func (e *TooManyIncompleteError) Error() string {
	return fmt.Sprintf("%s: At most one posting may be left incomplete per transaction (found %d)",
		location(e.Pos, e.Date), e.Count)
}

func (e *TooManyIncompleteError) GetPosition() ast.Position {
	return e.Pos
}

func (e *TooManyIncompleteError) GetTransaction() *ast.Transaction {
	return e.Transaction
}

func (e *TooManyIncompleteError) GetDate() *ast.Date {
	return e.Date
}

// AmbiguousCurrencyError is returned when the residual an incomplete posting would
// have to absorb cannot be expressed in a single currency, or when the currency of
// its units cannot be inferred. The posting is dropped.
//
// Example error message:
//
//	"main.yaml:12: Cannot resolve incomplete posting for Assets:Cash: residual spans multiple currencies (5.00 USD, -3 CAD)"
type AmbiguousCurrencyError struct {
	Pos         ast.Position
	Date        *ast.Date
	Account     ast.Account
	Currency    string       // Currency named by the posting itself, if any
	Residual    []ast.Amount // Residual the posting could not absorb
	Transaction *ast.Transaction
}

func (e *AmbiguousCurrencyError) Error() string {
	switch {
	case len(e.Residual) > 1:
		return fmt.Sprintf("%s: Cannot resolve incomplete posting for %s: residual spans multiple currencies %s",
			location(e.Pos, e.Date), e.Account, formatAmounts(e.Residual))
	case e.Currency != "":
		return fmt.Sprintf("%s: Cannot resolve incomplete posting for %s: residual %s is not in %s",
			location(e.Pos, e.Date), e.Account, formatAmounts(e.Residual), e.Currency)
	case len(e.Residual) == 1:
		return fmt.Sprintf("%s: Cannot resolve incomplete posting for %s: units currency cannot be inferred from residual %s",
			location(e.Pos, e.Date), e.Account, formatAmounts(e.Residual))
	default:
		return fmt.Sprintf("%s: Cannot resolve incomplete posting for %s: units currency cannot be inferred",
			location(e.Pos, e.Date), e.Account)
	}
}

func (e *AmbiguousCurrencyError) GetPosition() ast.Position {
	return e.Pos
}

func (e *AmbiguousCurrencyError) GetTransaction() *ast.Transaction {
	return e.Transaction
}

func (e *AmbiguousCurrencyError) GetDate() *ast.Date {
	return e.Date
}

func (e *AmbiguousCurrencyError) GetAccount() ast.Account {
	return e.Account
}

// SuperfluousIncompleteError is returned when the explicit postings already balance
// exactly but an incomplete posting is present. The posting is still filled with a
// zero amount.
type SuperfluousIncompleteError struct {
	Pos         ast.Position
	Date        *ast.Date
	Account     ast.Account
	Currency    string // Currency of the zero amount that was filled in
	Transaction *ast.Transaction
}

func (e *SuperfluousIncompleteError) Error() string {
	return fmt.Sprintf("%s: Superfluous incomplete posting for %s: residual already zero",
		location(e.Pos, e.Date), e.Account)
}

func (e *SuperfluousIncompleteError) GetPosition() ast.Position {
	return e.Pos
}

func (e *SuperfluousIncompleteError) GetTransaction() *ast.Transaction {
	return e.Transaction
}

func (e *SuperfluousIncompleteError) GetDate() *ast.Date {
	return e.Date
}

func (e *SuperfluousIncompleteError) GetAccount() ast.Account {
	return e.Account
}

// Constructor functions for ledger errors.
// These provide a cleaner API and ensure consistent field initialization.

// NewTransactionNotBalancedError creates an error for a transaction whose explicit
// postings leave the given residual.
func NewTransactionNotBalancedError(txn *ast.Transaction, residual []ast.Amount) *TransactionNotBalancedError {
	return &TransactionNotBalancedError{
		Pos:         txn.Pos,
		Date:        txn.Date,
		Narration:   txn.Narration,
		Residual:    residual,
		Transaction: txn,
	}
}

// NewTooManyIncompleteError creates an error for a transaction with count incomplete postings.
func NewTooManyIncompleteError(txn *ast.Transaction, count int) *TooManyIncompleteError {
	return &TooManyIncompleteError{
		Pos:         txn.Pos,
		Date:        txn.Date,
		Count:       count,
		Transaction: txn,
	}
}

// NewAmbiguousCurrencyError creates an error for an incomplete posting that cannot absorb residual.
func NewAmbiguousCurrencyError(txn *ast.Transaction, posting *ast.Posting, residual []ast.Amount) *AmbiguousCurrencyError {
	var currency string
	if u, ok := posting.Units.(ast.IncompleteUnits); ok {
		currency = u.Currency
	}
	return &AmbiguousCurrencyError{
		Pos:         txn.Pos,
		Date:        txn.Date,
		Account:     posting.Account,
		Currency:    currency,
		Residual:    residual,
		Transaction: txn,
	}
}

// NewSuperfluousIncompleteError creates an error for an incomplete posting filled with zero.
func NewSuperfluousIncompleteError(txn *ast.Transaction, posting *ast.Posting, currency string) *SuperfluousIncompleteError {
	return &SuperfluousIncompleteError{
		Pos:         txn.Pos,
		Date:        txn.Date,
		Account:     posting.Account,
		Currency:    currency,
		Transaction: txn,
	}
}
