package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beancount-complete/ast"
)

func TestErrorLocation(t *testing.T) {
	date, _ := ast.NewDate("2024-01-15")
	posting := ast.NewPosting("Expenses:Restaurant")

	withFile := ast.NewTransaction(date, "Dinner",
		ast.WithPosition(ast.Position{Filename: "test.yaml", Line: 10}),
		ast.WithPostings(posting))
	withoutFile := ast.NewTransaction(date, "Dinner", ast.WithPostings(posting))

	residual := []ast.Amount{ast.MustAmount("-89.00", "USD"), ast.MustAmount("5", "EUR")}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "not balanced",
			err:  NewTransactionNotBalancedError(withFile, residual),
			want: "test.yaml:10: Transaction does not balance: (-89.00 USD, 5 EUR)",
		},
		{
			name: "not balanced without filename",
			err:  NewTransactionNotBalancedError(withoutFile, residual[:1]),
			want: "2024-01-15: Transaction does not balance: (-89.00 USD)",
		},
		{
			name: "too many incomplete",
			err:  NewTooManyIncompleteError(withFile, 3),
			want: "test.yaml:10: At most one posting may be left incomplete per transaction (found 3)",
		},
		{
			name: "ambiguous currency",
			err:  NewAmbiguousCurrencyError(withoutFile, posting, residual),
			want: "2024-01-15: Cannot resolve incomplete posting for Expenses:Restaurant: residual spans multiple currencies (-89.00 USD, 5 EUR)",
		},
		{
			name: "units currency unknown",
			err:  NewAmbiguousCurrencyError(withFile, ast.NewPosting("Assets:Stock", ast.WithPrice(ast.MustAmount("2", "USD"))), residual[:1]),
			want: "test.yaml:10: Cannot resolve incomplete posting for Assets:Stock: units currency cannot be inferred from residual (-89.00 USD)",
		},
		{
			name: "units currency unknown without residual",
			err:  NewAmbiguousCurrencyError(withFile, ast.NewPosting("Assets:Stock", ast.WithNumberOnly("5")), nil),
			want: "test.yaml:10: Cannot resolve incomplete posting for Assets:Stock: units currency cannot be inferred",
		},
		{
			name: "superfluous",
			err:  NewSuperfluousIncompleteError(withFile, posting, "USD"),
			want: "test.yaml:10: Superfluous incomplete posting for Expenses:Restaurant: residual already zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorAccessors(t *testing.T) {
	date, _ := ast.NewDate("2024-01-15")
	posting := ast.NewPosting("Expenses:Restaurant", ast.WithCurrencyOnly("CAD"))
	txn := ast.NewTransaction(date, "Dinner",
		ast.WithPosition(ast.Position{Filename: "test.yaml", Line: 10}),
		ast.WithPostings(posting))

	errs := []interface {
		error
		GetPosition() ast.Position
		GetTransaction() *ast.Transaction
		GetDate() *ast.Date
	}{
		NewTransactionNotBalancedError(txn, nil),
		NewTooManyIncompleteError(txn, 2),
		NewAmbiguousCurrencyError(txn, posting, nil),
		NewSuperfluousIncompleteError(txn, posting, "CAD"),
	}

	for _, err := range errs {
		assert.Equal(t, "test.yaml", err.GetPosition().Filename)
		assert.Equal(t, 10, err.GetPosition().Line)
		assert.True(t, err.GetTransaction() == txn)
		assert.Equal(t, date, err.GetDate())
	}

	ambiguous := NewAmbiguousCurrencyError(txn, posting, []ast.Amount{ast.MustAmount("5", "USD")})
	assert.Equal(t, "CAD", ambiguous.Currency)
	assert.Equal(t, "test.yaml:10: Cannot resolve incomplete posting for Expenses:Restaurant: residual (5 USD) is not in CAD", ambiguous.Error())
}
