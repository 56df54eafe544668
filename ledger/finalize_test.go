package ledger

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beancount-complete/ast"
)

func TestBalanceIncompletePostings(t *testing.T) {
	ctx := context.Background()

	t.Run("ExplicitTransactionUnchanged", func(t *testing.T) {
		txn := newTestTransaction(t,
			explicit("Liabilities:CreditCard", "-50", "USD"),
			explicit("Expenses:Restaurant", "50", "USD"),
		)
		orig := txn.Clone()

		got, errs := BalanceIncompletePostings(ctx, txn)
		assert.Equal(t, 0, len(errs))
		assert.True(t, got == txn, "expected the same transaction back")
		assert.Equal(t, orig, txn)
	})

	t.Run("Idempotent", func(t *testing.T) {
		txn := newTestTransaction(t,
			explicit("Liabilities:CreditCard", "-50", "USD"),
			explicit("Expenses:Restaurant", "50", "USD"),
		)

		once, errs := BalanceIncompletePostings(ctx, txn)
		assert.Equal(t, 0, len(errs))
		twice, errs := BalanceIncompletePostings(ctx, once)
		assert.Equal(t, 0, len(errs))
		assert.True(t, twice == txn)
	})

	t.Run("FillsAutoPosting", func(t *testing.T) {
		txn := newTestTransaction(t,
			explicit("Liabilities:CreditCard", "-50", "USD"),
			auto("Expenses:Restaurant"),
		)
		orig := txn.Clone()

		got, errs := BalanceIncompletePostings(ctx, txn)
		assert.Equal(t, 0, len(errs))
		assert.False(t, got == txn)
		assert.Equal(t, 2, len(got.Postings))
		assert.Equal(t, "50 USD", unitsOf(t, got.Postings[1]).String())

		// Everything but the postings is carried over; the input is untouched.
		assert.Equal(t, txn.Narration, got.Narration)
		assert.Equal(t, txn.Pos, got.Pos)
		assert.Equal(t, orig, txn)

		// Completing the completed transaction again is a no-op.
		again, errs := BalanceIncompletePostings(ctx, got)
		assert.Equal(t, 0, len(errs))
		assert.True(t, again == got)
	})

	t.Run("AmbiguousCurrencyDropsPosting", func(t *testing.T) {
		txn := newTestTransaction(t,
			explicit("Liabilities:CreditCard", "-50", "USD"),
			explicit("Liabilities:CreditCard", "-50", "CAD"),
			auto("Expenses:Restaurant"),
		)

		got, errs := BalanceIncompletePostings(ctx, txn)
		assert.Equal(t, 1, len(errs))
		assert.Equal(t, 2, len(got.Postings))
		assert.Equal(t, 3, len(txn.Postings))
	})

	t.Run("LoneAutoPostingDropped", func(t *testing.T) {
		txn := newTestTransaction(t, auto("Assets:Cash"))

		got, errs := BalanceIncompletePostings(ctx, txn)
		assert.Equal(t, 0, len(errs))
		assert.Equal(t, 0, len(got.Postings))
		assert.Equal(t, 1, len(txn.Postings))
	})

	t.Run("ImbalanceKeepsTransaction", func(t *testing.T) {
		txn := newTestTransaction(t,
			explicit("Assets:Bank:Checking", "105.50", "USD"),
			explicit("Assets:Bank:Savings", "-194.50", "USD"),
		)

		got, errs := BalanceIncompletePostings(ctx, txn)
		assert.Equal(t, 1, len(errs))
		assert.True(t, got == txn)
	})
}

func TestBalanceIncompletePostingsPreservesPostingDetails(t *testing.T) {
	meta := ast.NewMetadata("note", "tip included")
	txn := newTestTransaction(t,
		explicit("Liabilities:CreditCard", "-50.00", "USD"),
		ast.NewPosting("Expenses:Restaurant",
			ast.WithPostingFlag("!"),
			ast.WithPostingMetadata(meta),
			ast.WithPostingPosition(ast.Position{Filename: "complete.yaml", Line: 3, Column: 5})),
	)

	got, errs := BalanceIncompletePostings(context.Background(), txn)
	assert.Equal(t, 0, len(errs))

	filled := got.Postings[1]
	assert.Equal(t, "!", filled.Flag)
	assert.Equal(t, 3, filled.Pos.Line)
	value, ok := filled.Meta("note")
	assert.True(t, ok)
	assert.Equal(t, "tip included", value)
}
