package ledger

import (
	"context"

	"github.com/robinvdvleuten/beancount-complete/ast"
)

// BalanceIncompletePostings completes a transaction. It returns the transaction to
// use from now on together with the diagnostics of GetIncompletePostings.
//
// The input is never modified. When nothing changed, the same pointer is returned;
// otherwise the result is a copy carrying the new posting list.
func BalanceIncompletePostings(ctx context.Context, txn *ast.Transaction) (*ast.Transaction, []error) {
	postings, inserted, errs := GetIncompletePostings(ctx, txn)

	if !inserted && len(postings) == len(txn.Postings) {
		return txn, errs
	}

	return txn.WithPostings(postings), errs
}
