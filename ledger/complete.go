package ledger

import (
	"context"

	"github.com/robinvdvleuten/beancount-complete/ast"
	"github.com/shopspring/decimal"
)

// postingClassification splits postings by whether their units are explicit,
// preserving the original order within each group.
type postingClassification struct {
	explicit   []*ast.Posting
	incomplete []*ast.Posting
}

func classifyPostings(postings []*ast.Posting) postingClassification {
	pc := postingClassification{
		explicit: make([]*ast.Posting, 0, len(postings)),
	}
	for _, posting := range postings {
		if posting.IsIncomplete() {
			pc.incomplete = append(pc.incomplete, posting)
		} else {
			pc.explicit = append(pc.explicit, posting)
		}
	}
	return pc
}

// GetIncompletePostings resolves the incomplete postings of a transaction against the
// residual left by its explicit postings. It returns the new posting list (explicit
// postings in their original order, followed by the filled posting if any), whether
// a posting was filled in, and the diagnostics raised along the way.
//
// Only the first incomplete posting is a candidate for completion:
//   - no incomplete postings: a residual is reported as TransactionNotBalancedError;
//   - more than one: TooManyIncompleteError, all but the first are dropped;
//   - residual in one currency: the candidate absorbs it;
//   - zero residual with at least two explicit postings: the candidate is filled with
//     zero and reported as SuperfluousIncompleteError;
//   - zero residual otherwise: the candidate is dropped silently;
//   - residual in several currencies: AmbiguousCurrencyError, the candidate is dropped.
//
// A candidate that names its number keeps it; only its currency is inferred, and a
// transaction that still does not balance is reported as TransactionNotBalancedError.
//
// The transaction is not modified.
func GetIncompletePostings(ctx context.Context, txn *ast.Transaction) ([]*ast.Posting, bool, []error) {
	var errs []error
	pc := classifyPostings(txn.Postings)

	residual := getInventory()
	defer putInventory(residual)
	accumulateResidual(residual, pc.explicit)

	postings := pc.explicit

	if len(pc.incomplete) == 0 {
		cfg := ConfigFromContext(ctx)
		tolerances := cfg.Tolerance.Tolerances(pc.explicit, residual)
		if unbalanced := residual.Exceeding(tolerances); len(unbalanced) > 0 {
			errs = append(errs, NewTransactionNotBalancedError(txn, unbalanced))
		}
		return postings, false, errs
	}

	if len(pc.incomplete) > 1 {
		errs = append(errs, NewTooManyIncompleteError(txn, len(pc.incomplete)))
	}

	candidate := pc.incomplete[0]

	if number, ok := incompleteNumber(candidate); ok {
		filled, err := completeCurrency(ctx, txn, pc.explicit, candidate, number, residual)
		if filled == nil {
			return postings, false, append(errs, err)
		}
		if err != nil {
			errs = append(errs, err)
		}
		return append(postings, filled), true, errs
	}

	switch residual.Len() {
	case 0:
		if len(pc.explicit) < 2 {
			return postings, false, errs
		}

		currency := incompleteCurrency(candidate)
		if currency == "" {
			currency = BalanceAmount(pc.explicit[0]).Currency
		}
		postings = append(postings, fillPosting(candidate, decimal.Zero, currency))
		errs = append(errs, NewSuperfluousIncompleteError(txn, candidate, currency))
		return postings, true, errs

	case 1:
		filled, ok := absorbResidual(candidate, residual.Amounts()[0])
		if !ok {
			errs = append(errs, NewAmbiguousCurrencyError(txn, candidate, residual.Amounts()))
			return postings, false, errs
		}
		postings = append(postings, filled)
		return postings, true, errs

	default:
		errs = append(errs, NewAmbiguousCurrencyError(txn, candidate, residual.Amounts()))
		return postings, false, errs
	}
}

// absorbResidual fills the candidate so that its weight cancels the residual. A
// candidate that names a currency only accepts a residual it can be expressed in.
// A candidate with a cost or price converts the residual back into units, which
// requires the units currency to be named.
func absorbResidual(candidate *ast.Posting, residual ast.Amount) (*ast.Posting, bool) {
	currency := incompleteCurrency(candidate)

	if HasNontrivialBalance(candidate) {
		rate, rateCurrency := conversionRate(candidate)
		if currency == "" || rateCurrency != residual.Currency || rate.IsZero() {
			return nil, false
		}
		return fillPosting(candidate, residual.Number.Neg().Div(rate), currency), true
	}

	if currency != "" && currency != residual.Currency {
		return nil, false
	}
	return fillPosting(candidate, residual.Number.Neg(), residual.Currency), true
}

// completeCurrency fills in the currency of a candidate that already names its
// number. Without a cost or price the currency is the one the residual is in, or the
// currency of the first explicit posting when there is no residual. The number is
// never changed: whatever it leaves unbalanced is reported. residual is consumed.
func completeCurrency(ctx context.Context, txn *ast.Transaction, explicit []*ast.Posting, candidate *ast.Posting, number decimal.Decimal, residual *Inventory) (*ast.Posting, error) {
	var currency string
	switch {
	case HasNontrivialBalance(candidate):
		// The residual is in the cost or price currency, not in the units currency.
	case residual.Len() == 1:
		currency = residual.Currencies()[0]
	case residual.Len() == 0 && len(explicit) > 0:
		currency = BalanceAmount(explicit[0]).Currency
	}
	if currency == "" {
		return nil, NewAmbiguousCurrencyError(txn, candidate, residual.Amounts())
	}

	filled := fillPosting(candidate, number, currency)
	residual.AddAmount(BalanceAmount(filled))

	postings := append(explicit[:len(explicit):len(explicit)], filled)
	tolerances := ConfigFromContext(ctx).Tolerance.Tolerances(postings, residual)
	if unbalanced := residual.Exceeding(tolerances); len(unbalanced) > 0 {
		return filled, NewTransactionNotBalancedError(txn, unbalanced)
	}
	return filled, nil
}

// conversionRate returns the per-unit number and currency the posting's weight is
// expressed in: its cost if present, its price otherwise.
func conversionRate(posting *ast.Posting) (decimal.Decimal, string) {
	if posting.Cost != nil {
		return posting.Cost.Number, posting.Cost.Currency
	}
	return posting.Price.Number, posting.Price.Currency
}

// incompleteCurrency returns the currency an incomplete posting already names, if any.
func incompleteCurrency(posting *ast.Posting) string {
	if u, ok := posting.Units.(ast.IncompleteUnits); ok {
		return u.Currency
	}
	return ""
}

// incompleteNumber returns the number an incomplete posting already names, if any.
func incompleteNumber(posting *ast.Posting) (decimal.Decimal, bool) {
	if u, ok := posting.Units.(ast.IncompleteUnits); ok && u.Number != nil {
		return *u.Number, true
	}
	return decimal.Zero, false
}

// fillPosting returns a copy of the posting with explicit units, marked as inferred.
// Cost, price, flag and metadata are carried over.
func fillPosting(posting *ast.Posting, number decimal.Decimal, currency string) *ast.Posting {
	filled := *posting
	filled.Units = ast.ExplicitUnits{Number: number, Currency: currency}
	filled.Inferred = true
	return &filled
}
