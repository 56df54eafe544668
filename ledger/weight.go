package ledger

import (
	"fmt"

	"github.com/robinvdvleuten/beancount-complete/ast"
)

// BalanceAmount returns the weight a posting contributes to the transaction balance.
//
// When there's a cost, ONLY the cost contributes to the balance: the price (if present)
// is just informational. When there's only a price, it converts the units into the
// price currency. Otherwise the units count as-is.
//
//	10 HOOL {518.73 USD} @ 520.00 USD  ->  5187.30 USD
//	-400.00 CAD @ 1.09 USD              ->  -436.0000 USD
//	45.60 USD                           ->  45.60 USD
//
// The posting must have explicit units; calling BalanceAmount on an incomplete
// posting is a programming error and panics.
func BalanceAmount(posting *ast.Posting) ast.Amount {
	units, ok := posting.Explicit()
	if !ok {
		panic(fmt.Sprintf("ledger: balance amount of incomplete posting %s", posting.Account))
	}

	switch {
	case posting.Cost != nil:
		return ast.Amount{
			Number:   units.Number.Mul(posting.Cost.Number),
			Currency: posting.Cost.Currency,
		}

	case posting.Price != nil:
		return ast.Amount{
			Number:   units.Number.Mul(posting.Price.Number),
			Currency: posting.Price.Currency,
		}

	default:
		return units.Amount()
	}
}

// HasNontrivialBalance reports whether the posting's weight may differ from its
// face amount, i.e. whether it carries a cost or a price.
func HasNontrivialBalance(posting *ast.Posting) bool {
	return posting.Cost != nil || posting.Price != nil
}
