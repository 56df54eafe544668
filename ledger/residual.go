package ledger

import (
	"github.com/robinvdvleuten/beancount-complete/ast"
)

// ComputeResidual sums the balance amounts of the given postings per currency.
// Every posting must have explicit units. No tolerance is applied: a currency is
// absent from the result only when its total is exactly zero.
func ComputeResidual(postings []*ast.Posting) *Inventory {
	inv := NewInventory()
	accumulateResidual(inv, postings)
	return inv
}

// accumulateResidual adds the balance amount of every posting into inv.
func accumulateResidual(inv *Inventory, postings []*ast.Posting) {
	for _, posting := range postings {
		inv.AddAmount(BalanceAmount(posting))
	}
}
