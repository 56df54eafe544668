// Package ast declares the types used to represent parsed ledger transactions.
//
// These types describe transactions after textual parsing: each transaction owns an
// ordered list of postings whose units are either explicit (number and currency both
// known) or incomplete (to be inferred by the ledger package). Values can be produced
// by the loader package or constructed programmatically with the builders in this
// package.
package ast

import (
	"golang.org/x/exp/slices"
)

// Transactions is a slice of transactions that sorts by date, then by source position.
type Transactions []*Transaction

func (t Transactions) Len() int           { return len(t) }
func (t Transactions) Swap(i, j int)      { t[i], t[j] = t[j], t[i] }
func (t Transactions) Less(i, j int) bool { return compareTransactions(t[i], t[j]) < 0 }

// compareTransactions orders transactions by date first and falls back to their
// position in the source so that same-day entries keep file order.
func compareTransactions(a, b *Transaction) int {
	if a.Date.Precedes(b.Date) {
		return -1
	} else if b.Date.Precedes(a.Date) {
		return 1
	}
	return ComparePositions(a.Pos, b.Pos)
}

// AST represents one or more loaded ledger documents: the transactions they contain
// together with the options and includes declared at the top level.
type AST struct {
	Transactions Transactions
	Options      []*Option
	Includes     []*Include
}

// Option sets a configuration parameter that affects how the ledger is processed.
//
// Example (YAML document):
//
//	options:
//	  tolerance: inferred
//	  inferred_tolerance_default: ["*:0.005"]
type Option struct {
	Pos   Position
	Name  string
	Value string
}

// Include imports the transactions of another document. Relative paths are resolved
// from the directory of the including document.
type Include struct {
	Pos      Position
	Filename string
}

// OptionValues groups option values by name, preserving declaration order.
func (a *AST) OptionValues() map[string][]string {
	options := make(map[string][]string, len(a.Options))
	for _, opt := range a.Options {
		options[opt.Name] = append(options[opt.Name], opt.Value)
	}
	return options
}

// isSorted checks if transactions are already sorted.
func isSorted(t Transactions) bool {
	for i := 1; i < len(t); i++ {
		if t.Less(i, i-1) {
			return false
		}
	}
	return true
}

// SortTransactions sorts all transactions by date and source position.
func SortTransactions(a *AST) {
	// Skip sorting if already sorted (common case for well-maintained files)
	if isSorted(a.Transactions) {
		return
	}
	slices.SortStableFunc(a.Transactions, compareTransactions)
}
