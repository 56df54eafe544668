// Package ledger completes and validates the postings of ledger transactions.
//
// For every transaction it checks that the weights of the postings sum to zero in
// each currency, and infers the units of the one posting that may be left
// incomplete from the residual of the others. Costs and prices convert a posting's
// units into the currency it balances in. All arithmetic uses exact decimals.
//
// The individual steps are exposed as pure functions:
//
//   - BalanceAmount and HasNontrivialBalance compute the weight of one posting;
//   - ComputeResidual sums weights into a sparse per-currency Inventory;
//   - GetIncompletePostings decides how incomplete postings are filled or dropped;
//   - BalanceIncompletePostings returns the completed transaction.
//
// Ledger runs them over a whole AST concurrently.
//
// Example usage:
//
//	tree, err := loader.New(loader.WithFollowIncludes()).Load(ctx, "main.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	l := ledger.New()
//	if err := l.Process(ctx, tree); err != nil {
//	    var verr *ledger.ValidationErrors
//	    if errors.As(err, &verr) {
//	        for _, e := range verr.Errors {
//	            fmt.Println(e)
//	        }
//	    }
//	}
package ledger

import (
	"context"
	"fmt"
	"runtime"

	"github.com/robinvdvleuten/beancount-complete/ast"
	"github.com/robinvdvleuten/beancount-complete/telemetry"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// Ledger completes the transactions of an AST. Transactions are independent of
// each other, so they are processed by a bounded pool of workers. Errors are
// collected and returned together after processing, ordered by source position.
type Ledger struct {
	concurrency int
	errors      []error
	stats       Stats
}

// Stats summarizes the last call to Process.
type Stats struct {
	Transactions int // Transactions processed
	Completed    int // Transactions whose postings changed
	Errors       int // Diagnostics raised
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithConcurrency limits the number of transactions processed at the same time.
// Values below one process transactions one at a time.
func WithConcurrency(n int) Option {
	return func(l *Ledger) {
		if n < 1 {
			n = 1
		}
		l.concurrency = n
	}
}

// ValidationErrors wraps multiple validation errors
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d validation errors occurred", len(e.Errors))
}

// Unwrap returns the underlying errors for error unwrapping
func (e *ValidationErrors) Unwrap() []error {
	return e.Errors
}

// New creates a new ledger
func New(opts ...Option) *Ledger {
	l := &Ledger{
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Process completes every transaction of the AST. Completed transactions replace
// the originals in tree.Transactions at the same index; the original transaction
// values are not modified. Options declared in the AST take precedence over a
// Config carried by ctx.
//
// If ctx is cancelled, transactions not yet scheduled are left untouched and
// ctx.Err() is returned.
func (l *Ledger) Process(ctx context.Context, tree *ast.AST) error {
	l.errors = nil
	l.stats = Stats{Transactions: len(tree.Transactions)}

	if len(tree.Options) > 0 {
		if cfg, err := configFromAST(tree); err != nil {
			l.errors = append(l.errors, err)
		} else {
			ctx = cfg.WithContext(ctx)
		}
	}

	timer := telemetry.StartTimer(ctx, fmt.Sprintf("ledger.completion (%d transactions)", len(tree.Transactions)))
	defer timer.End()

	results := make([][]error, len(tree.Transactions))
	changed := make([]bool, len(tree.Transactions))

	g := new(errgroup.Group)
	g.SetLimit(l.concurrency)

	for i, txn := range tree.Transactions {
		// Check for cancellation
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			completed, errs := BalanceIncompletePostings(ctx, txn)
			tree.Transactions[i] = completed
			changed[i] = completed != txn
			results[i] = errs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, errs := range results {
		l.errors = append(l.errors, errs...)
		if changed[i] {
			l.stats.Completed++
		}
	}
	sortErrors(l.errors)
	l.stats.Errors = len(l.errors)

	// Return collected errors
	if len(l.errors) > 0 {
		return &ValidationErrors{Errors: l.errors}
	}

	return nil
}

// Errors returns all errors collected by the last call to Process
func (l *Ledger) Errors() []error {
	return l.errors
}

// Stats returns the summary of the last call to Process
func (l *Ledger) Stats() Stats {
	return l.stats
}

// positioned is implemented by errors that know their source location.
type positioned interface {
	GetPosition() ast.Position
}

// sortErrors orders errors by source position. Errors without a position sort
// first; errors at the same position keep their discovery order.
func sortErrors(errs []error) {
	slices.SortStableFunc(errs, func(a, b error) int {
		return ast.ComparePositions(errorPosition(a), errorPosition(b))
	})
}

func errorPosition(err error) ast.Position {
	if p, ok := err.(positioned); ok {
		return p.GetPosition()
	}
	return ast.Position{}
}
