package ledger

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beancount-complete/ast"
	"github.com/shopspring/decimal"
)

func TestInventoryAdd(t *testing.T) {
	inv := NewInventory()
	assert.True(t, inv.IsEmpty())
	assert.Equal(t, "{}", inv.String())

	inv.Add("USD", decimal.RequireFromString("105.50"))
	inv.Add("EUR", decimal.RequireFromString("10"))
	inv.Add("USD", decimal.RequireFromString("-194.50"))

	assert.Equal(t, 2, inv.Len())
	assert.Equal(t, []string{"USD", "EUR"}, inv.Currencies())
	assert.Equal(t, "{-89.00 USD, 10 EUR}", inv.String())
	assert.True(t, inv.Get("USD").Equal(decimal.RequireFromString("-89")))
	assert.True(t, inv.Get("CAD").IsZero())
}

func TestInventoryRemovesZero(t *testing.T) {
	inv := NewInventory()
	inv.Add("USD", decimal.RequireFromString("10.00"))
	inv.Add("EUR", decimal.RequireFromString("5"))
	inv.Add("USD", decimal.RequireFromString("-10"))

	assert.Equal(t, []string{"EUR"}, inv.Currencies())

	// Adding zero to an absent currency does not create an entry.
	inv.Add("CAD", decimal.Zero)
	assert.Equal(t, 1, inv.Len())

	// A removed currency that comes back is appended.
	inv.Add("USD", decimal.RequireFromString("1"))
	assert.Equal(t, []string{"EUR", "USD"}, inv.Currencies())
}

func TestInventoryExceeding(t *testing.T) {
	inv := NewInventory()
	inv.Add("USD", decimal.RequireFromString("0.004"))
	inv.Add("EUR", decimal.RequireFromString("0.10"))

	assert.Equal(t, 2, len(inv.Exceeding(nil)))
	assert.False(t, inv.IsSmall(nil))

	tolerances := map[string]decimal.Decimal{
		"USD": decimal.RequireFromString("0.005"),
		"EUR": decimal.RequireFromString("0.005"),
	}
	exceeding := inv.Exceeding(tolerances)
	assert.Equal(t, 1, len(exceeding))
	assert.Equal(t, "EUR", exceeding[0].Currency)

	tolerances["EUR"] = decimal.RequireFromString("0.1")
	assert.True(t, inv.IsSmall(tolerances))
}

func TestInventoryReset(t *testing.T) {
	inv := NewInventory()
	inv.Add("USD", decimal.RequireFromString("1"))
	inv.Reset()
	assert.True(t, inv.IsEmpty())
	assert.Equal(t, 0, len(inv.Amounts()))
}

func TestComputeResidual(t *testing.T) {
	t.Run("TwoPostings", func(t *testing.T) {
		residual := ComputeResidual([]*ast.Posting{
			ast.NewPosting("Assets:Bank:Checking", ast.WithUnits("105.50", "USD")),
			ast.NewPosting("Assets:Bank:Checking", ast.WithUnits("-194.50", "USD")),
		})
		amounts := residual.Amounts()
		assert.Equal(t, 1, len(amounts))
		assert.True(t, ast.MustAmount("-89", "USD").Equal(amounts[0]))
	})

	t.Run("MorePostings", func(t *testing.T) {
		residual := ComputeResidual([]*ast.Posting{
			ast.NewPosting("Assets:Bank:Checking", ast.WithUnits("105.50", "USD")),
			ast.NewPosting("Assets:Bank:Checking", ast.WithUnits("-194.50", "USD")),
			ast.NewPosting("Assets:Bank:Investing", ast.WithUnits("5", "AAPL")),
			ast.NewPosting("Assets:Bank:Savings", ast.WithUnits("89.00", "USD")),
		})
		amounts := residual.Amounts()
		assert.Equal(t, 1, len(amounts))
		assert.True(t, ast.MustAmount("5", "AAPL").Equal(amounts[0]))
	})

	t.Run("UsesWeights", func(t *testing.T) {
		residual := ComputeResidual([]*ast.Posting{
			ast.NewPosting("Assets:Stock",
				ast.WithUnits("10", "HOOL"),
				ast.WithCost(ast.NewCost(ast.MustAmount("518.73", "USD")))),
			ast.NewPosting("Assets:Cash", ast.WithUnits("-5187.30", "USD")),
		})
		assert.True(t, residual.IsEmpty())
	})

	t.Run("Empty", func(t *testing.T) {
		assert.True(t, ComputeResidual(nil).IsEmpty())
	})
}

// TestComputeResidualConservation checks over generated postings that the
// residual never holds a zero entry and that it equals the per-currency sum
// of the balance amounts fed in.
func TestComputeResidualConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	currencies := []string{"USD", "EUR", "CAD", "HOOL"}

	for round := 0; round < 200; round++ {
		postings := make([]*ast.Posting, 0, 8)
		for i := rng.Intn(8); i >= 0; i-- {
			units := fmt.Sprintf("%d.%02d", rng.Intn(200)-100, rng.Intn(100))
			opts := []ast.PostingOption{ast.WithUnits(units, currencies[rng.Intn(len(currencies))])}
			switch rng.Intn(3) {
			case 1:
				opts = append(opts, ast.WithPrice(ast.MustAmount("1.25", currencies[rng.Intn(len(currencies))])))
			case 2:
				opts = append(opts, ast.WithCost(ast.NewCost(ast.MustAmount("0.80", currencies[rng.Intn(len(currencies))]))))
			}
			postings = append(postings, ast.NewPosting("Assets:Cash", opts...))
		}
		// Cancel the first posting now and then so zero totals are exercised.
		if rng.Intn(2) == 0 && len(postings) > 0 {
			weight := BalanceAmount(postings[0])
			postings = append(postings, ast.NewPosting("Equity:Plug", ast.WithUnitsAmount(weight.Neg())))
		}

		sums := map[string]decimal.Decimal{}
		for _, posting := range postings {
			weight := BalanceAmount(posting)
			sums[weight.Currency] = sums[weight.Currency].Add(weight.Number)
		}

		residual := ComputeResidual(postings)
		for _, amount := range residual.Amounts() {
			assert.False(t, amount.Number.IsZero(), "zero entry for %s", amount.Currency)
		}
		for currency, sum := range sums {
			assert.True(t, sum.Sub(residual.Get(currency)).IsZero(), "%s: sum %s, residual %s", currency, sum, residual.Get(currency))
		}
	}
}
