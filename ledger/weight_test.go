package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beancount-complete/ast"
)

func TestBalanceAmount(t *testing.T) {
	tests := []struct {
		name    string
		posting *ast.Posting
		want    ast.Amount
	}{
		{
			name:    "without cost or price",
			posting: ast.NewPosting("Assets:Bank:Checking", ast.WithUnits("105.50", "USD")),
			want:    ast.MustAmount("105.50", "USD"),
		},
		{
			name: "with price",
			posting: ast.NewPosting("Assets:Bank:Checking",
				ast.WithUnits("105.50", "USD"),
				ast.WithPrice(ast.MustAmount("0.90", "CAD"))),
			want: ast.MustAmount("94.95", "CAD"),
		},
		{
			name: "with cost",
			posting: ast.NewPosting("Assets:Bank:Checking",
				ast.WithUnits("105.50", "USD"),
				ast.WithCost(ast.NewCost(ast.MustAmount("0.80", "EUR")))),
			want: ast.MustAmount("84.40", "EUR"),
		},
		{
			name: "cost dominates price",
			posting: ast.NewPosting("Assets:Bank:Checking",
				ast.WithUnits("105.50", "USD"),
				ast.WithCost(ast.NewCost(ast.MustAmount("0.80", "EUR"))),
				ast.WithPrice(ast.MustAmount("2.00", "CAD"))),
			want: ast.MustAmount("84.40", "EUR"),
		},
		{
			name: "negative units with cost",
			posting: ast.NewPosting("Assets:Stock",
				ast.WithUnits("-5", "HOOL"),
				ast.WithCost(ast.NewCost(ast.MustAmount("502.12", "USD")))),
			want: ast.MustAmount("-2510.60", "USD"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BalanceAmount(tt.posting)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestBalanceAmountPriceChangesResult(t *testing.T) {
	a := ast.NewPosting("Assets:Cash", ast.WithUnits("10", "EUR"), ast.WithPrice(ast.MustAmount("1.10", "USD")))
	b := ast.NewPosting("Assets:Cash", ast.WithUnits("10", "EUR"), ast.WithPrice(ast.MustAmount("1.20", "USD")))
	assert.False(t, BalanceAmount(a).Equal(BalanceAmount(b)))
}

func TestBalanceAmountKeepsExponent(t *testing.T) {
	posting := ast.NewPosting("Assets:Cash", ast.WithUnits("105.50", "USD"))
	assert.Equal(t, "105.50 USD", BalanceAmount(posting).String())
}

func TestBalanceAmountPanicsOnIncompletePosting(t *testing.T) {
	assert.Panics(t, func() {
		BalanceAmount(ast.NewPosting("Assets:Cash"))
	})
	assert.Panics(t, func() {
		BalanceAmount(ast.NewPosting("Assets:Cash", ast.WithCurrencyOnly("USD")))
	})
}

func TestHasNontrivialBalance(t *testing.T) {
	tests := []struct {
		name    string
		posting *ast.Posting
		want    bool
	}{
		{"without cost or price", ast.NewPosting("Assets:Cash", ast.WithUnits("105.50", "USD")), false},
		{"with price", ast.NewPosting("Assets:Cash",
			ast.WithUnits("105.50", "USD"),
			ast.WithPrice(ast.MustAmount("0.90", "CAD"))), true},
		{"with cost", ast.NewPosting("Assets:Cash",
			ast.WithUnits("105.50", "USD"),
			ast.WithCost(ast.NewCost(ast.MustAmount("0.80", "EUR")))), true},
		{"with cost and price", ast.NewPosting("Assets:Cash",
			ast.WithUnits("105.50", "USD"),
			ast.WithCost(ast.NewCost(ast.MustAmount("0.80", "EUR"))),
			ast.WithPrice(ast.MustAmount("2.00", "CAD"))), true},
		{"auto-posting", ast.NewPosting("Assets:Cash"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasNontrivialBalance(tt.posting))
		})
	}
}
