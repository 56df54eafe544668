// Large ledger document generator
//
// This tool generates a large YAML ledger document for performance testing and
// profiling of the check and complete commands. Most transactions leave one
// posting for the ledger to complete.
//
// Usage:
//
//	go run ./tools/generate_large_file > large.yaml
//	go run ./tools/generate_large_file --transactions 200000 --seed 7 > large.yaml
package main

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/beancount-complete/ast"
	"github.com/robinvdvleuten/beancount-complete/loader"
)

var (
	accounts = []ast.Account{
		"Assets:Bank:Checking",
		"Assets:Bank:Savings",
		"Liabilities:CreditCard:Visa",
		"Liabilities:CreditCard:Amex",
		"Income:Salary",
		"Income:Investments:Dividends",
		"Expenses:Food:Groceries",
		"Expenses:Food:Restaurant",
		"Expenses:Housing:Rent",
		"Expenses:Housing:Utilities",
		"Expenses:Transport:Gas",
		"Expenses:Shopping:Electronics",
		"Expenses:Healthcare:Dental",
	}

	payees = []string{
		"Whole Foods", "Safeway", "Trader Joe's", "Costco",
		"Shell Gas", "Landlord", "PG&E", "Amazon",
		"Employer Inc", "Fidelity", "Vanguard",
	}

	narrations = []string{
		"Grocery shopping", "Fuel purchase", "Rent payment",
		"Salary deposit", "Utility bill", "Online purchase",
		"Restaurant dinner", "Coffee", "Monthly subscription",
	}

	tags       = []string{"personal", "business", "vacation", "tax-deductible"}
	links      = []string{"invoice-2023-001", "receipt-march", "rebalance-q1"}
	currencies = []string{"EUR", "GBP", "CAD"}
	stocks     = []string{"AAPL", "MSFT", "GOOGL", "VTI", "VXUS"}
)

var cli struct {
	Transactions int     `help:"Number of transactions to generate." default:"50000"`
	Seed         uint64  `help:"Random seed; the same seed generates the same document." default:"1"`
	ErrorRate    float64 `help:"Fraction of transactions generated unbalanced." default:"0"`
}

type generator struct {
	rng  *rand.Rand
	date time.Time
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("generate_large_file"),
		kong.Description("Generate a large ledger document for profiling."),
	)

	g := &generator{
		rng:  rand.New(rand.NewPCG(cli.Seed, cli.Seed)),
		date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	tree := &ast.AST{
		Options:      []*ast.Option{{Name: "tolerance", Value: "inferred"}},
		Transactions: make(ast.Transactions, 0, cli.Transactions),
	}

	completable := 0
	for range cli.Transactions {
		var txn *ast.Transaction
		switch g.rng.IntN(10) {
		case 0, 1, 2:
			txn = g.simpleTransaction()
		case 3, 4:
			txn = g.transactionWithMetadata()
		case 5, 6:
			txn = g.investmentTransaction()
		case 7:
			txn = g.multiCurrencyTransaction()
		default:
			txn = g.complexTransaction()
		}

		if cli.ErrorRate > 0 && g.rng.Float64() < cli.ErrorRate {
			g.unbalance(txn)
		}
		for _, posting := range txn.Postings {
			if posting.IsIncomplete() {
				completable++
				break
			}
		}

		tree.Transactions = append(tree.Transactions, txn)

		// Advance date by 0-2 days
		g.date = g.date.AddDate(0, 0, g.rng.IntN(3))
	}

	w := bufio.NewWriter(os.Stdout)
	ctx.FatalIfErrorf(loader.Dump(w, tree))
	ctx.FatalIfErrorf(w.Flush())

	fmt.Fprintf(os.Stderr, "Generated %d transactions, %d with a posting to complete\n", len(tree.Transactions), completable)
}

func (g *generator) simpleTransaction() *ast.Transaction {
	amount := g.amount(10, 500)

	return ast.NewTransaction(ast.NewDateFromTime(g.date), g.pick(narrations),
		ast.WithFlag("*"),
		ast.WithPayee(g.pick(payees)),
		ast.WithPostings(
			ast.NewPosting(g.account(), ast.WithUnitsAmount(ast.Amount{Number: amount, Currency: "USD"})),
			ast.NewPosting(g.account()),
		),
	)
}

func (g *generator) transactionWithMetadata() *ast.Transaction {
	amount := g.amount(50, 1000)

	return ast.NewTransaction(ast.NewDateFromTime(g.date), g.pick(narrations),
		ast.WithFlag("*"),
		ast.WithPayee(g.pick(payees)),
		ast.WithTransactionMetadata(
			ast.NewMetadata("invoice", fmt.Sprintf("INV-%d", g.rng.IntN(10000))),
			ast.NewMetadata("category", "shopping"),
		),
		ast.WithPostings(
			ast.NewPosting(g.account(),
				ast.WithUnitsAmount(ast.Amount{Number: amount, Currency: "USD"}),
				ast.WithPostingMetadata(ast.NewMetadata("note", "Purchase from vendor")),
			),
			ast.NewPosting(g.account(), ast.WithCurrencyOnly("USD")),
		),
	)
}

func (g *generator) investmentTransaction() *ast.Transaction {
	stock := g.pick(stocks)
	shares := decimal.NewFromInt(int64(g.rng.IntN(50) + 1))
	price := g.amount(50, 500)

	return ast.NewTransaction(ast.NewDateFromTime(g.date), "Buy "+stock,
		ast.WithFlag("*"),
		ast.WithPostings(
			ast.NewPosting("Assets:Brokerage:"+ast.Account(stock),
				ast.WithUnitsAmount(ast.Amount{Number: shares, Currency: stock}),
				ast.WithCost(ast.NewCost(ast.Amount{Number: price, Currency: "USD"})),
			),
			ast.NewPosting("Expenses:Commissions", ast.WithUnits("9.99", "USD")),
			ast.NewPosting("Assets:Brokerage:Cash"),
		),
	)
}

func (g *generator) multiCurrencyTransaction() *ast.Transaction {
	currency := g.pick(currencies)
	amount := g.amount(100, 2000)
	rate := g.amount(1, 2)

	return ast.NewTransaction(ast.NewDateFromTime(g.date), "Currency exchange",
		ast.WithFlag("*"),
		ast.WithPostings(
			ast.NewPosting("Assets:Bank:Savings",
				ast.WithUnitsAmount(ast.Amount{Number: amount, Currency: currency}),
				ast.WithPrice(ast.Amount{Number: rate, Currency: "USD"}),
			),
			ast.NewPosting("Assets:Bank:Checking"),
		),
	)
}

func (g *generator) complexTransaction() *ast.Transaction {
	return ast.NewTransaction(ast.NewDateFromTime(g.date), g.pick(narrations),
		ast.WithFlag("*"),
		ast.WithPayee(g.pick(payees)),
		ast.WithTags(g.pick(tags), g.pick(tags)),
		ast.WithLinks(g.pick(links)),
		ast.WithTransactionMetadata(ast.NewMetadata("receipt", fmt.Sprintf("RCP-%d", g.rng.IntN(100000)))),
		ast.WithPostings(
			ast.NewPosting("Expenses:Food:Restaurant", ast.WithUnitsAmount(ast.Amount{Number: g.amount(100, 500), Currency: "USD"})),
			ast.NewPosting("Expenses:Food:Groceries", ast.WithUnitsAmount(ast.Amount{Number: g.amount(50, 200), Currency: "USD"})),
			ast.NewPosting("Expenses:Transport:Gas", ast.WithUnitsAmount(ast.Amount{Number: g.amount(20, 100), Currency: "USD"})),
			ast.NewPosting("Assets:Bank:Checking"),
		),
	)
}

// unbalance makes every posting of txn explicit so that it cannot balance.
func (g *generator) unbalance(txn *ast.Transaction) {
	for _, posting := range txn.Postings {
		if posting.IsIncomplete() {
			posting.Units = ast.ExplicitUnits{Number: g.amount(1, 10), Currency: "USD"}
		}
	}
}

func (g *generator) account() ast.Account {
	return accounts[g.rng.IntN(len(accounts))]
}

func (g *generator) pick(values []string) string {
	return values[g.rng.IntN(len(values))]
}

// amount returns a random two-decimal number in [lo, hi).
func (g *generator) amount(lo, hi int64) decimal.Decimal {
	cents := lo*100 + g.rng.Int64N((hi-lo)*100)
	return decimal.New(cents, -2)
}
