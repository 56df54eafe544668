package printer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beancount-complete/ast"
)

func mustDate(t *testing.T, s string) *ast.Date {
	t.Helper()
	date, err := ast.NewDate(s)
	assert.NoError(t, err)
	return date
}

func format(t *testing.T, p *Printer, txn *ast.Transaction) string {
	t.Helper()
	var buf bytes.Buffer
	assert.NoError(t, p.FormatTransaction(&buf, txn))
	return buf.String()
}

func TestNew(t *testing.T) {
	t.Run("DefaultOptions", func(t *testing.T) {
		p := New()
		assert.Equal(t, 0, p.CurrencyColumn)
		assert.Equal(t, DefaultIndentation, p.Indentation)
	})

	t.Run("WithOptions", func(t *testing.T) {
		p := New(WithCurrencyColumn(60), WithIndentation(4))
		assert.Equal(t, 60, p.CurrencyColumn)
		assert.Equal(t, 4, p.Indentation)
	})
}

func TestFormatTransaction(t *testing.T) {
	tests := []struct {
		name     string
		printer  *Printer
		txn      func(t *testing.T) *ast.Transaction
		expected string
	}{
		{
			name:    "AutoPosting",
			printer: New(),
			txn: func(t *testing.T) *ast.Transaction {
				return ast.NewTransaction(mustDate(t, "2024-01-15"), "Dinner",
					ast.WithFlag("*"),
					ast.WithPayee("Cafe"),
					ast.WithTags("trip"),
					ast.WithLinks("inv-1"),
					ast.WithPostings(
						ast.NewPosting("Liabilities:CreditCard", ast.WithUnits("-50.00", "USD")),
						ast.NewPosting("Expenses:Food"),
					))
			},
			expected: "2024-01-15 * \"Cafe\" \"Dinner\" #trip ^inv-1\n" +
				"  Liabilities:CreditCard  -50.00 USD\n" +
				"  Expenses:Food\n",
		},
		{
			name:    "AlignsNumbers",
			printer: New(),
			txn: func(t *testing.T) *ast.Transaction {
				return ast.NewClearedTransaction(mustDate(t, "2024-01-15"), "Dinner",
					ast.NewPosting("Assets:Cash", ast.WithUnits("-1000.00", "USD")),
					ast.NewPosting("Expenses:Restaurant:Dinner", ast.WithUnits("89.00", "USD")),
				)
			},
			expected: "2024-01-15 * \"Dinner\"\n" +
				"  Assets:Cash" + strings.Repeat(" ", 14) + "-1000.00 USD\n" +
				"  Expenses:Restaurant:Dinner  89.00 USD\n",
		},
		{
			name:    "CostPriceFlagAndMetadata",
			printer: New(),
			txn: func(t *testing.T) *ast.Transaction {
				return ast.NewTransaction(mustDate(t, "2024-01-15"), "Buy",
					ast.WithFlag("*"),
					ast.WithTransactionMetadata(ast.NewMetadata("invoice", "A-1")),
					ast.WithPostings(
						ast.NewPosting("Assets:Stock",
							ast.WithPostingFlag("!"),
							ast.WithUnits("10", "AAPL"),
							ast.WithCost(ast.NewCost(ast.MustAmount("100.00", "USD"))),
							ast.WithPostingMetadata(ast.NewMetadata("note", "x"))),
						ast.NewPosting("Assets:Euro",
							ast.WithUnits("10", "EUR"),
							ast.WithPrice(ast.MustAmount("1.30", "USD"))),
					))
			},
			expected: "2024-01-15 * \"Buy\"\n" +
				"  invoice: \"A-1\"\n" +
				"  ! Assets:Stock  10 AAPL {100.00 USD}\n" +
				"    note: \"x\"\n" +
				"  Assets:Euro     10 EUR @ 1.30 USD\n",
		},
		{
			name:    "CurrencyOnly",
			printer: New(),
			txn: func(t *testing.T) *ast.Transaction {
				return ast.NewClearedTransaction(mustDate(t, "2024-01-15"), "Fee",
					ast.NewPosting("Assets:Cash", ast.WithUnits("-5", "USD")),
					ast.NewPosting("Expenses:Misc", ast.WithCurrencyOnly("CAD")),
				)
			},
			expected: "2024-01-15 * \"Fee\"\n" +
				"  Assets:Cash  -5 USD\n" +
				"  Expenses:Misc   CAD\n",
		},
		{
			name:    "NumberOnly",
			printer: New(),
			txn: func(t *testing.T) *ast.Transaction {
				return ast.NewClearedTransaction(mustDate(t, "2024-01-15"), "Fee",
					ast.NewPosting("Assets:Cash", ast.WithUnits("-5", "USD")),
					ast.NewPosting("Expenses:Misc", ast.WithNumberOnly("5")),
				)
			},
			expected: "2024-01-15 * \"Fee\"\n" +
				"  Assets:Cash   -5 USD\n" +
				"  Expenses:Misc  5\n",
		},
		{
			name:    "FixedColumnNoIndentation",
			printer: New(WithCurrencyColumn(40), WithIndentation(0)),
			txn: func(t *testing.T) *ast.Transaction {
				return ast.NewTransaction(mustDate(t, "2024-01-15"), `Say "hi"`,
					ast.WithPostings(
						ast.NewPosting("Assets:Cash", ast.WithUnits("-5.00", "USD")),
						ast.NewPosting("Expenses:Misc"),
					))
			},
			expected: "2024-01-15 txn \"Say \\\"hi\\\"\"\n" +
				"Assets:Cash" + strings.Repeat(" ", 24) + "-5.00 USD\n" +
				"Expenses:Misc\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, format(t, tt.printer, tt.txn(t)))
		})
	}
}

func TestFormatTransactionInferred(t *testing.T) {
	posting := ast.NewPosting("Expenses:Food", ast.WithUnits("50.00", "USD"))
	posting.Inferred = true

	txn := ast.NewClearedTransaction(mustDate(t, "2024-01-15"), "Dinner",
		ast.NewPosting("Assets:Cash", ast.WithUnits("-50.00", "USD")),
		posting,
	)

	var buf bytes.Buffer
	assert.NoError(t, FormatTransaction(&buf, txn))
	assert.Equal(t, "2024-01-15 * \"Dinner\"\n"+
		"  Assets:Cash   -50.00 USD\n"+
		"  Expenses:Food  50.00 USD\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestFormatTransactionWriteError(t *testing.T) {
	txn := ast.NewClearedTransaction(mustDate(t, "2024-01-15"), "Dinner")
	err := FormatTransaction(failingWriter{}, txn)
	assert.EqualError(t, err, "disk full")
}

func TestEscapeString(t *testing.T) {
	assert.Equal(t, "simple", escapeString("simple"))
	assert.Equal(t, `string with \"quotes\"`, escapeString(`string with "quotes"`))
	assert.Equal(t, `path\\to`, escapeString(`path\to`))
	assert.Equal(t, "", escapeString(""))
}
