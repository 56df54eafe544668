// Package printer renders transactions as plain ledger text. The output is meant for
// diagnostic context next to an error message, not for rewriting source files: numbers
// print with the exponent they carry and no display precision is applied.
package printer

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/robinvdvleuten/beancount-complete/ast"
)

const (
	// DefaultIndentation is the default indentation for postings and metadata
	DefaultIndentation = 2

	// MinimumSpacing is the minimum number of spaces between account and number
	MinimumSpacing = 2
)

// Printer renders transactions with accounts and numbers aligned per transaction.
type Printer struct {
	// CurrencyColumn is the column the number of each posting ends at. If 0 it is
	// calculated from the widest posting of the transaction being printed.
	CurrencyColumn int

	// Indentation is the number of spaces before postings and metadata.
	Indentation int
}

// Option is a functional option for configuring a Printer.
type Option func(*Printer)

// WithCurrencyColumn sets a fixed column for number alignment.
func WithCurrencyColumn(col int) Option {
	return func(p *Printer) {
		p.CurrencyColumn = col
	}
}

// WithIndentation sets the posting indentation.
func WithIndentation(indent int) Option {
	return func(p *Printer) {
		p.Indentation = indent
	}
}

// New creates a new Printer with the given options.
func New(opts ...Option) *Printer {
	p := &Printer{
		Indentation: DefaultIndentation,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// FormatTransaction writes txn using a default Printer.
func FormatTransaction(w io.Writer, txn *ast.Transaction) error {
	return New().FormatTransaction(w, txn)
}

// FormatTransaction writes the header line of txn followed by its metadata and one
// line per posting.
func (p *Printer) FormatTransaction(w io.Writer, txn *ast.Transaction) error {
	var buf strings.Builder

	p.formatHeader(txn, &buf)
	p.formatMetadata(txn.Metadata, p.Indentation, &buf)

	column := p.CurrencyColumn
	if column == 0 {
		column = p.calculateCurrencyColumn(txn)
	}

	for _, posting := range txn.Postings {
		p.formatPosting(posting, column, &buf)
	}

	_, err := io.WriteString(w, buf.String())
	return err
}

// prefixWidth returns the display width of a posting up to the end of its account.
func (p *Printer) prefixWidth(posting *ast.Posting) int {
	width := p.Indentation
	if posting.Flag != "" {
		width += runewidth.StringWidth(posting.Flag) + 1
	}
	return width + runewidth.StringWidth(string(posting.Account))
}

// calculateCurrencyColumn finds the column where the widest number of txn ends.
func (p *Printer) calculateCurrencyColumn(txn *ast.Transaction) int {
	column := 0
	for _, posting := range txn.Postings {
		number, ok := postingNumber(posting)
		if !ok {
			continue
		}
		column = max(column, p.prefixWidth(posting)+MinimumSpacing+len(number))
	}
	return column
}

// postingNumber returns the rendered number of a posting, if it has one.
func postingNumber(posting *ast.Posting) (string, bool) {
	switch u := posting.Units.(type) {
	case ast.ExplicitUnits:
		return ast.FormatNumber(u.Number), true
	case ast.IncompleteUnits:
		if u.Number != nil {
			return ast.FormatNumber(*u.Number), true
		}
	}
	return "", false
}

// Format: date flag ["payee"] ["narration"] [#tags] [^links]
func (p *Printer) formatHeader(txn *ast.Transaction, buf *strings.Builder) {
	buf.WriteString(txn.Date.String())
	buf.WriteByte(' ')
	if txn.Flag != "" {
		buf.WriteString(txn.Flag)
	} else {
		buf.WriteString("txn")
	}

	if txn.Payee != "" {
		buf.WriteString(" \"")
		buf.WriteString(escapeString(txn.Payee))
		buf.WriteByte('"')
	}

	if txn.Narration != "" {
		buf.WriteString(" \"")
		buf.WriteString(escapeString(txn.Narration))
		buf.WriteByte('"')
	}

	for _, tag := range txn.Tags {
		buf.WriteString(" #")
		buf.WriteString(string(tag))
	}

	for _, link := range txn.Links {
		buf.WriteString(" ^")
		buf.WriteString(string(link))
	}

	buf.WriteByte('\n')
}

// formatPosting renders a single posting. Auto-postings print the account only;
// partially specified units print whatever is known.
func (p *Printer) formatPosting(posting *ast.Posting, column int, buf *strings.Builder) {
	buf.WriteString(strings.Repeat(" ", p.Indentation))

	if posting.Flag != "" {
		buf.WriteString(posting.Flag)
		buf.WriteByte(' ')
	}

	buf.WriteString(string(posting.Account))
	width := p.prefixWidth(posting)

	switch u := posting.Units.(type) {
	case ast.ExplicitUnits:
		number := ast.FormatNumber(u.Number)
		writePadding(buf, column-width-len(number))
		buf.WriteString(number)
		buf.WriteByte(' ')
		buf.WriteString(u.Currency)

	case ast.IncompleteUnits:
		if u.Number != nil {
			number := ast.FormatNumber(*u.Number)
			writePadding(buf, column-width-len(number))
			buf.WriteString(number)
			if u.Currency != "" {
				buf.WriteByte(' ')
				buf.WriteString(u.Currency)
			}
		} else if u.Currency != "" {
			writePadding(buf, column-width+1)
			buf.WriteString(u.Currency)
		}
	}

	if posting.Cost != nil {
		buf.WriteByte(' ')
		buf.WriteString(posting.Cost.String())
	}

	if posting.Price != nil {
		buf.WriteString(" @ ")
		buf.WriteString(posting.Price.String())
	}

	buf.WriteByte('\n')

	p.formatMetadata(posting.Metadata, p.Indentation*2, buf)
}

// formatMetadata formats metadata entries with the given indentation.
func (p *Printer) formatMetadata(metadata []*ast.Metadata, indent int, buf *strings.Builder) {
	for _, m := range metadata {
		buf.WriteString(strings.Repeat(" ", indent))
		buf.WriteString(m.Key)
		buf.WriteString(": \"")
		buf.WriteString(escapeString(m.Value))
		buf.WriteString("\"\n")
	}
}

func writePadding(buf *strings.Builder, n int) {
	buf.WriteString(strings.Repeat(" ", max(n, MinimumSpacing)))
}

// escapeString escapes double quotes and backslashes.
func escapeString(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return s
	}

	var buf strings.Builder
	buf.Grow(len(s) + 10)

	for _, c := range s {
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		default:
			buf.WriteRune(c)
		}
	}

	return buf.String()
}
