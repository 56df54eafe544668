// Package errors provides error formatting infrastructure for ledger completion errors.
// It separates error formatting from domain logic, allowing errors to be rendered in
// multiple formats (text, JSON) for different consumers.
//
// The package defines a Formatter interface and provides two implementations:
//   - TextFormatter: Formats errors for command-line output in bean-check style
//   - JSONFormatter: Formats errors as structured JSON for tooling
//
// Domain-specific error types remain in their respective packages (ledger, loader),
// while this package handles the presentation layer.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beancount-complete/ast"
	"github.com/robinvdvleuten/beancount-complete/ledger"
	"github.com/robinvdvleuten/beancount-complete/printer"
)

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

// TextFormatter formats errors for command-line output in bean-check style.
type TextFormatter struct {
	printer       *printer.Printer
	sourceContent []byte // Optional source content for positional error context
}

// TextFormatterOption is an option for configuring TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithSource sets the source content shown around errors that carry a position
// but no transaction, such as malformed documents.
func WithSource(source []byte) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.sourceContent = source
	}
}

// NewTextFormatter creates a new text formatter. A nil printer renders
// transactions unindented with automatic alignment.
func NewTextFormatter(p *printer.Printer, opts ...TextFormatterOption) *TextFormatter {
	if p == nil {
		p = printer.New(printer.WithIndentation(0))
	}
	tf := &TextFormatter{printer: p}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats a single error in bean-check style.
func (tf *TextFormatter) Format(err error) string {
	// Errors raised for a transaction show the transaction below the message
	if e, ok := err.(interface {
		GetPosition() ast.Position
		GetTransaction() *ast.Transaction
		Error() string
	}); ok {
		return tf.formatWithContext(e.GetPosition(), e.Error(), e.GetTransaction())
	}

	if e, ok := err.(interface {
		GetPosition() ast.Position
		Error() string
	}); ok {
		if tf.sourceContent != nil {
			return tf.formatWithSourceContext(e.GetPosition(), e.Error(), tf.sourceContent)
		}
		return tf.formatWithPosition(e.GetPosition(), e.Error())
	}

	return err.Error()
}

// FormatAll formats multiple errors, separating them with blank lines.
func (tf *TextFormatter) FormatAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf bytes.Buffer
	for i, err := range errs {
		buf.WriteString(tf.Format(err))

		// Add blank line between errors (but not after the last one)
		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

// formatWithPosition prefixes message with its file position unless it already is.
func (tf *TextFormatter) formatWithPosition(pos ast.Position, message string) string {
	if pos.Filename == "" || pos.Line == 0 {
		return message
	}
	prefix := pos.String() + ": "
	if strings.HasPrefix(message, prefix) {
		return message
	}
	return prefix + message
}

// formatWithSourceContext formats an error with original source context.
// Shows the error message followed by the original source lines around the error position.
func (tf *TextFormatter) formatWithSourceContext(pos ast.Position, message string, sourceContent []byte) string {
	var buf bytes.Buffer

	buf.WriteString(tf.formatWithPosition(pos, message))
	buf.WriteString("\n\n")

	sourceLines := strings.Split(string(sourceContent), "\n")

	// Show 2 lines before and 1 line after the error line
	startLine := max(pos.Line-3, 0)
	endLine := min(pos.Line, len(sourceLines)-1)

	for i := startLine; i <= endLine; i++ {
		buf.WriteString("   ")
		buf.WriteString(sourceLines[i])
		buf.WriteByte('\n')

		// Add caret pointing to error column on the error line
		if i == pos.Line-1 && pos.Column > 0 {
			buf.WriteString("   ")
			buf.WriteString(strings.Repeat(" ", pos.Column-1))
			buf.WriteString("^\n")
		}
	}

	return buf.String()
}

// formatWithContext formats an error with the offending transaction (bean-check style).
func (tf *TextFormatter) formatWithContext(pos ast.Position, message string, txn *ast.Transaction) string {
	message = tf.formatWithPosition(pos, message)
	if txn == nil {
		return message
	}

	var buf bytes.Buffer
	buf.WriteString(message)
	buf.WriteString("\n\n")

	var txnBuf bytes.Buffer
	if err := tf.printer.FormatTransaction(&txnBuf, txn); err == nil {
		// Indent each line with 3 spaces
		for _, line := range bytes.Split(txnBuf.Bytes(), []byte("\n")) {
			if len(line) > 0 {
				buf.WriteString("   ")
				buf.Write(line)
				buf.WriteByte('\n')
			}
		}
	}

	return buf.String()
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type     string         `json:"type"`
	Message  string         `json:"message"`
	Position *PositionJSON  `json:"position,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// PositionJSON represents a file position in JSON format.
type PositionJSON struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	data, _ := json.Marshal(jf.toJSON(err))
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	data, _ := json.MarshalIndent(jf.FormatAllToSlice(errs), "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		result = append(result, jf.toJSON(err))
	}
	return result
}

// errorType names the error kind without its package path.
func errorType(err error) string {
	name := fmt.Sprintf("%T", err)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// toJSON converts an error to ErrorJSON.
func (jf *JSONFormatter) toJSON(err error) ErrorJSON {
	errJSON := ErrorJSON{
		Type:    errorType(err),
		Message: err.Error(),
		Details: make(map[string]any),
	}

	if e, ok := err.(interface{ GetPosition() ast.Position }); ok {
		pos := e.GetPosition()
		errJSON.Position = &PositionJSON{
			Filename: pos.Filename,
			Line:     pos.Line,
			Column:   pos.Column,
		}
	}

	if e, ok := err.(interface{ GetDate() *ast.Date }); ok {
		if date := e.GetDate(); !date.IsZero() {
			errJSON.Details["date"] = date.String()
		}
	}

	if e, ok := err.(interface{ GetAccount() ast.Account }); ok {
		errJSON.Details["account"] = string(e.GetAccount())
	}

	switch e := err.(type) {
	case *ledger.TransactionNotBalancedError:
		errJSON.Details["residual"] = amountStrings(e.Residual)
	case *ledger.TooManyIncompleteError:
		errJSON.Details["count"] = e.Count
	case *ledger.AmbiguousCurrencyError:
		errJSON.Details["residual"] = amountStrings(e.Residual)
		if e.Currency != "" {
			errJSON.Details["currency"] = e.Currency
		}
	case *ledger.SuperfluousIncompleteError:
		errJSON.Details["currency"] = e.Currency
	}

	if len(errJSON.Details) == 0 {
		errJSON.Details = nil
	}

	return errJSON
}

func amountStrings(amounts []ast.Amount) []string {
	result := make([]string, len(amounts))
	for i, amount := range amounts {
		result[i] = amount.String()
	}
	return result
}
