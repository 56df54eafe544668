package cli

import (
	"bytes"
	stdErrors "errors"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robinvdvleuten/beancount-complete/ast"
	"github.com/robinvdvleuten/beancount-complete/loader"
	"github.com/robinvdvleuten/beancount-complete/printer"
)

var (
	errCaretStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
)

// ErrorRenderer renders errors with terminal styling and source context.
type ErrorRenderer struct {
	source []byte
}

// NewErrorRenderer creates a renderer with source content for context.
func NewErrorRenderer(source []byte) *ErrorRenderer {
	return &ErrorRenderer{source: source}
}

// Render formats a single error with styling and context.
func (r *ErrorRenderer) Render(err error) string {
	if e, ok := err.(interface {
		GetPosition() ast.Position
		GetTransaction() *ast.Transaction
		Error() string
	}); ok {
		return r.renderWithContext(e.Error(), e.GetTransaction())
	}

	// Load errors may be wrapped by the include chain that led to them.
	var loadErr *loader.LoadError
	if stdErrors.As(err, &loadErr) && r.source != nil && loadErr.Pos.Line > 0 {
		return r.renderWithSourceContext(loadErr.Pos, err.Error(), r.source)
	}

	return err.Error()
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf strings.Builder
	for i, err := range errs {
		buf.WriteString(r.Render(err))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

func (r *ErrorRenderer) renderWithSourceContext(pos ast.Position, message string, sourceContent []byte) string {
	var buf strings.Builder

	buf.WriteString(errorStyle.Render(message))
	buf.WriteString("\n\n")

	sourceLines := strings.Split(string(sourceContent), "\n")

	startLine := pos.Line - 3
	endLine := pos.Line + 1

	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(sourceLines) {
		endLine = len(sourceLines) - 1
	}

	for i := startLine; i <= endLine; i++ {
		buf.WriteString("   ")
		buf.WriteString(errContextStyle.Render(sourceLines[i]))
		buf.WriteByte('\n')

		if i == pos.Line-1 && pos.Column > 0 {
			buf.WriteString("   ")
			buf.WriteString(strings.Repeat(" ", pos.Column-1))
			buf.WriteString(errCaretStyle.Render("^"))
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

func (r *ErrorRenderer) renderWithContext(message string, txn *ast.Transaction) string {
	if txn == nil {
		return message
	}

	var buf strings.Builder

	buf.WriteString(errorStyle.Render(message))
	buf.WriteString("\n\n")

	var txnBuf bytes.Buffer
	p := printer.New(printer.WithIndentation(0))
	if err := p.FormatTransaction(&txnBuf, txn); err == nil {
		for _, line := range bytes.Split(txnBuf.Bytes(), []byte("\n")) {
			if len(line) > 0 {
				buf.WriteString("   ")
				buf.WriteString(errContextStyle.Render(string(line)))
				buf.WriteByte('\n')
			}
		}
	}

	return buf.String()
}
