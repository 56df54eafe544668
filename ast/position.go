package ast

import "fmt"

// Position represents a location in a source file. It is attached to transactions,
// postings and diagnostics and is only ever used for reporting.
type Position struct {
	Filename string
	Line     int // Line number (1-indexed)
	Column   int // Column number (1-indexed)
}

// IsZero returns true if no location information is available.
func (p Position) IsZero() bool {
	return p.Filename == "" && p.Line == 0 && p.Column == 0
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d", p.Filename, p.Line)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// GoString returns a Go-syntax representation of the position.
func (p Position) GoString() string {
	return fmt.Sprintf("Position{Filename: %q, Line: %d, Column: %d}", p.Filename, p.Line, p.Column)
}

// ComparePositions orders positions by filename, line and column.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func ComparePositions(a, b Position) int {
	switch {
	case a.Filename < b.Filename:
		return -1
	case a.Filename > b.Filename:
		return 1
	case a.Line < b.Line:
		return -1
	case a.Line > b.Line:
		return 1
	case a.Column < b.Column:
		return -1
	case a.Column > b.Column:
		return 1
	}
	return 0
}
