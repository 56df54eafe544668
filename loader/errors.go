package loader

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/robinvdvleuten/beancount-complete/ast"
	"gopkg.in/yaml.v3"
)

// LoadError reports a malformed ledger document. Pos points at the offending YAML
// node; Line is zero when only the file is known.
type LoadError struct {
	Pos     ast.Position
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	location := e.Pos.Filename
	if e.Pos.Line > 0 {
		location = e.Pos.String()
	}

	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	if location == "" {
		return msg
	}
	return location + ": " + msg
}

// Unwrap returns the underlying error, if any.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// GetPosition returns the position of the offending node.
func (e *LoadError) GetPosition() ast.Position {
	return e.Pos
}

// nodeError creates a LoadError positioned at node.
func nodeError(filename string, node *yaml.Node, format string, args ...any) *LoadError {
	return &LoadError{
		Pos:     nodePosition(filename, node),
		Message: fmt.Sprintf(format, args...),
	}
}

// yamlLineRegex extracts the line from yaml.v3 syntax errors ("yaml: line 3: ...").
var yamlLineRegex = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

// syntaxError converts a yaml.v3 decoding error into a LoadError.
func syntaxError(filename string, err error) *LoadError {
	if m := yamlLineRegex.FindStringSubmatch(err.Error()); m != nil {
		line, _ := strconv.Atoi(m[1])
		return &LoadError{
			Pos:     ast.Position{Filename: filename, Line: line},
			Message: m[2],
		}
	}
	return &LoadError{
		Pos:     ast.Position{Filename: filename},
		Message: "invalid document",
		Err:     err,
	}
}

func nodePosition(filename string, node *yaml.Node) ast.Position {
	return ast.Position{Filename: filename, Line: node.Line, Column: node.Column}
}
