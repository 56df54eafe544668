// Package loader reads ledger documents written in YAML into an AST. It can
// recursively resolve and merge included documents into a single AST, handling
// relative paths and deduplication.
//
// The loader supports two modes of operation:
//   - Simple mode: Decodes a single file with includes preserved in the AST
//   - Follow mode: Recursively loads all included files and merges them into one AST
//
// When following includes, the loader resolves relative paths from the directory of
// the file containing the include, and deduplicates files that are included
// multiple times.
//
// Example usage:
//
//	// Load a single file without following includes
//	ldr := loader.New()
//	tree, err := ldr.Load(ctx, "main.yaml")
//
//	// Load with recursive include resolution
//	ldr := loader.New(loader.WithFollowIncludes())
//	tree, err := ldr.Load(ctx, "main.yaml")
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robinvdvleuten/beancount-complete/ast"
	"go.uber.org/zap"
)

// StdinFilename is the filename to pass to LoadBytes for data read from stdin.
const StdinFilename = "<stdin>"

// Loader handles loading of ledger documents with optional include resolution.
//
// Configure the loader using functional options passed to New:
//
//	ldr := New(WithFollowIncludes())
type Loader struct {
	// FollowIncludes determines whether to recursively load included files.
	// When false, only the specified file is decoded and ast.Includes is preserved.
	// When true, all included files are recursively loaded and merged into a single AST.
	FollowIncludes bool

	logger *zap.Logger
}

// Option configures how files are loaded.
type Option func(*Loader)

// WithFollowIncludes configures the loader to recursively load and merge all included files.
// When enabled:
//   - All includes are recursively resolved and loaded
//   - Relative paths are resolved from the directory of the including file
//   - All transactions are merged into a single AST, sorted by date
//   - The returned AST has ast.Includes set to nil (all includes resolved)
func WithFollowIncludes() Option {
	return func(l *Loader) {
		l.FollowIncludes = true
	}
}

// WithLogger sets the logger that receives one debug entry per loaded file.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{
		FollowIncludes: false,
		logger:         zap.NewNop(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load decodes a ledger document with optional recursive include resolution.
func (l *Loader) Load(ctx context.Context, filename string) (*ast.AST, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return l.LoadBytes(ctx, filename, data)
}

// LoadBytes decodes data as if it had been read from filename. In follow mode,
// includes are resolved relative to the directory of filename; they are rejected
// for StdinFilename.
func (l *Loader) LoadBytes(ctx context.Context, filename string, data []byte) (*ast.AST, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !l.FollowIncludes {
		return l.decode(filename, data)
	}

	state := &loaderState{
		loader:  l,
		visited: make(map[string]bool),
	}
	return state.loadData(ctx, filename, data)
}

// MustLoad is like Load but panics on error.
func (l *Loader) MustLoad(ctx context.Context, filename string) *ast.AST {
	tree, err := l.Load(ctx, filename)
	if err != nil {
		panic(err)
	}
	return tree
}

// MustLoadBytes is like LoadBytes but panics on error.
func (l *Loader) MustLoadBytes(ctx context.Context, filename string, data []byte) *ast.AST {
	tree, err := l.LoadBytes(ctx, filename, data)
	if err != nil {
		panic(err)
	}
	return tree
}

func (l *Loader) decode(filename string, data []byte) (*ast.AST, error) {
	d := &decoder{filename: filename}
	tree, err := d.decode(data)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("loaded document",
		zap.String("file", filename),
		zap.Int("transactions", len(tree.Transactions)),
		zap.Int("includes", len(tree.Includes)),
	)
	return tree, nil
}

// loaderState tracks state during recursive loading.
type loaderState struct {
	loader  *Loader
	visited map[string]bool // Absolute paths of files already loaded
}

// loadFile reads and loads a file unless it was loaded before.
func (s *loaderState) loadFile(ctx context.Context, filename string) (*ast.AST, error) {
	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", filename, err)
	}

	// Same file included multiple times
	if s.visited[absPath] {
		return &ast.AST{}, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	return s.loadData(ctx, filename, data)
}

// loadData decodes data and recursively loads its includes.
func (s *loaderState) loadData(ctx context.Context, filename string, data []byte) (*ast.AST, error) {
	var absPath string
	if filename != StdinFilename {
		var err error
		absPath, err = filepath.Abs(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", filename, err)
		}
		s.visited[absPath] = true
	}

	tree, err := s.loader.decode(filename, data)
	if err != nil {
		return nil, err
	}

	if len(tree.Includes) == 0 {
		tree.Includes = nil
		return tree, nil
	}

	if absPath == "" {
		return nil, &LoadError{
			Pos:     tree.Includes[0].Pos,
			Message: "includes are not supported when reading from stdin",
		}
	}

	baseDir := filepath.Dir(absPath)
	included := make([]*ast.AST, 0, len(tree.Includes))

	for _, inc := range tree.Includes {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// Resolve path relative to the including file's directory
		includePath := inc.Filename
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(baseDir, includePath)
		}

		includedAST, err := s.loadFile(ctx, includePath)
		if err != nil {
			return nil, fmt.Errorf("in file %s: %w", filename, err)
		}

		included = append(included, includedAST)
	}

	return mergeASTs(tree, included...), nil
}

// mergeASTs combines a main AST with multiple included ASTs.
// The main AST's options take precedence over included files' options.
func mergeASTs(main *ast.AST, included ...*ast.AST) *ast.AST {
	result := &ast.AST{
		Transactions: make(ast.Transactions, 0, len(main.Transactions)),
		Options:      main.Options,
		Includes:     nil,
	}

	result.Transactions = append(result.Transactions, main.Transactions...)
	for _, inc := range included {
		result.Transactions = append(result.Transactions, inc.Transactions...)
	}

	ast.SortTransactions(result)

	return result
}
