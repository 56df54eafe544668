package ledger

import (
	"context"

	"github.com/robinvdvleuten/beancount-complete/ast"
)

// Config holds parsed ledger options and configuration.
// It's designed to be easily extended as more options are supported.
type Config struct {
	Tolerance *ToleranceConfig
}

// NewConfig creates a Config with exact balancing.
func NewConfig() *Config {
	return &Config{
		Tolerance: NewToleranceConfig(),
	}
}

// configFromAST extracts options from an AST and parses them into a Config.
func configFromAST(tree *ast.AST) (*Config, error) {
	return configFromOptions(tree.OptionValues())
}

// configFromOptions parses options map into a Config.
// Supports:
//   - option "tolerance" "exact|inferred"
//   - option "inferred_tolerance_default" "CURRENCY:TOLERANCE"
//   - option "inferred_tolerance_multiplier" "0.6"
//   - option "infer_tolerance_from_cost" "TRUE"
func configFromOptions(options map[string][]string) (*Config, error) {
	cfg := NewConfig()

	var err error
	cfg.Tolerance, err = ParseToleranceConfig(options)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// contextKey is a private type to avoid key collisions in context.
type contextKey struct{}

// WithContext returns a new context with the Config attached.
func (c *Config) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ConfigFromContext retrieves the Config from context.
// Returns a default Config if not found.
func ConfigFromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(contextKey{}).(*Config); ok {
		return cfg
	}
	return NewConfig()
}
