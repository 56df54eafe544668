package ledger

import (
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beancount-complete/ast"
	"github.com/shopspring/decimal"
)

// Tolerance modes.
const (
	// ToleranceExact treats any nonzero residual as unbalanced.
	ToleranceExact = "exact"
	// ToleranceInferred accepts residuals up to half the smallest unit written in
	// the transaction for that currency.
	ToleranceInferred = "inferred"
)

// ToleranceConfig holds configuration for tolerance inference
type ToleranceConfig struct {
	// mode is either ToleranceExact or ToleranceInferred
	mode string
	// defaults maps currency to default tolerance (supports "*" wildcard)
	defaults map[string]decimal.Decimal
	// multiplier is applied to inferred tolerance (default 0.5)
	multiplier decimal.Decimal
	// inferFromCost includes cost and price weights in tolerance inference
	inferFromCost bool
}

// NewToleranceConfig creates a default tolerance configuration
// Default: exact mode; when inferred, 0.005 tolerance for all currencies and 0.5 multiplier
func NewToleranceConfig() *ToleranceConfig {
	return &ToleranceConfig{
		mode: ToleranceExact,
		defaults: map[string]decimal.Decimal{
			"*": decimal.New(5, -3),
		},
		multiplier:    decimal.New(5, -1),
		inferFromCost: false,
	}
}

// Mode returns the tolerance mode.
func (c *ToleranceConfig) Mode() string {
	if c == nil {
		return ToleranceExact
	}
	return c.mode
}

// ParseToleranceConfig creates a ToleranceConfig from ledger options
// Supports:
//   - option "tolerance" "exact|inferred"
//   - option "inferred_tolerance_default" "*:0.005"
//   - option "inferred_tolerance_default" "USD:0.003"
//   - option "inferred_tolerance_multiplier" "0.6"
//   - option "infer_tolerance_from_cost" "TRUE"
func ParseToleranceConfig(options map[string][]string) (*ToleranceConfig, error) {
	config := NewToleranceConfig()

	// Parse tolerance mode (use first value if multiple)
	if vals := options["tolerance"]; len(vals) > 0 {
		mode := strings.ToLower(strings.TrimSpace(vals[0]))
		if mode != ToleranceExact && mode != ToleranceInferred {
			return nil, fmt.Errorf("invalid tolerance %q, expected exact or inferred", vals[0])
		}
		config.mode = mode
	}

	// Parse inferred_tolerance_multiplier (takes precedence over tolerance_multiplier)
	if vals := options["inferred_tolerance_multiplier"]; len(vals) > 0 {
		multiplier, err := decimal.NewFromString(vals[0])
		if err != nil {
			return nil, fmt.Errorf("invalid inferred_tolerance_multiplier %q: %w", vals[0], err)
		}
		config.multiplier = multiplier
	} else if vals := options["tolerance_multiplier"]; len(vals) > 0 {
		// Fallback for legacy option name
		multiplier, err := decimal.NewFromString(vals[0])
		if err != nil {
			return nil, fmt.Errorf("invalid tolerance_multiplier %q: %w", vals[0], err)
		}
		config.multiplier = multiplier
	}

	// Parse inferred_tolerance_default (can appear multiple times for per-currency tolerances)
	// Format: "CURRENCY:TOLERANCE" or "*:TOLERANCE"
	for _, val := range options["inferred_tolerance_default"] {
		parts := strings.SplitN(val, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid inferred_tolerance_default format %q, expected CURRENCY:TOLERANCE", val)
		}

		currency := strings.TrimSpace(parts[0])
		toleranceStr := strings.TrimSpace(parts[1])

		tolerance, err := decimal.NewFromString(toleranceStr)
		if err != nil {
			return nil, fmt.Errorf("invalid tolerance value in %q: %w", val, err)
		}

		config.defaults[currency] = tolerance
	}

	// Parse infer_tolerance_from_cost (use first value if multiple)
	if vals := options["infer_tolerance_from_cost"]; len(vals) > 0 {
		config.inferFromCost = strings.ToUpper(vals[0]) == "TRUE"
	}

	return config, nil
}

// InferTolerance calculates tolerance from amount precision
// Algorithm:
//  1. Find the smallest exponent across all amounts
//  2. Calculate tolerance = 10^minExp * multiplier
//  3. If no amounts, use default tolerance for currency
func InferTolerance(amounts []decimal.Decimal, currency string, config *ToleranceConfig) decimal.Decimal {
	if config == nil {
		config = NewToleranceConfig()
	}

	// If no amounts provided, return default tolerance
	if len(amounts) == 0 {
		return config.GetDefaultTolerance(currency)
	}

	// Find minimum exponent (most precise)
	minExp := int32(0)
	foundAny := false

	for _, amount := range amounts {
		if amount.IsZero() {
			continue // Skip zero amounts
		}

		exp := amount.Exponent()
		if !foundAny || exp < minExp {
			minExp = exp
			foundAny = true
		}
	}

	// If all amounts were zero, use default
	if !foundAny {
		return config.GetDefaultTolerance(currency)
	}

	// Calculate tolerance: 10^minExp * multiplier
	// For example: minExp = -2 gives 10^-2 * 0.5 = 0.005
	return decimal.New(1, minExp).Mul(config.multiplier)
}

// GetDefaultTolerance returns the default tolerance for a currency
// Checks currency-specific default first, then wildcard "*"
func (c *ToleranceConfig) GetDefaultTolerance(currency string) decimal.Decimal {
	if c == nil {
		return decimal.New(5, -3)
	}

	// Check currency-specific default
	if tolerance, ok := c.defaults[currency]; ok {
		return tolerance
	}

	// Fall back to wildcard
	if tolerance, ok := c.defaults["*"]; ok {
		return tolerance
	}

	// Final fallback
	return decimal.New(5, -3)
}

// Tolerances returns the per-currency tolerance to judge the residual of the given
// explicit postings with. In exact mode it returns nil, which compares exactly.
func (c *ToleranceConfig) Tolerances(explicit []*ast.Posting, residual *Inventory) map[string]decimal.Decimal {
	if c.Mode() != ToleranceInferred || residual.IsEmpty() {
		return nil
	}

	amountsByCurrency := make(map[string][]decimal.Decimal, residual.Len())
	for _, posting := range explicit {
		units, _ := posting.Explicit()
		amountsByCurrency[units.Currency] = append(amountsByCurrency[units.Currency], units.Number)

		if c.inferFromCost && HasNontrivialBalance(posting) {
			weight := BalanceAmount(posting)
			amountsByCurrency[weight.Currency] = append(amountsByCurrency[weight.Currency], weight.Number)
		}
	}

	tolerances := make(map[string]decimal.Decimal, residual.Len())
	for _, currency := range residual.Currencies() {
		tolerances[currency] = InferTolerance(amountsByCurrency[currency], currency, c)
	}
	return tolerances
}

// AmountEqual checks if two amounts are equal within tolerance
func AmountEqual(a, b decimal.Decimal, tolerance decimal.Decimal) bool {
	diff := a.Sub(b).Abs()
	return diff.LessThanOrEqual(tolerance)
}
