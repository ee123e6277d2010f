package transform

import (
	"fmt"

	"github.com/Knetic/govaluate"
)

// FormulaEvaluator evaluates a CUSTOM transformation formula against a single
// input value. Implementations must be safe for concurrent use and must not
// expose anything beyond sourceValue to the formula.
type FormulaEvaluator interface {
	Evaluate(formula string, sourceValue interface{}) (interface{}, error)
}

// GovaluateEvaluator evaluates formulas with the govaluate expression engine.
// The expression scope contains exactly one variable, sourceValue, e.g.:
//
//	"sourceValue + ' (migrated)'"
//	"sourceValue > 100 ? 'HIGH' : 'LOW'"
type GovaluateEvaluator struct{}

// NewGovaluateEvaluator creates the default formula evaluator.
func NewGovaluateEvaluator() *GovaluateEvaluator {
	return &GovaluateEvaluator{}
}

// Evaluate compiles and runs the formula. Errors are returned to the engine,
// which degrades to the original value.
func (g *GovaluateEvaluator) Evaluate(formula string, sourceValue interface{}) (result interface{}, err error) {
	// govaluate can panic on malformed input; keep the never-throw contract.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("formula evaluation panicked: %v", r)
		}
	}()

	expr, err := govaluate.NewEvaluableExpression(formula)
	if err != nil {
		return nil, fmt.Errorf("error compiling formula: %w", err)
	}
	return expr.Evaluate(map[string]interface{}{"sourceValue": sourceValue})
}
