// Package alerting decides the severity of stock alerts. Severity
// rules are CEL expressions over the candidate's stock figures, so
// deployments can tune the critical threshold without a rebuild.
package alerting

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
)

// DefaultCriticalExpr marks a candidate critical when stock fell to
// half the minimum or the projected stockout is less than three days
// away.
const DefaultCriticalExpr = `stock_on_hand <= min_stock * 0.5 || days_to_stockout < 3.0`

// Alert priorities (1 = most urgent).
const (
	PriorityCritical = 1
	PriorityLow      = 2
	PriorityInfo     = 3
)

// Input is the candidate snapshot a rule evaluates against.
type Input struct {
	StockOnHand    float64
	MinStock       float64
	ReorderPoint   float64
	DaysToStockout float64
}

// Engine evaluates compiled severity rules.
type Engine struct {
	critical cel.Program
}

// NewEngine compiles the critical-severity expression. Pass an empty
// string for the default rule.
func NewEngine(criticalExpr string) (*Engine, error) {
	if criticalExpr == "" {
		criticalExpr = DefaultCriticalExpr
	}

	env, err := cel.NewEnv(
		cel.Variable("stock_on_hand", cel.DoubleType),
		cel.Variable("min_stock", cel.DoubleType),
		cel.Variable("reorder_point", cel.DoubleType),
		cel.Variable("days_to_stockout", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	ast, issues := env.Compile(criticalExpr)
	if issues != nil && issues.Err() != nil {
		return nil, apperror.NewInvalidArgument("invalid alert rule expression").
			WithDetail("expression", criticalExpr).
			WithCause(issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, apperror.NewInvalidArgument("alert rule expression must return bool").
			WithDetail("expression", criticalExpr)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build cel program: %w", err)
	}
	return &Engine{critical: prg}, nil
}

// Evaluate classifies a below-threshold candidate. Rule failures
// degrade to stock_low rather than suppressing the alert.
func (e *Engine) Evaluate(in Input) (entity.AlertType, int) {
	out, _, err := e.critical.Eval(map[string]any{
		"stock_on_hand":    in.StockOnHand,
		"min_stock":        in.MinStock,
		"reorder_point":    in.ReorderPoint,
		"days_to_stockout": in.DaysToStockout,
	})
	if err == nil {
		if isCritical, ok := out.Value().(bool); ok && isCritical {
			return entity.AlertStockCritical, PriorityCritical
		}
	}
	return entity.AlertStockLow, PriorityLow
}
