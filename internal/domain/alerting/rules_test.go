package alerting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/entity"
)

func TestEngine_DefaultRule(t *testing.T) {
	engine, err := NewEngine("")
	require.NoError(t, err)

	// Half the minimum: critical.
	alertType, priority := engine.Evaluate(Input{
		StockOnHand: 10, MinStock: 20, ReorderPoint: 20, DaysToStockout: 30,
	})
	assert.Equal(t, entity.AlertStockCritical, alertType)
	assert.Equal(t, PriorityCritical, priority)

	// Below reorder point but comfortably above half: low.
	alertType, priority = engine.Evaluate(Input{
		StockOnHand: 18, MinStock: 20, ReorderPoint: 20, DaysToStockout: 30,
	})
	assert.Equal(t, entity.AlertStockLow, alertType)
	assert.Equal(t, PriorityLow, priority)

	// Imminent stockout overrides the quantity check.
	alertType, _ = engine.Evaluate(Input{
		StockOnHand: 18, MinStock: 20, ReorderPoint: 20, DaysToStockout: 1.5,
	})
	assert.Equal(t, entity.AlertStockCritical, alertType)
}

func TestEngine_CustomRule(t *testing.T) {
	engine, err := NewEngine(`stock_on_hand == 0.0`)
	require.NoError(t, err)

	alertType, _ := engine.Evaluate(Input{StockOnHand: 0, MinStock: 5, DaysToStockout: 9999})
	assert.Equal(t, entity.AlertStockCritical, alertType)

	alertType, _ = engine.Evaluate(Input{StockOnHand: 1, MinStock: 5, DaysToStockout: 9999})
	assert.Equal(t, entity.AlertStockLow, alertType)
}

func TestEngine_RejectsBadExpressions(t *testing.T) {
	_, err := NewEngine(`stock_on_hand +`)
	require.Error(t, err)

	_, err = NewEngine(`stock_on_hand * 2.0`)
	require.Error(t, err, "non-bool result must be rejected")
}
