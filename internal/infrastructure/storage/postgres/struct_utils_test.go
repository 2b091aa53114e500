package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
)

func TestExtractDBColumns_Movement(t *testing.T) {
	cols := ExtractDBColumns[entity.Movement]()

	expectedCols := []string{
		"id", "product_id", "warehouse_id", "occurred_at", "seq",
		"kind", "quantity", "unit_cost", "document", "notes", "created_at",
	}

	assert.Equal(t, expectedCols, cols)
}

func TestStructToMap_Alert(t *testing.T) {
	alert := entity.Alert{
		ID:          id.New(),
		Type:        entity.AlertStockLow,
		ProductID:   id.New(),
		WarehouseID: id.New(),
		Priority:    2,
		State:       entity.AlertPending,
		Message:     "stock low",
		CreatedAt:   time.Now().UTC(),
	}

	m := StructToMap(alert)

	assert.Equal(t, alert.ID, m["id"])
	assert.Equal(t, entity.AlertStockLow, m["type"])
	assert.Equal(t, 2, m["priority"])
	assert.Equal(t, entity.AlertPending, m["state"])
	assert.Equal(t, "stock low", m["message"])
}
