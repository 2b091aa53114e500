package valuation

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

func resultWithValues(values ...float64) *Result {
	r := &Result{TotalValue: types.ZeroMoney()}
	for i, v := range values {
		value := decimal.NewFromFloat(v)
		r.Items = append(r.Items, Item{
			ProductID:  id.New(),
			SKU:        fmt.Sprintf("SKU-%03d", i),
			TotalValue: value,
		})
		r.TotalValue = r.TotalValue.Add(value)
	}
	r.TotalProducts = len(r.Items)
	return r
}

func bucket(t *testing.T, res *ABCResult, class Class) Bucket {
	t.Helper()
	for _, b := range res.Buckets {
		if b.Class == class {
			return b
		}
	}
	t.Fatalf("bucket %s not found", class)
	return Bucket{}
}

func TestClassify_BoundaryScenario(t *testing.T) {
	// 800 reaches 80% exactly and stays in A; 150 brings the
	// cumulative share to 95% and stays in B; 50 lands in C.
	res := Classify(resultWithValues(800, 150, 50))

	a, b, c := bucket(t, res, ClassA), bucket(t, res, ClassB), bucket(t, res, ClassC)
	require.Equal(t, 1, a.ItemCount)
	require.Equal(t, 1, b.ItemCount)
	require.Equal(t, 1, c.ItemCount)
	assert.True(t, a.Value.Equal(decimal.NewFromInt(800)))
	assert.True(t, b.Value.Equal(decimal.NewFromInt(150)))
	assert.True(t, c.Value.Equal(decimal.NewFromInt(50)))
}

func TestClassify_ExactPartition(t *testing.T) {
	res := Classify(resultWithValues(500, 300, 90, 50, 30, 20, 10))

	total := 0
	seen := make(map[id.ID]bool)
	valueShare := decimal.Zero
	itemShare := decimal.Zero
	for _, b := range res.Buckets {
		total += b.ItemCount
		valueShare = valueShare.Add(b.ValueShare)
		itemShare = itemShare.Add(b.ItemShare)
		for _, item := range b.Items {
			assert.False(t, seen[item.ProductID], "item in two classes")
			seen[item.ProductID] = true
		}
	}
	assert.Equal(t, res.TotalItems, total)

	hundred := decimal.NewFromInt(100)
	tolerance := decimal.NewFromFloat(1e-6)
	assert.True(t, valueShare.Sub(hundred).Abs().LessThan(tolerance), "value shares sum to %s", valueShare)
	assert.True(t, itemShare.Sub(hundred).Abs().LessThan(tolerance), "item shares sum to %s", itemShare)
}

func TestClassify_DescendingByValue(t *testing.T) {
	res := Classify(resultWithValues(10, 990))

	a := bucket(t, res, ClassA)
	require.Equal(t, 1, a.ItemCount)
	assert.True(t, a.Items[0].TotalValue.Equal(decimal.NewFromInt(990)))
}

func TestClassify_ZeroGrandTotal(t *testing.T) {
	res := Classify(resultWithValues(0, 0, 0))

	// Everything falls into C by convention; no division by zero.
	c := bucket(t, res, ClassC)
	assert.Equal(t, 3, c.ItemCount)
	assert.Equal(t, 0, bucket(t, res, ClassA).ItemCount)
	assert.Equal(t, 0, bucket(t, res, ClassB).ItemCount)
}

func TestClassify_EmptyInput(t *testing.T) {
	res := Classify(&Result{TotalValue: types.ZeroMoney()})
	assert.Zero(t, res.TotalItems)
	for _, b := range res.Buckets {
		assert.Zero(t, b.ItemCount)
	}
}
