package valuation

import (
	"sort"

	"github.com/shopspring/decimal"

	"stockledger/internal/core/types"
)

// Class is an ABC significance tier.
type Class string

const (
	ClassA Class = "A"
	ClassB Class = "B"
	ClassC Class = "C"
)

// Cumulative value-share boundaries. The item that crosses a boundary
// is included in the lower class (pre-addition threshold check).
var (
	thresholdA = decimal.NewFromFloat(0.80)
	thresholdB = decimal.NewFromFloat(0.95)
)

// Bucket is one ABC class with its items and shares.
type Bucket struct {
	Class      Class           `json:"class"`
	Items      []Item          `json:"items"`
	ItemCount  int             `json:"itemCount"`
	ItemShare  decimal.Decimal `json:"itemShare"`
	Value      types.Money     `json:"value"`
	ValueShare decimal.Decimal `json:"valueShare"`
}

// ABCResult partitions a valuation into classes A, B, C.
// The three buckets partition the item set exactly; item and value
// shares each sum to 100%.
type ABCResult struct {
	Buckets    []Bucket    `json:"buckets"`
	TotalItems int         `json:"totalItems"`
	TotalValue types.Money `json:"totalValue"`
}

// Classify partitions a valuation result by cumulative value share:
// A up to 80%, B up to 95%, C the remainder.
func Classify(result *Result) *ABCResult {
	out := &ABCResult{
		TotalItems: len(result.Items),
		TotalValue: result.TotalValue,
	}

	items := make([]Item, len(result.Items))
	copy(items, result.Items)
	sort.SliceStable(items, func(i, j int) bool {
		cmp := items[i].TotalValue.Cmp(items[j].TotalValue)
		if cmp != 0 {
			return cmp > 0
		}
		// Tie-break by product id for determinism.
		return items[i].ProductID.String() < items[j].ProductID.String()
	})

	buckets := map[Class]*Bucket{
		ClassA: {Class: ClassA, Value: types.ZeroMoney()},
		ClassB: {Class: ClassB, Value: types.ZeroMoney()},
		ClassC: {Class: ClassC, Value: types.ZeroMoney()},
	}

	grand := result.TotalValue
	valueSoFar := types.ZeroMoney()
	for _, item := range items {
		class := ClassC
		if grand.IsPositive() {
			// Share before adding the item: the boundary-crossing item
			// stays in the lower class.
			share := valueSoFar.Div(grand)
			switch {
			case share.LessThan(thresholdA):
				class = ClassA
			case share.LessThan(thresholdB):
				class = ClassB
			}
		}
		b := buckets[class]
		b.Items = append(b.Items, item)
		b.ItemCount++
		b.Value = b.Value.Add(item.TotalValue)
		valueSoFar = valueSoFar.Add(item.TotalValue)
	}

	hundred := decimal.NewFromInt(100)
	totalItems := decimal.NewFromInt(int64(len(items)))
	for _, class := range []Class{ClassA, ClassB, ClassC} {
		b := buckets[class]
		if len(items) > 0 {
			b.ItemShare = decimal.NewFromInt(int64(b.ItemCount)).Div(totalItems).Mul(hundred)
		}
		if grand.IsPositive() {
			b.ValueShare = b.Value.Div(grand).Mul(hundred)
		}
		out.Buckets = append(out.Buckets, *b)
	}
	return out
}
