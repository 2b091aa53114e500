package valuation

import (
	"stockledger/internal/core/entity"
	"stockledger/internal/core/types"
)

// lot is one inbound movement still (partially) on hand.
type lot struct {
	qty  types.Quantity
	cost types.Money
}

// unitCost prices the on-hand quantity for one product under the
// selected method, given its chronologically ordered movement history.
func unitCost(method Method, movements []entity.Movement, product *entity.Product, onHand types.Quantity) types.Money {
	switch method {
	case FIFO:
		return lotCost(movements, product, onHand, false)
	case LIFO:
		return lotCost(movements, product, onHand, true)
	default:
		return weightedAverageCost(movements, product)
	}
}

// weightedAverageCost divides the total cost value of inbound
// movements by their total quantity. Movements without cost data are
// excluded; when none carry cost, the product's stored average cost
// is used.
func weightedAverageCost(movements []entity.Movement, product *entity.Product) types.Money {
	totalValue := types.ZeroMoney()
	var totalQty types.Quantity
	for i := range movements {
		m := &movements[i]
		if !m.Kind.IsInbound() || m.UnitCost == nil {
			continue
		}
		totalValue = totalValue.Add(m.Quantity.Decimal().Mul(*m.UnitCost))
		totalQty += m.Quantity
	}
	if !totalQty.IsPositive() {
		return product.FallbackUnitCost()
	}
	return totalValue.Div(totalQty.Decimal())
}

// lotCost walks inbound lots consuming the cumulative outflow
// quantity, then prices the remaining lots. FIFO consumes the oldest
// lots first (the newest remain on hand); LIFO consumes the newest
// first (the oldest remain).
func lotCost(movements []entity.Movement, product *entity.Product, onHand types.Quantity, lifo bool) types.Money {
	var lots []lot
	var consumed types.Quantity
	for i := range movements {
		m := &movements[i]
		if m.Kind.IsInbound() {
			cost := product.FallbackUnitCost()
			if m.UnitCost != nil {
				cost = *m.UnitCost
			}
			lots = append(lots, lot{qty: m.Quantity, cost: cost})
		} else {
			consumed += m.Quantity
		}
	}
	if len(lots) == 0 || !onHand.IsPositive() {
		return product.FallbackUnitCost()
	}

	// Consumption order: FIFO eats from the front, LIFO from the back.
	if lifo {
		for i := len(lots) - 1; i >= 0 && consumed.IsPositive(); i-- {
			take := lots[i].qty
			if take > consumed {
				take = consumed
			}
			lots[i].qty -= take
			consumed -= take
		}
	} else {
		for i := 0; i < len(lots) && consumed.IsPositive(); i++ {
			take := lots[i].qty
			if take > consumed {
				take = consumed
			}
			lots[i].qty -= take
			consumed -= take
		}
	}

	remainingValue := types.ZeroMoney()
	var remainingQty types.Quantity
	for _, l := range lots {
		if l.qty.IsPositive() {
			remainingValue = remainingValue.Add(l.qty.Decimal().Mul(l.cost))
			remainingQty += l.qty
		}
	}
	if !remainingQty.IsPositive() {
		// Outflows exceeded inflows; nothing left to price from lots.
		return product.FallbackUnitCost()
	}
	return remainingValue.Div(remainingQty.Decimal())
}
