package book

import (
	"fmt"

	"osprey/infra/memory"
)

// Order is a resting or incoming order. Resting orders live in a
// storage backend's pool and are linked into their price level through
// the next/prev handles; an order outside the book has both set to
// memory.NilHandle.
type Order struct {
	ID        OrderID
	Side      Side
	Type      OrderType
	Price     Price
	Qty       Quantity
	Filled    Quantity
	Status    OrderStatus
	Timestamp int64

	next memory.Handle
	prev memory.Handle
}

// Remaining returns the unfilled quantity.
func (o *Order) Remaining() Quantity {
	return o.Qty.SubSat(o.Filled)
}

// FullyFilled reports whether nothing remains to execute.
func (o *Order) FullyFilled() bool {
	return o.Filled >= o.Qty
}

// Crosses reports whether an incoming order at this order's price would
// trade against a resting order at restingPrice. Market orders cross
// everything.
func (o *Order) Crosses(restingPrice Price) bool {
	if o.Type == Market {
		return true
	}
	if o.Side == Buy {
		return o.Price >= restingPrice
	}
	return o.Price <= restingPrice
}

// fill records qty executed against the order and transitions its
// status. Filling past Qty is a bookkeeping bug, not an input error.
func (o *Order) fill(qty Quantity) {
	o.Filled += qty
	if o.Filled > o.Qty {
		panic(fmt.Sprintf("order %d overfilled: %d of %d", o.ID, o.Filled, o.Qty))
	}
	if o.Filled == o.Qty {
		o.Status = StatusFilled
	} else {
		o.Status = StatusPartiallyFilled
	}
}
