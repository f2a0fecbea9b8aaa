package book

import (
	"fmt"
	"math"
)

// Price is a fixed-point price expressed in ticks. All comparisons in
// the book are exact integer comparisons; a float enters only at the
// display/API boundary via PriceFromFloat and Float.
type Price int64

// TicksPerUnit is the number of ticks in one currency unit, i.e. one
// tick is 0.01.
const TicksPerUnit = 100

// PriceFromFloat converts a display price to ticks, rounding to the
// nearest tick.
func PriceFromFloat(v float64) Price {
	return Price(math.Round(v * TicksPerUnit))
}

// Float returns the display value of the price.
func (p Price) Float() float64 {
	return float64(p) / TicksPerUnit
}

func (p Price) String() string {
	sign := ""
	t := int64(p)
	if t < 0 {
		sign = "-"
		t = -t
	}
	return fmt.Sprintf("%s%d.%02d", sign, t/TicksPerUnit, t%TicksPerUnit)
}

// Quantity is a lot count.
type Quantity uint64

// AddSat returns q+o, saturating at the maximum instead of wrapping.
func (q Quantity) AddSat(o Quantity) Quantity {
	if s := q + o; s >= q {
		return s
	}
	return math.MaxUint64
}

// SubSat returns q-o, saturating at zero instead of wrapping.
func (q Quantity) SubSat(o Quantity) Quantity {
	if o >= q {
		return 0
	}
	return q - o
}

// OrderID identifies an order. IDs are process-unique and monotonically
// increasing; an ID is reused only by ModifyOrder's cancel-and-replace.
type OrderID uint64

// TradeID identifies a trade.
type TradeID uint64

// Side is the order side.
type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType distinguishes resting-capable limit orders from
// immediate-only market orders.
type OrderType uint8

const (
	Limit OrderType = iota
	Market
)

func (t OrderType) String() string {
	if t == Limit {
		return "limit"
	}
	return "market"
}

// OrderStatus tracks an order through its lifecycle.
type OrderStatus uint8

const (
	StatusNew OrderStatus = iota
	StatusPartiallyFilled
	StatusFilled
	StatusCancelled
)

func (s OrderStatus) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusPartiallyFilled:
		return "partially_filled"
	case StatusFilled:
		return "filled"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
