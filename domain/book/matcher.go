package book

import "sync/atomic"

// Matcher executes price-time priority matching against a Storage
// backend. Within a level the oldest resting order trades first;
// levels are consumed best price first. Every trade prints at the
// resting order's price.
type Matcher struct {
	nextTrade atomic.Uint64
	trades    atomic.Uint64
	volume    atomic.Uint64
}

// Match crosses incoming against the opposite side until it is fully
// filled or no resting order crosses its limit. The caller holds the
// storage lock.
func (m *Matcher) Match(st Storage, incoming *Order, now int64) []Trade {
	var trades []Trade
	opp := incoming.Side.Opposite()
	for !incoming.FullyFilled() {
		resting := st.Front(opp)
		if resting == nil || !incoming.Crosses(resting.Price) {
			break
		}
		qty := min(incoming.Remaining(), resting.Remaining())
		incoming.fill(qty)
		resting.fill(qty)

		t := Trade{
			ID:        TradeID(m.nextTrade.Add(1)),
			Price:     resting.Price,
			Qty:       qty,
			Timestamp: now,
		}
		if incoming.Side == Buy {
			t.BuyOrder, t.SellOrder = incoming.ID, resting.ID
		} else {
			t.BuyOrder, t.SellOrder = resting.ID, incoming.ID
		}
		trades = append(trades, t)
		m.trades.Add(1)
		m.volume.Add(uint64(qty))

		if resting.FullyFilled() {
			st.PopFront(opp)
		}
	}
	return trades
}

// TotalTrades is the number of trades executed since construction.
func (m *Matcher) TotalTrades() uint64 { return m.trades.Load() }

// TotalVolume is the total quantity traded since construction.
func (m *Matcher) TotalVolume() Quantity { return Quantity(m.volume.Load()) }
