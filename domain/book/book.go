package book

import (
	"errors"
	"time"

	"osprey/infra/sequence"
)

var (
	ErrInvalidQuantity = errors.New("book: quantity must be positive")
	ErrInvalidPrice    = errors.New("book: limit price must be positive")
	ErrDuplicateOrder  = errors.New("book: order id already resting")
	ErrUnknownOrder    = errors.New("book: unknown order id")
	ErrBookFull        = errors.New("book: storage capacity exhausted")
)

// Book is the order book facade: it validates incoming orders, runs
// them through the matcher, rests limit remainders, and publishes
// events. All mutating operations are serialized on the storage lock,
// so a Book is safe for concurrent use.
type Book struct {
	store   Storage
	matcher Matcher
	ids     *sequence.Sequencer
	seq     *sequence.Sequencer
	sink    EventSink
	now     func() int64
}

// Option configures a Book.
type Option func(*Book)

// WithEventSink publishes fill, cancel and reject events to sink. The
// sink is invoked synchronously from the submitting operation and must
// not call back into the book.
func WithEventSink(sink EventSink) Option {
	return func(b *Book) { b.sink = sink }
}

// WithClock overrides the timestamp source. Timestamps only order
// events relative to each other, so any monotonic source works.
func WithClock(now func() int64) Option {
	return func(b *Book) { b.now = now }
}

// New builds a Book over the given storage backend.
func New(store Storage, opts ...Option) *Book {
	boot := time.Now()
	b := &Book{
		store: store,
		ids:   sequence.New(0),
		seq:   sequence.New(0),
		now:   func() int64 { return int64(time.Since(boot)) },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddOrder submits a new order with a book-assigned ID.
func (b *Book) AddOrder(side Side, typ OrderType, price Price, qty Quantity) (MatchResult, error) {
	return b.AddOrderWithID(OrderID(b.ids.Next()), side, typ, price, qty)
}

// AddOrderWithID submits a new order under a caller-chosen ID. The
// order matches immediately against the opposite side; a limit
// remainder rests, a market remainder is discarded.
func (b *Book) AddOrderWithID(id OrderID, side Side, typ OrderType, price Price, qty Quantity) (MatchResult, error) {
	if err := validate(typ, price, qty); err != nil {
		b.reject(id, side, price, qty, err)
		return MatchResult{OrderID: id}, err
	}

	b.store.Lock()
	defer b.store.Unlock()

	if _, dup := b.store.Get(id); dup {
		b.reject(id, side, price, qty, ErrDuplicateOrder)
		return MatchResult{OrderID: id}, ErrDuplicateOrder
	}

	now := b.now()
	o := Order{ID: id, Side: side, Type: typ, Price: price, Qty: qty, Status: StatusNew, Timestamp: now}
	trades := b.matcher.Match(b.store, &o, now)
	for i := range trades {
		b.publishTrade(&o, &trades[i])
	}

	res := MatchResult{
		OrderID:      id,
		Trades:       trades,
		FilledQty:    o.Filled,
		RemainingQty: o.Remaining(),
		FullyFilled:  o.FullyFilled(),
	}
	if o.FullyFilled() {
		return res, nil
	}

	if typ == Market {
		// Market remainders never rest.
		b.publish(Event{Kind: EventCancel, OrderID: id, Side: side, Qty: o.Remaining(), Reason: "no liquidity", Timestamp: now})
		return res, nil
	}
	if !b.store.Insert(&o) {
		b.publish(Event{Kind: EventReject, OrderID: id, Side: side, Price: price, Qty: o.Remaining(), Reason: ErrBookFull.Error(), Timestamp: now})
		return res, ErrBookFull
	}
	res.Rested = true
	return res, nil
}

// AddPassiveOrder rests a limit order without matching it, even if it
// crosses. Used to preload a book shape for tests and replays.
func (b *Book) AddPassiveOrder(side Side, price Price, qty Quantity) (OrderID, error) {
	if err := validate(Limit, price, qty); err != nil {
		return 0, err
	}
	id := OrderID(b.ids.Next())

	b.store.Lock()
	defer b.store.Unlock()

	o := Order{ID: id, Side: side, Type: Limit, Price: price, Qty: qty, Status: StatusNew, Timestamp: b.now()}
	if !b.store.Insert(&o) {
		return 0, ErrBookFull
	}
	return id, nil
}

// Cancel removes a resting order. Cancelling an unknown or already
// cancelled ID returns ErrUnknownOrder.
func (b *Book) Cancel(id OrderID) error {
	b.store.Lock()
	defer b.store.Unlock()

	o, ok := b.store.Remove(id)
	if !ok {
		return ErrUnknownOrder
	}
	b.publish(Event{Kind: EventCancel, OrderID: id, Side: o.Side, Price: o.Price, Qty: o.Remaining(), Timestamp: b.now()})
	return nil
}

// Modify cancels the resting order and resubmits its unfilled portion
// at the new price and quantity under the same ID. The replacement
// goes through matching and loses its time priority.
func (b *Book) Modify(id OrderID, newPrice Price, newQty Quantity) (MatchResult, error) {
	if err := validate(Limit, newPrice, newQty); err != nil {
		return MatchResult{OrderID: id}, err
	}

	b.store.Lock()

	old, ok := b.store.Remove(id)
	if !ok {
		b.store.Unlock()
		return MatchResult{OrderID: id}, ErrUnknownOrder
	}
	side := old.Side
	b.store.Unlock()

	return b.AddOrderWithID(id, side, Limit, newPrice, newQty)
}

// BestBidPrice returns the highest resting bid.
func (b *Book) BestBidPrice() (Price, bool) {
	b.store.Lock()
	defer b.store.Unlock()
	return b.store.Best(Buy)
}

// BestAskPrice returns the lowest resting ask.
func (b *Book) BestAskPrice() (Price, bool) {
	b.store.Lock()
	defer b.store.Unlock()
	return b.store.Best(Sell)
}

// Spread returns ask minus bid. ok is false unless both sides have
// resting orders.
func (b *Book) Spread() (Price, bool) {
	b.store.Lock()
	defer b.store.Unlock()
	bid, okB := b.store.Best(Buy)
	ask, okA := b.store.Best(Sell)
	if !okB || !okA {
		return 0, false
	}
	return ask - bid, true
}

// MidPrice returns the midpoint of the best bid and ask, rounded down
// to a tick.
func (b *Book) MidPrice() (Price, bool) {
	b.store.Lock()
	defer b.store.Unlock()
	bid, okB := b.store.Best(Buy)
	ask, okA := b.store.Best(Sell)
	if !okB || !okA {
		return 0, false
	}
	return (bid + ask) / 2, true
}

// MarketDepth snapshots up to maxLevels aggregated price levels per
// side, best first.
func (b *Book) MarketDepth(maxLevels int) Depth {
	b.store.Lock()
	defer b.store.Unlock()
	return b.store.Depth(maxLevels)
}

// Order returns a copy of a resting order.
func (b *Book) Order(id OrderID) (Order, bool) {
	b.store.Lock()
	defer b.store.Unlock()
	return b.store.Get(id)
}

// Size is the number of resting orders.
func (b *Book) Size() int {
	b.store.Lock()
	defer b.store.Unlock()
	return b.store.Len()
}

// TotalTrades is the number of trades executed since construction.
func (b *Book) TotalTrades() uint64 { return b.matcher.TotalTrades() }

// TotalVolume is the total quantity traded since construction.
func (b *Book) TotalVolume() Quantity { return b.matcher.TotalVolume() }

// Clear drops all resting orders. Trade counters keep their values.
func (b *Book) Clear() {
	b.store.Lock()
	defer b.store.Unlock()
	b.store.Clear()
}

// BatchOrder is one entry in an AddBatch submission.
type BatchOrder struct {
	Side  Side
	Type  OrderType
	Price Price
	Qty   Quantity
}

// AddBatch submits orders in sequence. Each order is matched
// individually, in slice order; results line up with the input.
func (b *Book) AddBatch(orders []BatchOrder) []MatchResult {
	results := make([]MatchResult, 0, len(orders))
	for _, o := range orders {
		res, _ := b.AddOrder(o.Side, o.Type, o.Price, o.Qty)
		results = append(results, res)
	}
	return results
}

func validate(typ OrderType, price Price, qty Quantity) error {
	if qty == 0 {
		return ErrInvalidQuantity
	}
	if typ == Limit && price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

func (b *Book) publishTrade(incoming *Order, t *Trade) {
	b.publish(Event{
		Kind:      EventFill,
		OrderID:   incoming.ID,
		Side:      incoming.Side,
		Price:     t.Price,
		Qty:       t.Qty,
		Trade:     t,
		Timestamp: t.Timestamp,
	})
}

func (b *Book) reject(id OrderID, side Side, price Price, qty Quantity, err error) {
	b.publish(Event{Kind: EventReject, OrderID: id, Side: side, Price: price, Qty: qty, Reason: err.Error(), Timestamp: b.now()})
}

func (b *Book) publish(ev Event) {
	if b.sink == nil {
		return
	}
	ev.Seq = b.seq.Next()
	b.sink.Publish(ev)
}
