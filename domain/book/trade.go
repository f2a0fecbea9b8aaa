package book

// Trade is one execution between an incoming order and a resting
// order. Price is always the resting order's price.
type Trade struct {
	ID        TradeID
	BuyOrder  OrderID
	SellOrder OrderID
	Price     Price
	Qty       Quantity
	Timestamp int64
}

// MatchResult summarizes what happened to a submitted order.
type MatchResult struct {
	OrderID      OrderID
	Trades       []Trade
	FilledQty    Quantity
	RemainingQty Quantity
	FullyFilled  bool
	// Rested is true when a limit remainder was placed on the book.
	Rested bool
}

// Level is one aggregated price level for depth queries.
type Level struct {
	Price  Price
	Qty    Quantity
	Orders int
}

// Depth is a snapshot of the top of the book. Bids are ordered best
// (highest) first, asks best (lowest) first.
type Depth struct {
	Bids []Level
	Asks []Level
}
