package book

// EventKind tags a book event.
type EventKind uint8

const (
	EventFill EventKind = iota
	EventCancel
	EventReject
)

func (k EventKind) String() string {
	switch k {
	case EventFill:
		return "fill"
	case EventCancel:
		return "cancel"
	case EventReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Event is an externally observable book mutation. Seq is assigned by
// the book in publication order and is strictly increasing.
type Event struct {
	Seq       uint64
	Kind      EventKind
	OrderID   OrderID
	Side      Side
	Price     Price
	Qty       Quantity
	Trade     *Trade
	Reason    string
	Timestamp int64
}

// EventSink receives events synchronously from the book's mutating
// operations. Implementations must not call back into the book.
type EventSink interface {
	Publish(Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(Event)

func (f EventSinkFunc) Publish(ev Event) { f(ev) }
