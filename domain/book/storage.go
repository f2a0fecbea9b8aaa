package book

import "sync"

// Storage is the residency backend behind a Book: it owns the resting
// orders, the price indexes on both sides, and the lock the Book holds
// across each operation. The matcher drives it through Front/PopFront
// on the side opposing an incoming order and rests remainders through
// Insert.
//
// Implementations are not internally synchronized beyond the Locker;
// the Book wraps every operation in Lock/Unlock.
type Storage interface {
	sync.Locker

	// Insert rests o on the book. It reports false when the backend
	// is out of capacity.
	Insert(o *Order) bool

	// Remove takes the order with the given ID off the book and
	// returns a copy of it.
	Remove(id OrderID) (Order, bool)

	// Get returns a copy of the resting order with the given ID.
	Get(id OrderID) (Order, bool)

	// Best returns the best price on a side: highest bid or lowest
	// ask. ok is false when the side is empty.
	Best(side Side) (Price, bool)

	// Front returns the oldest order at the best price level on a
	// side, or nil when the side is empty. The pointer stays valid
	// until the order is removed; the matcher mutates it in place.
	Front(side Side) *Order

	// PopFront removes the order Front would return.
	PopFront(side Side) (Order, bool)

	// Len is the number of resting orders.
	Len() int

	// Levels is the number of distinct price levels on a side.
	Levels(side Side) int

	// Depth snapshots up to maxLevels aggregated levels per side,
	// bids best-first descending and asks best-first ascending.
	Depth(maxLevels int) Depth

	// Clear drops every resting order.
	Clear()
}
