package book

import (
	"osprey/infra/concurrent"
	"osprey/infra/memory"
)

// IntrusiveStorage keeps resting orders in a pool and links them into
// their price levels through the orders' own embedded handles, so a
// resting order costs no allocation beyond its pool slot. Price levels
// live in one red-black tree per side and the ID index maps order IDs
// to pool handles.
type IntrusiveStorage struct {
	mu    concurrent.Spinlock
	pool  memory.Pool[Order]
	bids  *levelTree
	asks  *levelTree
	index map[OrderID]memory.Handle
}

// NewIntrusiveStorage builds storage over a fixed-capacity arena.
// Insert fails once capacity orders are resting.
func NewIntrusiveStorage(capacity int) *IntrusiveStorage {
	return NewIntrusiveStorageWithPool(memory.NewArena[Order](capacity))
}

// NewIntrusiveStorageGrowable builds storage over a slab arena that
// grows on demand.
func NewIntrusiveStorageGrowable() *IntrusiveStorage {
	return NewIntrusiveStorageWithPool(memory.NewSlabArena[Order]())
}

// NewIntrusiveStorageWithPool builds storage over the given pool.
func NewIntrusiveStorageWithPool(pool memory.Pool[Order]) *IntrusiveStorage {
	return &IntrusiveStorage{
		pool:  pool,
		bids:  newLevelTree(),
		asks:  newLevelTree(),
		index: make(map[OrderID]memory.Handle),
	}
}

func (s *IntrusiveStorage) Lock()   { s.mu.Lock() }
func (s *IntrusiveStorage) Unlock() { s.mu.Unlock() }

func (s *IntrusiveStorage) tree(side Side) *levelTree {
	if side == Buy {
		return s.bids
	}
	return s.asks
}

func (s *IntrusiveStorage) Insert(o *Order) bool {
	if _, dup := s.index[o.ID]; dup {
		return false
	}
	h, ok := s.pool.Alloc()
	if !ok {
		return false
	}
	slot := s.pool.At(h)
	*slot = *o
	slot.next = memory.NilHandle
	slot.prev = memory.NilHandle
	s.tree(o.Side).upsert(o.Price).pushBack(s.pool, h)
	s.index[o.ID] = h
	return true
}

func (s *IntrusiveStorage) Remove(id OrderID) (Order, bool) {
	h, ok := s.index[id]
	if !ok {
		return Order{}, false
	}
	o := *s.pool.At(h)
	s.unlink(h, &o)
	return o, true
}

func (s *IntrusiveStorage) Get(id OrderID) (Order, bool) {
	h, ok := s.index[id]
	if !ok {
		return Order{}, false
	}
	return *s.pool.At(h), true
}

func (s *IntrusiveStorage) Best(side Side) (Price, bool) {
	lvl := s.bestLevel(side)
	if lvl == nil {
		return 0, false
	}
	return lvl.price, true
}

func (s *IntrusiveStorage) Front(side Side) *Order {
	lvl := s.bestLevel(side)
	if lvl == nil {
		return nil
	}
	return s.pool.At(lvl.front())
}

func (s *IntrusiveStorage) PopFront(side Side) (Order, bool) {
	lvl := s.bestLevel(side)
	if lvl == nil {
		return Order{}, false
	}
	h := lvl.front()
	o := *s.pool.At(h)
	s.unlink(h, &o)
	return o, true
}

func (s *IntrusiveStorage) Len() int { return len(s.index) }

func (s *IntrusiveStorage) Levels(side Side) int { return s.tree(side).len() }

func (s *IntrusiveStorage) Depth(maxLevels int) Depth {
	var d Depth
	s.bids.descend(func(lvl *level) bool {
		if len(d.Bids) >= maxLevels {
			return false
		}
		d.Bids = append(d.Bids, Level{Price: lvl.price, Qty: lvl.totalQty(s.pool), Orders: lvl.count})
		return true
	})
	s.asks.ascend(func(lvl *level) bool {
		if len(d.Asks) >= maxLevels {
			return false
		}
		d.Asks = append(d.Asks, Level{Price: lvl.price, Qty: lvl.totalQty(s.pool), Orders: lvl.count})
		return true
	})
	return d
}

func (s *IntrusiveStorage) Clear() {
	for _, h := range s.index {
		s.pool.Free(h)
	}
	s.bids = newLevelTree()
	s.asks = newLevelTree()
	s.index = make(map[OrderID]memory.Handle)
}

// bestLevel is the highest bid level or lowest ask level.
func (s *IntrusiveStorage) bestLevel(side Side) *level {
	if side == Buy {
		return s.bids.max()
	}
	return s.asks.min()
}

// unlink takes h off its level, dropping the level when it empties,
// and returns the slot to the pool.
func (s *IntrusiveStorage) unlink(h memory.Handle, o *Order) {
	t := s.tree(o.Side)
	lvl := t.get(o.Price)
	lvl.remove(s.pool, h)
	if lvl.empty() {
		t.remove(o.Price)
	}
	delete(s.index, o.ID)
	s.pool.Free(h)
}
