package book

import (
	"sync"

	"github.com/tidwall/btree"
)

type treeLevel struct {
	price  Price
	orders []*Order
}

// TreeStorage is the pointer-based backend: price levels in B-trees
// sorted best-first per side, order FIFOs as slices of heap-allocated
// orders. It trades the arena's allocation discipline for simplicity
// and unbounded capacity.
type TreeStorage struct {
	mu    sync.Mutex
	bids  *btree.BTreeG[*treeLevel]
	asks  *btree.BTreeG[*treeLevel]
	index map[OrderID]*treeLevel
}

func NewTreeStorage() *TreeStorage {
	// Both trees sort best level first so MinMut is top of book on
	// either side.
	bids := btree.NewBTreeG(func(a, b *treeLevel) bool {
		return a.price > b.price
	})
	asks := btree.NewBTreeG(func(a, b *treeLevel) bool {
		return a.price < b.price
	})
	return &TreeStorage{
		bids:  bids,
		asks:  asks,
		index: make(map[OrderID]*treeLevel),
	}
}

func (s *TreeStorage) Lock()   { s.mu.Lock() }
func (s *TreeStorage) Unlock() { s.mu.Unlock() }

func (s *TreeStorage) side(side Side) *btree.BTreeG[*treeLevel] {
	if side == Buy {
		return s.bids
	}
	return s.asks
}

func (s *TreeStorage) Insert(o *Order) bool {
	if _, dup := s.index[o.ID]; dup {
		return false
	}
	levels := s.side(o.Side)
	resting := *o
	lvl, ok := levels.GetMut(&treeLevel{price: o.Price})
	if !ok {
		lvl = &treeLevel{price: o.Price}
		levels.Set(lvl)
	}
	lvl.orders = append(lvl.orders, &resting)
	s.index[o.ID] = lvl
	return true
}

func (s *TreeStorage) Remove(id OrderID) (Order, bool) {
	lvl, ok := s.index[id]
	if !ok {
		return Order{}, false
	}
	for i, o := range lvl.orders {
		if o.ID == id {
			removed := *o
			lvl.orders = append(lvl.orders[:i], lvl.orders[i+1:]...)
			delete(s.index, id)
			if len(lvl.orders) == 0 {
				s.side(removed.Side).Delete(lvl)
			}
			return removed, true
		}
	}
	return Order{}, false
}

func (s *TreeStorage) Get(id OrderID) (Order, bool) {
	lvl, ok := s.index[id]
	if !ok {
		return Order{}, false
	}
	for _, o := range lvl.orders {
		if o.ID == id {
			return *o, true
		}
	}
	return Order{}, false
}

func (s *TreeStorage) Best(side Side) (Price, bool) {
	lvl, ok := s.side(side).Min()
	if !ok {
		return 0, false
	}
	return lvl.price, true
}

func (s *TreeStorage) Front(side Side) *Order {
	lvl, ok := s.side(side).MinMut()
	if !ok {
		return nil
	}
	return lvl.orders[0]
}

func (s *TreeStorage) PopFront(side Side) (Order, bool) {
	levels := s.side(side)
	lvl, ok := levels.MinMut()
	if !ok {
		return Order{}, false
	}
	o := *lvl.orders[0]
	lvl.orders = lvl.orders[1:]
	delete(s.index, o.ID)
	if len(lvl.orders) == 0 {
		levels.Delete(lvl)
	}
	return o, true
}

func (s *TreeStorage) Len() int { return len(s.index) }

func (s *TreeStorage) Levels(side Side) int { return s.side(side).Len() }

func (s *TreeStorage) Depth(maxLevels int) Depth {
	var d Depth
	s.bids.Scan(func(lvl *treeLevel) bool {
		if len(d.Bids) >= maxLevels {
			return false
		}
		d.Bids = append(d.Bids, aggregate(lvl))
		return true
	})
	s.asks.Scan(func(lvl *treeLevel) bool {
		if len(d.Asks) >= maxLevels {
			return false
		}
		d.Asks = append(d.Asks, aggregate(lvl))
		return true
	})
	return d
}

func aggregate(lvl *treeLevel) Level {
	var qty Quantity
	for _, o := range lvl.orders {
		qty = qty.AddSat(o.Remaining())
	}
	return Level{Price: lvl.price, Qty: qty, Orders: len(lvl.orders)}
}

func (s *TreeStorage) Clear() {
	s.bids.Clear()
	s.asks.Clear()
	s.index = make(map[OrderID]*treeLevel)
}
