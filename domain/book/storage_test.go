package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageInsertRemove(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := mk()
			o := Order{ID: 1, Side: Buy, Price: 100, Qty: 5}
			require.True(t, st.Insert(&o))
			assert.False(t, st.Insert(&o), "duplicate id must be refused")
			assert.Equal(t, 1, st.Len())
			assert.Equal(t, 1, st.Levels(Buy))

			got, ok := st.Get(1)
			require.True(t, ok)
			assert.Equal(t, Price(100), got.Price)

			removed, ok := st.Remove(1)
			require.True(t, ok)
			assert.Equal(t, OrderID(1), removed.ID)
			assert.Equal(t, 0, st.Len())
			// The emptied level is gone too.
			assert.Equal(t, 0, st.Levels(Buy))

			_, ok = st.Remove(1)
			assert.False(t, ok)
		})
	}
}

func TestStoragePopFrontWalksLevels(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := mk()
			require.True(t, st.Insert(&Order{ID: 1, Side: Sell, Price: 101, Qty: 1}))
			require.True(t, st.Insert(&Order{ID: 2, Side: Sell, Price: 100, Qty: 1}))
			require.True(t, st.Insert(&Order{ID: 3, Side: Sell, Price: 100, Qty: 1}))

			var ids []OrderID
			for {
				o, ok := st.PopFront(Sell)
				if !ok {
					break
				}
				ids = append(ids, o.ID)
			}
			// Best price first, FIFO within the level.
			assert.Equal(t, []OrderID{2, 3, 1}, ids)
		})
	}
}

func TestStorageBestPerSide(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := mk()
			require.True(t, st.Insert(&Order{ID: 1, Side: Buy, Price: 99, Qty: 1}))
			require.True(t, st.Insert(&Order{ID: 2, Side: Buy, Price: 101, Qty: 1}))
			require.True(t, st.Insert(&Order{ID: 3, Side: Sell, Price: 105, Qty: 1}))
			require.True(t, st.Insert(&Order{ID: 4, Side: Sell, Price: 103, Qty: 1}))

			bid, ok := st.Best(Buy)
			require.True(t, ok)
			assert.Equal(t, Price(101), bid)
			ask, ok := st.Best(Sell)
			require.True(t, ok)
			assert.Equal(t, Price(103), ask)
		})
	}
}

func TestStorageClear(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := mk()
			for i := 1; i <= 10; i++ {
				require.True(t, st.Insert(&Order{ID: OrderID(i), Side: Buy, Price: Price(100 + i), Qty: 1}))
			}
			st.Clear()
			assert.Equal(t, 0, st.Len())
			_, ok := st.Best(Buy)
			assert.False(t, ok)

			// Capacity is reusable after a clear.
			require.True(t, st.Insert(&Order{ID: 11, Side: Buy, Price: 100, Qty: 1}))
			assert.Equal(t, 1, st.Len())
		})
	}
}

func TestIntrusiveHandleReuse(t *testing.T) {
	st := NewIntrusiveStorage(4)
	for round := 0; round < 10; round++ {
		for i := 1; i <= 4; i++ {
			id := OrderID(round*4 + i)
			require.True(t, st.Insert(&Order{ID: id, Side: Sell, Price: Price(100 + i), Qty: 2}))
		}
		require.False(t, st.Insert(&Order{ID: 9999, Side: Sell, Price: 100, Qty: 1}))
		for i := 1; i <= 4; i++ {
			_, ok := st.Remove(OrderID(round*4 + i))
			require.True(t, ok)
		}
	}
	assert.Equal(t, 0, st.Len())
}
