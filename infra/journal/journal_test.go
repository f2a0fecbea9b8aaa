package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osprey/domain/book"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenMem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func fillEvent(seq uint64) book.Event {
	return book.Event{
		Seq:     seq,
		Kind:    book.EventFill,
		OrderID: book.OrderID(seq * 10),
		Side:    book.Buy,
		Price:   book.PriceFromFloat(100.00),
		Qty:     5,
		Trade: &book.Trade{
			ID:        book.TradeID(seq),
			BuyOrder:  book.OrderID(seq * 10),
			SellOrder: book.OrderID(seq*10 + 1),
			Price:     book.PriceFromFloat(100.00),
			Qty:       5,
		},
	}
}

func TestAppendGet(t *testing.T) {
	j := openTestJournal(t)
	ev := fillEvent(1)
	require.NoError(t, j.Append(ev))

	got, st, err := j.Get(1)
	require.NoError(t, err)
	assert.Equal(t, StatePending, st)
	assert.Equal(t, ev, got)

	_, _, err = j.Get(99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkPublished(t *testing.T) {
	j := openTestJournal(t)
	require.NoError(t, j.Append(fillEvent(1)))
	require.NoError(t, j.MarkPublished(1))

	_, st, err := j.Get(1)
	require.NoError(t, err)
	assert.Equal(t, StatePublished, st)

	assert.ErrorIs(t, j.MarkPublished(42), ErrNotFound)
}

func TestScanPendingInSequenceOrder(t *testing.T) {
	j := openTestJournal(t)
	for _, seq := range []uint64{3, 1, 2, 10} {
		require.NoError(t, j.Append(fillEvent(seq)))
	}
	require.NoError(t, j.MarkPublished(2))

	var seqs []uint64
	require.NoError(t, j.ScanPending(func(ev book.Event) error {
		seqs = append(seqs, ev.Seq)
		return nil
	}))
	assert.Equal(t, []uint64{1, 3, 10}, seqs)
}

func TestPruneKeepsPending(t *testing.T) {
	j := openTestJournal(t)
	for seq := uint64(1); seq <= 5; seq++ {
		require.NoError(t, j.Append(fillEvent(seq)))
	}
	require.NoError(t, j.MarkPublished(1))
	require.NoError(t, j.MarkPublished(2))
	require.NoError(t, j.MarkPublished(4))

	// Prune up to 4: published 1, 2, 4 go, pending 3 stays.
	require.NoError(t, j.Prune(4))

	var left []uint64
	require.NoError(t, j.ScanAll(func(ev book.Event, st State) error {
		left = append(left, ev.Seq)
		return nil
	}))
	assert.Equal(t, []uint64{3, 5}, left)
}
