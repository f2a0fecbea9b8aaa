package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osprey/domain/book"
)

func newTestService() *OrderService {
	return New(book.NewTreeStorage(), zerolog.Nop())
}

func TestPlaceAndStats(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	_, err := s.Place(ctx, book.Sell, book.Limit, book.PriceFromFloat(10.00), 5)
	require.NoError(t, err)
	res, err := s.Place(ctx, book.Buy, book.Limit, book.PriceFromFloat(10.00), 3)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)

	st := s.Stats()
	assert.Equal(t, 1, st.RestingOrders)
	assert.Equal(t, uint64(1), st.TotalTrades)
	assert.Equal(t, book.Quantity(3), st.TotalVolume)
}

func TestEventsFlowThroughQueue(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	first, err := s.Place(ctx, book.Sell, book.Limit, book.PriceFromFloat(10.00), 5)
	require.NoError(t, err)
	_, err = s.Place(ctx, book.Buy, book.Limit, book.PriceFromFloat(10.00), 3)
	require.NoError(t, err)
	require.NoError(t, s.Cancel(ctx, first.OrderID))
	assert.ErrorIs(t, s.Cancel(ctx, first.OrderID), book.ErrUnknownOrder)

	var kinds []book.EventKind
	for {
		ev, ok := s.Events().TryDequeue()
		if !ok {
			break
		}
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []book.EventKind{book.EventFill, book.EventCancel}, kinds)
}

func TestPlaceHonorsContext(t *testing.T) {
	s := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Place(ctx, book.Buy, book.Limit, book.PriceFromFloat(1.00), 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Stats().RestingOrders)
}

func TestModifyThroughService(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	res, err := s.Place(ctx, book.Buy, book.Limit, book.PriceFromFloat(9.00), 5)
	require.NoError(t, err)
	_, err = s.Modify(ctx, res.OrderID, book.PriceFromFloat(9.50), 5)
	require.NoError(t, err)

	d := s.Depth(1)
	require.Len(t, d.Bids, 1)
	assert.Equal(t, book.PriceFromFloat(9.50), d.Bids[0].Price)
}
