// Package service exposes the order book to transports. It owns the
// event pipe: every book event is pushed onto a lock-free queue that
// the broadcaster drains, so the matching path never blocks on
// downstream publication.
package service

import (
	"context"

	"github.com/rs/zerolog"

	"osprey/domain/book"
	"osprey/infra/concurrent"
)

// OrderService wraps a Book with logging and the outbound event queue.
type OrderService struct {
	log    zerolog.Logger
	book   *book.Book
	events *concurrent.Queue[book.Event]
}

// New builds the service over a storage backend. The book is
// constructed here so its event sink feeds the service's queue.
func New(store book.Storage, log zerolog.Logger, opts ...book.Option) *OrderService {
	s := &OrderService{
		log:    log.With().Str("component", "order_service").Logger(),
		events: concurrent.NewQueue[book.Event](),
	}
	opts = append(opts, book.WithEventSink(book.EventSinkFunc(s.events.Enqueue)))
	s.book = book.New(store, opts...)
	return s
}

// Book exposes the underlying book for read paths.
func (s *OrderService) Book() *book.Book { return s.book }

// Events returns the queue the broadcaster consumes. Single consumer.
func (s *OrderService) Events() *concurrent.Queue[book.Event] { return s.events }

// Place submits an order and returns its match outcome.
func (s *OrderService) Place(ctx context.Context, side book.Side, typ book.OrderType, price book.Price, qty book.Quantity) (book.MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return book.MatchResult{}, err
	}
	res, err := s.book.AddOrder(side, typ, price, qty)
	if err != nil {
		s.log.Warn().Err(err).
			Stringer("side", side).
			Stringer("type", typ).
			Stringer("price", price).
			Uint64("qty", uint64(qty)).
			Msg("order rejected")
		return res, err
	}
	s.log.Debug().
		Uint64("order_id", uint64(res.OrderID)).
		Int("trades", len(res.Trades)).
		Uint64("filled", uint64(res.FilledQty)).
		Bool("rested", res.Rested).
		Msg("order accepted")
	return res, nil
}

// Cancel removes a resting order.
func (s *OrderService) Cancel(ctx context.Context, id book.OrderID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.book.Cancel(id); err != nil {
		s.log.Warn().Err(err).Uint64("order_id", uint64(id)).Msg("cancel failed")
		return err
	}
	s.log.Debug().Uint64("order_id", uint64(id)).Msg("order cancelled")
	return nil
}

// Modify replaces a resting order's price and quantity.
func (s *OrderService) Modify(ctx context.Context, id book.OrderID, price book.Price, qty book.Quantity) (book.MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return book.MatchResult{}, err
	}
	res, err := s.book.Modify(id, price, qty)
	if err != nil {
		s.log.Warn().Err(err).Uint64("order_id", uint64(id)).Msg("modify failed")
		return res, err
	}
	s.log.Debug().
		Uint64("order_id", uint64(id)).
		Stringer("price", price).
		Uint64("qty", uint64(qty)).
		Msg("order modified")
	return res, nil
}

// Depth snapshots the top of the book.
func (s *OrderService) Depth(levels int) book.Depth {
	if levels <= 0 {
		levels = 10
	}
	return s.book.MarketDepth(levels)
}

// Stats is a point-in-time summary of book activity.
type Stats struct {
	RestingOrders int
	TotalTrades   uint64
	TotalVolume   book.Quantity
}

func (s *OrderService) Stats() Stats {
	return Stats{
		RestingOrders: s.book.Size(),
		TotalTrades:   s.book.TotalTrades(),
		TotalVolume:   s.book.TotalVolume(),
	}
}
