package grpcserver

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"osprey/api/bookpb"
	"osprey/domain/book"
	"osprey/service"
)

// Server adapts the order service to the wire API.
type Server struct {
	log zerolog.Logger
	svc *service.OrderService
}

func NewServer(svc *service.OrderService, log zerolog.Logger) *Server {
	return &Server{
		log: log.With().Str("component", "grpc").Logger(),
		svc: svc,
	}
}

// NewGRPCServer builds a grpc.Server with the codec installed and the
// order service registered.
func NewGRPCServer(svc *service.OrderService, log zerolog.Logger) *grpc.Server {
	s := grpc.NewServer(grpc.ForceServerCodec(Codec{}))
	RegisterOrderServiceServer(s, NewServer(svc, log))
	return s
}

func (s *Server) PlaceOrder(ctx context.Context, req *bookpb.Order) (*bookpb.OrderAck, error) {
	res, err := s.svc.Place(ctx, book.Side(req.Side), book.OrderType(req.Type), book.Price(req.Price), book.Quantity(req.Qty))
	if err != nil {
		return nil, toStatus(err)
	}
	return toAck(res), nil
}

func (s *Server) CancelOrder(ctx context.Context, req *bookpb.Cancel) (*bookpb.Ack, error) {
	if err := s.svc.Cancel(ctx, book.OrderID(req.OrderID)); err != nil {
		if errors.Is(err, book.ErrUnknownOrder) {
			// Not an RPC failure; the reply carries the outcome.
			return &bookpb.Ack{OK: false, Error: err.Error()}, nil
		}
		return nil, toStatus(err)
	}
	return &bookpb.Ack{OK: true}, nil
}

func (s *Server) ModifyOrder(ctx context.Context, req *bookpb.Modify) (*bookpb.OrderAck, error) {
	res, err := s.svc.Modify(ctx, book.OrderID(req.OrderID), book.Price(req.Price), book.Quantity(req.Qty))
	if err != nil {
		return nil, toStatus(err)
	}
	return toAck(res), nil
}

func (s *Server) GetDepth(ctx context.Context, req *bookpb.DepthQuery) (*bookpb.DepthSnap, error) {
	d := s.svc.Depth(int(req.Levels))
	snap := &bookpb.DepthSnap{}
	for _, lvl := range d.Bids {
		snap.Bids = append(snap.Bids, toLevel(lvl))
	}
	for _, lvl := range d.Asks {
		snap.Asks = append(snap.Asks, toLevel(lvl))
	}
	return snap, nil
}

func toAck(res book.MatchResult) *bookpb.OrderAck {
	ack := &bookpb.OrderAck{
		OrderID:     uint64(res.OrderID),
		Filled:      uint64(res.FilledQty),
		Remaining:   uint64(res.RemainingQty),
		FullyFilled: res.FullyFilled,
		Rested:      res.Rested,
	}
	for _, t := range res.Trades {
		ack.Trades = append(ack.Trades, bookpb.Trade{
			ID:        uint64(t.ID),
			BuyOrder:  uint64(t.BuyOrder),
			SellOrder: uint64(t.SellOrder),
			Price:     int64(t.Price),
			Qty:       uint64(t.Qty),
			Timestamp: t.Timestamp,
		})
	}
	return ack
}

func toLevel(lvl book.Level) bookpb.Level {
	return bookpb.Level{
		Price:  int64(lvl.Price),
		Qty:    uint64(lvl.Qty),
		Orders: uint32(lvl.Orders),
	}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, book.ErrInvalidQuantity), errors.Is(err, book.ErrInvalidPrice), errors.Is(err, book.ErrDuplicateOrder):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, book.ErrUnknownOrder):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, book.ErrBookFull):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
