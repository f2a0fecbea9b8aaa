package grpcserver

import (
	"context"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"osprey/api/bookpb"
	"osprey/domain/book"
	"osprey/service"
)

func dialTestServer(t *testing.T) OrderServiceClient {
	t.Helper()

	svc := service.New(book.NewTreeStorage(), zerolog.Nop())
	srv := NewGRPCServer(svc, zerolog.Nop())

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewOrderServiceClient(conn)
}

func TestPlaceCancelOverWire(t *testing.T) {
	client := dialTestServer(t)
	ctx := context.Background()

	ask, err := client.PlaceOrder(ctx, &bookpb.Order{
		Side:  bookpb.SideSell,
		Type:  bookpb.TypeLimit,
		Price: int64(book.PriceFromFloat(10.00)),
		Qty:   5,
	})
	require.NoError(t, err)
	assert.True(t, ask.Rested)

	bid, err := client.PlaceOrder(ctx, &bookpb.Order{
		Side:  bookpb.SideBuy,
		Type:  bookpb.TypeLimit,
		Price: int64(book.PriceFromFloat(10.00)),
		Qty:   3,
	})
	require.NoError(t, err)
	require.Len(t, bid.Trades, 1)
	assert.Equal(t, int64(book.PriceFromFloat(10.00)), bid.Trades[0].Price)
	assert.True(t, bid.FullyFilled)

	rep, err := client.CancelOrder(ctx, &bookpb.Cancel{OrderID: ask.OrderID})
	require.NoError(t, err)
	assert.True(t, rep.OK)

	rep, err = client.CancelOrder(ctx, &bookpb.Cancel{OrderID: ask.OrderID})
	require.NoError(t, err)
	assert.False(t, rep.OK)
	assert.NotEmpty(t, rep.Error)
}

func TestInvalidOrderStatusCode(t *testing.T) {
	client := dialTestServer(t)

	_, err := client.PlaceOrder(context.Background(), &bookpb.Order{
		Side: bookpb.SideBuy,
		Type: bookpb.TypeLimit,
		Qty:  0,
	})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestModifyNotFoundStatusCode(t *testing.T) {
	client := dialTestServer(t)

	_, err := client.ModifyOrder(context.Background(), &bookpb.Modify{
		OrderID: 12345,
		Price:   int64(book.PriceFromFloat(1.00)),
		Qty:     1,
	})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestDepthOverWire(t *testing.T) {
	client := dialTestServer(t)
	ctx := context.Background()

	for _, p := range []float64{99.00, 100.00} {
		_, err := client.PlaceOrder(ctx, &bookpb.Order{
			Side:  bookpb.SideBuy,
			Type:  bookpb.TypeLimit,
			Price: int64(book.PriceFromFloat(p)),
			Qty:   2,
		})
		require.NoError(t, err)
	}

	snap, err := client.GetDepth(ctx, &bookpb.DepthQuery{Levels: 5})
	require.NoError(t, err)
	require.Len(t, snap.Bids, 2)
	assert.Equal(t, int64(book.PriceFromFloat(100.00)), snap.Bids[0].Price)
	assert.Equal(t, uint64(2), snap.Bids[0].Qty)
	assert.Empty(t, snap.Asks)
}
