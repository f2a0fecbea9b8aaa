package feed

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osprey/domain/book"
	"osprey/infra/wire"
	"osprey/service"
)

type fakeSource struct {
	msgs      []kafka.Message
	committed []int64
	closed    bool
}

func (f *fakeSource) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.msgs) == 0 {
		return kafka.Message{}, io.EOF
	}
	msg := f.msgs[0]
	f.msgs = f.msgs[1:]
	return msg, nil
}

func (f *fakeSource) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

func TestRunAppliesIntents(t *testing.T) {
	svc := service.New(book.NewTreeStorage(), zerolog.Nop())
	src := &fakeSource{msgs: []kafka.Message{
		{Offset: 0, Value: wire.EncodeIntent(book.Sell, book.Limit, book.PriceFromFloat(10.00), 5)},
		{Offset: 1, Value: wire.EncodeIntent(book.Buy, book.Limit, book.PriceFromFloat(10.00), 3)},
		{Offset: 2, Value: []byte("garbage")},
		{Offset: 3, Value: wire.EncodeIntent(book.Buy, book.Limit, 0, 0)},
	}}

	r := newReader(src, svc, zerolog.Nop())
	err := r.Run(context.Background())
	assert.ErrorIs(t, err, io.EOF)

	// Two applied, one malformed dropped, one rejected; all committed.
	assert.Equal(t, []int64{0, 1, 2, 3}, src.committed)
	assert.True(t, src.closed)

	st := svc.Stats()
	assert.Equal(t, uint64(1), st.TotalTrades)
	assert.Equal(t, 1, st.RestingOrders)
}

func TestRunStopsOnCancel(t *testing.T) {
	svc := service.New(book.NewTreeStorage(), zerolog.Nop())
	src := &cancelSource{}
	r := newReader(src, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, r.Run(ctx))
	assert.True(t, src.closed)
}

type cancelSource struct {
	closed bool
}

func (c *cancelSource) FetchMessage(ctx context.Context) (kafka.Message, error) {
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (c *cancelSource) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	return nil
}

func (c *cancelSource) Close() error {
	c.closed = true
	return nil
}
