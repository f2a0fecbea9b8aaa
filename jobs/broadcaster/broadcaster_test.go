package broadcaster

import (
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osprey/domain/book"
	"osprey/infra/concurrent"
	"osprey/infra/journal"
	"osprey/infra/wire"
)

type fakeProducer struct {
	sent    []*sarama.ProducerMessage
	failing bool
	closed  bool
}

func (p *fakeProducer) SendMessage(msg *sarama.ProducerMessage) (int32, int64, error) {
	if p.failing {
		return 0, 0, errors.New("broker unavailable")
	}
	p.sent = append(p.sent, msg)
	return 0, int64(len(p.sent)), nil
}

func (p *fakeProducer) Close() error {
	p.closed = true
	return nil
}

func setup(t *testing.T) (*concurrent.Queue[book.Event], *journal.Journal, *fakeProducer, *Broadcaster) {
	t.Helper()
	jnl, err := journal.OpenMem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = jnl.Close() })

	events := concurrent.NewQueue[book.Event]()
	p := &fakeProducer{}
	b := newWithProducer(events, jnl, p, "book.events", zerolog.Nop())
	return events, jnl, p, b
}

func TestPassPublishesQueuedEvents(t *testing.T) {
	events, jnl, p, b := setup(t)

	events.Enqueue(book.Event{Seq: 1, Kind: book.EventFill, OrderID: 10, Qty: 5})
	events.Enqueue(book.Event{Seq: 2, Kind: book.EventCancel, OrderID: 10, Qty: 2})
	b.pass()

	require.Len(t, p.sent, 2)
	ev, err := wire.DecodeEvent(p.sent[0].Value.(sarama.ByteEncoder))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ev.Seq)
	assert.Equal(t, book.EventFill, ev.Kind)

	_, st, err := jnl.Get(1)
	require.NoError(t, err)
	assert.Equal(t, journal.StatePublished, st)
	_, st, err = jnl.Get(2)
	require.NoError(t, err)
	assert.Equal(t, journal.StatePublished, st)
}

func TestFailedPublishStaysPendingAndRetries(t *testing.T) {
	events, jnl, p, b := setup(t)
	p.failing = true

	events.Enqueue(book.Event{Seq: 1, Kind: book.EventFill, OrderID: 10, Qty: 5})
	b.pass()

	assert.Empty(t, p.sent)
	_, st, err := jnl.Get(1)
	require.NoError(t, err)
	assert.Equal(t, journal.StatePending, st)

	// Broker recovers; the next pass replays the journal entry even
	// though the queue is empty.
	p.failing = false
	b.pass()
	require.Len(t, p.sent, 1)
	_, st, err = jnl.Get(1)
	require.NoError(t, err)
	assert.Equal(t, journal.StatePublished, st)
}

func TestReplayAfterRestart(t *testing.T) {
	_, jnl, p, b := setup(t)

	// A pending entry left behind by a previous run.
	require.NoError(t, jnl.Append(book.Event{Seq: 7, Kind: book.EventFill, OrderID: 3, Qty: 1}))
	b.pass()

	require.Len(t, p.sent, 1)
	key, err := p.sent[0].Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "7", string(key))
}

func TestStartStop(t *testing.T) {
	events, jnl, p, b := setup(t)
	b.interval = time.Millisecond

	b.Start()
	events.Enqueue(book.Event{Seq: 1, Kind: book.EventFill, OrderID: 1, Qty: 1})

	require.Eventually(t, func() bool {
		_, st, err := jnl.Get(1)
		return err == nil && st == journal.StatePublished
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, b.Stop())
	assert.True(t, p.closed)
}
