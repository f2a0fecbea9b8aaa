// Package broadcaster publishes book events downstream. Events flow
// from the matching path into a lock-free queue; the broadcaster
// journals each one as pending, publishes it to Kafka, then marks it
// published. Pending entries left by a crash are replayed on the next
// pass, so delivery is at-least-once and consumers dedupe by sequence
// number.
package broadcaster

import (
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
	"gopkg.in/tomb.v2"

	"osprey/domain/book"
	"osprey/infra/concurrent"
	"osprey/infra/journal"
	"osprey/infra/wire"
)

// producer is the slice of sarama.SyncProducer the broadcaster uses.
type producer interface {
	SendMessage(msg *sarama.ProducerMessage) (partition int32, offset int64, err error)
	Close() error
}

// Broadcaster drains the event queue into the journal and Kafka.
type Broadcaster struct {
	log      zerolog.Logger
	events   *concurrent.Queue[book.Event]
	journal  *journal.Journal
	producer producer
	topic    string
	interval time.Duration
	t        tomb.Tomb
}

// New connects a broadcaster to a Kafka cluster.
func New(events *concurrent.Queue[book.Event], jnl *journal.Journal, brokers []string, topic string, log zerolog.Logger) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("broadcaster: connect %v: %w", brokers, err)
	}
	return newWithProducer(events, jnl, p, topic, log), nil
}

func newWithProducer(events *concurrent.Queue[book.Event], jnl *journal.Journal, p producer, topic string, log zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		log:      log.With().Str("component", "broadcaster").Logger(),
		events:   events,
		journal:  jnl,
		producer: p,
		topic:    topic,
		interval: 250 * time.Millisecond,
	}
}

// Start begins the publish loop.
func (b *Broadcaster) Start() {
	b.t.Go(b.loop)
}

// Stop drains once more, stops the loop and closes the producer.
func (b *Broadcaster) Stop() error {
	b.t.Kill(nil)
	err := b.t.Wait()
	if cerr := b.producer.Close(); err == nil {
		err = cerr
	}
	return err
}

func (b *Broadcaster) loop() error {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.t.Dying():
			b.pass()
			return nil
		case <-ticker.C:
			b.pass()
		}
	}
}

// pass journals everything queued since the last tick, then publishes
// all pending journal entries.
func (b *Broadcaster) pass() {
	for {
		ev, ok := b.events.TryDequeue()
		if !ok {
			break
		}
		if err := b.journal.Append(ev); err != nil {
			b.log.Error().Err(err).Uint64("seq", ev.Seq).Msg("journal append failed")
			return
		}
	}

	err := b.journal.ScanPending(func(ev book.Event) error {
		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.StringEncoder(strconv.FormatUint(ev.Seq, 10)),
			Value: sarama.ByteEncoder(wire.EncodeEvent(ev)),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			// Left pending, retried next pass.
			b.log.Warn().Err(err).Uint64("seq", ev.Seq).Msg("publish failed")
			return nil
		}
		return b.journal.MarkPublished(ev.Seq)
	})
	if err != nil {
		b.log.Error().Err(err).Msg("pending scan failed")
	}
}
