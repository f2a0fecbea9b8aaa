// Package feed moves order intents over Kafka: a Writer publishes
// framed intents, a Reader consumes them and plays them into the
// order service. The reader commits offsets only after an intent has
// been applied, so intents survive a consumer crash.
package feed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"osprey/domain/book"
	"osprey/infra/wire"
)

// Placer is the slice of the order service the reader needs.
type Placer interface {
	Place(ctx context.Context, side book.Side, typ book.OrderType, price book.Price, qty book.Quantity) (book.MatchResult, error)
}

// Writer publishes order intents.
type Writer struct {
	w *kafka.Writer
}

func NewWriter(brokers []string, topic string) *Writer {
	return &Writer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Publish sends one intent.
func (w *Writer) Publish(ctx context.Context, side book.Side, typ book.OrderType, price book.Price, qty book.Quantity) error {
	return w.w.WriteMessages(ctx, kafka.Message{
		Value: wire.EncodeIntent(side, typ, price, qty),
	})
}

func (w *Writer) Close() error { return w.w.Close() }

// fetcher is the slice of kafka.Reader the loop uses.
type fetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Reader consumes order intents and applies them to a Placer.
type Reader struct {
	log    zerolog.Logger
	source fetcher
	placer Placer
}

func NewReader(brokers []string, groupID, topic string, placer Placer, log zerolog.Logger) *Reader {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10 << 20,
	})
	return newReader(r, placer, log)
}

func newReader(source fetcher, placer Placer, log zerolog.Logger) *Reader {
	return &Reader{
		log:    log.With().Str("component", "feed").Logger(),
		source: source,
		placer: placer,
	}
}

// Run consumes until ctx is canceled. Malformed intents are logged
// and committed so they never wedge the partition; placement errors
// are business rejections and are committed as handled.
func (r *Reader) Run(ctx context.Context) error {
	defer r.source.Close()
	for {
		msg, err := r.source.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		intent, err := wire.DecodeIntent(msg.Value)
		if err != nil {
			r.log.Warn().Err(err).Int64("offset", msg.Offset).Msg("dropping malformed intent")
		} else if _, err := r.placer.Place(ctx, intent.Side, intent.Type, intent.Price, intent.Qty); err != nil {
			r.log.Debug().Err(err).Int64("offset", msg.Offset).Msg("intent rejected")
		}

		if err := r.source.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}
