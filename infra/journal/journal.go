// Package journal persists book events in an outbox ahead of
// publication. An event is appended as pending when the book emits it
// and marked published once the broadcaster has handed it to the
// downstream broker, so a crash between the two replays the event
// instead of losing it.
package journal

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"osprey/domain/book"
	"osprey/infra/wire"
)

// State of an outbox entry.
type State uint8

const (
	StatePending State = iota
	StatePublished
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StatePublished:
		return "PUBLISHED"
	default:
		return "UNKNOWN"
	}
}

var ErrNotFound = errors.New("journal: event not found")

const keyPrefix = "evt/"

// Journal is the pebble-backed outbox. Entries are keyed by event
// sequence number, so iteration order is publication order.
type Journal struct {
	db *pebble.DB
}

// Open opens or creates a journal at dir.
func Open(dir string) (*Journal, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", dir, err)
	}
	return &Journal{db: db}, nil
}

// OpenMem opens an in-memory journal. Used in tests.
func OpenMem() (*Journal, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, fmt.Errorf("journal: open in-memory: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Append stores ev as a pending outbox entry, synced before return.
func (j *Journal) Append(ev book.Event) error {
	val := make([]byte, 0, 64)
	val = append(val, byte(StatePending))
	val = append(val, wire.EncodeEvent(ev)...)
	return j.db.Set(keyFor(ev.Seq), val, pebble.Sync)
}

// MarkPublished flips an entry to published.
func (j *Journal) MarkPublished(seq uint64) error {
	key := keyFor(seq)
	val, closer, err := j.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	updated := make([]byte, len(val))
	updated[0] = byte(StatePublished)
	copy(updated[1:], val[1:])
	closer.Close()
	return j.db.Set(key, updated, pebble.Sync)
}

// Get returns one entry and its state.
func (j *Journal) Get(seq uint64) (book.Event, State, error) {
	val, closer, err := j.db.Get(keyFor(seq))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return book.Event{}, 0, ErrNotFound
		}
		return book.Event{}, 0, err
	}
	defer closer.Close()
	return decodeEntry(val)
}

// ScanPending visits pending entries in sequence order.
func (j *Journal) ScanPending(fn func(ev book.Event) error) error {
	return j.scan(StatePending, fn)
}

// ScanAll visits every entry in sequence order.
func (j *Journal) ScanAll(fn func(ev book.Event, st State) error) error {
	iter, err := j.newIter()
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.First(); iter.Valid(); iter.Next() {
		ev, st, err := decodeEntry(iter.Value())
		if err != nil {
			return err
		}
		if err := fn(ev, st); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Prune deletes published entries up to and including seq.
func (j *Journal) Prune(seq uint64) error {
	iter, err := j.newIter()
	if err != nil {
		return err
	}
	defer iter.Close()
	batch := j.db.NewBatch()
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		if id > seq {
			break
		}
		if State(iter.Value()[0]) != StatePublished {
			continue
		}
		if err := batch.Delete(iter.Key(), nil); err != nil {
			return err
		}
	}
	if err := iter.Error(); err != nil {
		return err
	}
	return batch.Commit(pebble.Sync)
}

func (j *Journal) scan(want State, fn func(ev book.Event) error) error {
	iter, err := j.newIter()
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.First(); iter.Valid(); iter.Next() {
		val := iter.Value()
		if len(val) == 0 || State(val[0]) != want {
			continue
		}
		ev, _, err := decodeEntry(val)
		if err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (j *Journal) newIter() (*pebble.Iterator, error) {
	return j.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
}

func decodeEntry(val []byte) (book.Event, State, error) {
	if len(val) < 1 {
		return book.Event{}, 0, errors.New("journal: empty entry")
	}
	ev, err := wire.DecodeEvent(val[1:])
	if err != nil {
		return book.Event{}, 0, err
	}
	return ev, State(val[0]), nil
}

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

func parseKey(b []byte) (uint64, error) {
	var id uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte(keyPrefix))), "%d", &id)
	return id, err
}
