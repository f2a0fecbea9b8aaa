package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osprey/domain/book"
)

func TestTaskRunsOnlyWhenResumed(t *testing.T) {
	steps := 0
	task := NewTask(func(y *Yielder) (int, error) {
		for i := 0; i < 3; i++ {
			steps++
			y.Yield()
		}
		return steps, nil
	})

	assert.Equal(t, StateNew, task.State())
	assert.Equal(t, 0, steps)

	require.Equal(t, StateSuspended, task.Resume())
	assert.Equal(t, 1, steps)
	require.Equal(t, StateSuspended, task.Resume())
	assert.Equal(t, 2, steps)
	require.Equal(t, StateSuspended, task.Resume())
	require.Equal(t, StateDone, task.Resume())

	v, err := task.Result()
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestTaskResultBeforeDone(t *testing.T) {
	task := NewTask(func(y *Yielder) (int, error) {
		y.Yield()
		return 1, nil
	})
	_, err := task.Result()
	assert.Error(t, err)
}

func TestTaskResumeAfterDone(t *testing.T) {
	task := NewTask(func(y *Yielder) (string, error) {
		return "ok", nil
	})
	require.Equal(t, StateDone, task.Resume())
	assert.Equal(t, StateDone, task.Resume())
	v, err := task.Result()
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestTaskCancelBeforeStart(t *testing.T) {
	ran := false
	task := NewTask(func(y *Yielder) (int, error) {
		ran = true
		return 0, nil
	})
	task.Cancel()
	assert.Equal(t, StateCanceled, task.State())
	assert.Equal(t, StateCanceled, task.Resume())
	assert.False(t, ran)
	_, err := task.Result()
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestTaskCancelRunsDefers(t *testing.T) {
	cleaned := false
	task := NewTask(func(y *Yielder) (int, error) {
		defer func() { cleaned = true }()
		for {
			y.Yield()
		}
	})
	require.Equal(t, StateSuspended, task.Resume())
	task.Cancel()
	assert.Equal(t, StateCanceled, task.State())
	assert.True(t, cleaned)
	_, err := task.Result()
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestSchedulerRoundRobin(t *testing.T) {
	var order []string
	mk := func(name string, yields int) *Task[int] {
		return NewTask(func(y *Yielder) (int, error) {
			for i := 0; i < yields; i++ {
				order = append(order, name)
				y.Yield()
			}
			return yields, nil
		})
	}

	var s Scheduler
	s.Add(mk("a", 2))
	s.Add(mk("b", 3))
	s.Add(mk("c", 1))
	s.Run()

	assert.Equal(t, []string{"a", "b", "c", "a", "b", "b"}, order)
	assert.Equal(t, 0, s.Len())
}

func TestSchedulerCancelAll(t *testing.T) {
	task := NewTask(func(y *Yielder) (int, error) {
		for {
			y.Yield()
		}
	})
	var s Scheduler
	s.Add(task)
	require.True(t, s.Step())
	s.CancelAll()
	assert.Equal(t, StateCanceled, task.State())
	assert.Equal(t, 0, s.Len())
}

func TestAsyncBookPumpsOrders(t *testing.T) {
	b := book.New(book.NewTreeStorage())
	a := NewAsyncBook(b, 16)

	require.True(t, a.Submit(book.BatchOrder{Side: book.Sell, Type: book.Limit, Price: book.PriceFromFloat(10.00), Qty: 5}))
	require.True(t, a.Submit(book.BatchOrder{Side: book.Buy, Type: book.Limit, Price: book.PriceFromFloat(10.00), Qty: 3}))

	var s Scheduler
	s.Add(a.Pump())

	// Nothing is applied until the scheduler runs the pump.
	assert.Equal(t, 0, b.Size())
	s.Step()
	s.Step()

	a.Close()
	s.Run()

	first, ok := a.Poll()
	require.True(t, ok)
	assert.True(t, first.Rested)
	second, ok := a.Poll()
	require.True(t, ok)
	require.Len(t, second.Trades, 1)
	assert.Equal(t, book.PriceFromFloat(10.00), second.Trades[0].Price)

	applied, err := a.Pump().Result()
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
}

func TestAsyncBookBackpressure(t *testing.T) {
	b := book.New(book.NewTreeStorage())
	a := NewAsyncBook(b, 2)

	require.True(t, a.Submit(book.BatchOrder{Side: book.Buy, Type: book.Limit, Price: 100, Qty: 1}))
	require.True(t, a.Submit(book.BatchOrder{Side: book.Buy, Type: book.Limit, Price: 100, Qty: 1}))
	assert.False(t, a.Submit(book.BatchOrder{Side: book.Buy, Type: book.Limit, Price: 100, Qty: 1}))

	var s Scheduler
	s.Add(a.Pump())
	s.Step()

	// The pump drained one slot, so intake has room again.
	assert.True(t, a.Submit(book.BatchOrder{Side: book.Buy, Type: book.Limit, Price: 100, Qty: 1}))

	// Drain results while stepping so the result ring never wedges
	// the pump.
	a.Close()
	for s.Step() {
		for {
			if _, ok := a.Poll(); !ok {
				break
			}
		}
	}
	assert.Equal(t, 3, b.Size())
}
