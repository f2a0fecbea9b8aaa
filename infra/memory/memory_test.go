package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	a uint64
	b [3]uint64
}

func pools() map[string]func() Pool[payload] {
	return map[string]func() Pool[payload]{
		"arena": func() Pool[payload] { return NewArena[payload](1 << 10) },
		"slab":  func() Pool[payload] { return NewSlabArena[payload]() },
	}
}

func TestAllocFreeReuse(t *testing.T) {
	for name, mk := range pools() {
		t.Run(name, func(t *testing.T) {
			p := mk()
			h, ok := p.Alloc()
			require.True(t, ok)
			require.NotEqual(t, NilHandle, h)

			p.At(h).a = 42
			assert.Equal(t, uint64(42), p.At(h).a)
			assert.Equal(t, 1, p.InUse())

			p.Free(h)
			assert.Equal(t, 0, p.InUse())

			// The freed slot comes back zeroed.
			h2, ok := p.Alloc()
			require.True(t, ok)
			assert.Equal(t, uint64(0), p.At(h2).a)
		})
	}
}

func TestArenaExhaustion(t *testing.T) {
	a := NewArena[payload](4)
	handles := make([]Handle, 0, 4)
	for i := 0; i < 4; i++ {
		h, ok := a.Alloc()
		require.True(t, ok)
		handles = append(handles, h)
	}
	_, ok := a.Alloc()
	assert.False(t, ok)
	assert.Equal(t, 0, a.Available())

	a.Free(handles[2])
	h, ok := a.Alloc()
	require.True(t, ok)
	assert.Equal(t, handles[2], h)
}

func TestHandlesDistinct(t *testing.T) {
	for name, mk := range pools() {
		t.Run(name, func(t *testing.T) {
			p := mk()
			seen := make(map[Handle]bool)
			for i := 0; i < 512; i++ {
				h, ok := p.Alloc()
				require.True(t, ok)
				require.False(t, seen[h])
				seen[h] = true
			}
		})
	}
}

func TestSlabGrowsPastOneSlab(t *testing.T) {
	p := NewSlabArena[payload]()
	n := slabSize*2 + 17
	handles := make([]Handle, 0, n)
	for i := 0; i < n; i++ {
		h, ok := p.Alloc()
		require.True(t, ok)
		p.At(h).a = uint64(i)
		handles = append(handles, h)
	}
	assert.GreaterOrEqual(t, p.Cap(), n)
	for i, h := range handles {
		require.Equal(t, uint64(i), p.At(h).a)
	}
}

func TestConcurrentAllocFree(t *testing.T) {
	for name, mk := range pools() {
		t.Run(name, func(t *testing.T) {
			p := mk()
			const workers = 8
			const iters = 2000

			var wg sync.WaitGroup
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					local := make([]Handle, 0, 8)
					for i := 0; i < iters; i++ {
						h, ok := p.Alloc()
						if !ok {
							continue
						}
						p.At(h).a = uint64(h)
						local = append(local, h)
						if len(local) == cap(local) {
							for _, lh := range local {
								assert.Equal(t, uint64(lh), p.At(lh).a)
								p.Free(lh)
							}
							local = local[:0]
						}
					}
					for _, lh := range local {
						p.Free(lh)
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, 0, p.InUse())
		})
	}
}

func BenchmarkArenaAllocFree(b *testing.B) {
	a := NewArena[payload](1 << 16)
	for i := 0; i < b.N; i++ {
		h, _ := a.Alloc()
		a.Free(h)
	}
}
