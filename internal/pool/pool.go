package pool

// DefaultMaxFree is the number of released instances a Pool retains.
const DefaultMaxFree = 50

// Pool recycles instances of T to avoid allocating on every frame. Get pops
// from the free list or builds a new instance; Release pushes back unless
// the free list is already full, in which case the instance is dropped.
//
// Callers reset borrowed instances themselves. A Pool is owned by a single
// goroutine and is not safe for concurrent use.
type Pool[T any] struct {
	factory func() T
	free    []T
	maxFree int

	created int
	dropped int
}

// New creates a pool with initialSize pre-built instances.
func New[T any](factory func() T, initialSize int) *Pool[T] {
	return NewWithCap(factory, initialSize, DefaultMaxFree)
}

// NewWithCap creates a pool that retains at most maxFree released instances.
func NewWithCap[T any](factory func() T, initialSize, maxFree int) *Pool[T] {
	if maxFree <= 0 {
		maxFree = DefaultMaxFree
	}
	if initialSize > maxFree {
		initialSize = maxFree
	}

	p := &Pool[T]{
		factory: factory,
		free:    make([]T, 0, maxFree),
		maxFree: maxFree,
	}

	for i := 0; i < initialSize; i++ {
		p.free = append(p.free, p.newItem())
	}

	return p
}

func (p *Pool[T]) newItem() T {
	p.created++
	return p.factory()
}

// Get returns a free instance, building a new one if none are available.
func (p *Pool[T]) Get() T {
	n := len(p.free)
	if n == 0 {
		return p.newItem()
	}

	item := p.free[n-1]
	var zero T
	p.free[n-1] = zero
	p.free = p.free[:n-1]
	return item
}

// Release returns item to the free list, dropping it if the list is full.
func (p *Pool[T]) Release(item T) {
	if len(p.free) >= p.maxFree {
		// pool is full
		p.dropped++
		return
	}
	p.free = append(p.free, item)
}

// Len returns the number of instances on the free list.
func (p *Pool[T]) Len() int {
	return len(p.free)
}

// Cap returns the maximum number of retained instances.
func (p *Pool[T]) Cap() int {
	return p.maxFree
}

// Created returns how many instances the factory has built.
func (p *Pool[T]) Created() int {
	return p.created
}

// Dropped returns how many released instances were discarded because the
// free list was full.
func (p *Pool[T]) Dropped() int {
	return p.dropped
}
