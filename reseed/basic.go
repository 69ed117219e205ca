package reseed

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/jangala-dev/seedring/ring"
)

// Basic is the replacing generator of spec §4.6: on each call it either
// lazily constructs an underlying generator from exactly S blocking-read
// bytes, or opportunistically replaces the current one from an exact
// nonblocking poll, then delegates.
type Basic struct {
	r        *ring.Ring
	seedSize int
	factory  Factory

	mu      sync.Mutex
	current *rand.Rand
}

// NewBasic builds a Basic generator pulling S-byte seeds from r.
func NewBasic(r *ring.Ring, seedSize int, factory Factory) *Basic {
	return &Basic{r: r, seedSize: seedSize, factory: factory}
}

// ensureLocked performs the "on each call" policy from spec §4.6 and
// reports whether a (re)seed happened this call, so wrappers such as
// Counting can react to it. Callers must hold b.mu.
func (b *Basic) ensureLocked() (gen *rand.Rand, reseeded bool) {
	if b.current == nil {
		seed := make([]byte, b.seedSize)
		// No underlying generator exists yet: block until S bytes of
		// seed material exist. There is no deadline here by design —
		// spec §4.6 only ever describes this as a blocking read.
		if err := b.r.Read(context.Background(), seed); err != nil {
			panic(err)
		}
		b.current = b.factory(seed)
		return b.current, true
	}

	seed := make([]byte, b.seedSize)
	if ok, _ := b.r.PollExact(seed); ok {
		b.current = b.factory(seed)
		return b.current, true
	}
	return b.current, false
}

// WithGenerator runs fn against the current underlying generator,
// reseeding first per the policy above, holding b's lock for the whole
// call. math/rand/v2's ChaCha8/PCG sources are not safe for concurrent
// use, and Basic's entire point (unlike ThreadLocal) is a generator
// shared across goroutines, so the lock must cover the draw itself, not
// just the swap of b.current — handing out the *rand.Rand pointer and
// unlocking before the caller draws from it would let two goroutines
// call methods on the same generator concurrently. It reports whether
// this call (re)seeded the generator.
func (b *Basic) WithGenerator(fn func(gen *rand.Rand)) (reseeded bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	gen, reseeded := b.ensureLocked()
	fn(gen)
	return reseeded
}

// Uint64 delegates to the current underlying generator, reseeding first
// per the policy above.
func (b *Basic) Uint64() uint64 {
	var v uint64
	b.WithGenerator(func(gen *rand.Rand) { v = gen.Uint64() })
	return v
}

// Int64 delegates to the current underlying generator.
func (b *Basic) Int64() int64 {
	var v int64
	b.WithGenerator(func(gen *rand.Rand) { v = gen.Int64() })
	return v
}

// Float64 delegates to the current underlying generator.
func (b *Basic) Float64() float64 {
	var v float64
	b.WithGenerator(func(gen *rand.Rand) { v = gen.Float64() })
	return v
}

// IntN delegates to the current underlying generator.
func (b *Basic) IntN(n int) int {
	var v int
	b.WithGenerator(func(gen *rand.Rand) { v = gen.IntN(n) })
	return v
}

// Int64N delegates to the current underlying generator.
func (b *Basic) Int64N(n int64) int64 {
	var v int64
	b.WithGenerator(func(gen *rand.Rand) { v = gen.Int64N(n) })
	return v
}
