package reseed

import (
	"context"
	"math/rand/v2"

	"github.com/jangala-dev/seedring/ring"
)

// seedSource is the minimal surface ThreadLocal needs from its seed
// provider: a blocking exact fill and a nonblocking exact poll. *ring.Ring
// already satisfies this; see splittableSource below for the
// splittable-seeded variant of spec §4.7.
type seedSource interface {
	Read(ctx context.Context, dst []byte) error
	PollExact(dst []byte) (bool, error)
}

// Splittable is a seed source that can itself be split into an
// independent stream, used by ThreadLocal's splittable-seeded variant
// instead of the ring (spec §4.7).
type Splittable interface {
	Uint64() uint64
	Split() Splittable
}

// splittableSource adapts a Splittable to the seedSource surface: it
// never blocks and never fails to produce bytes, since a splittable
// generator has no notion of "not enough entropy yet".
type splittableSource struct{ s Splittable }

func (ss splittableSource) Read(_ context.Context, dst []byte) error {
	ss.fill(dst)
	return nil
}

func (ss splittableSource) PollExact(dst []byte) (bool, error) {
	ss.fill(dst)
	return true, nil
}

func (ss splittableSource) fill(dst []byte) {
	for i := 0; i < len(dst); i += 8 {
		v := ss.s.Uint64()
		for j := 0; j < 8 && i+j < len(dst); j++ {
			dst[i+j] = byte(v >> (8 * j))
		}
	}
}

// ThreadLocal is the per-thread replacing generator of spec §4.7. Go
// has no public goroutine-local storage, so each instance is meant to
// be owned by exactly one goroutine at a time (spec §9's "stack-local
// generator handed down through the call chain"); Split returns the
// same adapter since that goroutine already has its own generator.
type ThreadLocal struct {
	src      seedSource
	seedSize int
	factory  Factory
	current  *rand.Rand
}

// NewThreadLocal builds a ThreadLocal generator pulling S-byte seeds
// from r.
func NewThreadLocal(r *ring.Ring, seedSize int, factory Factory) *ThreadLocal {
	return &ThreadLocal{src: r, seedSize: seedSize, factory: factory}
}

// NewThreadLocalFromSplittable builds the explicit splittable-seeded
// variant of spec §4.7, drawing seed bytes from s instead of a ring.
func NewThreadLocalFromSplittable(s Splittable, seedSize int, factory Factory) *ThreadLocal {
	return &ThreadLocal{src: splittableSource{s: s}, seedSize: seedSize, factory: factory}
}

func (t *ThreadLocal) ensure() *rand.Rand {
	if t.current == nil {
		seed := make([]byte, t.seedSize)
		if err := t.src.Read(context.Background(), seed); err != nil {
			panic(err)
		}
		t.current = t.factory(seed)
		return t.current
	}
	seed := make([]byte, t.seedSize)
	if ok, _ := t.src.PollExact(seed); ok {
		t.current = t.factory(seed)
	}
	return t.current
}

// Split returns the same adapter: each goroutine already owns its own
// generator, so there is nothing to split (spec §4.7).
func (t *ThreadLocal) Split() *ThreadLocal { return t }

func (t *ThreadLocal) Uint64() uint64     { return t.ensure().Uint64() }
func (t *ThreadLocal) Int64() int64       { return t.ensure().Int64() }
func (t *ThreadLocal) Float64() float64   { return t.ensure().Float64() }
func (t *ThreadLocal) IntN(n int) int     { return t.ensure().IntN(n) }
func (t *ThreadLocal) Int64N(n int64) int64 { return t.ensure().Int64N(n) }
