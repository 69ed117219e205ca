package reseed

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/jangala-dev/seedring/ring"
)

// Counting wraps Basic and tracks an advisory, signed entropy-bits
// counter: S·8 at construction and after every reseed, decremented by
// the bit width of whatever was drawn (spec §4.8). The counter never
// gates operation; it exists for callers that want to force a reseed.
//
// Per spec §9's open question on float debits: Float64 is specified by
// math/rand/v2 to consume a 53-bit mantissa draw, so this wrapper
// debits 53 bits for calls made through it. Calls made directly against
// the underlying generator returned by a Factory are not observed here
// and make no claim on the counter.
type Counting struct {
	basic    *Basic
	seedSize int
	bits     atomic.Int64
}

// NewCounting builds a Counting generator pulling S-byte seeds from r.
func NewCounting(r *ring.Ring, seedSize int, factory Factory) *Counting {
	c := &Counting{basic: NewBasic(r, seedSize, factory), seedSize: seedSize}
	c.bits.Store(int64(seedSize) * 8)
	return c
}

// EntropyBits reports the advisory remaining entropy-bit count. It may
// go negative; callers that want to force a reseed can watch for that.
func (c *Counting) EntropyBits() int64 { return c.bits.Load() }

func (c *Counting) debit(reseeded bool, n int64) {
	if reseeded {
		c.bits.Store(int64(c.seedSize) * 8)
	}
	c.bits.Add(-n)
}

// Bool consumes 1 bit.
func (c *Counting) Bool() bool {
	var v bool
	reseeded := c.basic.WithGenerator(func(g *rand.Rand) { v = g.Uint64()&1 == 1 })
	c.debit(reseeded, 1)
	return v
}

// Bytes consumes 8*len(p) bits, filling p from the underlying generator.
func (c *Counting) Bytes(p []byte) {
	reseeded := c.basic.WithGenerator(func(g *rand.Rand) {
		for i := 0; i < len(p); i += 8 {
			v := g.Uint64()
			for j := 0; j < 8 && i+j < len(p); j++ {
				p[i+j] = byte(v >> (8 * j))
			}
		}
	})
	c.debit(reseeded, 8*int64(len(p)))
}

// Uint64 consumes 64 bits.
func (c *Counting) Uint64() uint64 {
	var v uint64
	reseeded := c.basic.WithGenerator(func(g *rand.Rand) { v = g.Uint64() })
	c.debit(reseeded, 64)
	return v
}

// Int64 consumes 64 bits.
func (c *Counting) Int64() int64 {
	var v int64
	reseeded := c.basic.WithGenerator(func(g *rand.Rand) { v = g.Int64() })
	c.debit(reseeded, 64)
	return v
}

// Uint32 consumes 32 bits.
func (c *Counting) Uint32() uint32 {
	var v uint32
	reseeded := c.basic.WithGenerator(func(g *rand.Rand) { v = g.Uint32() })
	c.debit(reseeded, 32)
	return v
}

// Int32 consumes 32 bits.
func (c *Counting) Int32() int32 {
	var v int32
	reseeded := c.basic.WithGenerator(func(g *rand.Rand) { v = g.Int32() })
	c.debit(reseeded, 32)
	return v
}

// Float64 consumes 53 bits, the mantissa width math/rand/v2 documents
// for Float64 (spec §9's open question, decided in DESIGN.md).
func (c *Counting) Float64() float64 {
	var v float64
	reseeded := c.basic.WithGenerator(func(g *rand.Rand) { v = g.Float64() })
	c.debit(reseeded, 53)
	return v
}
