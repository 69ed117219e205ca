package reseed

import (
	"context"

	"github.com/jangala-dev/seedring/ring"
)

// Jumpable is the jumpable-generator contract of spec §6: a generator
// that can be advanced by exactly 2^k steps, plus the usual
// random-number accessors Jump delegates to.
type Jumpable interface {
	JumpPowerOfTwo(k int)
	Uint64() uint64
}

// JumpFactory builds a fresh Jumpable from S bytes of seed, the
// jump-reseeded analogue of Factory.
type JumpFactory func(seed []byte) Jumpable

// PCGJumpFactory returns a JumpFactory producing PCGJump generators
// seeded from 8 bytes.
func PCGJumpFactory() JumpFactory {
	return func(seed []byte) Jumpable { return NewPCGJump(seed) }
}

// Jump is the jump-reseeded generator of spec §4.9: instead of
// replacing the underlying generator wholesale, each successful poll
// walks the seed's bits and advances the generator by 2^i steps for
// every set bit at position i, treating the seed as a jump distance
// rather than replacement state.
type Jump struct {
	r        *ring.Ring
	seedSize int
	factory  JumpFactory
	current  Jumpable
}

// NewJump builds a Jump generator pulling S-byte seeds from r.
func NewJump(r *ring.Ring, seedSize int, factory JumpFactory) *Jump {
	return &Jump{r: r, seedSize: seedSize, factory: factory}
}

func (j *Jump) ensure() Jumpable {
	if j.current == nil {
		seed := make([]byte, j.seedSize)
		if err := j.r.Read(context.Background(), seed); err != nil {
			panic(err)
		}
		j.current = j.factory(seed)
		return j.current
	}
	seed := make([]byte, j.seedSize)
	if ok, _ := j.r.PollExact(seed); ok {
		walkAndJump(j.current, seed)
	}
	return j.current
}

// walkAndJump implements spec §9's decided resolution of the jump bit
// walk: for each set bit at absolute position p = 8*byteIndex+bitIndex
// (bit 0 the most significant bit of each byte), call
// JumpPowerOfTwo(p).
func walkAndJump(g Jumpable, seed []byte) {
	for byteIndex, b := range seed {
		for bitIndex := 0; bitIndex < 8; bitIndex++ {
			if b&(0x80>>uint(bitIndex)) != 0 {
				g.JumpPowerOfTwo(8*byteIndex + bitIndex)
			}
		}
	}
}

// Uint64 delegates to the current underlying generator, jump-reseeding
// first per the policy above.
func (j *Jump) Uint64() uint64 { return j.ensure().Uint64() }

// Split returns an independent Jump generator seeded from a fresh S
// bytes drawn from the ring, per spec §9's decided resolution of
// Split's open question.
func (j *Jump) Split() *Jump {
	seed := make([]byte, j.seedSize)
	if err := j.r.Read(context.Background(), seed); err != nil {
		panic(err)
	}
	return &Jump{r: j.r, seedSize: j.seedSize, factory: j.factory, current: j.factory(seed)}
}
