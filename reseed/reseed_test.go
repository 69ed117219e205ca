package reseed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jangala-dev/seedring/ring"
)

func fillRing(t *testing.T, r *ring.Ring, n int) {
	t.Helper()
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i)
	}
	written := 0
	for written < n {
		k, err := r.Offer(buf[written:])
		require.NoError(t, err)
		written += k
	}
}

func TestBasicLazyInitAndReseed(t *testing.T) {
	r, err := ring.New(1024)
	require.NoError(t, err)
	fillRing(t, r, 512)

	b := NewBasic(r, DefaultSeedSize, ChaCha8Factory())
	first := b.Uint64()
	assert.NotZero(t, first) // astronomically unlikely to be zero

	// Drain the rest without enough left for a full reseed, then refill.
	drain := make([]byte, 1024)
	r.Poll(drain)
	fillRing(t, r, DefaultSeedSize)

	_ = b.Uint64() // should reseed opportunistically without blocking
}

func TestBasicDoesNotBlockWhenNoReseedAvailable(t *testing.T) {
	r, err := ring.New(64)
	require.NoError(t, err)
	fillRing(t, r, DefaultSeedSize)

	b := NewBasic(r, DefaultSeedSize, ChaCha8Factory())
	b.Uint64() // consumes the only available seed to construct

	done := make(chan struct{})
	go func() {
		b.Uint64() // ring now empty; must not block
		close(done)
	}()
	select {
	case <-done:
	case <-timeoutChan():
		t.Fatal("Basic.Uint64 blocked when no reseed material was available")
	}
}

func TestThreadLocalSplitReturnsSameAdapter(t *testing.T) {
	r, err := ring.New(64)
	require.NoError(t, err)
	fillRing(t, r, DefaultSeedSize)

	tl := NewThreadLocal(r, DefaultSeedSize, ChaCha8Factory())
	split := tl.Split()
	assert.Same(t, tl, split)
}

type sequenceSplittable struct{ n uint64 }

func (s *sequenceSplittable) Uint64() uint64  { s.n++; return s.n }
func (s *sequenceSplittable) Split() Splittable { return &sequenceSplittable{n: s.n * 31} }

func TestThreadLocalFromSplittableNeverBlocks(t *testing.T) {
	tl := NewThreadLocalFromSplittable(&sequenceSplittable{}, DefaultSeedSize, ChaCha8Factory())
	for i := 0; i < 5; i++ {
		_ = tl.Uint64()
	}
}

func TestCountingResetsAndDebits(t *testing.T) {
	r, err := ring.New(1024)
	require.NoError(t, err)
	fillRing(t, r, DefaultSeedSize)

	c := NewCounting(r, DefaultSeedSize, ChaCha8Factory())
	c.Uint64() // first call always (re)seeds
	assert.Equal(t, int64(DefaultSeedSize*8-64), c.EntropyBits())

	before := c.EntropyBits()
	c.Bool()
	assert.Equal(t, before-1, c.EntropyBits())

	before = c.EntropyBits()
	c.Uint32()
	assert.Equal(t, before-32, c.EntropyBits())
}

func TestCountingResetsToFullOnReseed(t *testing.T) {
	r, err := ring.New(1024)
	require.NoError(t, err)
	fillRing(t, r, DefaultSeedSize)

	c := NewCounting(r, DefaultSeedSize, ChaCha8Factory())
	c.Uint64() // constructs, draining the ring empty
	for c.EntropyBits() > 0 {
		c.Uint64() // no reseed material left; bits only decreases
	}

	// Now put a fresh seed in the ring; the next call should reseed and
	// reset the counter to S*8 before debiting this call's 64 bits.
	fillRing(t, r, DefaultSeedSize)
	c.Uint64()
	assert.Equal(t, int64(DefaultSeedSize*8-64), c.EntropyBits())
}

func TestJumpWalksSetBitsAndAdvances(t *testing.T) {
	r, err := ring.New(64)
	require.NoError(t, err)
	fillRing(t, r, 8)

	var jumps []int
	probe := &jumpProbe{}
	j := &Jump{r: r, seedSize: 8, factory: func(seed []byte) Jumpable {
		probe.seed = append([]byte(nil), seed...)
		return probe
	}}
	_ = j.Uint64() // first call constructs from the probe factory
	jumps = probe.calls
	assert.Empty(t, jumps) // construction does not itself jump

	fillRing(t, r, 8)
	_ = j.Uint64() // second call should poll-exact and jump per set bit
	assert.NotEmpty(t, probe.calls)
}

type jumpProbe struct {
	seed  []byte
	calls []int
}

func (p *jumpProbe) JumpPowerOfTwo(k int) { p.calls = append(p.calls, k) }
func (p *jumpProbe) Uint64() uint64       { return 0 }

func TestJumpSplitIsIndependent(t *testing.T) {
	r, err := ring.New(64)
	require.NoError(t, err)
	fillRing(t, r, 16)

	j := NewJump(r, 8, PCGJumpFactory())
	j.Uint64()
	split := j.Split()
	assert.NotSame(t, j, split)
}

func TestPCGJumpMatchesRepeatedStepping(t *testing.T) {
	seed := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	direct := NewPCGJump(seed)
	stepped := NewPCGJump(seed)

	for i := 0; i < 8; i++ {
		stepped.Uint64()
	}
	direct.JumpPowerOfTwo(3) // 2^3 == 8 steps
	assert.Equal(t, stepped.state, direct.state)
}

func timeoutChan() <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		// A generous bound; Basic must never actually block here.
		time.Sleep(2 * time.Second)
		close(ch)
	}()
	return ch
}
