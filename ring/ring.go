// Package ring implements the lock-free, multi-producer/multi-consumer
// byte ring buffer that mediates hand-off between slow entropy
// producers and fast PRNG consumers.
//
// Semantics
//   - Any number of goroutines may call Offer/Poll/Write/Read concurrently.
//   - Capacity must be a power of two.
//   - Four monotonic uint64 cursors (wStarted, wFinished, rStarted, and
//     an implicit rFinished == rStarted) encode every transition; there
//     is no separate state machine.
//   - No byte is ever readable before the Offer call that wrote it has
//     published via the wFinished compare-and-swap, and no byte is ever
//     handed to two readers.
package ring

import (
	"context"

	"github.com/jangala-dev/seedring/internal/spinwait"
	"github.com/jangala-dev/seedring/ring/internal/mathx"
	"github.com/jangala-dev/seedring/ringerr"

	"sync/atomic"
)

// Ring is a fixed-capacity, power-of-two byte ring buffer. The zero
// value is not usable; construct with New.
type Ring struct {
	storage []byte
	mask    uint64

	wStarted  atomic.Uint64
	wFinished atomic.Uint64
	rStarted  atomic.Uint64
}

// New constructs a Ring of the given capacity, which must be a
// positive power of two.
func New(capacity int) (*Ring, error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, ringerr.Invalid("ring.New", "capacity must be a positive power of two")
	}
	return &Ring{
		storage: make([]byte, capacity),
		mask:    uint64(capacity - 1),
	}, nil
}

// Capacity returns the ring's fixed size in bytes.
func (r *Ring) Capacity() int { return len(r.storage) }

// Offer writes up to min(len(src), Capacity()) bytes without blocking.
// It returns the number of bytes actually written, which may be zero
// under contention; the caller is expected to retry. A successful
// return of k guarantees those k bytes are immediately visible to Poll.
func (r *Ring) Offer(src []byte) (int, error) {
	length := mathx.Clamp(len(src), 0, len(r.storage))
	if length == 0 {
		return 0, nil
	}

	writeStart := r.wStarted.Add(uint64(length)) - uint64(length)

	readSnapshot := r.rStarted.Load()
	writeLimit := readSnapshot + uint64(len(r.storage))
	actual := boundedLen(writeLimit, writeStart, length)

	if actual > 0 {
		r.copyIn(src[:actual], writeStart)
		if !r.wFinished.CompareAndSwap(writeStart, writeStart+uint64(actual)) {
			// An earlier claim has not finished publishing yet; publishing
			// here would expose a gap. Reject and surrender the claim.
			actual = 0
		}
	}
	if actual < length {
		r.wStarted.Add(negate(uint64(length - actual)))
	}
	return actual, nil
}

// Poll reads up to min(len(dst), Capacity()) bytes without blocking. A
// nonzero return is a commitment: those logical positions are never
// returned again.
func (r *Ring) Poll(dst []byte) (int, error) {
	length := mathx.Clamp(len(dst), 0, len(r.storage))
	if length == 0 {
		return 0, nil
	}

	readStart := r.rStarted.Add(uint64(length)) - uint64(length)

	finishedSnapshot := r.wFinished.Load()
	actual := boundedLen(finishedSnapshot, readStart, length)

	if actual > 0 {
		r.copyOut(dst[:actual], readStart)
	}
	if actual < length {
		r.rStarted.Add(negate(uint64(length - actual)))
	}
	return actual, nil
}

// PollExact reads exactly len(dst) bytes, or none at all. A request
// longer than Capacity() can never succeed and fails the same way an
// empty ring does — (false, nil) — rather than as an InvalidArgument
// error; it is not a malformed argument the way a negative length or a
// non-power-of-two capacity is (spec §7's invalid-argument list does
// not include it). If a partial read happens (some bytes claimed but
// not all), the claimed bytes are pushed back into the ring via Offer;
// any that fail to go back are dropped, since they are entropy and
// dropping entropy is safe.
func (r *Ring) PollExact(dst []byte) (bool, error) {
	if len(dst) > len(r.storage) {
		return false, nil
	}
	if len(dst) == 0 {
		return true, nil
	}
	n, err := r.Poll(dst)
	if err != nil {
		return false, err
	}
	switch {
	case n == len(dst):
		return true, nil
	case n == 0:
		return false, nil
	default:
		r.Offer(dst[:n]) //nolint:errcheck // best-effort pushback; dropped entropy is safe
		return false, nil
	}
}

// Write blocks until all of src has been moved into the ring, spinning
// between zero-progress attempts. It returns a Cancelled error if ctx
// is done before completion.
func (r *Ring) Write(ctx context.Context, src []byte) error {
	remaining := src
	for len(remaining) > 0 {
		select {
		case <-ctx.Done():
			return ringerr.Cancel("ring.Write")
		default:
		}
		n, err := r.Offer(remaining)
		if err != nil {
			return err
		}
		if n == 0 {
			spinwait.Hint()
			continue
		}
		remaining = remaining[n:]
	}
	return nil
}

// Read blocks until all of dst has been filled, spinning between
// zero-progress attempts. It returns a Cancelled error if ctx is done
// before completion.
func (r *Ring) Read(ctx context.Context, dst []byte) error {
	remaining := dst
	for len(remaining) > 0 {
		select {
		case <-ctx.Done():
			return ringerr.Cancel("ring.Read")
		default:
		}
		n, err := r.Poll(remaining)
		if err != nil {
			return err
		}
		if n == 0 {
			spinwait.Hint()
			continue
		}
		remaining = remaining[n:]
	}
	return nil
}

// copyIn performs the wrap-aware copy of src into storage starting at
// logical position start.
func (r *Ring) copyIn(src []byte, start uint64) {
	size := uint64(len(r.storage))
	idx := start & r.mask
	first := size - idx
	n := uint64(len(src))
	if first > n {
		first = n
	}
	copy(r.storage[idx:idx+first], src[:first])
	if n > first {
		copy(r.storage[0:n-first], src[first:])
	}
}

// copyOut performs the wrap-aware copy out of storage into dst starting
// at logical position start.
func (r *Ring) copyOut(dst []byte, start uint64) {
	size := uint64(len(r.storage))
	idx := start & r.mask
	first := size - idx
	n := uint64(len(dst))
	if first > n {
		first = n
	}
	copy(dst[:first], r.storage[idx:idx+first])
	if n > first {
		copy(dst[first:], r.storage[0:n-first])
	}
}

// boundedLen computes max(0, min(length, limit-start)) using signed
// arithmetic so a limit that has not yet caught up to start clamps to
// zero instead of wrapping.
func boundedLen(limit, start uint64, length int) int {
	diff := int64(limit) - int64(start)
	if diff <= 0 {
		return 0
	}
	if diff < int64(length) {
		return int(diff)
	}
	return length
}

// negate returns the two's-complement delta that subtracts n from an
// atomic.Uint64 via Add, since atomic.Uint64 has no Sub.
func negate(n uint64) uint64 {
	return ^(n - 1)
}
