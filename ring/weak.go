package ring

import (
	"context"
	"weak"

	"github.com/jangala-dev/seedring/internal/spinwait"
	"github.com/jangala-dev/seedring/ringerr"
)

// Weak is a non-owning back-reference to a Ring. Producers hold a Weak
// rather than a *Ring so that a ring falling out of use lets its
// producers notice and exit, instead of keeping it alive forever
// (spec §9's "weak/back reference" design note).
type Weak struct {
	p weak.Pointer[Ring]
}

// Weaken returns a non-owning back-reference to r.
func (r *Ring) Weaken() Weak {
	return Weak{p: weak.Make(r)}
}

// Value upgrades the back-reference to a strong *Ring. ok is false once
// the ring is no longer reachable.
func (w Weak) Value() (*Ring, bool) {
	r := w.p.Value()
	return r, r != nil
}

// WriteWeak behaves like (*Ring).Write but targets a Weak back-reference.
// It returns nil without error, instead of blocking forever, once the
// ring it targets is no longer reachable — the producer-side
// termination hook described in spec §4.4 and §4.5.
func WriteWeak(ctx context.Context, w Weak, src []byte) error {
	remaining := src
	for len(remaining) > 0 {
		r, ok := w.Value()
		if !ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ringerr.Cancel("ring.WriteWeak")
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
