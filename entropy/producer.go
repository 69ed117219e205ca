package entropy

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jangala-dev/seedring/ring"
	"github.com/jangala-dev/seedring/ringerr"

	"go.uber.org/zap"
)

// Producer is a long-running worker that fills a staging buffer from a
// Source and pushes it into a ring via a weak back-reference, so it can
// notice the ring going out of use and exit cleanly (spec §4.5, §9).
type Producer struct {
	ring    ring.Weak
	source  Source
	staging []byte
	log     *zap.SugaredLogger
}

// NewProducer builds a Producer targeting r, reading stagingSize bytes
// from source per iteration.
func NewProducer(r *ring.Ring, source Source, stagingSize int) *Producer {
	return &Producer{
		ring:    r.Weaken(),
		source:  source,
		staging: make([]byte, stagingSize),
	}
}

// WithLogger attaches an optional structured logger; nil is safe and is
// the default.
func (p *Producer) WithLogger(log *zap.SugaredLogger) *Producer {
	p.log = log
	return p
}

// Run fills the staging buffer and writes it into the ring in a loop,
// until ctx is cancelled, the Source errors, or the ring becomes
// unreachable. Errors from the entropy source are the caller's policy
// (spec §4.11): Run returns them rather than retrying silently.
func (p *Producer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if _, ok := p.ring.Value(); !ok {
			return nil
		}

		if err := p.source.Fill(p.staging); err != nil {
			if p.log != nil {
				p.log.Warnw("entropy source fill failed", "error", err)
			}
			return err
		}

		if err := ring.WriteWeak(ctx, p.ring, p.staging); err != nil {
			if ringerr.Of(err) == ringerr.Cancelled {
				return nil
			}
			return err
		}
	}
}

// RunGroup starts n producers against r, each reading stagingSize bytes
// per iteration from a Source built by newSource, supervised by an
// errgroup so the first producer error (or ctx cancellation) stops the
// rest. This is the ambient thread-pool construction the spec marks out
// of scope for the Ring itself (spec §1) but useful glue for callers.
func RunGroup(ctx context.Context, n int, newSource func() Source, r *ring.Ring, stagingSize int, log *zap.SugaredLogger) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		p := NewProducer(r, newSource(), stagingSize).WithLogger(log)
		g.Go(func() error {
			return p.Run(gctx)
		})
	}
	return g.Wait()
}
