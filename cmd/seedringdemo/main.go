// Command seedringdemo wires a handful of OS-entropy producers into a
// ring and drains it with three of the consumer adapters (Basic,
// Counting and Jump), logging
// what it draws until interrupted. It exists to exercise the module
// end-to-end, not as a deployable service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jangala-dev/seedring/entropy"
	"github.com/jangala-dev/seedring/reseed"
	"github.com/jangala-dev/seedring/ring"
)

const (
	ringCapacity = 1 << 16
	stagingSize  = 256
	producers    = 2
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck
	sugar := log.Sugar()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	r, err := ring.New(ringCapacity)
	if err != nil {
		sugar.Fatalw("bad ring capacity", "error", err)
	}

	go func() {
		if err := entropy.RunGroup(ctx, producers, func() entropy.Source { return entropy.OSSource{} }, r, stagingSize, sugar); err != nil {
			sugar.Errorw("producer group stopped", "error", err)
		}
	}()

	basic := reseed.NewBasic(r, reseed.DefaultSeedSize, reseed.ChaCha8Factory())
	counting := reseed.NewCounting(r, reseed.DefaultSeedSize, reseed.ChaCha8Factory())
	jump := reseed.NewJump(r, 8, reseed.PCGJumpFactory())

	sugar.Infow("seed ring demo starting", "capacity", r.Capacity())

	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			sugar.Info("seed ring demo stopping")
			return
		case <-tick.C:
			sugar.Infow("draw",
				"basic.uint64", basic.Uint64(),
				"counting.uint64", counting.Uint64(),
				"counting.entropy_bits", counting.EntropyBits(),
				"jump.uint64", jump.Uint64(),
			)
		}
	}
}
