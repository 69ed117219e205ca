// Package reseed implements the consumer side of the ring: adapters
// that wrap an underlying pseudorandom generator and periodically
// refresh it from seed material pulled out of a ring.Ring (spec
// §4.6-§4.9).
package reseed

import "math/rand/v2"

// DefaultSeedSize is the byte width this package's default Factory
// consumes: one 32-byte ChaCha8 key (spec §6's seed size S).
const DefaultSeedSize = 32

// Factory is the generator-factory contract (spec §6): given a seed
// buffer of length S, return a fresh generator instance whose state is
// fully determined by the seed.
type Factory func(seed []byte) *rand.Rand

// ChaCha8Factory returns a Factory seeding a rand.ChaCha8 from exactly
// DefaultSeedSize bytes of key material.
func ChaCha8Factory() Factory {
	return func(seed []byte) *rand.Rand {
		var key [32]byte
		copy(key[:], seed)
		return rand.New(rand.NewChaCha8(key))
	}
}
