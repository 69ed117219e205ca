// Package entropy supplies the producer side of the ring: long-running
// workers that pull bytes from a slow, high-entropy source into a
// staging buffer and push them into a ring.Ring (spec §4.5, §6).
package entropy

import "crypto/rand"

// Source is the entropy source contract (spec §6): given a caller-owned
// buffer, fill it with cryptographically-strong random bytes.
type Source interface {
	Fill(dst []byte) error
}

// OSSource is the concrete producer variant that draws from the host's
// cryptographic RNG (spec §2, §4.5).
type OSSource struct{}

// Fill implements Source over crypto/rand.Read.
func (OSSource) Fill(dst []byte) error {
	_, err := rand.Read(dst)
	return err
}
