package entropy

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jangala-dev/seedring/ring"
)

type constantSource struct{ b byte }

func (c constantSource) Fill(dst []byte) error {
	for i := range dst {
		dst[i] = c.b
	}
	return nil
}

type failingSource struct{ err error }

func (f failingSource) Fill(dst []byte) error { return f.err }

func TestOSSourceFillsRequestedLength(t *testing.T) {
	var src OSSource
	dst := make([]byte, 32)
	require.NoError(t, src.Fill(dst))
}

func TestProducerWritesIntoRing(t *testing.T) {
	r, err := ring.New(64)
	require.NoError(t, err)

	p := NewProducer(r, constantSource{b: 0x42}, 8)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	dst := make([]byte, 8)
	require.NoError(t, r.Read(context.Background(), dst))
	for _, b := range dst {
		assert.Equal(t, byte(0x42), b)
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("producer did not stop after cancellation")
	}
}

func TestProducerStopsWhenRingUnreachable(t *testing.T) {
	r, err := ring.New(8)
	require.NoError(t, err)
	// Fill the ring so the producer must keep retrying, giving a window
	// for the ring to become unreachable mid-run.
	_, err = r.Offer(make([]byte, 8))
	require.NoError(t, err)

	p := NewProducer(r, constantSource{b: 1}, 8)
	r = nil

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	runtime.GC()
	runtime.GC()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("producer did not stop once the ring became unreachable")
	}
}

func TestProducerSurfacesSourceError(t *testing.T) {
	r, err := ring.New(8)
	require.NoError(t, err)

	boom := errors.New("boom")
	p := NewProducer(r, failingSource{err: boom}, 4)

	err = p.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRunGroupStopsAllOnError(t *testing.T) {
	r, err := ring.New(8)
	require.NoError(t, err)

	boom := errors.New("boom")
	n := 0
	newSource := func() Source {
		n++
		if n == 1 {
			return failingSource{err: boom}
		}
		return constantSource{b: byte(n)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err = RunGroup(ctx, 3, newSource, r, 4, nil)
	assert.ErrorIs(t, err, boom)
}
