package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vaanihq/vaani-core/core/audio"
	"github.com/vaanihq/vaani-core/core/audio/levels"
	"github.com/vaanihq/vaani-core/core/audio/pcm"
)

// CaptureClient is a microphone backend. Start may fail with a
// permission or device error; both abort session start.
type CaptureClient interface {
	Start(ctx context.Context, onFrame func(samples []float32)) error
	Stop() error
}

// capturePipeline owns continuous microphone capture while a session is
// open: every fixed-size frame is tapped for amplitude analysis, PCM
// encoded, and queued for the transport drain.
//
// The frame callback runs on the real-time audio path and must stay
// bounded: it encodes and enqueues, never waiting on a transport round
// trip. Frames produced while a send is outstanding queue up in order
// and are never dropped.
type capturePipeline struct {
	client CaptureClient
	tap    *levels.Tap

	active atomic.Bool

	mu    sync.Mutex
	queue *frameQueue
}

func newCapturePipeline(client CaptureClient, tap *levels.Tap) *capturePipeline {
	return &capturePipeline{client: client, tap: tap}
}

// Activate starts capture and the drain goroutine. send receives encoded
// frames in capture order together with their declared encoding tag.
func (c *capturePipeline) Activate(ctx context.Context, send func(data []byte, encoding audio.EncodingInfo) error) error {
	if !c.active.CompareAndSwap(false, true) {
		return nil
	}

	queue := newFrameQueue()
	c.mu.Lock()
	c.queue = queue
	c.mu.Unlock()

	encoding := pcm.CaptureEncoding()
	go func() {
		for frame := range queue.Frames {
			if err := send(frame, encoding); err != nil {
				// The transport already surfaces its failures as events;
				// dropping the error here keeps the drain in lockstep.
				logger.Debug("failed to forward capture frame", "error", err)
			}
		}
	}()

	if err := c.client.Start(ctx, c.onFrame); err != nil {
		queue.Close()
		c.active.Store(false)
		return fmt.Errorf("failed to start capture: %w", err)
	}

	return nil
}

// onFrame runs on the audio callback: analyze, encode, enqueue.
func (c *capturePipeline) onFrame(samples []float32) {
	if !c.active.Load() {
		return
	}

	c.tap.ObserveFloats(samples)

	c.mu.Lock()
	queue := c.queue
	c.mu.Unlock()
	if queue != nil {
		queue.Push(pcm.Encode(samples))
	}
}

// Deactivate disconnects the frame processor and ends the drain. The
// underlying device stays initialized for the next session.
func (c *capturePipeline) Deactivate() error {
	if !c.active.CompareAndSwap(true, false) {
		return nil
	}

	c.mu.Lock()
	queue := c.queue
	c.queue = nil
	c.mu.Unlock()
	if queue != nil {
		queue.Close()
	}

	c.tap.Reset()

	if err := c.client.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture: %w", err)
	}

	return nil
}

func (c *capturePipeline) IsActive() bool { return c.active.Load() }
