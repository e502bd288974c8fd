// Package portaudio is an alternative capture backend for hosts where
// miniaudio is unavailable.
package portaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/vaanihq/vaani-core/core/audio"
)

var (
	initOnce sync.Once
	initErr  error
)

// CaptureClient pulls fixed-size float sample blocks from the default
// microphone via a blocking PortAudio read loop.
type CaptureClient struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	in     []float32
	stop   chan struct{}
}

func NewCaptureClient() (*CaptureClient, error) {
	initOnce.Do(func() {
		initErr = portaudio.Initialize()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", initErr)
	}

	in := make([]float32, audio.CaptureBlockSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, audio.CaptureSampleRate, audio.CaptureBlockSize, in)
	if err != nil {
		return nil, fmt.Errorf("failed to open PortAudio stream: %w", err)
	}

	return &CaptureClient{stream: stream, in: in}, nil
}

func (c *CaptureClient) EncodingInfo() audio.EncodingInfo {
	return audio.GetCaptureEncodingInfo()
}

// Start begins capture and delivers one onFrame call per full block.
func (c *CaptureClient) Start(ctx context.Context, onFrame func(samples []float32)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		return nil
	}

	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start PortAudio stream: %w", err)
	}

	stop := make(chan struct{})
	c.stop = stop

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			default:
				if err := c.stream.Read(); err != nil {
					logger.Warn("failed to read from PortAudio stream", "error", err)
					continue
				}

				frame := make([]float32, len(c.in))
				copy(frame, c.in)
				onFrame(frame)
			}
		}
	}()

	return nil
}

// Stop halts capture but keeps the stream open for the next session.
func (c *CaptureClient) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop == nil {
		return nil
	}

	close(c.stop)
	c.stop = nil

	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop PortAudio stream: %w", err)
	}

	return nil
}

// Close releases the stream entirely.
func (c *CaptureClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		close(c.stop)
		c.stop = nil
		_ = c.stream.Stop()
	}

	return c.stream.Close()
}
