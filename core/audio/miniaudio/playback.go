package miniaudio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/vaanihq/vaani-core/core/audio"
)

var _ audio.Sink = (*PlaybackClient)(nil)

// PlaybackClient renders scheduled buffers on the default output device
// at the fixed playback rate.
//
// It implements audio.Sink: the device callback advances a frame-accurate
// clock and mixes every source whose scheduled window overlaps the
// rendered range. The device is initialized once on first Play and kept
// across sessions; only Close releases it.
type PlaybackClient struct {
	mu     sync.Mutex
	device *malgo.Device

	// playhead counts frames rendered since device start; it is the
	// device clock all scheduling is anchored to.
	playhead int64
	sources  []*playbackSource
}

type playbackSource struct {
	buf     audio.Buffer
	start   int64 // absolute frame on the device timeline
	stopped bool
	onEnded func()
}

func NewPlaybackClient() *PlaybackClient {
	return &PlaybackClient{}
}

func (c *PlaybackClient) EncodingInfo() audio.EncodingInfo {
	return audio.GetPlaybackEncodingInfo()
}

// Now returns the device clock in seconds.
func (c *PlaybackClient) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.playhead) / audio.PlaybackSampleRate
}

// Play schedules a buffer to start at the given device-clock offset.
// Offsets in the past snap to the playhead.
func (c *PlaybackClient) Play(buf audio.Buffer, at float64, onEnded func()) (audio.Source, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		if err := c.initDevice(); err != nil {
			return nil, err
		}
	}

	if onEnded == nil {
		onEnded = func() {}
	}

	if buf.Frames() == 0 {
		go onEnded()
		return &stoppedSource{}, nil
	}

	start := int64(math.Round(at * audio.PlaybackSampleRate))
	if start < c.playhead {
		start = c.playhead
	}

	source := &playbackSource{buf: buf, start: start, onEnded: onEnded}
	c.sources = append(c.sources, source)

	return &sourceHandle{client: c, source: source}, nil
}

func (c *PlaybackClient) initDevice() error {
	audioContext, err := sharedContext()
	if err != nil {
		return fmt.Errorf("playback device unavailable: %w", err)
	}

	const channels = 1
	format := malgo.FormatF32
	bytesPerSample := malgo.SampleSizeInBytes(format)

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.SampleRate = uint32(audio.PlaybackSampleRate)
	config.Playback.Format = format
	config.Playback.Channels = channels
	config.Alsa.NoMMap = 1
	config.PeriodSizeInFrames = audio.PlaybackSampleRate / 10 // ~100ms of audio
	config.Periods = 4

	c.device, err = malgo.InitDevice(
		audioContext.Context,
		config,
		malgo.DeviceCallbacks{Data: c.render(bytesPerSample)},
	)
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := c.device.Start(); err != nil {
		c.device.Uninit()
		c.device = nil
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	return nil
}

func (c *PlaybackClient) render(bytesPerSample int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		frames := int(frameCount)

		c.mu.Lock()
		base := c.playhead
		for i := 0; i < frames; i++ {
			abs := base + int64(i)
			var sum float64
			for _, source := range c.sources {
				if source.stopped || abs < source.start {
					continue
				}
				if offset := abs - source.start; offset < int64(len(source.buf.Data)) {
					sum += float64(source.buf.Data[offset])
				}
			}
			if sum > 1 {
				sum = 1
			} else if sum < -1 {
				sum = -1
			}
			binary.LittleEndian.PutUint32(pOutput[i*bytesPerSample:], math.Float32bits(float32(sum)))
		}
		c.playhead = base + int64(frames)

		ended := c.retireSources()
		c.mu.Unlock()

		if len(ended) > 0 {
			go func() {
				for _, onEnded := range ended {
					onEnded()
				}
			}()
		}
	}
}

// retireSources drops sources whose window the playhead has passed, or
// that were stopped. Only naturally-finished sources report back; the
// scheduler already forgot stopped ones. Called with mu held.
func (c *PlaybackClient) retireSources() []func() {
	var ended []func()
	remaining := c.sources[:0]
	for _, source := range c.sources {
		if source.stopped {
			continue
		}
		if source.start+int64(len(source.buf.Data)) <= c.playhead {
			ended = append(ended, source.onEnded)
			continue
		}
		remaining = append(remaining, source)
	}
	c.sources = remaining
	return ended
}

// Close releases the device entirely and drops any scheduled audio.
func (c *PlaybackClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}

	c.sources = nil
	c.playhead = 0
	return nil
}

type sourceHandle struct {
	client *PlaybackClient
	source *playbackSource
}

// Stop silences the source. Stopping an already-finished or
// already-stopped source is a no-op.
func (h *sourceHandle) Stop() error {
	h.client.mu.Lock()
	defer h.client.mu.Unlock()
	h.source.stopped = true
	return nil
}

type stoppedSource struct{}

func (stoppedSource) Stop() error { return nil }
