package miniaudio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/vaanihq/vaani-core/core/audio"
)

// CaptureClient pulls fixed-size float sample blocks from the default
// microphone at the fixed capture rate.
//
// The device is initialized once on first Start and kept across
// Stop/Start cycles; only Close releases it.
type CaptureClient struct {
	mu     sync.Mutex
	device *malgo.Device

	onFrame func(samples []float32)

	// block accumulates callback deliveries until a full capture block is
	// available; malgo period sizes do not have to match the block size.
	block []float32
}

func NewCaptureClient() *CaptureClient {
	return &CaptureClient{}
}

func (c *CaptureClient) EncodingInfo() audio.EncodingInfo {
	return audio.GetCaptureEncodingInfo()
}

// Start begins capture and delivers one onFrame call per full block of
// audio.CaptureBlockSize samples. Starting an already-started client
// only swaps the frame callback.
func (c *CaptureClient) Start(_ context.Context, onFrame func(samples []float32)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		if err := c.initDevice(); err != nil {
			return err
		}
	}

	c.onFrame = onFrame
	if c.device.IsStarted() {
		return nil
	}

	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	return nil
}

func (c *CaptureClient) initDevice() error {
	audioContext, err := sharedContext()
	if err != nil {
		return fmt.Errorf("capture device unavailable: %w", err)
	}

	const channels = 1
	format := malgo.FormatF32
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.SampleRate = uint32(audio.CaptureSampleRate)
	config.Capture.Format = format
	config.Capture.Channels = channels
	config.Alsa.NoMMap = 1
	config.PerformanceProfile = malgo.LowLatency
	config.PeriodSizeInFrames = 480
	config.Periods = 3

	c.device, err = malgo.InitDevice(audioContext.Context, config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}
			c.accumulate(pInput[:n])
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	return nil
}

// accumulate runs on the device callback. It must stay bounded: convert,
// append, and emit complete blocks to onFrame, nothing else. The block
// buffer and callback are guarded against concurrent Start/Stop
// mutation; onFrame itself runs outside the lock.
func (c *CaptureClient) accumulate(data []byte) {
	c.mu.Lock()
	for i := 0; i+4 <= len(data); i += 4 {
		c.block = append(c.block, math.Float32frombits(binary.LittleEndian.Uint32(data[i:])))
	}

	var frames [][]float32
	for len(c.block) >= audio.CaptureBlockSize {
		frame := make([]float32, audio.CaptureBlockSize)
		copy(frame, c.block[:audio.CaptureBlockSize])
		c.block = c.block[:copy(c.block, c.block[audio.CaptureBlockSize:])]
		frames = append(frames, frame)
	}
	onFrame := c.onFrame
	c.mu.Unlock()

	if onFrame == nil {
		return
	}
	for _, frame := range frames {
		onFrame(frame)
	}
}

// Stop halts capture but keeps the device initialized for the next
// session. A partially-filled block is discarded.
//
// The device is stopped outside the mutex: stopping drains an in-flight
// data callback, and that callback takes the mutex itself.
func (c *CaptureClient) Stop() error {
	c.mu.Lock()
	c.onFrame = nil
	c.block = nil
	device := c.device
	c.mu.Unlock()

	if device == nil || !device.IsStarted() {
		return nil
	}

	if err := device.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}

	return nil
}

// Close releases the device entirely.
func (c *CaptureClient) Close() error {
	c.mu.Lock()
	c.onFrame = nil
	c.block = nil
	device := c.device
	c.device = nil
	c.mu.Unlock()

	if device != nil {
		device.Uninit()
	}

	return nil
}
