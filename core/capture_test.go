package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vaanihq/vaani-core/core/audio"
	"github.com/vaanihq/vaani-core/core/audio/levels"
	"github.com/vaanihq/vaani-core/core/audio/pcm"
)

type fakeCaptureClient struct {
	mu       sync.Mutex
	onFrame  func([]float32)
	started  int
	stopped  int
	startErr error
}

func (f *fakeCaptureClient) Start(_ context.Context, onFrame func([]float32)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.onFrame = onFrame
	f.started++
	return nil
}

func (f *fakeCaptureClient) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	return nil
}

func (f *fakeCaptureClient) emit(samples []float32) {
	f.mu.Lock()
	onFrame := f.onFrame
	f.mu.Unlock()
	if onFrame != nil {
		onFrame(samples)
	}
}

type sentFrame struct {
	data     []byte
	encoding audio.EncodingInfo
}

func collectFrames() (func([]byte, audio.EncodingInfo) error, chan sentFrame) {
	frames := make(chan sentFrame, 16)
	return func(data []byte, encoding audio.EncodingInfo) error {
		frames <- sentFrame{data: data, encoding: encoding}
		return nil
	}, frames
}

func TestCapturePipelineEncodesAndForwardsFrames(t *testing.T) {
	client := &fakeCaptureClient{}
	pipeline := newCapturePipeline(client, levels.NewTap())

	send, frames := collectFrames()
	if err := pipeline.Activate(t.Context(), send); err != nil {
		t.Fatalf("unexpected activation error: %v", err)
	}
	defer pipeline.Deactivate()

	samples := []float32{0, 0.5, -0.5, 1}
	client.emit(samples)

	select {
	case frame := <-frames:
		expected := pcm.Encode(samples)
		if string(frame.data) != string(expected) {
			t.Fatalf("expected encoded frame %v, got %v", expected, frame.data)
		}
		if frame.encoding.SampleRate != audio.CaptureSampleRate {
			t.Fatalf("expected capture sample rate tag, got %d", frame.encoding.SampleRate)
		}
		if frame.encoding.Format != audio.DefaultFormat {
			t.Fatalf("expected %q encoding tag, got %q", audio.DefaultFormat, frame.encoding.Format)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a forwarded frame")
	}
}

func TestCapturePipelinePreservesFrameOrder(t *testing.T) {
	client := &fakeCaptureClient{}
	pipeline := newCapturePipeline(client, levels.NewTap())

	send, frames := collectFrames()
	if err := pipeline.Activate(t.Context(), send); err != nil {
		t.Fatalf("unexpected activation error: %v", err)
	}
	defer pipeline.Deactivate()

	inputs := [][]float32{{0.1}, {0.2}, {0.3}}
	for _, samples := range inputs {
		client.emit(samples)
	}

	for i, samples := range inputs {
		expected := pcm.Encode(samples)
		select {
		case frame := <-frames:
			if string(frame.data) != string(expected) {
				t.Fatalf("frame %d out of order: expected %v, got %v", i, expected, frame.data)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for frame %d", i)
		}
	}
}

func TestCapturePipelineStartFailurePropagates(t *testing.T) {
	client := &fakeCaptureClient{startErr: errors.New("microphone permission denied")}
	pipeline := newCapturePipeline(client, levels.NewTap())

	send, _ := collectFrames()
	err := pipeline.Activate(t.Context(), send)
	if err == nil {
		t.Fatal("expected activation to fail when the device cannot start")
	}
	if !errors.Is(err, client.startErr) {
		t.Fatalf("expected the device error to be wrapped, got %v", err)
	}
	if pipeline.IsActive() {
		t.Fatal("expected the pipeline to stay inactive after a failed start")
	}
}

func TestCapturePipelineDeactivateStopsForwarding(t *testing.T) {
	client := &fakeCaptureClient{}
	pipeline := newCapturePipeline(client, levels.NewTap())

	send, frames := collectFrames()
	if err := pipeline.Activate(t.Context(), send); err != nil {
		t.Fatalf("unexpected activation error: %v", err)
	}
	if err := pipeline.Deactivate(); err != nil {
		t.Fatalf("unexpected deactivation error: %v", err)
	}

	client.emit([]float32{0.4})

	select {
	case frame := <-frames:
		t.Fatalf("expected no frames after deactivation, got %v", frame.data)
	case <-time.After(20 * time.Millisecond):
	}

	if client.stopped != 1 {
		t.Fatalf("expected the device to be stopped once, got %d", client.stopped)
	}
}

func TestCapturePipelineActivateIsIdempotent(t *testing.T) {
	client := &fakeCaptureClient{}
	pipeline := newCapturePipeline(client, levels.NewTap())

	send, _ := collectFrames()
	if err := pipeline.Activate(t.Context(), send); err != nil {
		t.Fatalf("unexpected activation error: %v", err)
	}
	defer pipeline.Deactivate()

	if err := pipeline.Activate(t.Context(), send); err != nil {
		t.Fatalf("expected repeated activation to be a no-op, got %v", err)
	}
	if client.started != 1 {
		t.Fatalf("expected a single device start, got %d", client.started)
	}
}
