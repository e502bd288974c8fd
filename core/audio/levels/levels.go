// Package levels provides passive amplitude analysis taps for the capture
// and playback audio paths. Taps are side-channel observers for
// visualization; they never influence the audio pipeline itself.
package levels

import (
	"encoding/binary"
	"math"
	"sync"
)

// Level is a point-in-time amplitude reading of one audio direction.
type Level struct {
	// RMS is the root-mean-square amplitude of the last observed block.
	RMS float64
	// Peak is the largest absolute sample of the last observed block.
	Peak float64
}

// Tap accumulates amplitude readings from an audio path.
//
// Writers call Observe* from the audio path; readers poll Level from the
// presentation side. Both are safe concurrently.
type Tap struct {
	mu    sync.RWMutex
	level Level
}

func NewTap() *Tap { return &Tap{} }

// ObserveFloats records a block of float samples in [-1, 1].
func (t *Tap) ObserveFloats(samples []float32) {
	if t == nil || len(samples) == 0 {
		return
	}

	var sum, peak float64
	for _, sample := range samples {
		s := float64(sample)
		sum += s * s
		if abs := math.Abs(s); abs > peak {
			peak = abs
		}
	}

	t.store(Level{RMS: math.Sqrt(sum / float64(len(samples))), Peak: peak})
}

// ObservePCM16 records a block of 16-bit little-endian PCM bytes. An odd
// trailing byte is ignored.
func (t *Tap) ObservePCM16(data []byte) {
	if t == nil || len(data) < 2 {
		return
	}

	sampleCount := len(data) / 2
	var sum, peak float64
	for i := 0; i < sampleCount; i++ {
		s := float64(int16(binary.LittleEndian.Uint16(data[i*2:]))) / math.MaxInt16
		sum += s * s
		if abs := math.Abs(s); abs > peak {
			peak = abs
		}
	}

	t.store(Level{RMS: math.Sqrt(sum / float64(sampleCount)), Peak: peak})
}

// Level returns the most recent amplitude reading.
func (t *Tap) Level() Level {
	if t == nil {
		return Level{}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.level
}

// Reset clears the reading, e.g. when its direction goes silent.
func (t *Tap) Reset() {
	if t == nil {
		return
	}

	t.store(Level{})
}

func (t *Tap) store(level Level) {
	t.mu.Lock()
	t.level = level
	t.mu.Unlock()
}
