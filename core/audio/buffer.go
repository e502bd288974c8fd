package audio

import "time"

// Buffer is a decoded, playable block of float samples in [-1, 1].
type Buffer struct {
	Data       []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames in the buffer.
func (b Buffer) Frames() int {
	if b.Channels <= 0 {
		return len(b.Data)
	}
	return len(b.Data) / b.Channels
}

// Seconds returns the playback duration of the buffer in seconds.
func (b Buffer) Seconds() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

func (b Buffer) Duration() time.Duration {
	return time.Duration(b.Seconds() * float64(time.Second))
}
