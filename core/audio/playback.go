package audio

// Source is one buffer committed to a playback timeline. Stopping an
// already-finished source is a no-op, not an error.
type Source interface {
	Stop() error
}

// Sink is a playback device timeline: a monotonic clock plus the ability
// to start a buffer at an absolute point on it.
//
// Implementations retire a source and invoke its onEnded callback exactly
// once when playback runs off the end of the buffer. Stopped sources are
// retired silently.
type Sink interface {
	// Now returns the device clock in seconds since the sink started.
	Now() float64
	// Play schedules a buffer to start at the given device-clock offset.
	Play(buf Buffer, at float64, onEnded func()) (Source, error)
}
