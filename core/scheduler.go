package session

import (
	"fmt"
	"sync"

	"github.com/vaanihq/vaani-core/core/audio"
	"github.com/vaanihq/vaani-core/core/audio/levels"
)

// playbackScheduler renders inbound chunks gaplessly and strictly in
// order: each chunk starts at the cumulative end of all prior chunks,
// anchored to the device clock rather than arrival time, while staying
// interruptible mid-utterance.
//
// Correctness depends on Schedule being called in chunk receipt order;
// the session guarantees that by decoding inline on the single inbound
// event goroutine.
type playbackScheduler struct {
	mu   sync.Mutex
	sink audio.Sink

	// nextStartTime is the schedule cursor: the device-clock offset where
	// the next chunk must begin for playback to stay gapless. Never moves
	// backwards except on interruption reset.
	nextStartTime float64

	// activeSources holds every source committed to play and not yet
	// ended or stopped.
	activeSources map[int64]audio.Source
	nextSourceID  int64

	// onSpeaking fires with true when the active set becomes non-empty
	// and false when it empties, however that happens. Invoked outside
	// the scheduler lock.
	onSpeaking func(bool)

	tap *levels.Tap
}

func newPlaybackScheduler(sink audio.Sink, tap *levels.Tap, onSpeaking func(bool)) *playbackScheduler {
	if onSpeaking == nil {
		onSpeaking = func(bool) {}
	}

	return &playbackScheduler{
		sink:          sink,
		activeSources: map[int64]audio.Source{},
		onSpeaking:    onSpeaking,
		tap:           tap,
	}
}

// Schedule queues one decoded chunk for gapless playback. A failed
// schedule drops only that chunk; the cursor is not advanced so the next
// chunk closes the gap.
func (s *playbackScheduler) Schedule(buf audio.Buffer) error {
	s.tap.ObserveFloats(buf.Data)

	s.mu.Lock()

	// Never schedule into the past: a long silence between responses
	// moves the device clock beyond the cursor.
	if now := s.sink.Now(); now > s.nextStartTime {
		s.nextStartTime = now
	}

	id := s.nextSourceID
	s.nextSourceID++

	source, err := s.sink.Play(buf, s.nextStartTime, func() { s.sourceEnded(id) })
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to schedule audio chunk: %w", err)
	}

	startedSpeaking := len(s.activeSources) == 0
	s.activeSources[id] = source
	s.nextStartTime += buf.Seconds()
	s.mu.Unlock()

	if startedSpeaking {
		s.onSpeaking(true)
	}

	return nil
}

// Interrupt discards every committed and still-buffered source and
// rewinds the schedule cursor, so the next response starts from the
// live device clock. Stop failures on already-finished sources are
// ignored.
func (s *playbackScheduler) Interrupt() {
	s.mu.Lock()
	hadSources := len(s.activeSources) > 0
	for id, source := range s.activeSources {
		_ = source.Stop()
		delete(s.activeSources, id)
	}
	s.nextStartTime = 0
	s.mu.Unlock()

	s.tap.Reset()
	if hadSources {
		s.onSpeaking(false)
	}
}

// IsSpeaking reports whether any source is still committed to play.
func (s *playbackScheduler) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeSources) > 0
}

func (s *playbackScheduler) sourceEnded(id int64) {
	s.mu.Lock()
	if _, ok := s.activeSources[id]; !ok {
		s.mu.Unlock()
		return
	}

	delete(s.activeSources, id)
	emptied := len(s.activeSources) == 0
	s.mu.Unlock()

	if emptied {
		s.tap.Reset()
		s.onSpeaking(false)
	}
}
