package session

import (
	"github.com/vaanihq/vaani-core/core/audio"
	"github.com/vaanihq/vaani-core/core/llms"
	"github.com/vaanihq/vaani-core/core/realtime"
)

type Option func(*Session)

// WithPersona sets the static natural-language behavior instruction sent
// once as session configuration; it is never renegotiated mid-session.
// The same instruction accompanies request/reply text when the default
// replier is used.
func WithPersona(instruction string) Option {
	return func(s *Session) { s.instruction = instruction }
}

// WithModel selects the live model.
func WithModel(model string) Option {
	return func(s *Session) { s.model = model }
}

// WithDialer replaces the live transport.
func WithDialer(dialer realtime.Dialer) Option {
	return func(s *Session) { s.dialer = dialer }
}

// WithReplier replaces the request/reply transport used by SendText.
func WithReplier(replier llms.Replier) Option {
	return func(s *Session) { s.replier = replier }
}

// WithCaptureClient replaces the microphone backend.
func WithCaptureClient(client CaptureClient) Option {
	return func(s *Session) { s.captureClient = client }
}

// WithPlaybackSink replaces the playback device timeline.
func WithPlaybackSink(sink audio.Sink) Option {
	return func(s *Session) { s.sink = sink }
}

// WithStatusCallback observes connection state changes. The callback is
// invoked from session goroutines and must not call Start or Stop.
func WithStatusCallback(onStatus func(Status)) Option {
	return func(s *Session) { s.onStatus = onStatus }
}

// WithThinkingCallback observes the thinking flag. Same calling rules as
// WithStatusCallback.
func WithThinkingCallback(onThinking func(bool)) Option {
	return func(s *Session) { s.onThinking = onThinking }
}

// WithSpeakingCallback observes the speaking flag. Same calling rules as
// WithStatusCallback.
func WithSpeakingCallback(onSpeaking func(bool)) Option {
	return func(s *Session) { s.onSpeaking = onSpeaking }
}

// WithTranscriptCallback observes every committed transcript entry in
// append order.
func WithTranscriptCallback(onEntry func(TranscriptionEntry)) Option {
	return func(s *Session) { s.transcript.onAppend = onEntry }
}
