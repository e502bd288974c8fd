// Package session coordinates one full-duplex voice conversation: it
// wires microphone capture to a live conversational-audio transport,
// renders streamed response audio gaplessly, and reconciles partial
// transcription fragments into an append-only transcript log.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/codes"

	"github.com/vaanihq/vaani-core/core/audio"
	"github.com/vaanihq/vaani-core/core/audio/levels"
	"github.com/vaanihq/vaani-core/core/audio/miniaudio"
	"github.com/vaanihq/vaani-core/core/audio/pcm"
	"github.com/vaanihq/vaani-core/core/events"
	"github.com/vaanihq/vaani-core/core/llms"
	llmgemini "github.com/vaanihq/vaani-core/core/llms/gemini"
	"github.com/vaanihq/vaani-core/core/realtime"
	rtgemini "github.com/vaanihq/vaani-core/core/realtime/gemini"
)

// Status is the observable connection state of a session. Exactly one
// value is live at a time; only the session itself transitions it.
type Status int32

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("unknown(%d)", int32(s))
}

// ErrSessionActive is returned by Start while a session is connecting or
// connected. Starting over an open session is rejected rather than
// implicitly restarted; callers stop first.
var ErrSessionActive = errors.New("a session is already open")

// Session is the coordinating core of one bidirectional voice
// conversation.
//
// All inbound transport events are applied on a single goroutine in
// arrival order; callbacks registered through options are invoked from
// session goroutines and must not call Start or Stop.
type Session struct {
	status   atomic.Int32
	thinking atomic.Bool
	speaking atomic.Bool

	// mu guards the session lifecycle: the transport handle, the context
	// watcher, and the start/stop transitions.
	mu        sync.Mutex
	transport realtime.LiveSession

	// watchDone releases the context watcher of the current start; a
	// fresh channel per start keeps stale watchers inert.
	watchDone chan struct{}

	dialer  realtime.Dialer
	replier llms.Replier

	captureClient CaptureClient
	sink          audio.Sink

	capture   *capturePipeline
	scheduler *playbackScheduler

	transcript transcriptLog
	pending    pendingTurn

	inputTap  *levels.Tap
	outputTap *levels.Tap

	model       string
	instruction string

	onStatus   func(Status)
	onThinking func(bool)
	onSpeaking func(bool)
}

// New assembles a session. Without options it captures through the
// shared miniaudio devices and talks to the Gemini live endpoint using
// the GEMINI_API_KEY environment variable.
//
// No device or network resource is touched until Start.
func New(opts ...Option) *Session {
	s := &Session{
		inputTap:  levels.NewTap(),
		outputTap: levels.NewTap(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.captureClient == nil {
		s.captureClient = miniaudio.NewCaptureClient()
	}
	if s.sink == nil {
		s.sink = miniaudio.NewPlaybackClient()
	}
	if s.dialer == nil {
		s.dialer = rtgemini.NewDialer()
	}
	if s.replier == nil {
		s.replier = llmgemini.NewClient(llmgemini.WithInstruction(s.instruction))
	}

	s.capture = newCapturePipeline(s.captureClient, s.inputTap)
	s.scheduler = newPlaybackScheduler(s.sink, s.outputTap, s.setSpeaking)

	return s
}

// Start opens a live session: microphone capture first, then the
// bidirectional transport with the static persona configuration. Once
// the transport confirms, the session is connected and capture frames
// flow outbound.
//
// A permission or device failure, or a failed dial, leaves the session
// in StatusError with the transcript log untouched; the caller retries
// by calling Start again.
func (s *Session) Start(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "start session")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch Status(s.status.Load()) {
	case StatusConnecting, StatusConnected:
		return ErrSessionActive
	}

	s.setStatus(StatusConnecting)

	if err := s.capture.Activate(ctx, s.sendFrame); err != nil {
		s.setStatus(StatusError)
		recordedErr := fmt.Errorf("failed to activate capture: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return recordedErr
	}

	transport, err := s.dialer.Dial(ctx, realtime.SessionConfig{
		Model:         s.model,
		Instruction:   s.instruction,
		InputEncoding: pcm.CaptureEncoding(),
	}, s.handleEvent)
	if err != nil {
		_ = s.capture.Deactivate()
		s.setStatus(StatusError)
		recordedErr := fmt.Errorf("failed to open live transport: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return recordedErr
	}

	s.transport = transport
	s.setStatus(StatusConnected)

	// The watcher belongs to this start only: Stop releases it, and a
	// context from an earlier, already-stopped start must never tear
	// down a newer session.
	done := make(chan struct{})
	s.watchDone = done
	go func() {
		select {
		case <-done:
		case <-ctx.Done():
			s.mu.Lock()
			if s.watchDone == done {
				s.stopLocked()
			}
			s.mu.Unlock()
		}
	}()

	return nil
}

// Stop tears the session down completely: transport closed, capture
// disconnected, all playback discarded, both flags cleared. Safe to call
// at any point in any state; stopping a disconnected session is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// stopLocked is Stop's body; callers hold s.mu.
func (s *Session) stopLocked() {
	if Status(s.status.Load()) == StatusDisconnected {
		return
	}

	if s.watchDone != nil {
		close(s.watchDone)
		s.watchDone = nil
	}

	if s.transport != nil {
		if err := s.transport.Close(); err != nil {
			logger.Debug("failed to close live transport", "error", err)
		}
		s.transport = nil
	}

	if err := s.capture.Deactivate(); err != nil {
		logger.Debug("failed to deactivate capture", "error", err)
	}

	s.scheduler.Interrupt()
	s.setSpeaking(false)
	s.setThinking(false)
	s.setStatus(StatusDisconnected)
}

// SendText asks for a single complete reply over the stateless
// request/reply transport, using the full transcript log as prior
// context. It works in any state and does not require an open live
// session.
//
// On success the typed text and the filtered reply are appended to the
// log, user entry first. Failures append nothing and are safe to retry
// by resending; the thinking flag is always cleared.
func (s *Session) SendText(ctx context.Context, text string) error {
	ctx, span := tracer.Start(ctx, "send text")
	defer span.End()

	s.setThinking(true)
	defer s.setThinking(false)

	reply, err := s.replier.Reply(ctx, s.transcript.history(), text)
	if err != nil {
		recordedErr := fmt.Errorf("failed to generate reply: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		logger.Error("failed to generate text reply", "error", err)
		return recordedErr
	}

	s.transcript.append(RoleUser, text)
	if filtered := filterHallucinations(reply); filtered != "" {
		s.transcript.append(RoleModel, filtered)
	}

	return nil
}

// handleEvent is the single dispatch point for inbound transport
// events. The transport delivers them one at a time in arrival order, so
// everything here, including chunk decoding, is serialized.
func (s *Session) handleEvent(event events.Event) {
	switch t := event.(type) {
	case events.AudioChunk:
		s.setThinking(false)
		buf, err := pcm.Decode(t.Data(), t.SampleRate(), 1)
		if err != nil {
			logger.Warn("dropping undecodable audio chunk", "error", err)
			return
		}
		if err := s.scheduler.Schedule(buf); err != nil {
			logger.Warn("dropping unschedulable audio chunk", "error", err)
		}

	case events.Interrupted:
		s.scheduler.Interrupt()

	case events.InputTranscript:
		s.pending.appendInput(t.Text())
		s.setThinking(true)

	case events.OutputTranscript:
		s.pending.appendOutput(t.Text())

	case events.TurnComplete:
		s.flushTurn()
		s.setThinking(false)

	case events.Error:
		// A failing transport mid-session degrades to a clean stop so
		// the user can immediately retry, not to the error state.
		logger.Error("live transport failed", "error", t.Err())
		s.Stop()

	case events.Closed:
		logger.Info("live transport closed", "reason", t.Reason())
		s.Stop()

	default:
		logger.Warn("skipped event of unknown kind", "kind", string(event.Kind()))
	}
}

// flushTurn commits the pending turn: both sides are filtered, non-empty
// results are appended (user before model), and the buffer comes back
// empty. A turn of pure noise appends nothing, which is expected.
func (s *Session) flushTurn() {
	inputText, outputText := s.pending.flush()

	if text := filterHallucinations(inputText); text != "" {
		s.transcript.append(RoleUser, text)
	}
	if text := filterHallucinations(outputText); text != "" {
		s.transcript.append(RoleModel, text)
	}
}

// sendFrame forwards one encoded capture frame to the open transport.
// Frames captured while no transport is open are discarded.
func (s *Session) sendFrame(data []byte, _ audio.EncodingInfo) error {
	s.mu.Lock()
	transport := s.transport
	s.mu.Unlock()

	if transport == nil {
		return nil
	}
	return transport.SendAudio(data)
}

// Status returns the observable connection state.
func (s *Session) Status() Status { return Status(s.status.Load()) }

// IsThinking reports whether a response is being prepared.
func (s *Session) IsThinking() bool { return s.thinking.Load() }

// IsSpeaking reports whether response audio is committed to play.
func (s *Session) IsSpeaking() bool { return s.speaking.Load() }

// Transcript returns a point-in-time copy of the transcript log.
func (s *Session) Transcript() []TranscriptionEntry { return s.transcript.snapshot() }

// InputLevels is the live amplitude tap of the capture direction.
func (s *Session) InputLevels() *levels.Tap { return s.inputTap }

// OutputLevels is the live amplitude tap of the playback direction.
func (s *Session) OutputLevels() *levels.Tap { return s.outputTap }

func (s *Session) setStatus(status Status) {
	if Status(s.status.Swap(int32(status))) == status {
		return
	}
	if s.onStatus != nil {
		s.onStatus(status)
	}
}

func (s *Session) setThinking(thinking bool) {
	if s.thinking.Swap(thinking) == thinking {
		return
	}
	if s.onThinking != nil {
		s.onThinking(thinking)
	}
}

func (s *Session) setSpeaking(speaking bool) {
	if s.speaking.Swap(speaking) == speaking {
		return
	}
	if s.onSpeaking != nil {
		s.onSpeaking(speaking)
	}
}
