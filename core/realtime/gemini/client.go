// Package gemini implements the live conversational-audio transport on
// the BidiGenerateContent websocket protocol. The stateless
// request/reply client used for typed text lives in llms/gemini.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vaanihq/vaani-core/core/events"
	"github.com/vaanihq/vaani-core/core/realtime"
)

const (
	host     = "generativelanguage.googleapis.com"
	livePath = "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	// DefaultModel is the live-capable model used when none is configured.
	DefaultModel = "models/gemini-2.0-flash-live-001"

	apiKeyEnvVar = "GEMINI_API_KEY"
)

var _ realtime.Dialer = (*Dialer)(nil)

// Dialer opens live sessions against the Gemini realtime endpoint.
type Dialer struct {
	apiKey   string
	endpoint string
}

type DialerOption func(*Dialer)

// WithAPIKey overrides the GEMINI_API_KEY environment lookup.
func WithAPIKey(apiKey string) DialerOption {
	return func(d *Dialer) { d.apiKey = apiKey }
}

// WithEndpoint redirects the websocket dial, primarily for tests.
func WithEndpoint(endpoint string) DialerOption {
	return func(d *Dialer) { d.endpoint = endpoint }
}

func NewDialer(opts ...DialerOption) *Dialer {
	dialer := &Dialer{}
	for _, opt := range opts {
		opt(dialer)
	}
	return dialer
}

// Dial opens the websocket, sends the static session setup, and waits
// for setup confirmation before returning a usable session.
//
// Inbound events are delivered on a single reader goroutine, one at a
// time in arrival order.
func (d *Dialer) Dial(ctx context.Context, config realtime.SessionConfig, onEvent func(events.Event)) (realtime.LiveSession, error) {
	ctx, span := tracer.Start(ctx, "dial live session")
	defer span.End()

	if onEvent == nil {
		onEvent = func(events.Event) {}
	}

	apiKey := d.apiKey
	if apiKey == "" {
		var ok bool
		if apiKey, ok = os.LookupEnv(apiKeyEnvVar); !ok {
			return nil, fmt.Errorf("gemini api key not found")
		}
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	urlValues := url.Values{}
	urlValues.Set("key", apiKey)

	endpoint := d.endpoint
	if endpoint == "" {
		endpoint = (&url.URL{Scheme: "wss", Host: host, Path: livePath}).String()
	}
	endpoint += "?" + urlValues.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to gemini: %w", err)
	}

	session := &liveSession{conn: conn, config: config}

	setup := setupMessage{Setup: setupPayload{
		Model:                    model,
		GenerationConfig:         &generationConfig{ResponseModalities: []string{"AUDIO"}},
		InputAudioTranscription:  &struct{}{},
		OutputAudioTranscription: &struct{}{},
	}}
	if config.Instruction != "" {
		setup.Setup.SystemInstruction = &content{Parts: []part{{Text: config.Instruction}}}
	}

	if err := session.writeJSON(setup); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to send session setup: %w", err)
	}

	if err := session.awaitSetupComplete(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("session setup was not confirmed: %w", err)
	}

	go session.processIncomingMessages(onEvent)

	return session, nil
}

type liveSession struct {
	conn   *websocket.Conn
	config realtime.SessionConfig

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
}

// SendAudio forwards one encoded capture frame tagged with its encoding.
// It only performs a local websocket write and never waits on the remote
// round trip.
func (s *liveSession) SendAudio(data []byte) error {
	if s.closed.Load() {
		return fmt.Errorf("live session is closed")
	}

	return s.writeJSON(realtimeInputMessage{RealtimeInput: realtimeInput{
		Audio: &inlineData{
			MimeType: s.config.InputEncoding.MimeType(),
			Data:     base64.StdEncoding.EncodeToString(data),
		},
	}})
}

func (s *liveSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)

		s.writeMu.Lock()
		_ = s.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		s.writeMu.Unlock()

		err = s.conn.Close()
	})
	return err
}

func (s *liveSession) writeJSON(message any) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// awaitSetupComplete blocks until the server confirms the session setup.
// Context cancellation or expiry fails the read via the connection's
// read deadline; a server that accepts the socket but never confirms
// cannot hold the dial open.
func (s *liveSession) awaitSetupComplete(ctx context.Context) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.conn.SetReadDeadline(deadline)
	}

	watchDone := make(chan struct{})
	watcherExited := make(chan struct{})
	go func() {
		defer close(watcherExited)
		select {
		case <-ctx.Done():
			_ = s.conn.SetReadDeadline(time.Now())
		case <-watchDone:
		}
	}()
	defer func() {
		close(watchDone)
		<-watcherExited
		_ = s.conn.SetReadDeadline(time.Time{})
	}()

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}

		var msg serverMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal setup response: %w", err)
		}

		if msg.SetupComplete != nil {
			return nil
		}
	}
}

func (s *liveSession) processIncomingMessages(onEvent func(events.Event)) {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				onEvent(events.NewClosed(err.Error()))
			} else {
				logger.Error("live session read failed", "error", err)
				onEvent(events.NewError(err))
			}
			return
		}

		var msg serverMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Warn("skipping unparseable live message", "error", err)
			continue
		}

		if msg.GoAway != nil {
			onEvent(events.NewClosed("server going away"))
			continue
		}

		for _, event := range translate(msg) {
			onEvent(event)
		}
	}
}
