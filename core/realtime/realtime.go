// Package realtime defines the contract between the session core and a
// bidirectional conversational-audio transport.
package realtime

import (
	"context"

	"github.com/vaanihq/vaani-core/core/audio"
	"github.com/vaanihq/vaani-core/core/events"
)

// SessionConfig is the static configuration negotiated once when a live
// session opens. The persona instruction is never renegotiated
// mid-session.
type SessionConfig struct {
	Model         string
	Instruction   string
	InputEncoding audio.EncodingInfo
}

// LiveSession is one open bidirectional streaming connection.
//
// The handle becomes invalid after Close or once the transport reports
// closure or an error through the event callback.
type LiveSession interface {
	// SendAudio forwards one encoded capture frame. It must not block on
	// the remote round trip.
	SendAudio(data []byte) error
	Close() error
}

// Dialer opens live sessions against a conversational-audio endpoint.
//
// Implementations deliver inbound events through onEvent strictly one at
// a time, in arrival order, from a single goroutine.
type Dialer interface {
	Dial(ctx context.Context, config SessionConfig, onEvent func(events.Event)) (LiveSession, error)
}
