package events

import "time"

type Kind string

// Event is one inbound occurrence on the live transport. The concrete
// types in this package form the closed set a session handler has to
// dispatch on; the transport never delivers anything outside it.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

type Base struct {
	kind      Kind
	timestamp time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}
