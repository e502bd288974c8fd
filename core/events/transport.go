package events

const (
	KindError  Kind = "transport.error"
	KindClosed Kind = "transport.closed"
)

// Error reports a transport failure while the session was open.
type Error struct {
	Base
	err error
}

func NewError(err error) Error {
	return Error{Base: NewBase(KindError), err: err}
}

func (e Error) Err() error { return e.err }

// Closed reports transport closure, clean or otherwise.
type Closed struct {
	Base
	reason string
}

func NewClosed(reason string) Closed {
	return Closed{Base: NewBase(KindClosed), reason: reason}
}

func (e Closed) Reason() string { return e.reason }
