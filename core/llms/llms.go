// Package llms defines the request/reply contract used for typed text,
// separate from the live audio transport.
package llms

import "context"

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one committed conversation entry passed as prior context.
type Turn struct {
	Role Role
	Text string
}

// Replier answers a single prompt statelessly: the full prior transcript
// is sent along with every request, and one complete reply comes back.
type Replier interface {
	Reply(ctx context.Context, history []Turn, prompt string) (string, error)
}
