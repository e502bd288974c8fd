// Package miniaudio backs the capture and playback paths with malgo
// device contexts.
//
// The underlying device context is a process-wide singleton, lazily
// created on first use and reused across session start/stop cycles so a
// reconnect never pays device reinitialization cost.
package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

var (
	contextOnce sync.Once
	audioCtx    *malgo.AllocatedContext
	contextErr  error
)

// sharedContext lazily initializes the process-wide malgo context.
func sharedContext() (*malgo.AllocatedContext, error) {
	contextOnce.Do(func() {
		audioCtx, contextErr = malgo.InitContext(
			nil,
			malgo.ContextConfig{},
			func(message string) {},
		)
		if contextErr != nil {
			contextErr = fmt.Errorf("malgo InitContext failed: %w", contextErr)
		}
	})

	return audioCtx, contextErr
}
