package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vaanihq/vaani-core/core/llms"
)

// Role identifies which side of the conversation produced an entry.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// TranscriptionEntry is one committed utterance. Entries are immutable
// once created and the log they live in is append-only: append order is
// conversation order.
type TranscriptionEntry struct {
	ID        string
	Role      Role
	Text      string
	Timestamp int64 // epoch millis
}

type transcriptLog struct {
	mu      sync.RWMutex
	entries []TranscriptionEntry

	onAppend func(TranscriptionEntry)
}

func (l *transcriptLog) append(role Role, text string) TranscriptionEntry {
	entry := TranscriptionEntry{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	onAppend := l.onAppend
	l.mu.Unlock()

	if onAppend != nil {
		onAppend(entry)
	}

	return entry
}

// snapshot returns a point-in-time copy of the log.
func (l *transcriptLog) snapshot() []TranscriptionEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]TranscriptionEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// history converts the log into request/reply prior context.
func (l *transcriptLog) history() []llms.Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()

	turns := make([]llms.Turn, len(l.entries))
	for i, entry := range l.entries {
		turns[i] = llms.Turn{Role: llms.Role(entry.Role), Text: entry.Text}
	}
	return turns
}

// filterHallucinations gates transcription text to the 7-bit script: any
// rune outside it (other scripts, emoji, symbols) is removed and the
// remainder is trimmed. The transcription pipeline sporadically emits
// native-script or symbol noise; gating at commit time keeps it out of
// the log. Applied only to commit-ready text, never to in-flight
// fragments.
func filterHallucinations(text string) string {
	var filtered strings.Builder
	filtered.Grow(len(text))
	for _, r := range text {
		if r < 128 {
			filtered.WriteRune(r)
		}
	}

	return strings.TrimSpace(filtered.String())
}
