package session

import (
	"testing"
)

func TestFilterHallucinationsStripsNonASCIIScripts(t *testing.T) {
	for _, tc := range []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "mixed script sentence",
			input:    "Hello आई कशी आहेस",
			expected: "Hello",
		},
		{
			name:     "whitespace only",
			input:    "   ",
			expected: "",
		},
		{
			name:     "clean romanized text",
			input:    "mala bhuk lagli",
			expected: "mala bhuk lagli",
		},
		{
			name:     "trailing script fragment",
			input:    "chala jevayla जाऊया",
			expected: "chala jevayla",
		},
		{
			name:     "script only",
			input:    "नमस्कार",
			expected: "",
		},
		{
			name:     "interleaved runes",
			input:    "okая then",
			expected: "ok then",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := filterHallucinations(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestTranscriptAppendAssignsIdentityAndOrder(t *testing.T) {
	log := &transcriptLog{}

	log.append(RoleUser, "mala bhuk lagli")
	log.append(RoleModel, "chala jevayla")

	entries := log.snapshot()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Role != RoleUser || entries[0].Text != "mala bhuk lagli" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Role != RoleModel || entries[1].Text != "chala jevayla" {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
	if entries[0].ID == "" || entries[1].ID == "" || entries[0].ID == entries[1].ID {
		t.Fatal("expected distinct non-empty entry IDs")
	}
	if entries[0].Timestamp == 0 {
		t.Fatal("expected a non-zero epoch timestamp")
	}
}

func TestTranscriptSnapshotIsDetached(t *testing.T) {
	log := &transcriptLog{}
	log.append(RoleUser, "first")

	entries := log.snapshot()
	entries[0].Text = "mutated"

	if log.snapshot()[0].Text != "first" {
		t.Fatal("expected snapshot mutation to leave the log untouched")
	}
}

func TestTranscriptHistoryMapsRoles(t *testing.T) {
	log := &transcriptLog{}
	log.append(RoleUser, "hi")
	log.append(RoleModel, "hello")

	history := log.history()
	if len(history) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(history))
	}
	if history[0].Role != "user" || history[0].Text != "hi" {
		t.Fatalf("unexpected first turn: %+v", history[0])
	}
	if history[1].Role != "model" || history[1].Text != "hello" {
		t.Fatalf("unexpected second turn: %+v", history[1])
	}
}

func TestTranscriptAppendNotifies(t *testing.T) {
	var notified []TranscriptionEntry
	log := &transcriptLog{onAppend: func(entry TranscriptionEntry) {
		notified = append(notified, entry)
	}}

	log.append(RoleUser, "hi")

	if len(notified) != 1 || notified[0].Text != "hi" {
		t.Fatalf("expected append notification, got %v", notified)
	}
}

func TestPendingTurnFlushReturnsAndClears(t *testing.T) {
	var pending pendingTurn

	pending.appendInput("mala ")
	pending.appendInput("bhuk lagli")
	pending.appendOutput("chala ")
	pending.appendOutput("jevayla जाऊया")

	input, output := pending.flush()
	if input != "mala bhuk lagli" {
		t.Fatalf("unexpected flushed input: %q", input)
	}
	if output != "chala jevayla जाऊया" {
		t.Fatalf("unexpected flushed output: %q", output)
	}

	input, output = pending.flush()
	if input != "" || output != "" {
		t.Fatalf("expected empty buffers after flush, got %q / %q", input, output)
	}
}
