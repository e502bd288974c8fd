package session

import (
	"bytes"
	"testing"
	"time"
)

func TestFrameQueuePreservesPushOrder(t *testing.T) {
	queue := newFrameQueue()

	frames := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	for _, frame := range frames {
		queue.Push(frame)
	}
	queue.Close()

	var drained [][]byte
	for frame := range queue.Frames {
		drained = append(drained, frame)
	}

	if len(drained) != len(frames) {
		t.Fatalf("expected %d frames, got %d", len(frames), len(drained))
	}
	for i, frame := range frames {
		if !bytes.Equal(drained[i], frame) {
			t.Fatalf("frame %d: expected %q, got %q", i, frame, drained[i])
		}
	}
}

func TestFrameQueueBlocksUntilPush(t *testing.T) {
	queue := newFrameQueue()

	received := make(chan []byte, 1)
	go func() {
		for frame := range queue.Frames {
			received <- frame
			return
		}
	}()

	select {
	case frame := <-received:
		t.Fatalf("expected the drain to block on an empty queue, got %q", frame)
	case <-time.After(20 * time.Millisecond):
	}

	queue.Push([]byte("late"))

	select {
	case frame := <-received:
		if string(frame) != "late" {
			t.Fatalf("expected the pushed frame, got %q", frame)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the pushed frame")
	}
}

func TestFrameQueueCloseDrainsThenEnds(t *testing.T) {
	queue := newFrameQueue()
	queue.Push([]byte("queued"))
	queue.Close()

	done := make(chan [][]byte, 1)
	go func() {
		var drained [][]byte
		for frame := range queue.Frames {
			drained = append(drained, frame)
		}
		done <- drained
	}()

	select {
	case drained := <-done:
		if len(drained) != 1 || string(drained[0]) != "queued" {
			t.Fatalf("expected the queued frame before iteration ends, got %v", drained)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for iteration to end after close")
	}
}

func TestFrameQueueRejectsPushAfterClose(t *testing.T) {
	queue := newFrameQueue()
	queue.Close()
	queue.Push([]byte("dropped"))

	for frame := range queue.Frames {
		t.Fatalf("expected no frames after close, got %q", frame)
	}
}
