package session

import "sync"

// TODO: Optimize memory at some point, it is not a great idea to just append
// to a slice when we already consumed a part of it. But it needs to be synced
// properly, probably a ring buffer makes sense.

// frameQueue decouples the real-time capture callback from transport
// latency: the callback appends without blocking, a drain goroutine
// consumes in order. Frames are never dropped, so backpressure from a
// slow network never stalls capture.
type frameQueue struct {
	mu             sync.Mutex
	frames         [][]byte
	framesConsumed int
	updateSignal   chan struct{}
	closed         bool
}

func newFrameQueue() *frameQueue {
	return &frameQueue{
		updateSignal: make(chan struct{}, 1),
	}
}

// Push enqueues one encoded frame. It only appends and signals; safe to
// call from the audio callback.
func (q *frameQueue) Push(frame []byte) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.frames = append(q.frames, frame)
	q.mu.Unlock()
	q.signalUpdate()
}

// Frames yields enqueued frames in push order, blocking while the queue
// is open and empty. Iteration ends when the queue is closed.
func (q *frameQueue) Frames(yield func([]byte) bool) {
	for {
		q.mu.Lock()
		if q.framesConsumed < len(q.frames) {
			frame := q.frames[q.framesConsumed]
			q.framesConsumed++
			q.mu.Unlock()
			if !yield(frame) {
				return
			}
			continue
		}

		if q.closed {
			q.mu.Unlock()
			return
		}

		q.mu.Unlock()
		<-q.updateSignal
	}
}

// Close ends iteration once already-queued frames are consumed and
// rejects further pushes.
func (q *frameQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signalUpdate()
}

func (q *frameQueue) signalUpdate() {
	select {
	case q.updateSignal <- struct{}{}:
	default:
	}
}
