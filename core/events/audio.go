package events

const (
	KindAudioChunk  Kind = "audio.chunk"
	KindInterrupted Kind = "playback.interrupted"
)

// AudioChunk carries one streamed response audio chunk, still in its
// base64 wire form.
type AudioChunk struct {
	Base
	data       string
	sampleRate int
}

func NewAudioChunk(data string, sampleRate int) AudioChunk {
	return AudioChunk{Base: NewBase(KindAudioChunk), data: data, sampleRate: sampleRate}
}

func (e AudioChunk) Data() string    { return e.data }
func (e AudioChunk) SampleRate() int { return e.sampleRate }

// Interrupted signals that the remote endpoint abandoned the current
// response mid-stream.
type Interrupted struct{ Base }

func NewInterrupted() Interrupted {
	return Interrupted{Base: NewBase(KindInterrupted)}
}
