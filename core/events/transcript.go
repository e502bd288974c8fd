package events

const (
	KindInputTranscript  Kind = "transcript.input_fragment"
	KindOutputTranscript Kind = "transcript.output_fragment"
	KindTurnComplete     Kind = "turn.complete"
)

// InputTranscript is a partial transcription fragment of the user's
// speech within the current turn.
type InputTranscript struct {
	Base
	text string
}

func NewInputTranscript(text string) InputTranscript {
	return InputTranscript{Base: NewBase(KindInputTranscript), text: text}
}

func (e InputTranscript) Text() string { return e.text }

// OutputTranscript is a partial transcription fragment of the model's
// speech within the current turn.
type OutputTranscript struct {
	Base
	text string
}

func NewOutputTranscript(text string) OutputTranscript {
	return OutputTranscript{Base: NewBase(KindOutputTranscript), text: text}
}

func (e OutputTranscript) Text() string { return e.text }

// TurnComplete bounds the current exchange unit.
type TurnComplete struct{ Base }

func NewTurnComplete() TurnComplete {
	return TurnComplete{Base: NewBase(KindTurnComplete)}
}
