package gemini

import (
	"strconv"
	"strings"

	"github.com/vaanihq/vaani-core/core/audio"
	"github.com/vaanihq/vaani-core/core/events"
)

type setupMessage struct {
	Setup setupPayload `json:"setup"`
}

type setupPayload struct {
	Model                    string            `json:"model"`
	GenerationConfig         *generationConfig `json:"generationConfig,omitempty"`
	SystemInstruction        *content          `json:"systemInstruction,omitempty"`
	InputAudioTranscription  *struct{}         `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription *struct{}         `json:"outputAudioTranscription,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts,omitempty"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type realtimeInputMessage struct {
	RealtimeInput realtimeInput `json:"realtimeInput"`
}

type realtimeInput struct {
	Audio *inlineData `json:"audio,omitempty"`
}

type serverMessage struct {
	SetupComplete *struct{}      `json:"setupComplete,omitempty"`
	ServerContent *serverContent `json:"serverContent,omitempty"`
	GoAway        *goAway        `json:"goAway,omitempty"`
}

type serverContent struct {
	ModelTurn           *content       `json:"modelTurn,omitempty"`
	TurnComplete        bool           `json:"turnComplete,omitempty"`
	Interrupted         bool           `json:"interrupted,omitempty"`
	InputTranscription  *transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *transcription `json:"outputTranscription,omitempty"`
}

type transcription struct {
	Text string `json:"text,omitempty"`
}

type goAway struct {
	TimeLeft string `json:"timeLeft,omitempty"`
}

// translate flattens one parsed server message into session events, in
// the order the message carries them. Interruption is translated before
// any audio of the same message so stale chunks are never scheduled over
// a reset playback cursor.
func translate(msg serverMessage) []events.Event {
	serverContent := msg.ServerContent
	if serverContent == nil {
		return nil
	}

	var out []events.Event

	if serverContent.Interrupted {
		out = append(out, events.NewInterrupted())
	}

	if serverContent.ModelTurn != nil {
		for _, part := range serverContent.ModelTurn.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			out = append(out, events.NewAudioChunk(
				part.InlineData.Data,
				sampleRateFromMimeType(part.InlineData.MimeType),
			))
		}
	}

	if serverContent.InputTranscription != nil && serverContent.InputTranscription.Text != "" {
		out = append(out, events.NewInputTranscript(serverContent.InputTranscription.Text))
	}
	if serverContent.OutputTranscription != nil && serverContent.OutputTranscription.Text != "" {
		out = append(out, events.NewOutputTranscript(serverContent.OutputTranscription.Text))
	}

	if serverContent.TurnComplete {
		out = append(out, events.NewTurnComplete())
	}

	return out
}

// sampleRateFromMimeType extracts the rate from tags like
// "audio/pcm;rate=24000", falling back to the fixed playback rate.
func sampleRateFromMimeType(mimeType string) int {
	for _, param := range strings.Split(mimeType, ";") {
		param = strings.TrimSpace(param)
		if rate, ok := strings.CutPrefix(param, "rate="); ok {
			if parsed, err := strconv.Atoi(rate); err == nil && parsed > 0 {
				return parsed
			}
		}
	}

	return audio.PlaybackSampleRate
}
