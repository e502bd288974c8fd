package audio

import "strconv"

const (
	// CaptureSampleRate is the fixed microphone capture rate.
	CaptureSampleRate = 16000
	// PlaybackSampleRate is the fixed rate of inbound response audio.
	PlaybackSampleRate = 24000
	// CaptureBlockSize is the number of samples per capture frame handed to
	// the encoder.
	CaptureBlockSize = 4096

	DefaultFormat = "raw-pcm-16le"
)

func GetCaptureEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: CaptureSampleRate, Format: EncodingPCM16LE}
}

func GetPlaybackEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: PlaybackSampleRate, Format: EncodingPCM16LE}
}

type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// MimeType renders the encoding the way the live wire expects it tagged.
func (e EncodingInfo) MimeType() string {
	if e.SampleRate == 0 {
		return "audio/pcm"
	}
	return "audio/pcm;rate=" + strconv.Itoa(e.SampleRate)
}

type encodingFormat string

func (e encodingFormat) Name() string { return string(e) }

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingPCM16LE:
		return 2
	}
	return -1
}

const (
	EncodingPCM16LE encodingFormat = "raw-pcm-16le"
)
