// Package pcm converts between float sample blocks and the 16-bit
// little-endian PCM wire representation used on both directions of the
// live stream.
package pcm

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/vaanihq/vaani-core/core/audio"
)

// maxChunkBytes bounds a single inbound chunk so a corrupt length cannot
// force an unreasonable allocation. 8 MiB is well over a minute of 24kHz
// mono PCM.
const maxChunkBytes = 8 << 20

// DecodeError marks a malformed or unallocatable inbound audio chunk.
// Callers drop the chunk and keep the session alive.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode audio chunk: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode audio chunk: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Encode converts float samples in [-1, 1] into 16-bit little-endian PCM
// bytes. Out-of-range samples are clamped. Encode is total: any finite
// input, including empty, produces a valid block.
func Encode(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, sample := range samples {
		s := float64(sample)
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		var v int16
		if s < 0 {
			v = int16(s * 0x8000)
		} else {
			v = int16(s * 0x7FFF)
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// CaptureEncoding is the declared tag that accompanies every encoded
// capture frame on the wire.
func CaptureEncoding() audio.EncodingInfo {
	return audio.GetCaptureEncodingInfo()
}

// Decode converts a base64 16-bit little-endian PCM block into a playable
// buffer at the given rate and channel count.
//
// An odd trailing byte is tolerated: the incomplete final sample is
// dropped rather than failing the whole chunk.
func Decode(data string, sampleRate, channels int) (audio.Buffer, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return audio.Buffer{}, &DecodeError{Reason: "invalid base64 payload", Err: err}
	}

	return DecodeBytes(raw, sampleRate, channels)
}

// DecodeBytes is Decode for already-decoded byte payloads.
func DecodeBytes(raw []byte, sampleRate, channels int) (audio.Buffer, error) {
	if len(raw) > maxChunkBytes {
		return audio.Buffer{}, &DecodeError{
			Reason: fmt.Sprintf("chunk of %d bytes exceeds the %d byte limit", len(raw), maxChunkBytes),
		}
	}

	sampleCount := len(raw) / 2
	samples := make([]float32, sampleCount)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		if v < 0 {
			samples[i] = float32(v) / 0x8000
		} else {
			samples[i] = float32(v) / 0x7FFF
		}
	}

	return audio.Buffer{Data: samples, SampleRate: sampleRate, Channels: channels}, nil
}
