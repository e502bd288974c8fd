// Package events defines the typed inbound live-transport event contract.
//
// Event kinds:
//
//   - AudioChunk (audio.chunk): base64 16-bit little-endian PCM payload of
//     one streamed response chunk, tagged with its sample rate.
//   - Interrupted (playback.interrupted): the remote endpoint cut the
//     current response short; buffered audio for the turn is stale.
//   - InputTranscript (transcript.input_fragment): partial transcription
//     of the user's speech for the current turn.
//   - OutputTranscript (transcript.output_fragment): partial transcription
//     of the model's speech for the current turn.
//   - TurnComplete (turn.complete): the current exchange unit finished;
//     accumulated fragments are final.
//   - Error (transport.error): the transport failed while open.
//   - Closed (transport.closed): the transport closed, cleanly or not.
package events
