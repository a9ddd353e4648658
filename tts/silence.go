package tts

import (
	"bytes"
	"io"
)

// MPEG-1 Layer III, 128 kbit/s, 44.1 kHz, mono. A frame with zeroed side
// information and main data decodes to 1152 samples of silence.
var silentFrameHeader = []byte{0xFF, 0xFB, 0x90, 0xC4}

const (
	silentFrameSize  = 417
	silentFrameCount = 20 // about half a second
)

var silentMP3 = buildSilence(silentFrameCount)

func buildSilence(frames int) []byte {
	out := make([]byte, 0, frames*silentFrameSize)
	for i := 0; i < frames; i++ {
		frame := make([]byte, silentFrameSize)
		copy(frame, silentFrameHeader)
		out = append(out, frame...)
	}
	return out
}

// Silence returns a short silent MP3 stream.
func Silence() io.ReadCloser {
	return io.NopCloser(bytes.NewReader(silentMP3))
}
