package voxio

import "io"

// packetStatus reports the outcome of a single decode step.
type packetStatus int

const (
	// packetOK means samples were produced and decoding should continue.
	packetOK packetStatus = iota
	// packetEOF means the stream is exhausted. Samples returned with it are
	// the last decoded audio and are still emitted; the worker trims the
	// trailing padding.
	packetEOF
	// packetRetry means no samples were produced this call (e.g. a header
	// packet was consumed) and the worker should call next immediately
	// without treating it as an error or end of stream.
	packetRetry
)

// trackDecoder is the contract every container/codec adapter implements.
// Exactly one goroutine (the worker) ever calls into a trackDecoder.
type trackDecoder interface {
	// sampleRate is the native decode rate of the stream.
	sampleRate() int
	// channelCount is the number of interleaved channels per frame. Falls
	// back to 2 for Opus-in-Matroska streams that omit channel mapping.
	channelCount() int
	// totalFrames returns the stream's total decoded frame count, encoder
	// delay and trailing padding included, and whether it is known; adapters
	// that cannot determine it (WAV) report ok=false.
	totalFrames() (frames uint64, ok bool)
	// encoderDelayFrames is the number of priming frames to discard from the
	// start of decode output.
	encoderDelayFrames() uint64
	// trailingPaddingFrames is the number of frames to discard from the end
	// of decode output.
	trailingPaddingFrames() uint64
	// nextPacket decodes one unit of audio into interleaved float32 samples
	// in [-1, 1] and returns it along with the outcome.
	nextPacket() ([]float32, packetStatus, error)
	// seek moves the read position to the given time in seconds and returns
	// the actual timestamp landed on, which may differ from the request.
	seek(seconds float64) (actualSeconds float64, err error)
	// close releases underlying file handles.
	close() error
}

// openTrackDecoder dispatches to a format-specific adapter by file
// extension, matching the factory-by-extension pattern the rest of the
// codec layer uses.
func openTrackDecoder(path string) (trackDecoder, error) {
	ext := extOf(path)
	switch ext {
	case "mp3":
		return openMP3Decoder(path)
	case "flac":
		return openFLACDecoder(path)
	case "ogg", "oga":
		return openVorbisDecoder(path)
	case "wav", "wave":
		return openWAVDecoder(path)
	case "opus":
		return openOpusDecoder(path)
	default:
		return nil, errDecoder("unsupported container: " + ext)
	}
}

func extOf(path string) string {
	dot := -1
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			dot = i
			break
		}
		if path[i] == '/' {
			break
		}
	}
	if dot < 0 {
		return ""
	}
	ext := path[dot+1:]
	out := make([]byte, len(ext))
	for i := 0; i < len(ext); i++ {
		c := ext[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// readFull is a small helper adapters use to fill a byte buffer from an
// io.Reader, tolerating io.EOF only once the buffer is fully drained.
func readFull(r io.Reader, buf []byte) (int, error) {
	return io.ReadFull(r, buf)
}
