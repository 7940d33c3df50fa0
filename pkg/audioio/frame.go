package audioio

// Frame is one block of raw mono floating-point samples as delivered by a
// capture device callback. Frames are ephemeral: produced once per callback
// and consumed immediately by the codec.
type Frame struct {
	// Samples contains mono samples in the range [-1, 1].
	Samples []float32

	// Rate is the native sample rate of this frame in Hz.
	Rate int
}

// Duration returns the frame length in seconds.
func (f Frame) Duration() float64 {
	if f.Rate == 0 {
		return 0
	}
	return float64(len(f.Samples)) / float64(f.Rate)
}

// EncodedFrame is a wire-ready PCM16 little-endian payload.
type EncodedFrame struct {
	// Data is interleaved PCM16LE bytes.
	Data []byte

	// Rate is the declared sample rate of the payload.
	Rate int
}

// MimeType returns the mime tag sent alongside the payload,
// e.g. "audio/pcm;rate=16000".
func (e EncodedFrame) MimeType() string {
	return mimeForRate(e.Rate)
}

// Duration returns the payload length in seconds.
func (e EncodedFrame) Duration() float64 {
	if e.Rate == 0 {
		return 0
	}
	return float64(len(e.Data)/2) / float64(e.Rate)
}
