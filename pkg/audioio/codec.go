package audioio

import (
	"fmt"
	"math"
)

// Wire sample rates. Outbound audio is always resampled to WireRate before
// transmission; inbound audio arrives at PlaybackRate.
const (
	WireRate     = 16000
	PlaybackRate = 24000
)

func mimeForRate(rate int) string {
	return fmt.Sprintf("audio/pcm;rate=%d", rate)
}

// DecodeError reports a malformed PCM16 payload.
type DecodeError struct {
	Len      int // payload length in bytes
	Channels int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("audioio: pcm16 payload of %d bytes is not a multiple of %d", e.Len, 2*e.Channels)
}

// Encode resamples a captured frame to WireRate and quantizes it to PCM16LE.
// It is pure and stateless; the input frame is not modified.
func Encode(frame Frame) EncodedFrame {
	samples := downsample(frame.Samples, frame.Rate, WireRate)

	return EncodedFrame{Data: SamplesToPCM16(samples), Rate: WireRate}
}

// SamplesToPCM16 quantizes floating-point samples to PCM16LE bytes,
// clamping to [-1, 1] and rounding to nearest.
func SamplesToPCM16(samples []float32) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := math.Max(-1, math.Min(1, float64(s)))
		q := int16(math.Round(v * 32767))
		data[i*2] = byte(q)
		data[i*2+1] = byte(q >> 8)
	}
	return data
}

// Buffer is a decoded sample buffer ready for playback scheduling.
type Buffer struct {
	// Channels holds one de-interleaved sample slice per channel.
	Channels [][]float32

	// Rate is the sample rate in Hz.
	Rate int
}

// Duration returns the buffer length in seconds.
func (b Buffer) Duration() float64 {
	if b.Rate == 0 || len(b.Channels) == 0 {
		return 0
	}
	return float64(len(b.Channels[0])) / float64(b.Rate)
}

// Mono returns the first channel. Inbound audio is mono in practice.
func (b Buffer) Mono() []float32 {
	if len(b.Channels) == 0 {
		return nil
	}
	return b.Channels[0]
}

// Decode interprets data as interleaved PCM16LE, de-interleaves per channel,
// and rescales to floating point by dividing by 32768. A payload whose length
// is not a multiple of the sample width times the channel count fails with a
// *DecodeError.
func Decode(data []byte, rate, channels int) (Buffer, error) {
	if channels <= 0 {
		return Buffer{}, &DecodeError{Len: len(data), Channels: channels}
	}
	width := 2 * channels
	if len(data)%width != 0 {
		return Buffer{}, &DecodeError{Len: len(data), Channels: channels}
	}

	frames := len(data) / width
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			s := int16(data[off]) | int16(data[off+1])<<8
			out[ch][i] = float32(s) / 32768.0
		}
	}

	return Buffer{Channels: out, Rate: rate}, nil
}

// downsample reduces the sample rate by block averaging (boxcar filter).
// Averaging rather than decimating prevents aliasing on speech audio.
// Identity when the rates match.
func downsample(buf []float32, fromRate, toRate int) []float32 {
	if fromRate == toRate || len(buf) == 0 {
		return buf
	}

	ratio := float64(fromRate) / float64(toRate)
	newLen := int(math.Round(float64(len(buf)) / ratio))
	if newLen == 0 {
		return []float32{}
	}

	result := make([]float32, newLen)
	offset := 0
	for i := 0; i < newLen; i++ {
		next := int(math.Round(float64(i+1) * ratio))
		var accum float64
		count := 0
		for j := offset; j < next && j < len(buf); j++ {
			accum += float64(buf[j])
			count++
		}
		if count > 0 {
			result[i] = float32(accum / float64(count))
		}
		offset = next
	}

	return result
}

// RMS returns the root mean square of the samples, between 0.0 and 1.0.
// The dashboard uses this as a level meter.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}

	return math.Sqrt(sum / float64(len(samples)))
}
