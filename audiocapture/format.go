package audiocapture

import (
	"encoding/binary"
	"fmt"
	"math"
)

// SampleFormat is a native device sample encoding. All multi-byte formats
// are little-endian and interleaved.
type SampleFormat int

const (
	FormatUnknown SampleFormat = iota
	FormatU8
	FormatS16
	FormatS24 // Packed, 3 bytes per sample
	FormatS32
	FormatF32
)

func (f SampleFormat) String() string {
	switch f {
	case FormatU8:
		return "u8"
	case FormatS16:
		return "s16"
	case FormatS24:
		return "s24"
	case FormatS32:
		return "s32"
	case FormatF32:
		return "f32"
	default:
		return "unknown"
	}
}

// Size returns the number of bytes per sample, or 0 for unknown formats.
func (f SampleFormat) Size() int {
	switch f {
	case FormatU8:
		return 1
	case FormatS16:
		return 2
	case FormatS24:
		return 3
	case FormatS32, FormatF32:
		return 4
	default:
		return 0
	}
}

// Downmixer converts interleaved device frames into mono int16 samples.
//
// Every channel sample is first converted to int16, then each frame is reduced
// to the integer mean of its channels (sum divided by channel count,
// truncating toward zero).
type Downmixer struct {
	format   SampleFormat
	channels int
	frame    int // bytes per frame
	out      []int16
}

// NewDownmixer returns a Downmixer for the given device format.
func NewDownmixer(format SampleFormat, channels int) (*Downmixer, error) {
	if format.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("audiocapture: invalid channel count %d", channels)
	}
	return &Downmixer{
		format:   format,
		channels: channels,
		frame:    format.Size() * channels,
	}, nil
}

// Mono decodes data and returns one mono sample per complete frame.
// The returned slice is reused by the next call.
func (d *Downmixer) Mono(data []byte) []int16 {
	frames := len(data) / d.frame
	if cap(d.out) < frames {
		d.out = make([]int16, frames)
	}
	out := d.out[:frames]

	size := d.format.Size()
	for i := range frames {
		base := i * d.frame
		var sum int32
		for ch := range d.channels {
			off := base + ch*size
			sum += int32(decodeSample(d.format, data[off:off+size]))
		}
		out[i] = int16(sum / int32(d.channels))
	}
	return out
}

// decodeSample converts one encoded sample to int16.
func decodeSample(f SampleFormat, b []byte) int16 {
	switch f {
	case FormatU8:
		return int16(int(b[0])-128) << 8
	case FormatS16:
		return int16(binary.LittleEndian.Uint16(b))
	case FormatS24:
		v := int32(b[0]) | int32(b[1])<<8 | int32(int8(b[2]))<<16
		return int16(v >> 8)
	case FormatS32:
		return int16(int32(binary.LittleEndian.Uint32(b)) >> 16)
	case FormatF32:
		return floatToInt16(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	default:
		return 0
	}
}

func floatToInt16(s float32) int16 {
	switch {
	case math.IsNaN(float64(s)):
		return 0
	case s >= 1:
		return math.MaxInt16
	case s <= -1:
		return -math.MaxInt16
	}
	return int16(math.Round(float64(s) * math.MaxInt16))
}
