package raster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Depth is the storage format of a single channel sample.
type Depth uint8

const (
	Depth8     Depth = 8
	Depth16    Depth = 16
	DepthFloat Depth = 32
)

func (d Depth) BytesPerSample() int {
	switch d {
	case Depth8:
		return 1
	case Depth16:
		return 2
	case DepthFloat:
		return 4
	}
	return 0
}

// MaxValue is the sample value representing full intensity (and full opacity).
func (d Depth) MaxValue() float64 {
	switch d {
	case Depth8:
		return math.MaxUint8
	case Depth16:
		return math.MaxUint16
	}
	return 1
}

func (d Depth) valid() bool {
	return d.BytesPerSample() > 0
}

func (d Depth) String() string {
	switch d {
	case Depth8:
		return "uchar"
	case Depth16:
		return "ushort"
	case DepthFloat:
		return "float"
	}
	return fmt.Sprintf("depth(%d)", uint8(d))
}

var ErrOutOfBounds = errors.New("pixel coordinate out of bounds")

// ShapeError reports a buffer whose declared shape does not describe its sample data.
type ShapeError struct {
	Width    int
	Height   int
	Channels int
	Depth    Depth
	Length   int
	Reason   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid buffer shape %dx%dx%d (%s, %d bytes): %s",
		e.Width, e.Height, e.Channels, e.Depth, e.Length, e.Reason)
}

// Buffer is an immutable block of row-major interleaved samples. Gray, gray+alpha, RGB and
// RGBA layouts are supported; alpha, when present, is always the last channel.
type Buffer struct {
	width    int
	height   int
	channels int
	depth    Depth
	pix      []byte
}

// New validates the shape against the sample data and returns a buffer holding a copy of pix.
func New(width, height, channels int, depth Depth, pix []byte) (*Buffer, error) {
	if err := checkShape(width, height, channels, depth, len(pix)); err != nil {
		return nil, err
	}
	return &Buffer{
		width:    width,
		height:   height,
		channels: channels,
		depth:    depth,
		pix:      bytes.Clone(pix),
	}, nil
}

// Alloc returns a zeroed (fully transparent, black) buffer of the given shape.
func Alloc(width, height, channels int, depth Depth) (*Buffer, error) {
	if err := checkShape(width, height, channels, depth, -1); err != nil {
		return nil, err
	}
	return &Buffer{
		width:    width,
		height:   height,
		channels: channels,
		depth:    depth,
		pix:      make([]byte, width*height*channels*depth.BytesPerSample()),
	}, nil
}

func checkShape(width, height, channels int, depth Depth, length int) error {
	shapeErr := func(reason string) error {
		return &ShapeError{Width: width, Height: height, Channels: channels, Depth: depth, Length: length, Reason: reason}
	}
	switch {
	case width <= 0 || height <= 0:
		return shapeErr("dimensions must be positive")
	case channels < 1 || channels > 4:
		return shapeErr("channel count must be between 1 and 4")
	case !depth.valid():
		return shapeErr("unsupported depth")
	}
	if length >= 0 && length != width*height*channels*depth.BytesPerSample() {
		return shapeErr(fmt.Sprintf("expected %d bytes", width*height*channels*depth.BytesPerSample()))
	}
	return nil
}

func (b *Buffer) Width() int    { return b.width }
func (b *Buffer) Height() int   { return b.height }
func (b *Buffer) Channels() int { return b.channels }
func (b *Buffer) Depth() Depth  { return b.depth }

// HasAlpha is true for the gray+alpha and RGBA layouts.
func (b *Buffer) HasAlpha() bool {
	return b.channels == 2 || b.channels == 4
}

// Opaque reports whether every alpha sample is at the depth's maximum. Buffers without
// alpha are always opaque.
func (b *Buffer) Opaque() bool {
	if !b.HasAlpha() {
		return true
	}
	full := b.depth.MaxValue()
	for i := b.channels - 1; i < b.width*b.height*b.channels; i += b.channels {
		if b.sample(i) != full {
			return false
		}
	}
	return true
}

// Bytes returns a copy of the raw sample storage.
func (b *Buffer) Bytes() []byte {
	return bytes.Clone(b.pix)
}

func (b *Buffer) Len() int {
	return len(b.pix)
}

// Equal reports whether both buffers have the same shape and identical sample bytes.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.width == other.width &&
		b.height == other.height &&
		b.channels == other.channels &&
		b.depth == other.depth &&
		bytes.Equal(b.pix, other.pix)
}

func (b *Buffer) offset(x, y int) (int, error) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return 0, fmt.Errorf("(%d,%d) in %dx%d buffer: %w", x, y, b.width, b.height, ErrOutOfBounds)
	}
	return (y*b.width + x) * b.channels, nil
}

// Pixel returns the channel vector at (x, y) in the depth's native scale.
func (b *Buffer) Pixel(x, y int) ([]float64, error) {
	i, err := b.offset(x, y)
	if err != nil {
		return nil, err
	}
	px := make([]float64, b.channels)
	for c := range px {
		px[c] = b.sample(i + c)
	}
	return px, nil
}

// SetPixel stores a channel vector at (x, y). It is intended for producers populating a
// freshly allocated buffer before handing it on; buffers are never modified once shared.
func (b *Buffer) SetPixel(x, y int, px []float64) error {
	i, err := b.offset(x, y)
	if err != nil {
		return err
	}
	if len(px) != b.channels {
		return fmt.Errorf("pixel has %d channels, buffer has %d", len(px), b.channels)
	}
	for c, v := range px {
		b.setSample(i+c, v)
	}
	return nil
}

func (b *Buffer) sample(i int) float64 {
	switch b.depth {
	case Depth8:
		return float64(b.pix[i])
	case Depth16:
		return float64(binary.BigEndian.Uint16(b.pix[i*2:]))
	default:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(b.pix[i*4:])))
	}
}

// setSample rounds half away from zero and clamps into the depth's range.
func (b *Buffer) setSample(i int, v float64) {
	switch b.depth {
	case Depth8:
		b.pix[i] = uint8(clamp(math.Round(v), 0, math.MaxUint8))
	case Depth16:
		binary.BigEndian.PutUint16(b.pix[i*2:], uint16(clamp(math.Round(v), 0, math.MaxUint16)))
	default:
		binary.BigEndian.PutUint32(b.pix[i*4:], math.Float32bits(float32(clamp(v, 0, 1))))
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
