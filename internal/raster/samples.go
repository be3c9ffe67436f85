package raster

// Samples is a float64 working copy of a Buffer, owned exclusively by the operation that
// created it. Values are kept in the native scale of the source depth (0..Max).
type Samples struct {
	Width    int
	Height   int
	Channels int
	Max      float64
	Pix      []float64
}

// Samples decodes every sample of b into a new working copy.
func (b *Buffer) Samples() *Samples {
	s := &Samples{
		Width:    b.width,
		Height:   b.height,
		Channels: b.channels,
		Max:      b.depth.MaxValue(),
		Pix:      make([]float64, b.width*b.height*b.channels),
	}
	for i := range s.Pix {
		s.Pix[i] = b.sample(i)
	}
	return s
}

// NewSamples allocates a zeroed working copy with the same channel layout and scale as s.
func (s *Samples) NewSamples(width, height int) *Samples {
	return &Samples{
		Width:    width,
		Height:   height,
		Channels: s.Channels,
		Max:      s.Max,
		Pix:      make([]float64, width*height*s.Channels),
	}
}

func (s *Samples) HasAlpha() bool {
	return s.Channels == 2 || s.Channels == 4
}

// Pixel returns the slice of s.Pix holding the channels of (x, y). No bounds checks.
func (s *Samples) Pixel(x, y int) []float64 {
	i := (y*s.Width + x) * s.Channels
	return s.Pix[i : i+s.Channels]
}

// Buffer quantises the samples into a new Buffer of the given depth. Values are rescaled
// when depth's range differs from s.Max.
func (s *Samples) Buffer(depth Depth) *Buffer {
	b := &Buffer{
		width:    s.Width,
		height:   s.Height,
		channels: s.Channels,
		depth:    depth,
		pix:      make([]byte, len(s.Pix)*depth.BytesPerSample()),
	}
	scale := depth.MaxValue() / s.Max
	for i, v := range s.Pix {
		if scale != 1 {
			v *= scale
		}
		b.setSample(i, v)
	}
	return b
}
