package raster

// PremultiplyPixel scales the colour channels of px by alpha/full in place. The last
// channel is taken as alpha.
func PremultiplyPixel(px []float64, full float64) {
	last := len(px) - 1
	a := px[last] / full
	for c := 0; c < last; c++ {
		px[c] *= a
	}
}

// UnpremultiplyPixel reverses PremultiplyPixel in place. Alpha is clamped to [0,full] and
// colour to [0,alpha] first so interpolation overshoot cannot escape the valid range.
// Where alpha is zero the colour channels are set to zero.
func UnpremultiplyPixel(px []float64, full float64) {
	last := len(px) - 1
	a := clamp(px[last], 0, full)
	px[last] = a
	if a == 0 {
		for c := 0; c < last; c++ {
			px[c] = 0
		}
		return
	}
	for c := 0; c < last; c++ {
		px[c] = clamp(px[c], 0, a) * full / a
	}
}

// Premultiply converts the working copy to premultiplied alpha in place. It is a no-op
// for layouts without alpha.
func (s *Samples) Premultiply() {
	if !s.HasAlpha() {
		return
	}
	for i := 0; i < len(s.Pix); i += s.Channels {
		PremultiplyPixel(s.Pix[i:i+s.Channels], s.Max)
	}
}

func (s *Samples) Unpremultiply() {
	if !s.HasAlpha() {
		return
	}
	for i := 0; i < len(s.Pix); i += s.Channels {
		UnpremultiplyPixel(s.Pix[i:i+s.Channels], s.Max)
	}
}

// Premultiply returns a new buffer, of the same depth, whose colour channels are scaled
// by each pixel's alpha. Buffers without alpha are returned unchanged.
func Premultiply(b *Buffer) *Buffer {
	if !b.HasAlpha() {
		return b
	}
	s := b.Samples()
	s.Premultiply()
	return s.Buffer(b.depth)
}

// Unpremultiply divides colour channels by alpha. Fully transparent pixels come back as
// zero colour rather than being divided.
func Unpremultiply(b *Buffer) *Buffer {
	if !b.HasAlpha() {
		return b
	}
	s := b.Samples()
	s.Unpremultiply()
	return s.Buffer(b.depth)
}
