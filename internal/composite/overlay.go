package composite

import (
	"errors"

	"github.com/rm-hull/alphablend/internal/raster"
)

var ErrMissingAlpha = errors.New("Input image must have an alpha channel")

// Rec. 601 luma weights, used when a colour foreground is laid over a gray background.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Overlay composites foreground over background with the "over" operator:
//
//	Aout = Af + Ab*(1-Af)
//	Cout = (Cf*Af + Cb*Ab*(1-Af)) / Aout
//
// Both images are anchored at the origin and only their intersection is blended; the
// rest of the background is copied unchanged, as are overlapped pixels where the
// foreground is fully transparent. The result has the background's dimensions, channel
// layout and depth. The background must carry an alpha channel.
func Overlay(background, foreground *raster.Buffer) (*raster.Buffer, error) {
	if !background.HasAlpha() {
		return nil, ErrMissingAlpha
	}

	out := background.Samples()
	fg := foreground.Samples()
	w := min(out.Width, fg.Width)
	h := min(out.Height, fg.Height)

	bgColours := out.Channels - 1
	fgColours := fg.Channels
	if fg.HasAlpha() {
		fgColours--
	}
	scale := out.Max / fg.Max

	// scratch pixels in the background's layout and scale, premultiplied
	var bp, fp [4]float64
	b, f := bp[:out.Channels], fp[:out.Channels]

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := fg.Pixel(x, y)
			af := 1.0
			if fg.HasAlpha() {
				af = src[fgColours] / fg.Max
			}
			if af <= 0 {
				continue
			}

			dst := out.Pixel(x, y)
			copy(b, dst)
			raster.PremultiplyPixel(b, out.Max)
			convert(f[:bgColours], src[:fgColours], scale)
			f[bgColours] = af * out.Max
			raster.PremultiplyPixel(f, out.Max)

			ab := b[bgColours] / out.Max
			for c := 0; c < bgColours; c++ {
				dst[c] = f[c] + b[c]*(1-af)
			}
			dst[bgColours] = (af + ab*(1-af)) * out.Max
			raster.UnpremultiplyPixel(dst, out.Max)
		}
	}

	return out.Buffer(background.Depth()), nil
}

// convert maps foreground colour samples onto the background's colour layout.
func convert(dst, src []float64, scale float64) {
	switch {
	case len(dst) == len(src):
		for c := range src {
			dst[c] = src[c] * scale
		}
	case len(dst) == 3:
		for c := range dst {
			dst[c] = src[0] * scale
		}
	default:
		dst[0] = (lumaR*src[0] + lumaG*src[1] + lumaB*src[2]) * scale
	}
}
