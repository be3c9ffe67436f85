package resample

import (
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/parallel"
	"github.com/rm-hull/alphablend/internal/raster"
)

// blurSigma picks the Gaussian deviation used before shrinking an axis from srcLen to
// dstLen samples: sqrt(f²-1)/2 for a reduction factor f.
func blurSigma(srcLen, dstLen int) float64 {
	f := float64(srcLen) / float64(dstLen)
	return math.Sqrt(f*f-1) / 2
}

// gaussian returns a normalised 1-d horizontal kernel covering three deviations either side.
func gaussian(sigma float64) convolution.Matrix {
	radius := int(math.Ceil(3 * sigma))
	k := convolution.NewKernel(2*radius+1, 1)
	for i := range k.Matrix {
		x := float64(i - radius)
		k.Matrix[i] = math.Exp(-x * x / (2 * sigma * sigma))
	}
	return k.Normalized()
}

func blurRows(src *raster.Samples, m convolution.Matrix) *raster.Samples {
	dst := src.NewSamples(src.Width, src.Height)
	length := m.MaxX()
	radius := length / 2
	ch := src.Channels
	rowLen := src.Width * ch

	parallel.Line(src.Height, func(start, end int) {
		for y := start; y < end; y++ {
			srcRow := src.Pix[y*rowLen : (y+1)*rowLen]
			dstRow := dst.Pix[y*rowLen : (y+1)*rowLen]
			for x := 0; x < src.Width; x++ {
				for k := 0; k < length; k++ {
					w := m.At(k, 0)
					j := clampIndex(x-radius+k, src.Width) * ch
					for c := 0; c < ch; c++ {
						dstRow[x*ch+c] += w * srcRow[j+c]
					}
				}
			}
		}
	})
	return dst
}

func blurColumns(src *raster.Samples, m convolution.Matrix) *raster.Samples {
	dst := src.NewSamples(src.Width, src.Height)
	column := m.Transposed()
	length := column.MaxY()
	radius := length / 2
	rowLen := src.Width * src.Channels

	parallel.Line(src.Height, func(start, end int) {
		for y := start; y < end; y++ {
			dstRow := dst.Pix[y*rowLen : (y+1)*rowLen]
			for k := 0; k < length; k++ {
				w := column.At(0, k)
				j := clampIndex(y-radius+k, src.Height)
				srcRow := src.Pix[j*rowLen : (j+1)*rowLen]
				for i, v := range srcRow {
					dstRow[i] += w * v
				}
			}
		}
	})
	return dst
}
