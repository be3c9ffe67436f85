package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/rm-hull/alphablend/internal/raster"
	"golang.org/x/image/tiff"
)

const jpegQuality = 90

type EncodeError struct {
	Format Format
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// ToImage wraps buf as a stdlib image. Float buffers are quantised to 16 bits first.
// Gray+alpha is widened to NRGBA since the standard library has no two-channel type.
func ToImage(buf *raster.Buffer) image.Image {
	if buf.Depth() == raster.DepthFloat {
		buf = buf.Samples().Buffer(raster.Depth16)
	}
	w, h := buf.Width(), buf.Height()
	rect := image.Rect(0, 0, w, h)
	pix := buf.Bytes()
	wide := buf.Depth() == raster.Depth16

	switch buf.Channels() {
	case 1:
		if wide {
			return &image.Gray16{Pix: pix, Stride: w * 2, Rect: rect}
		}
		return &image.Gray{Pix: pix, Stride: w, Rect: rect}

	case 2:
		bps := buf.Depth().BytesPerSample()
		out := make([]byte, 0, w*h*4*bps)
		for i := 0; i < len(pix); i += 2 * bps {
			g, a := pix[i:i+bps], pix[i+bps:i+2*bps]
			out = append(out, g...)
			out = append(out, g...)
			out = append(out, g...)
			out = append(out, a...)
		}
		if wide {
			return &image.NRGBA64{Pix: out, Stride: w * 8, Rect: rect}
		}
		return &image.NRGBA{Pix: out, Stride: w * 4, Rect: rect}

	case 3:
		bps := buf.Depth().BytesPerSample()
		out := make([]byte, 0, w*h*4*bps)
		for i := 0; i < len(pix); i += 3 * bps {
			out = append(out, pix[i:i+3*bps]...)
			for j := 0; j < bps; j++ {
				out = append(out, 0xff)
			}
		}
		if wide {
			return &image.RGBA64{Pix: out, Stride: w * 8, Rect: rect}
		}
		return &image.RGBA{Pix: out, Stride: w * 4, Rect: rect}

	default:
		if wide {
			return &image.NRGBA64{Pix: pix, Stride: w * 8, Rect: rect}
		}
		return &image.NRGBA{Pix: pix, Stride: w * 4, Rect: rect}
	}
}

// translucent hides the Opaque method of the image it wraps, so the PNG encoder keeps an
// alpha channel even when every pixel is fully opaque.
type translucent struct {
	image.Image
}

func (translucent) Opaque() bool {
	return false
}

// Encode writes buf in the requested format. PNG and TIFF are lossless and keep the alpha
// channel of gray+alpha and RGBA buffers.
func Encode(w io.Writer, buf *raster.Buffer, format Format) error {
	img := ToImage(buf)

	var err error
	switch format {
	case PNG:
		if buf.HasAlpha() {
			img = translucent{img}
		}
		err = imgio.PNGEncoder()(w, img)
	case JPEG:
		err = imgio.JPEGEncoder(jpegQuality)(w, img)
	case BMP:
		err = imgio.BMPEncoder()(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = errors.New("no encoder available")
	}
	if err != nil {
		return &EncodeError{Format: format, Err: err}
	}
	return nil
}

func EncodeBytes(buf *raster.Buffer, format Format) ([]byte, error) {
	var b bytes.Buffer
	if err := Encode(&b, buf, format); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Layout reports the channel count and depth that decoding the output of Encode(buf, format)
// yields. Gray+alpha widens to RGBA in PNG and TIFF; JPEG and BMP are 8-bit without alpha,
// except that BMP keeps a (non-opaque) RGBA buffer as 32 bits per pixel.
func Layout(buf *raster.Buffer, format Format) (int, raster.Depth) {
	channels, depth := buf.Channels(), buf.Depth()
	if depth == raster.DepthFloat {
		depth = raster.Depth16
	}

	switch format {
	case PNG, TIFF:
		if channels == 2 {
			channels = 4
		}
		return channels, depth
	case JPEG:
		if channels == 1 && depth == raster.Depth8 {
			return 1, raster.Depth8
		}
		return 3, raster.Depth8
	case BMP:
		if buf.HasAlpha() && depth == raster.Depth8 && !buf.Opaque() {
			return 4, raster.Depth8
		}
		return 3, raster.Depth8
	}
	return buf.Channels(), buf.Depth()
}
