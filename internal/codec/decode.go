package codec

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/rm-hull/alphablend/internal/raster"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeError wraps a failure to turn an encoded stream into pixels.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode reads any registered format (png, jpeg, tiff, bmp, webp).
func Decode(name string, r io.Reader) (*raster.Buffer, Format, error) {
	img, kind, err := image.Decode(r)
	if err != nil {
		return nil, "", &DecodeError{Source: name, Err: err}
	}
	format, err := ParseFormat(kind)
	if err != nil {
		format = Format(kind)
	}
	buf, err := FromImage(img)
	if err != nil {
		return nil, "", &DecodeError{Source: name, Err: err}
	}
	return buf, format, nil
}

// FromImage copies a decoded image into a Buffer. Unassociated-alpha images keep their
// alpha channel; premultiplied images are kept as RGB when fully opaque and otherwise
// unpremultiplied into RGBA.
func FromImage(img image.Image) (*raster.Buffer, error) {
	r := img.Bounds()
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image has no pixels: %v", r)
	}

	switch m := img.(type) {
	case *image.Gray:
		return packRows(w, h, 1, raster.Depth8, m.Pix, m.Stride)
	case *image.Gray16:
		return packRows(w, h, 1, raster.Depth16, m.Pix, m.Stride)
	case *image.NRGBA:
		return packRows(w, h, 4, raster.Depth8, m.Pix, m.Stride)
	case *image.NRGBA64:
		return packRows(w, h, 4, raster.Depth16, m.Pix, m.Stride)
	case *image.RGBA:
		if m.Opaque() {
			return dropAlpha(w, h, raster.Depth8, m.Pix, m.Stride)
		}
	case *image.RGBA64:
		if m.Opaque() {
			return dropAlpha(w, h, raster.Depth16, m.Pix, m.Stride)
		}
		dst := image.NewNRGBA64(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), m, r.Min, draw.Src)
		return packRows(w, h, 4, raster.Depth16, dst.Pix, dst.Stride)
	}

	if opaque(img) {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
		return dropAlpha(w, h, raster.Depth8, dst.Pix, dst.Stride)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return packRows(w, h, 4, raster.Depth8, dst.Pix, dst.Stride)
}

func opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	r := img.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

// packRows drops any row padding from a stdlib Pix slice.
func packRows(w, h, channels int, depth raster.Depth, pix []byte, stride int) (*raster.Buffer, error) {
	rowLen := w * channels * depth.BytesPerSample()
	out := make([]byte, 0, rowLen*h)
	for y := 0; y < h; y++ {
		out = append(out, pix[y*stride:y*stride+rowLen]...)
	}
	return raster.New(w, h, channels, depth, out)
}

// dropAlpha keeps the RGB samples of an opaque RGBA/RGBA64 Pix slice.
func dropAlpha(w, h int, depth raster.Depth, pix []byte, stride int) (*raster.Buffer, error) {
	bps := depth.BytesPerSample()
	out := make([]byte, 0, w*h*3*bps)
	for y := 0; y < h; y++ {
		row := pix[y*stride:]
		for x := 0; x < w; x++ {
			out = append(out, row[x*4*bps:x*4*bps+3*bps]...)
		}
	}
	return raster.New(w, h, 3, depth, out)
}
