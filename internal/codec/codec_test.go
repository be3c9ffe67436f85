package codec

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rm-hull/alphablend/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(t *testing.T, w, h, channels int, depth raster.Depth) *raster.Buffer {
	t.Helper()
	b, err := raster.Alloc(w, h, channels, depth)
	require.NoError(t, err)
	full := depth.MaxValue()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := make([]float64, channels)
			for c := range px {
				px[c] = float64((x*7+y*13+c*29)%17) / 16 * full
			}
			if channels == 2 || channels == 4 {
				px[channels-1] = float64(x+y+1) / float64(w+h) * full
			}
			require.NoError(t, b.SetPixel(x, y, px))
		}
	}
	return b
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"png", PNG},
		{".PNG", PNG},
		{"jpg", JPEG},
		{"jpeg", JPEG},
		{"tif", TIFF},
		{"tiff", TIFF},
		{"bmp", BMP},
		{"webp", WEBP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFormat(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
		})
	}

	_, err := ParseFormat("gif")
	assert.EqualError(t, err, `unsupported image format: "gif"`)

	f, err := FormatFromPath("/tmp/out/frame.tif")
	require.NoError(t, err)
	assert.Equal(t, TIFF, f)

	assert.True(t, PNG.Encodable())
	assert.False(t, WEBP.Encodable())
	assert.Equal(t, "image/png", PNG.ContentType())
	assert.Equal(t, "application/octet-stream", Raw.ContentType())
}

func TestLosslessRoundTrip(t *testing.T) {
	layouts := []struct {
		channels int
		depth    raster.Depth
	}{
		{1, raster.Depth8},
		{3, raster.Depth8},
		{4, raster.Depth8},
		{1, raster.Depth16},
		{3, raster.Depth16},
		{4, raster.Depth16},
	}
	for _, format := range []Format{PNG, TIFF} {
		for _, l := range layouts {
			t.Run(string(format)+"/"+strings.Repeat("c", l.channels)+"/"+l.depth.String(), func(t *testing.T) {
				src := gradient(t, 9, 5, l.channels, l.depth)
				data, err := EncodeBytes(src, format)
				require.NoError(t, err)

				got, kind, err := Decode("roundtrip", bytes.NewReader(data))
				require.NoError(t, err)
				assert.Equal(t, format, kind)
				assert.True(t, src.Equal(got))
			})
		}
	}
}

func TestGrayAlphaWidensToRGBA(t *testing.T) {
	src := gradient(t, 4, 4, 2, raster.Depth8)
	data, err := EncodeBytes(src, TIFF)
	require.NoError(t, err)

	got, _, err := Decode("ga", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 4, got.Channels())

	want, err := src.Pixel(2, 3)
	require.NoError(t, err)
	px, err := got.Pixel(2, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{want[0], want[0], want[0], want[1]}, px)
}

func TestFloatBuffersEncodeAs16Bit(t *testing.T) {
	src, err := raster.Alloc(1, 1, 4, raster.DepthFloat)
	require.NoError(t, err)
	require.NoError(t, src.SetPixel(0, 0, []float64{1, 0.5, 0, 1}))

	img := ToImage(src)
	require.IsType(t, &image.NRGBA64{}, img)
	assert.Equal(t, color.NRGBA64{R: 0xffff, G: 0x8000, B: 0, A: 0xffff}, img.At(0, 0))
}

func TestFromImage(t *testing.T) {
	t.Run("opaque RGBA becomes RGB", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		for i := range img.Pix {
			img.Pix[i] = 0xff
		}
		buf, err := FromImage(img)
		require.NoError(t, err)
		assert.Equal(t, 3, buf.Channels())
	})

	t.Run("translucent RGBA is unpremultiplied", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))
		img.SetRGBA(0, 0, color.RGBA{R: 0x40, A: 0x80})
		buf, err := FromImage(img)
		require.NoError(t, err)
		assert.Equal(t, 4, buf.Channels())
		px, err := buf.Pixel(0, 0)
		require.NoError(t, err)
		assert.InDelta(t, 127, px[0], 1)
		assert.Equal(t, 128.0, px[3])
	})

	t.Run("sub-image origin is respected", func(t *testing.T) {
		img := image.NewGray(image.Rect(0, 0, 4, 4))
		img.SetGray(2, 3, color.Gray{Y: 99})
		sub := img.SubImage(image.Rect(2, 2, 4, 4))
		buf, err := FromImage(sub)
		require.NoError(t, err)
		assert.Equal(t, 2, buf.Width())
		px, err := buf.Pixel(0, 1)
		require.NoError(t, err)
		assert.Equal(t, []float64{99}, px)
	})

	t.Run("paletted images are converted", func(t *testing.T) {
		img := image.NewPaletted(image.Rect(0, 0, 2, 1), color.Palette{
			color.NRGBA{R: 255, A: 255},
			color.NRGBA{},
		})
		img.SetColorIndex(1, 0, 1)
		buf, err := FromImage(img)
		require.NoError(t, err)
		assert.Equal(t, 4, buf.Channels())
	})

	t.Run("empty image", func(t *testing.T) {
		_, err := FromImage(image.NewGray(image.Rectangle{}))
		assert.Error(t, err)
	})
}

func TestDecodeError(t *testing.T) {
	_, _, err := Decode("garbage.png", strings.NewReader("definitely not an image"))
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "garbage.png", decodeErr.Source)
	assert.ErrorIs(t, err, image.ErrFormat)
}

func TestEncodeUnsupported(t *testing.T) {
	_, err := EncodeBytes(gradient(t, 1, 1, 4, raster.Depth8), WEBP)
	var encodeErr *EncodeError
	require.ErrorAs(t, err, &encodeErr)
	assert.Equal(t, WEBP, encodeErr.Format)
}

func TestLossyFormatsEncode(t *testing.T) {
	src := gradient(t, 8, 8, 3, raster.Depth8)
	for _, format := range []Format{JPEG, BMP} {
		data, err := EncodeBytes(src, format)
		require.NoError(t, err)
		got, kind, err := Decode(string(format), bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, format, kind)
		assert.Equal(t, 8, got.Width())
		assert.Equal(t, 8, got.Height())
	}
}

type stubFetcher struct {
	data []byte
	err  error
	urls []string
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func TestSources(t *testing.T) {
	ctx := context.Background()
	src := gradient(t, 3, 3, 4, raster.Depth8)
	data, err := EncodeBytes(src, PNG)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "in.png")
	require.NoError(t, os.WriteFile(path, data, 0644))

	fetcher := &stubFetcher{data: data}
	sources := map[string]Source{
		"file":   FromFile(path),
		"bytes":  FromBytes(data),
		"reader": FromReader("reader", bytes.NewReader(data)),
		"buffer": FromBuffer(src),
		"url":    Open("https://example.com/in.png", fetcher),
	}
	for name, s := range sources {
		t.Run(name, func(t *testing.T) {
			got, err := s.Load(ctx)
			require.NoError(t, err)
			assert.True(t, src.Equal(got))
		})
	}
	assert.Equal(t, []string{"https://example.com/in.png"}, fetcher.urls)
	assert.Equal(t, path, Open(path, fetcher).String())

	t.Run("missing file", func(t *testing.T) {
		_, err := FromFile(filepath.Join(t.TempDir(), "nope.png")).Load(ctx)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("remote without fetcher", func(t *testing.T) {
		_, err := FromURL("http://example.com/x.png", nil).Load(ctx)
		assert.ErrorIs(t, err, ErrNoFetcher)
	})

	t.Run("fetch failure", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := FromURL("http://example.com/x.png", &stubFetcher{err: boom}).Load(ctx)
		assert.ErrorIs(t, err, boom)
	})
}

func TestAnimate(t *testing.T) {
	frames := []*raster.Buffer{
		gradient(t, 4, 4, 4, raster.Depth8),
		gradient(t, 4, 4, 4, raster.Depth8),
	}
	data, err := Animate(frames, 0.5)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte("acTL")))
	assert.True(t, bytes.Contains(data, []byte("fcTL")))

	_, err = Animate(nil, 0.5)
	assert.Error(t, err)

	_, err = Animate([]*raster.Buffer{frames[0], gradient(t, 2, 2, 4, raster.Depth8)}, 0.5)
	assert.EqualError(t, err, "frame 1 is 2x2, expected 4x4")
}

func opaqueAlpha(t *testing.T, channels int, depth raster.Depth) *raster.Buffer {
	t.Helper()
	b := gradient(t, 5, 3, channels, depth)
	full := depth.MaxValue()
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			px, err := b.Pixel(x, y)
			require.NoError(t, err)
			px[channels-1] = full
			require.NoError(t, b.SetPixel(x, y, px))
		}
	}
	return b
}

func TestOpaqueAlphaSurvivesPNG(t *testing.T) {
	for _, depth := range []raster.Depth{raster.Depth8, raster.Depth16} {
		t.Run(depth.String(), func(t *testing.T) {
			src := opaqueAlpha(t, 4, depth)
			require.True(t, src.Opaque())

			data, err := EncodeBytes(src, PNG)
			require.NoError(t, err)
			got, _, err := Decode("opaque", bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, 4, got.Channels())
			assert.True(t, src.Equal(got))
		})
	}

	t.Run("gray+alpha", func(t *testing.T) {
		data, err := EncodeBytes(opaqueAlpha(t, 2, raster.Depth8), PNG)
		require.NoError(t, err)
		got, _, err := Decode("opaque", bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 4, got.Channels())
	})
}

func TestLayoutMatchesDecodedOutput(t *testing.T) {
	buffers := map[string]*raster.Buffer{
		"gray":              gradient(t, 5, 3, 1, raster.Depth8),
		"gray 16-bit":       gradient(t, 5, 3, 1, raster.Depth16),
		"gray+alpha":        gradient(t, 5, 3, 2, raster.Depth8),
		"opaque gray+alpha": opaqueAlpha(t, 2, raster.Depth8),
		"rgb":               gradient(t, 5, 3, 3, raster.Depth8),
		"rgb 16-bit":        gradient(t, 5, 3, 3, raster.Depth16),
		"rgba":              gradient(t, 5, 3, 4, raster.Depth8),
		"opaque rgba":       opaqueAlpha(t, 4, raster.Depth8),
		"rgba 16-bit":       gradient(t, 5, 3, 4, raster.Depth16),
		"rgba float":        gradient(t, 5, 3, 4, raster.DepthFloat),
	}
	for name, buf := range buffers {
		for _, format := range []Format{PNG, TIFF, JPEG, BMP} {
			t.Run(name+"/"+string(format), func(t *testing.T) {
				data, err := EncodeBytes(buf, format)
				require.NoError(t, err)
				got, _, err := Decode(name, bytes.NewReader(data))
				require.NoError(t, err)

				channels, depth := Layout(buf, format)
				assert.Equal(t, got.Channels(), channels)
				assert.Equal(t, got.Depth(), depth)
			})
		}
	}

	channels, depth := Layout(buffers["gray+alpha"], Raw)
	assert.Equal(t, 2, channels)
	assert.Equal(t, raster.Depth8, depth)
}

func TestFrameDelayFraction(t *testing.T) {
	tests := []struct {
		seconds  float64
		num, den uint16
	}{
		{0, 0, 1000},
		{0.5, 500, 1000},
		{65.535, 65535, 1000},
		{70, 7000, 100},
		{1234.5, 12345, 10},
		{65535, 65535, 1},
	}
	for _, tt := range tests {
		num, den, err := frameDelayFraction(tt.seconds)
		require.NoError(t, err, tt.seconds)
		assert.Equal(t, tt.num, num, tt.seconds)
		assert.Equal(t, tt.den, den, tt.seconds)
	}

	for _, seconds := range []float64{-0.1, 70000, math.NaN(), math.Inf(1)} {
		_, _, err := frameDelayFraction(seconds)
		assert.Error(t, err, seconds)
	}

	_, err := Animate([]*raster.Buffer{gradient(t, 2, 2, 4, raster.Depth8)}, -1)
	assert.ErrorContains(t, err, "frame delay must be between 0 and 65535 seconds")
}
