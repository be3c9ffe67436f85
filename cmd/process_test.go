package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rm-hull/alphablend/internal/codec"
	"github.com/rm-hull/alphablend/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSolid(t *testing.T, path string, w, h int, px ...float64) {
	t.Helper()
	b, err := raster.Alloc(w, h, len(px), raster.Depth8)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			require.NoError(t, b.SetPixel(x, y, px))
		}
	}
	format, err := codec.FormatFromPath(path)
	require.NoError(t, err)
	data, err := codec.EncodeBytes(b, format)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestResize(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.tiff")
	writeSolid(t, in, 10, 10, 20, 40, 60, 80)

	require.NoError(t, Resize(ctx, in, out, 5, 2, "lanczos2", false))
	buf, err := codec.FromFile(out).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, buf.Width())
	assert.Equal(t, 2, buf.Height())

	err = Resize(ctx, in, out, 5, 2, "nohalo", false)
	assert.EqualError(t, err, `unknown interpolation kernel: "nohalo"`)
}

func TestOverlayAndCompare(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	bg := filepath.Join(dir, "bg.png")
	l1 := filepath.Join(dir, "l1.png")
	l2 := filepath.Join(dir, "l2.png")
	writeSolid(t, bg, 4, 4, 255, 255, 255, 200)
	writeSolid(t, l1, 4, 4, 255, 0, 0, 100)
	writeSolid(t, l2, 2, 2, 0, 0, 255, 60)

	out := filepath.Join(dir, "out.tiff")
	anim := filepath.Join(dir, "steps.png")
	require.NoError(t, Overlay(ctx, out, bg, []string{l1, l2}, anim, 0.25))

	data, err := os.ReadFile(anim)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte("acTL")))

	mse, err := Compare(ctx, out, out)
	require.NoError(t, err)
	assert.Zero(t, mse)

	mse, err = Compare(ctx, out, bg)
	require.NoError(t, err)
	assert.Greater(t, mse, 0.0)

	small := filepath.Join(dir, "small.png")
	writeSolid(t, small, 2, 2, 0, 0, 0, 0)
	_, err = Compare(ctx, out, small)
	assert.ErrorIs(t, err, raster.ErrIncomparable)
}
