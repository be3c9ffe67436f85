package pipeline

import (
	"context"
	"fmt"

	"github.com/rm-hull/alphablend/internal/codec"
	"github.com/rm-hull/alphablend/internal/composite"
	"github.com/rm-hull/alphablend/internal/raster"
	"github.com/rm-hull/alphablend/internal/resample"
)

// Operation is one step of a plan. The set of operations is closed: Resize and Overlay.
type Operation interface {
	apply(ctx context.Context, buf *raster.Buffer) (*raster.Buffer, error)
	String() string
}

type Resize struct {
	Width        int
	Height       int
	Kernel       resample.Kernel
	GaussianBlur bool
}

func (op Resize) apply(ctx context.Context, buf *raster.Buffer) (*raster.Buffer, error) {
	return resample.Resize(buf, resample.Request{
		Width:        op.Width,
		Height:       op.Height,
		Kernel:       op.Kernel,
		GaussianBlur: op.GaussianBlur,
	})
}

func (op Resize) String() string {
	return fmt.Sprintf("resize(%dx%d, kernel=%s, blur=%t)", op.Width, op.Height, op.Kernel, op.GaussianBlur)
}

// Overlay composites Source over the current image.
type Overlay struct {
	Source codec.Source
}

func (op Overlay) apply(ctx context.Context, buf *raster.Buffer) (*raster.Buffer, error) {
	// alpha is checked before the overlay is loaded
	if !buf.HasAlpha() {
		return nil, composite.ErrMissingAlpha
	}
	fg, err := op.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load overlay %s: %w", op.Source, err)
	}
	return composite.Overlay(buf, fg)
}

func (op Overlay) String() string {
	return fmt.Sprintf("overlay(%s)", op.Source)
}
