package pipeline

import (
	"errors"

	"github.com/rm-hull/alphablend/internal/codec"
	"github.com/rm-hull/alphablend/internal/resample"
)

type ResizeOption func(*Resize)

// WithoutGaussianBlur skips the low-pass pre-filter when downsampling.
func WithoutGaussianBlur() ResizeOption {
	return func(r *Resize) {
		r.GaussianBlur = false
	}
}

func WithGaussianBlur(enabled bool) ResizeOption {
	return func(r *Resize) {
		r.GaussianBlur = enabled
	}
}

// Builder collects operations for a single source. Nothing is loaded or computed until
// one of the terminals (Run, ToBuffer, ToFile) is called. The first invalid call is
// remembered and reported by Plan and every terminal.
type Builder struct {
	src       codec.Source
	ops       []Operation
	kernel    resample.Kernel
	keepSteps bool
	err       error
}

func New(src codec.Source) *Builder {
	b := &Builder{src: src, kernel: resample.DefaultKernel}
	if src == nil {
		b.err = errors.New("no input source")
	}
	return b
}

// Resize scales to exactly width x height. The Gaussian pre-filter is on by default.
func (b *Builder) Resize(width, height int, opts ...ResizeOption) *Builder {
	if b.err != nil {
		return b
	}
	if width <= 0 || height <= 0 {
		b.err = &resample.InvalidDimensionsError{Width: width, Height: height}
		return b
	}
	op := Resize{Width: width, Height: height, GaussianBlur: true}
	for _, opt := range opts {
		opt(&op)
	}
	b.ops = append(b.ops, op)
	return b
}

// InterpolateWith selects the kernel used by every resize in the plan.
func (b *Builder) InterpolateWith(name string) *Builder {
	if b.err != nil {
		return b
	}
	k, err := resample.ParseKernel(name)
	if err != nil {
		b.err = err
		return b
	}
	b.kernel = k
	return b
}

func (b *Builder) OverlayWith(src codec.Source) *Builder {
	if b.err != nil {
		return b
	}
	if src == nil {
		b.err = errors.New("no overlay source")
		return b
	}
	b.ops = append(b.ops, Overlay{Source: src})
	return b
}

// KeepSteps retains the output of every operation in Result.Steps.
func (b *Builder) KeepSteps() *Builder {
	b.keepSteps = true
	return b
}

// Plan returns the operations in execution order with the selected kernel applied.
func (b *Builder) Plan() ([]Operation, error) {
	if b.err != nil {
		return nil, b.err
	}
	ops := make([]Operation, len(b.ops))
	for i, op := range b.ops {
		if r, ok := op.(Resize); ok {
			r.Kernel = b.kernel
			op = r
		}
		ops[i] = op
	}
	return ops, nil
}
