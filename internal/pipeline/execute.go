package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rm-hull/alphablend/internal/codec"
	"github.com/rm-hull/alphablend/internal/raster"
)

type Info struct {
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	Channels int          `json:"channels"`
	Depth    raster.Depth `json:"depth"`
	Format   codec.Format `json:"format"`
}

// infoOf describes buf as it will read back after encoding to format.
func infoOf(buf *raster.Buffer, format codec.Format) Info {
	channels, depth := codec.Layout(buf, format)
	return Info{
		Width:    buf.Width(),
		Height:   buf.Height(),
		Channels: channels,
		Depth:    depth,
		Format:   format,
	}
}

type Result struct {
	Buffer *raster.Buffer
	Info   Info
	// Steps holds the output of each operation, in order, when requested.
	Steps []*raster.Buffer
}

// Execute applies ops to buf in order. Each operation runs to completion; ctx is only
// consulted between steps. buf itself is never modified.
func Execute(ctx context.Context, buf *raster.Buffer, ops []Operation, keepSteps bool) (*Result, error) {
	res := &Result{}
	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := op.apply(ctx, buf)
		if err != nil {
			return nil, fmt.Errorf("step %d %s: %w", i+1, op, err)
		}
		buf = next
		if keepSteps {
			res.Steps = append(res.Steps, buf)
		}
	}
	res.Buffer = buf
	res.Info = infoOf(buf, codec.Raw)
	return res, nil
}

// Run loads the source and executes the plan.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	ops, err := b.Plan()
	if err != nil {
		return nil, err
	}
	buf, err := b.src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Execute(ctx, buf, ops, b.keepSteps)
}

// ToBuffer runs the plan and encodes the result.
func (b *Builder) ToBuffer(ctx context.Context, format codec.Format) ([]byte, Info, error) {
	res, err := b.Run(ctx)
	if err != nil {
		return nil, Info{}, err
	}
	data, err := codec.EncodeBytes(res.Buffer, format)
	if err != nil {
		return nil, Info{}, err
	}
	return data, infoOf(res.Buffer, format), nil
}

// ToFile runs the plan and writes the result to path, inferring the format from its
// extension. The file is written alongside the destination and renamed into place.
func (b *Builder) ToFile(ctx context.Context, path string) (Info, error) {
	format, err := codec.FormatFromPath(path)
	if err != nil {
		return Info{}, err
	}
	if !format.Encodable() {
		return Info{}, &codec.EncodeError{Format: format, Err: fmt.Errorf("cannot write %s", path)}
	}

	res, err := b.Run(ctx)
	if err != nil {
		return Info{}, err
	}
	if err := WriteFile(path, res.Buffer, format); err != nil {
		return Info{}, err
	}
	return infoOf(res.Buffer, format), nil
}

// WriteFile encodes buf to a temporary file in path's directory, then renames it to path.
func WriteFile(path string, buf *raster.Buffer, format codec.Format) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "alphablend-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	cleanupTemp := true
	defer func() {
		_ = tmpFile.Close()
		if cleanupTemp {
			_ = os.Remove(tmpFile.Name())
		}
	}()

	if err := codec.Encode(tmpFile, buf, format); err != nil {
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file before rename: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	cleanupTemp = false
	return nil
}
