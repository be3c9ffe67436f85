package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rm-hull/alphablend/internal/codec"
	"github.com/rm-hull/alphablend/internal/pipeline"
	"github.com/rm-hull/alphablend/internal/raster"
)

func Resize(ctx context.Context, in, out string, width, height int, kernel string, noBlur bool) error {
	b := pipeline.New(codec.FromFile(in)).
		Resize(width, height, pipeline.WithGaussianBlur(!noBlur)).
		InterpolateWith(kernel)

	info, err := b.ToFile(ctx, out)
	if err != nil {
		return err
	}
	log.Printf("Resized %s to %dx%d (%d channels) -> %s", in, info.Width, info.Height, info.Channels, out)
	return nil
}

// Overlay composites each layer over background in turn. When animatePath is set, the
// background and every intermediate composite are also written there as an APNG.
func Overlay(ctx context.Context, out, background string, layers []string, animatePath string, frameDelay float64) error {
	src := codec.FromFile(background)
	b := pipeline.New(src)
	for _, layer := range layers {
		b.OverlayWith(codec.FromFile(layer))
	}
	if animatePath != "" {
		b.KeepSteps()
	}

	res, err := b.Run(ctx)
	if err != nil {
		return err
	}

	format, err := codec.FormatFromPath(out)
	if err != nil {
		return err
	}
	if err := pipeline.WriteFile(out, res.Buffer, format); err != nil {
		return err
	}
	log.Printf("Composited %d layers over %s -> %s", len(layers), background, out)

	if animatePath == "" {
		return nil
	}
	first, err := src.Load(ctx)
	if err != nil {
		return err
	}
	data, err := codec.Animate(append([]*raster.Buffer{first}, res.Steps...), frameDelay)
	if err != nil {
		return fmt.Errorf("failed to create animation: %w", err)
	}
	if err := os.WriteFile(animatePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write animation: %w", err)
	}
	log.Printf("Wrote %d frame animation to %s", len(res.Steps)+1, animatePath)
	return nil
}
