package cmd

import (
	"context"
	"fmt"

	"github.com/rm-hull/alphablend/internal/codec"
	"github.com/rm-hull/alphablend/internal/raster"
)

// Compare returns the mean squared error between two decoded images.
func Compare(ctx context.Context, actual, expected string) (float64, error) {
	a, err := codec.FromFile(actual).Load(ctx)
	if err != nil {
		return 0, err
	}
	e, err := codec.FromFile(expected).Load(ctx)
	if err != nil {
		return 0, err
	}
	mse, err := raster.MeanSquaredError(a, e)
	if err != nil {
		return 0, fmt.Errorf("cannot compare %s with %s: %w", actual, expected, err)
	}
	return mse, nil
}
