package raster

import (
	"errors"
	"fmt"
)

var ErrIncomparable = errors.New("buffers are not comparable")

// MeanSquaredError returns the mean of the squared per-sample differences between
// actual and expected, in the native sample scale. Both buffers must share their shape
// and depth.
func MeanSquaredError(actual, expected *Buffer) (float64, error) {
	switch {
	case actual.channels != expected.channels:
		return 0, fmt.Errorf("%w: %d vs %d channels", ErrIncomparable, actual.channels, expected.channels)
	case actual.depth != expected.depth:
		return 0, fmt.Errorf("%w: %s vs %s samples", ErrIncomparable, actual.depth, expected.depth)
	case actual.width != expected.width || actual.height != expected.height:
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrIncomparable,
			actual.width, actual.height, expected.width, expected.height)
	}

	n := actual.width * actual.height * actual.channels
	var sum float64
	for i := 0; i < n; i++ {
		d := actual.sample(i) - expected.sample(i)
		sum += d * d
	}
	return sum / float64(n), nil
}
