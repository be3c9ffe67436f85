package codec

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/kettek/apng"
	"github.com/rm-hull/alphablend/internal/raster"
)

// Animate encodes the frames as a looping APNG, showing each for frameDelay seconds.
func Animate(frames []*raster.Buffer, frameDelay float64) ([]byte, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames to animate")
	}

	a := apng.APNG{
		Frames:    make([]apng.Frame, len(frames)),
		LoopCount: 0,
	}

	num, den, err := frameDelayFraction(frameDelay)
	if err != nil {
		return nil, err
	}

	w, h := frames[0].Width(), frames[0].Height()
	for i, frame := range frames {
		if frame.Width() != w || frame.Height() != h {
			return nil, fmt.Errorf("frame %d is %dx%d, expected %dx%d", i, frame.Width(), frame.Height(), w, h)
		}
		a.Frames[i] = apng.Frame{
			Image:            ToImage(frame),
			DelayNumerator:   num,
			DelayDenominator: den,
		}
	}

	var buf bytes.Buffer
	if err := apng.Encode(&buf, a); err != nil {
		return nil, &EncodeError{Format: "apng", Err: err}
	}

	return buf.Bytes(), nil
}

// frameDelayFraction expresses seconds as a 16-bit fraction, giving up precision in
// steps of ten for long delays.
func frameDelayFraction(seconds float64) (uint16, uint16, error) {
	if math.IsNaN(seconds) || seconds < 0 || math.Round(seconds) > math.MaxUint16 {
		return 0, 0, fmt.Errorf("frame delay must be between 0 and %d seconds, got %v", math.MaxUint16, seconds)
	}
	for _, den := range []uint16{1000, 100, 10, 1} {
		if num := math.Round(seconds * float64(den)); num <= math.MaxUint16 {
			return uint16(num), den, nil
		}
	}
	return 0, 0, fmt.Errorf("frame delay out of range: %v", seconds)
}
