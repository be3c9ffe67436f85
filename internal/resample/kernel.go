package resample

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/image/draw"
)

// Kernel selects the interpolation used by Resize. It is resolved to a filter once per
// call so the per-sample loops carry no dispatch.
type Kernel int

const (
	Nearest Kernel = iota
	Bilinear
	Bicubic
	Mitchell
	Lanczos2
	Lanczos3
	VSQBS
	LBB
)

// DefaultKernel is used when no interpolator has been chosen.
const DefaultKernel = Bicubic

var kernelNames = map[Kernel]string{
	Nearest:  "nearest",
	Bilinear: "bilinear",
	Bicubic:  "bicubic",
	Mitchell: "mitchell",
	Lanczos2: "lanczos2",
	Lanczos3: "lanczos3",
	VSQBS:    "vsqbs",
	LBB:      "lbb",
}

var kernelAliases = map[string]Kernel{
	"catmullrom":                      Bicubic,
	"vertexsplitquadraticbasisspline": VSQBS,
	"locallyboundedbicubic":           LBB,
}

// UnknownKernelError is returned for an interpolator name or value with no filter.
type UnknownKernelError struct {
	Name string
}

func (e *UnknownKernelError) Error() string {
	return fmt.Sprintf("unknown interpolation kernel: %q", e.Name)
}

// ParseKernel resolves a case-insensitive kernel name.
func ParseKernel(name string) (Kernel, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for k, n := range kernelNames {
		if n == key {
			return k, nil
		}
	}
	if k, ok := kernelAliases[key]; ok {
		return k, nil
	}
	return 0, &UnknownKernelError{Name: name}
}

// KernelNames lists the canonical names in declaration order.
func KernelNames() []string {
	names := make([]string, 0, len(kernelNames))
	for k := Nearest; k <= LBB; k++ {
		names = append(names, kernelNames[k])
	}
	return names
}

func (k Kernel) String() string {
	if n, ok := kernelNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kernel(%d)", int(k))
}

// filter is the resolved form of a Kernel. A nil tap selects nearest-neighbour sampling.
type filter struct {
	tap *draw.Kernel
	// bounded clamps each interpolated sample to the range of the two source samples
	// either side of it, removing overshoot.
	bounded bool
}

var filters = map[Kernel]filter{
	Nearest:  {},
	Bilinear: {tap: draw.BiLinear},
	Bicubic:  {tap: draw.CatmullRom},
	Mitchell: {tap: &draw.Kernel{Support: 2, At: mitchellNetravali}},
	Lanczos2: {tap: &draw.Kernel{Support: 2, At: lanczos(2)}},
	Lanczos3: {tap: &draw.Kernel{Support: 3, At: lanczos(3)}},
	VSQBS:    {tap: &draw.Kernel{Support: 1.5, At: quadraticBSpline}},
	LBB:      {tap: draw.CatmullRom, bounded: true},
}

func (k Kernel) filter() (filter, error) {
	f, ok := filters[k]
	if !ok {
		return filter{}, &UnknownKernelError{Name: k.String()}
	}
	return f, nil
}

// B = C = 1/3.
func mitchellNetravali(t float64) float64 {
	const b, c = 1.0 / 3, 1.0 / 3
	if t < 1 {
		return ((12-9*b-6*c)*t*t*t + (-18+12*b+6*c)*t*t + (6 - 2*b)) / 6
	}
	return ((-b-6*c)*t*t*t + (6*b+30*c)*t*t + (-12*b-48*c)*t + (8*b + 24*c)) / 6
}

func lanczos(a float64) func(float64) float64 {
	return func(t float64) float64 {
		if t == 0 {
			return 1
		}
		pt := math.Pi * t
		return a * math.Sin(pt) * math.Sin(pt/a) / (pt * pt)
	}
}

func quadraticBSpline(t float64) float64 {
	if t < 0.5 {
		return 0.75 - t*t
	}
	d := t - 1.5
	return 0.5 * d * d
}
