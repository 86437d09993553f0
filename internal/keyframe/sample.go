package keyframe

import (
	"math"
	"sort"
)

const (
	DefaultTension   = 1.0
	DefaultStep      = 4.0
	DefaultTolerance = 0.5
)

// SampleOptions control Resample. Until extends the samples past the last
// control point, holding its value; it is ignored when smaller than the last
// control time.
type SampleOptions struct {
	Tension   float64 `json:"tension" yaml:"tension"`
	Step      float64 `json:"step" yaml:"step"`
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
	Until     float64 `json:"until,omitempty" yaml:"until,omitempty"`
}

func DefaultSampleOptions() SampleOptions {
	return SampleOptions{
		Tension:   DefaultTension,
		Step:      DefaultStep,
		Tolerance: DefaultTolerance,
	}
}

// Resample turns control points into a dense, time-sorted track. Samples sit
// at t0, t0+step, ... and the final sample is at max(last control time,
// Until). Values at control times are the control values themselves.
// Resample does not modify points and returns an empty slice for no points.
func Resample(points []Point, opts SampleOptions) []Point {
	if len(points) == 0 {
		return []Point{}
	}
	if opts.Step <= 0 {
		opts.Step = DefaultStep
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}

	pts := make([]Point, len(points))
	copy(pts, points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].T < pts[j].T })

	exact := make(map[float64]float64, len(pts))
	for _, p := range pts {
		exact[p.T] = p.V
	}

	first, last := pts[0], pts[len(pts)-1]
	end := math.Max(last.T, opts.Until)
	path := BuildPath(pts, opts.Tension)

	valueAt := func(t float64) float64 {
		if v, ok := exact[t]; ok {
			return v
		}
		if t >= last.T {
			return last.V
		}
		pt, _ := path.PointAtX(t, opts.Tolerance)
		return pt.V
	}

	out := make([]Point, 0, int((end-first.T)/opts.Step)+2)
	for k := 0; ; k++ {
		t := first.T + float64(k)*opts.Step
		if t >= end {
			break
		}
		out = append(out, Point{T: t, V: valueAt(t)})
	}
	out = append(out, Point{T: end, V: valueAt(end)})
	return out
}

// Lookup returns the value of the sample nearest to t. Samples must be sorted
// by time, as Resample produces them.
func Lookup(samples []Point, t float64) (float64, bool) {
	if len(samples) == 0 {
		return 0, false
	}

	i := sort.Search(len(samples), func(i int) bool { return samples[i].T >= t })
	switch {
	case i == 0:
		return samples[0].V, true
	case i == len(samples):
		return samples[len(samples)-1].V, true
	}

	before, after := samples[i-1], samples[i]
	if t-before.T <= after.T-t {
		return before.V, true
	}
	return after.V, true
}
