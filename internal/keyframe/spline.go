// Package keyframe turns sparse (time, value) control points into smooth
// curves and samples them into dense per-frame tracks.
//
// Curves are Catmull-Rom splines written as cubic Bezier segments, which is the
// same shape an SVG path "M ... C ..." would draw. Sampling walks the curve by
// arc length and binary-searches for the point whose time coordinate matches
// each query time.
package keyframe

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// arcSamples is the number of chords used to approximate one segment's length.
const arcSamples = 64

// maxSearchSteps bounds the binary search in PointAtX. Curves whose time
// coordinate is not monotonic could otherwise loop forever.
const maxSearchSteps = 64

type Point struct {
	T float64 `json:"t" yaml:"t"`
	V float64 `json:"v" yaml:"v"`
}

func (p Point) add(q Point) Point { return Point{p.T + q.T, p.V + q.V} }
func (p Point) sub(q Point) Point { return Point{p.T - q.T, p.V - q.V} }
func (p Point) scale(f float64) Point { return Point{p.T * f, p.V * f} }
func (p Point) dist(q Point) float64 { return math.Hypot(p.T-q.T, p.V-q.V) }

// Segment is one cubic Bezier piece between two consecutive control points.
type Segment struct {
	From Point
	C1   Point
	C2   Point
	To   Point
}

func (s Segment) at(u float64) Point {
	mu := 1 - u
	a := mu * mu * mu
	b := 3 * mu * mu * u
	c := 3 * mu * u * u
	d := u * u * u
	return Point{
		T: a*s.From.T + b*s.C1.T + c*s.C2.T + d*s.To.T,
		V: a*s.From.V + b*s.C1.V + c*s.C2.V + d*s.To.V,
	}
}

// Path is a curve through every control point it was built from.
type Path struct {
	start    Point
	empty    bool
	segments []Segment
	// cumulative chord length inside each segment, arcSamples+1 entries
	tables  [][]float64
	offsets []float64
	total   float64
}

// BuildPath fits a Catmull-Rom spline through points, which must be sorted by
// time. A single point gives a degenerate path that is that point everywhere.
func BuildPath(points []Point, tension float64) Path {
	if len(points) == 0 {
		return Path{empty: true}
	}

	p := Path{start: points[0]}
	last := len(points) - 2
	for i := 0; i <= last; i++ {
		p0 := points[0]
		if i > 0 {
			p0 = points[i-1]
		}
		p1 := points[i]
		p2 := points[i+1]
		p3 := p2
		if i != last {
			p3 = points[i+2]
		}

		seg := Segment{
			From: p1,
			C1:   p1.add(p2.sub(p0).scale(tension / 6)),
			C2:   p2.sub(p3.sub(p1).scale(tension / 6)),
			To:   p2,
		}
		p.appendSegment(seg)
	}
	return p
}

func (p *Path) appendSegment(seg Segment) {
	table := make([]float64, arcSamples+1)
	prev := seg.From
	for k := 1; k <= arcSamples; k++ {
		cur := seg.at(float64(k) / arcSamples)
		table[k] = table[k-1] + prev.dist(cur)
		prev = cur
	}

	p.segments = append(p.segments, seg)
	p.tables = append(p.tables, table)
	p.offsets = append(p.offsets, p.total)
	p.total += table[arcSamples]
}

func (p Path) Empty() bool { return p.empty }

func (p Path) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// Length is the approximate arc length of the whole path.
func (p Path) Length() float64 { return p.total }

// PointAtLength returns the point at arc length l from the start, clamped to
// the ends of the path.
func (p Path) PointAtLength(l float64) Point {
	if len(p.segments) == 0 {
		return p.start
	}
	if l <= 0 {
		return p.segments[0].From
	}
	if l >= p.total {
		return p.segments[len(p.segments)-1].To
	}

	i := sort.Search(len(p.offsets), func(i int) bool { return p.offsets[i] > l }) - 1
	if i < 0 {
		i = 0
	}
	local := l - p.offsets[i]
	table := p.tables[i]

	k := sort.SearchFloat64s(table, local)
	if k == 0 {
		return p.segments[i].at(0)
	}
	if k > arcSamples {
		return p.segments[i].To
	}

	span := table[k] - table[k-1]
	frac := 0.0
	if span > 0 {
		frac = (local - table[k-1]) / span
	}
	u := (float64(k-1) + frac) / arcSamples
	return p.segments[i].at(u)
}

// PointAtX binary-searches along the path for the point whose time coordinate
// is within tol of x. The second result is false when no such point was found.
func (p Path) PointAtX(x, tol float64) (Point, bool) {
	if p.empty {
		return Point{}, false
	}
	if len(p.segments) == 0 {
		return p.start, math.Abs(p.start.T-x) <= tol
	}

	from, to := 0.0, p.total
	cur := (from + to) / 2
	pt := p.PointAtLength(cur)
	for i := 0; i < maxSearchSteps && math.Abs(pt.T-x) > tol; i++ {
		if pt.T < x {
			from = cur
		} else {
			to = cur
		}
		cur = (from + to) / 2
		pt = p.PointAtLength(cur)
	}
	return pt, math.Abs(pt.T-x) <= tol
}

// SVG renders the path as an SVG path data string.
func (p Path) SVG() string {
	if p.empty {
		return ""
	}

	var b strings.Builder
	b.WriteString("M")
	writeNums(&b, p.start.T, p.start.V)
	for _, s := range p.segments {
		b.WriteString("C")
		writeNums(&b, s.C1.T, s.C1.V, s.C2.T, s.C2.V, s.To.T, s.To.V)
	}
	return b.String()
}

func writeNums(b *strings.Builder, nums ...float64) {
	for i, n := range nums {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(n, 'f', -1, 64))
	}
}
