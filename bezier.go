package nodle

import "math"

// MinBezierOffset is the minimum control-point offset (in world units) applied
// to a connection spline regardless of zoom (spec.md §4.9 "Bezier control
// offset").
const MinBezierOffset = 40.0

// connectionControlPoints derives the four cubic bezier control points for a
// connection spline running from `from` to `to`, both in world space. The
// control offset is `max(|dy|*0.4, MinBezierOffset*zoom)` so short
// connections still curve visibly and long connections remain proportional
// (spec.md §4.9, Glossary "Bezier control offset").
func connectionControlPoints(from, to Vec2, zoom float64) (p0, p1, p2, p3 Vec2) {
	dy := math.Abs(to.Y - from.Y)
	offset := math.Max(dy*0.4, MinBezierOffset*zoom)
	p0 = from
	p1 = Vec2{X: from.X + offset, Y: from.Y}
	p2 = Vec2{X: to.X - offset, Y: to.Y}
	p3 = to
	return
}

// cubicBezierPoint evaluates a cubic bezier at parameter t in [0, 1].
func cubicBezierPoint(p0, p1, p2, p3 Vec2, t float64) Vec2 {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Vec2{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// sampleBezier returns n+1 evenly spaced points along the cubic bezier
// defined by p0..p3, used both for cut-tool intersection testing (spec.md
// §8 scenario 5, "sampling 20 points") and for swept-quad geometry in the
// GPU Instance Builder.
func sampleBezier(p0, p1, p2, p3 Vec2, n int) []Vec2 {
	pts := make([]Vec2, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		pts[i] = cubicBezierPoint(p0, p1, p2, p3, t)
	}
	return pts
}

// segmentsIntersect reports whether segment (a0,a1) crosses segment (b0,b1),
// counting an endpoint of one segment that lies on the other as a crossing.
func segmentsIntersect(a0, a1, b0, b1 Vec2) bool {
	d1 := cross(sub(b1, b0), sub(a0, b0))
	d2 := cross(sub(b1, b0), sub(a1, b0))
	d3 := cross(sub(a1, a0), sub(b0, a0))
	d4 := cross(sub(a1, a0), sub(b1, a0))
	// onSeg reports whether r, already known to be collinear with p-q, lies
	// within p-q's bounding box.
	onSeg := func(p, q, r Vec2) bool {
		return math.Min(p.X, q.X) <= r.X && r.X <= math.Max(p.X, q.X) &&
			math.Min(p.Y, q.Y) <= r.Y && r.Y <= math.Max(p.Y, q.Y)
	}
	if (d1 == 0 && onSeg(b0, b1, a0)) || (d2 == 0 && onSeg(b0, b1, a1)) ||
		(d3 == 0 && onSeg(a0, a1, b0)) || (d4 == 0 && onSeg(a0, a1, b1)) {
		return true
	}
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

func sub(a, b Vec2) Vec2    { return Vec2{X: a.X - b.X, Y: a.Y - b.Y} }
func cross(a, b Vec2) float64 { return a.X*b.Y - a.Y*b.X }

// polylineCrossesBezier reports whether the polyline trail (screen space)
// crosses the bezier from `from` to `to` (world space), projected to screen
// space via toScreen, sampled at 20 points as in spec.md §8 scenario 5.
func polylineCrossesBezier(trail []Vec2, from, to Vec2, zoom float64, toScreen func(Vec2) Vec2) bool {
	if len(trail) < 2 {
		return false
	}
	p0, p1, p2, p3 := connectionControlPoints(from, to, zoom)
	samples := sampleBezier(p0, p1, p2, p3, 20)
	screenSamples := make([]Vec2, len(samples))
	for i, s := range samples {
		screenSamples[i] = toScreen(s)
	}
	for i := 0; i < len(trail)-1; i++ {
		for j := 0; j < len(screenSamples)-1; j++ {
			if segmentsIntersect(trail[i], trail[i+1], screenSamples[j], screenSamples[j+1]) {
				return true
			}
		}
	}
	return false
}
