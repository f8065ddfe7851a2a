package nodle

import (
	"math"
	"testing"
)

func approxVec2(a, b Vec2, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func TestCubicBezierPointEndpoints(t *testing.T) {
	p0 := Vec2{X: 0, Y: 0}
	p1 := Vec2{X: 10, Y: 0}
	p2 := Vec2{X: 20, Y: 10}
	p3 := Vec2{X: 30, Y: 10}

	if got := cubicBezierPoint(p0, p1, p2, p3, 0); !approxVec2(got, p0, 1e-9) {
		t.Errorf("t=0 = %v, want %v", got, p0)
	}
	if got := cubicBezierPoint(p0, p1, p2, p3, 1); !approxVec2(got, p3, 1e-9) {
		t.Errorf("t=1 = %v, want %v", got, p3)
	}
}

func TestCubicBezierPointSymmetricMidpoint(t *testing.T) {
	// A symmetric S-curve's t=0.5 point must land exactly on the geometric
	// midpoint between p0 and p3.
	p0 := Vec2{X: 0, Y: 0}
	p1 := Vec2{X: 40, Y: 0}
	p2 := Vec2{X: 60, Y: 100}
	p3 := Vec2{X: 100, Y: 100}

	want := Vec2{X: (p0.X + p3.X) / 2, Y: (p0.Y + p3.Y) / 2}
	got := cubicBezierPoint(p0, p1, p2, p3, 0.5)
	if !approxVec2(got, want, 1e-9) {
		t.Errorf("t=0.5 = %v, want midpoint %v", got, want)
	}
}

func TestSampleBezierReturnsNPlusOnePoints(t *testing.T) {
	pts := sampleBezier(Vec2{}, Vec2{X: 1}, Vec2{X: 2}, Vec2{X: 3}, 20)
	if len(pts) != 21 {
		t.Errorf("len = %d, want 21", len(pts))
	}
	if pts[0] != (Vec2{}) {
		t.Errorf("first sample = %v, want zero", pts[0])
	}
	if pts[20] != (Vec2{X: 3}) {
		t.Errorf("last sample = %v, want {3 0}", pts[20])
	}
}

func TestConnectionControlPointsUsesMinimumOffset(t *testing.T) {
	from := Vec2{X: 0, Y: 0}
	to := Vec2{X: 100, Y: 0} // dy = 0, so the floor offset should win
	_, p1, p2, _ := connectionControlPoints(from, to, 1)

	wantOffset := MinBezierOffset * 1
	if got := p1.X - from.X; math.Abs(got-wantOffset) > 1e-9 {
		t.Errorf("p1 offset = %v, want %v", got, wantOffset)
	}
	if got := to.X - p2.X; math.Abs(got-wantOffset) > 1e-9 {
		t.Errorf("p2 offset = %v, want %v", got, wantOffset)
	}
}

func TestConnectionControlPointsScalesWithDy(t *testing.T) {
	from := Vec2{X: 0, Y: 0}
	to := Vec2{X: 100, Y: 1000} // dy*0.4 = 400, far above the MinBezierOffset floor
	_, p1, _, _ := connectionControlPoints(from, to, 1)

	wantOffset := 1000 * 0.4
	if got := p1.X - from.X; math.Abs(got-wantOffset) > 1e-9 {
		t.Errorf("p1 offset = %v, want %v", got, wantOffset)
	}
}

func TestConnectionControlPointsScalesFloorWithZoom(t *testing.T) {
	from := Vec2{X: 0, Y: 0}
	to := Vec2{X: 100, Y: 0}
	_, p1, _, _ := connectionControlPoints(from, to, 2.5)

	wantOffset := MinBezierOffset * 2.5
	if got := p1.X - from.X; math.Abs(got-wantOffset) > 1e-9 {
		t.Errorf("p1 offset = %v, want %v", got, wantOffset)
	}
}

func TestSegmentsIntersectCrossingCase(t *testing.T) {
	a0, a1 := Vec2{X: 0, Y: 0}, Vec2{X: 10, Y: 10}
	b0, b1 := Vec2{X: 0, Y: 10}, Vec2{X: 10, Y: 0}
	if !segmentsIntersect(a0, a1, b0, b1) {
		t.Error("diagonal X segments should intersect")
	}
}

func TestSegmentsIntersectParallelCase(t *testing.T) {
	a0, a1 := Vec2{X: 0, Y: 0}, Vec2{X: 10, Y: 0}
	b0, b1 := Vec2{X: 0, Y: 5}, Vec2{X: 10, Y: 5}
	if segmentsIntersect(a0, a1, b0, b1) {
		t.Error("parallel segments should not intersect")
	}
}

func TestSegmentsIntersectNonCrossingCase(t *testing.T) {
	a0, a1 := Vec2{X: 0, Y: 0}, Vec2{X: 10, Y: 10}
	b0, b1 := Vec2{X: 20, Y: 20}, Vec2{X: 30, Y: 30}
	if segmentsIntersect(a0, a1, b0, b1) {
		t.Error("disjoint collinear segments should not intersect")
	}
}

func TestPolylineCrossesBezierStraightLine(t *testing.T) {
	from := Vec2{X: 0, Y: 0}
	to := Vec2{X: 200, Y: 0}
	identity := func(v Vec2) Vec2 { return v }

	// A flat connection (dy=0) has all four control points on y=0, so the
	// path is a straight line; a trail crossing it vertically through the
	// middle passes exactly through the t=0.5 sample at (100, 0) and must
	// still count as crossing.
	trail := []Vec2{{X: 100, Y: -50}, {X: 100, Y: 50}}
	if !polylineCrossesBezier(trail, from, to, 1, identity) {
		t.Error("vertical trail through the midpoint should cross the bezier")
	}
}

func TestPolylineCrossesBezierMiss(t *testing.T) {
	from := Vec2{X: 0, Y: 0}
	to := Vec2{X: 200, Y: 0}
	identity := func(v Vec2) Vec2 { return v }

	trail := []Vec2{{X: 1000, Y: -50}, {X: 1000, Y: 50}}
	if polylineCrossesBezier(trail, from, to, 1, identity) {
		t.Error("trail far from the connection should not cross")
	}
}

func TestPolylineCrossesBezierTooShortTrail(t *testing.T) {
	from := Vec2{X: 0, Y: 0}
	to := Vec2{X: 200, Y: 0}
	identity := func(v Vec2) Vec2 { return v }

	if polylineCrossesBezier([]Vec2{{X: 100, Y: 0}}, from, to, 1, identity) {
		t.Error("a single-point trail cannot cross anything")
	}
}
