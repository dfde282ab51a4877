package geom

import (
	"math"
	"testing"
)

func TestCircumcircle(t *testing.T) {
	x, y, r, ok := Circumcircle(0, 0, 4, 0, 0, 3)
	if !ok {
		t.Fatal("Circumcircle failed on a right triangle")
	}
	if math.Abs(x-2) > 1e-9 || math.Abs(y-1.5) > 1e-9 {
		t.Errorf("center = (%v, %v), expected (2, 1.5)", x, y)
	}
	if math.Abs(r-2.5) > 1e-9 {
		t.Errorf("radius = %v, expected 2.5", r)
	}
}

func TestCircumcircle_Equidistance(t *testing.T) {
	pts := [][6]float64{
		{0, 0, 10, 0, 5, 8},
		{-3, 2, 7, -1, 4, 9},
		{1, 1, 2, 5, -4, 3},
	}
	for _, p := range pts {
		x, y, r, ok := Circumcircle(p[0], p[1], p[2], p[3], p[4], p[5])
		if !ok {
			t.Fatalf("Circumcircle failed for %v", p)
		}
		for i := 0; i < 3; i++ {
			d := Dist(x, y, p[2*i], p[2*i+1])
			if math.Abs(d-r)/r > 1e-9 {
				t.Errorf("point %d at distance %v, radius %v", i, d, r)
			}
		}
	}
}

func TestCircumcircle_Collinear(t *testing.T) {
	if _, _, _, ok := Circumcircle(0, 0, 1, 1, 2, 2); ok {
		t.Error("expected failure for collinear points")
	}
}

func TestSegmentAngle(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 float64
		expected       float64
	}{
		{"east", 0, 0, 1, 0, 0},
		{"north is up on screen", 0, 0, 0, -1, 90},
		{"west", 0, 0, -1, 0, 180},
		{"south", 0, 0, 0, 1, -90},
		{"diagonal up-right", 0, 0, 1, -1, 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SegmentAngle(tt.x1, tt.y1, tt.x2, tt.y2)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("SegmentAngle = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestPointSegmentDistance(t *testing.T) {
	// Projection inside the segment.
	if d := PointSegmentDistance(5, 5, 0, 0, 10, 0); math.Abs(d-5) > 1e-9 {
		t.Errorf("interior projection distance = %v, expected 5", d)
	}
	// Clamped to the near endpoint.
	if d := PointSegmentDistance(-3, 4, 0, 0, 10, 0); math.Abs(d-5) > 1e-9 {
		t.Errorf("clamped distance = %v, expected 5", d)
	}
	// Degenerate segment falls back to first endpoint.
	if d := PointSegmentDistance(3, 4, 0, 0, 0, 0); math.Abs(d-5) > 1e-9 {
		t.Errorf("degenerate distance = %v, expected 5", d)
	}
}

func TestSegmentSegmentIntersection(t *testing.T) {
	p, ok := SegmentSegmentIntersection(0, 0, 10, 10, 0, 10, 10, 0)
	if !ok {
		t.Fatal("expected an intersection")
	}
	if math.Abs(p.X-5) > 1e-9 || math.Abs(p.Y-5) > 1e-9 {
		t.Errorf("intersection = %v, expected (5, 5)", p)
	}

	// Parallel segments.
	if _, ok := SegmentSegmentIntersection(0, 0, 10, 0, 0, 1, 10, 1); ok {
		t.Error("parallel segments should not intersect")
	}

	// Shared endpoint is excluded by the open interval.
	if _, ok := SegmentSegmentIntersection(0, 0, 10, 0, 0, 0, 0, 10); ok {
		t.Error("endpoint intersection should be excluded")
	}

	// Lines cross but outside one segment.
	if _, ok := SegmentSegmentIntersection(0, 0, 10, 0, 20, -5, 20, 5); ok {
		t.Error("crossing outside segment bounds should be excluded")
	}
}

func TestSegmentCircleIntersections(t *testing.T) {
	// Chord through the center: two hits.
	pts := SegmentCircleIntersections(-10, 0, 10, 0, 0, 0, 5)
	if len(pts) != 2 {
		t.Fatalf("expected 2 intersections, got %d", len(pts))
	}
	for _, p := range pts {
		if math.Abs(math.Abs(p.X)-5) > 1e-9 || math.Abs(p.Y) > 1e-9 {
			t.Errorf("unexpected intersection %v", p)
		}
	}

	// Segment ending inside the circle: one hit.
	pts = SegmentCircleIntersections(-10, 0, 0, 0, 0, 0, 5)
	if len(pts) != 1 {
		t.Fatalf("expected 1 intersection, got %d", len(pts))
	}

	// Segment missing the circle entirely.
	if pts = SegmentCircleIntersections(-10, 10, 10, 10, 0, 0, 5); len(pts) != 0 {
		t.Errorf("expected no intersections, got %v", pts)
	}

	// Tangent line: the double root collapses to one point.
	pts = SegmentCircleIntersections(-10, 5, 10, 5, 0, 0, 5)
	if len(pts) > 1 {
		t.Errorf("tangent should emit at most one point, got %v", pts)
	}
}

func TestCircleCircleIntersections(t *testing.T) {
	// Two proper intersections.
	pts := CircleCircleIntersections(0, 0, 5, 6, 0, 5)
	if len(pts) != 2 {
		t.Fatalf("expected 2 intersections, got %d", len(pts))
	}
	for _, p := range pts {
		if math.Abs(Dist(p.X, p.Y, 0, 0)-5) > 1e-9 {
			t.Errorf("%v not on first circle", p)
		}
		if math.Abs(Dist(p.X, p.Y, 6, 0)-5) > 1e-9 {
			t.Errorf("%v not on second circle", p)
		}
	}

	// External tangency: one point.
	pts = CircleCircleIntersections(0, 0, 5, 10, 0, 5)
	if len(pts) != 1 {
		t.Fatalf("expected 1 tangent point, got %d", len(pts))
	}
	if math.Abs(pts[0].X-5) > 1e-6 || math.Abs(pts[0].Y) > 1e-6 {
		t.Errorf("tangent point = %v, expected (5, 0)", pts[0])
	}

	// Separate circles.
	if pts = CircleCircleIntersections(0, 0, 1, 10, 0, 1); len(pts) != 0 {
		t.Errorf("expected no intersections, got %v", pts)
	}

	// One inside the other.
	if pts = CircleCircleIntersections(0, 0, 10, 1, 0, 1); len(pts) != 0 {
		t.Errorf("expected no intersections, got %v", pts)
	}

	// Coincident centers.
	if pts = CircleCircleIntersections(0, 0, 5, 0, 0, 5); len(pts) != 0 {
		t.Errorf("expected no intersections, got %v", pts)
	}
}
