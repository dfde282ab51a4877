package core

import (
	"math"

	"planar/internal/geom"
)

// sameTol is the Chebyshev tolerance under which a candidate intersection
// is considered an already existing point.
const sameTol = 1e-3

// FindAllIntersections synthesizes a pinned point at every intersection of
// the current segments and circles that is not already represented by an
// existing point. The pass enumerates pairs in ascending id order and runs
// once; it is idempotent across repeated calls. It returns the points it
// created.
func (s *State) FindAllIntersections() []*Point {
	segIDs := s.SegmentIDs()
	circleIDs := s.CircleIDs()

	var created []*Point
	add := func(pt geom.Pt) {
		if s.hasPointNear(pt.X, pt.Y) {
			return
		}
		created = append(created, s.AddPoint(pt.X, pt.Y, false))
	}

	for i := 0; i < len(segIDs); i++ {
		a, aok := s.segmentCoords(segIDs[i])
		if !aok {
			continue
		}
		for j := i + 1; j < len(segIDs); j++ {
			b, bok := s.segmentCoords(segIDs[j])
			if !bok {
				continue
			}
			if pt, ok := geom.SegmentSegmentIntersection(
				a[0], a[1], a[2], a[3], b[0], b[1], b[2], b[3]); ok {
				add(pt)
			}
		}
	}

	for _, sid := range segIDs {
		seg, sok := s.segmentCoords(sid)
		if !sok {
			continue
		}
		for _, cid := range circleIDs {
			cx, cy, r, cok := s.circleCoords(cid)
			if !cok {
				continue
			}
			for _, pt := range geom.SegmentCircleIntersections(
				seg[0], seg[1], seg[2], seg[3], cx, cy, r) {
				add(pt)
			}
		}
	}

	for i := 0; i < len(circleIDs); i++ {
		ax, ay, ar, aok := s.circleCoords(circleIDs[i])
		if !aok {
			continue
		}
		for j := i + 1; j < len(circleIDs); j++ {
			bx, by, br, bok := s.circleCoords(circleIDs[j])
			if !bok {
				continue
			}
			for _, pt := range geom.CircleCircleIntersections(ax, ay, ar, bx, by, br) {
				add(pt)
			}
		}
	}

	return created
}

func (s *State) hasPointNear(x, y float64) bool {
	for _, p := range s.Points {
		if math.Abs(p.X-x) < sameTol && math.Abs(p.Y-y) < sameTol {
			return true
		}
	}
	return false
}

func (s *State) segmentCoords(id ID) ([4]float64, bool) {
	seg := s.Segments[id]
	if seg == nil {
		return [4]float64{}, false
	}
	p1 := s.Points[seg.P1]
	p2 := s.Points[seg.P2]
	if p1 == nil || p2 == nil {
		return [4]float64{}, false
	}
	return [4]float64{p1.X, p1.Y, p2.X, p2.Y}, true
}

func (s *State) circleCoords(id ID) (x, y, r float64, ok bool) {
	circle := s.Circles[id]
	if circle == nil {
		return 0, 0, 0, false
	}
	center := s.Points[circle.Center]
	if center == nil {
		return 0, 0, 0, false
	}
	return center.X, center.Y, circle.Radius, true
}
