// Package solver satisfies the constraints of a document by adjusting its
// floating points and determined variables with a damped Gauss-Newton
// (Levenberg-Marquardt) iteration over numerically differentiated
// residuals.
package solver

import (
	"math"

	"planar/internal/core"
	"planar/internal/expr"
	"planar/internal/geom"
)

// Residuals evaluates every constraint against the current state, in
// constraint order. Unresolved expressions and missing referents
// contribute zero so a partially specified system stays solvable.
func Residuals(st *core.State) []float64 {
	vars := st.VarValues()
	out := make([]float64, len(st.Constraints))
	for i, c := range st.Constraints {
		out[i] = residual(st, c, vars)
	}
	return out
}

func residual(st *core.State, c *core.Constraint, vars map[string]float64) float64 {
	switch c.Type {
	case core.ConstraintDistance:
		p1, p2 := constraintPoints(st, c)
		if p1 == nil || p2 == nil {
			return 0
		}
		target, ok := expr.Evaluate(c.Expr, vars)
		if !ok {
			return 0
		}
		return geom.Dist(p1.X, p1.Y, p2.X, p2.Y) - target

	case core.ConstraintAngle:
		p1, p2 := constraintPoints(st, c)
		if p1 == nil || p2 == nil {
			return 0
		}
		target, ok := expr.Evaluate(c.Expr, vars)
		if !ok {
			return 0
		}
		return wrapDegrees(geom.SegmentAngle(p1.X, p1.Y, p2.X, p2.Y) - target)

	case core.ConstraintPointOnSegment:
		p := firstPoint(st, c)
		seg := st.Segments[c.Target]
		if p == nil || seg == nil {
			return 0
		}
		a := st.Points[seg.P1]
		b := st.Points[seg.P2]
		if a == nil || b == nil {
			return 0
		}
		return geom.PointSegmentDistance(p.X, p.Y, a.X, a.Y, b.X, b.Y)

	case core.ConstraintPointOnCircle:
		p := firstPoint(st, c)
		circle := st.Circles[c.Target]
		if p == nil || circle == nil {
			return 0
		}
		center := st.Points[circle.Center]
		if center == nil {
			return 0
		}
		return math.Abs(geom.Dist(p.X, p.Y, center.X, center.Y) - circle.Radius)

	case core.ConstraintPointOnArc:
		return arcResidual(st, c)

	case core.ConstraintEquation:
		v, ok := expr.Evaluate(c.Expr, vars)
		if !ok {
			return 0
		}
		return v
	}
	return 0
}

// arcResidual is the radial deviation from the arc's circle plus, when the
// point lies outside the counter-clockwise span from start to end, an
// angular penalty scaled to arc length units.
func arcResidual(st *core.State, c *core.Constraint) float64 {
	p := firstPoint(st, c)
	arc := st.Arcs[c.Target]
	if p == nil || arc == nil {
		return 0
	}
	circle := st.Circles[arc.Circle]
	if circle == nil {
		return 0
	}
	center := st.Points[circle.Center]
	start := st.Points[arc.Start]
	end := st.Points[arc.End]
	if center == nil || start == nil || end == nil {
		return 0
	}

	radial := math.Abs(geom.Dist(p.X, p.Y, center.X, center.Y) - circle.Radius)

	ang := polarAngle(center.X, center.Y, p.X, p.Y)
	sa := polarAngle(center.X, center.Y, start.X, start.Y)
	ea := polarAngle(center.X, center.Y, end.X, end.Y)
	if angleInSpan(ang, sa, ea) {
		return radial
	}
	penalty := math.Min(angularDistance(ang, sa), angularDistance(ang, ea))
	return radial + penalty*circle.Radius
}

// polarAngle returns the angle of (x,y) about the center in radians,
// normalized to [0, 2pi), with the screen Y inversion applied.
func polarAngle(cx, cy, x, y float64) float64 {
	a := math.Atan2(-(y - cy), x-cx)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// angleInSpan reports whether a lies in the counter-clockwise span from
// start to end. The wrap case start > end is handled by disjunction.
func angleInSpan(a, start, end float64) bool {
	if start <= end {
		return a >= start && a <= end
	}
	return a >= start || a <= end
}

// angularDistance is the shortest distance between two angles, mod 2pi.
func angularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

// wrapDegrees maps a degree difference into (-180, 180].
func wrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

func constraintPoints(st *core.State, c *core.Constraint) (*core.Point, *core.Point) {
	if len(c.Points) < 2 {
		return nil, nil
	}
	return st.Points[c.Points[0]], st.Points[c.Points[1]]
}

func firstPoint(st *core.State, c *core.Constraint) *core.Point {
	if len(c.Points) < 1 {
		return nil
	}
	return st.Points[c.Points[0]]
}
