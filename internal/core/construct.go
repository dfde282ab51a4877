package core

import (
	"math"

	"planar/internal/geom"
)

// Constructors return nil when a referenced entity is missing; the store is
// left untouched in that case.

// AddPoint creates a point at the given coordinates. The label comes from
// the document's allocator.
func (s *State) AddPoint(x, y float64, floating bool) *Point {
	p := &Point{
		ID:       s.allocID(),
		X:        x,
		Y:        y,
		Label:    s.allocLabel(),
		Floating: floating,
	}
	s.Points[p.ID] = p
	return p
}

// AddSegmentTwoPoints creates a segment between two existing, distinct
// points.
func (s *State) AddSegmentTwoPoints(p1, p2 ID) *Segment {
	if p1 == p2 {
		return nil
	}
	a := s.Points[p1]
	b := s.Points[p2]
	if a == nil || b == nil {
		return nil
	}

	seg := &Segment{
		ID:   s.allocID(),
		P1:   p1,
		P2:   p2,
		Type: SegmentTwoPoints,
	}
	s.Segments[seg.ID] = seg
	a.Children = appendChild(a.Children, seg.ID)
	b.Children = appendChild(b.Children, seg.ID)
	return seg
}

// AddSegmentAbsAngle creates a segment of the given length from p1 at an
// absolute angle in degrees, materializing the far endpoint. Screen Y grows
// downward, so the far point's Y is negated relative to math convention.
func (s *State) AddSegmentAbsAngle(p1 ID, length, angleDeg float64) *Segment {
	a := s.Points[p1]
	if a == nil {
		return nil
	}

	rad := angleDeg * math.Pi / 180
	far := s.AddPoint(a.X+length*math.Cos(rad), a.Y-length*math.Sin(rad), false)

	seg := &Segment{
		ID:     s.allocID(),
		P1:     p1,
		P2:     far.ID,
		Type:   SegmentAbsAngle,
		Length: length,
		Angle:  angleDeg,
	}
	s.Segments[seg.ID] = seg
	a.Children = appendChild(a.Children, seg.ID)
	far.Children = appendChild(far.Children, seg.ID)
	return seg
}

// AddSegmentRelAngle creates a segment whose angle is the reference
// segment's current angle plus an offset in degrees. The reference segment
// becomes a parent of the new segment.
func (s *State) AddSegmentRelAngle(p1, refSegment ID, length, offsetDeg float64) *Segment {
	a := s.Points[p1]
	ref := s.Segments[refSegment]
	if a == nil || ref == nil {
		return nil
	}
	rp1 := s.Points[ref.P1]
	rp2 := s.Points[ref.P2]
	if rp1 == nil || rp2 == nil {
		return nil
	}

	angleDeg := geom.SegmentAngle(rp1.X, rp1.Y, rp2.X, rp2.Y) + offsetDeg
	rad := angleDeg * math.Pi / 180
	far := s.AddPoint(a.X+length*math.Cos(rad), a.Y-length*math.Sin(rad), false)

	seg := &Segment{
		ID:         s.allocID(),
		P1:         p1,
		P2:         far.ID,
		Type:       SegmentRelAngle,
		Length:     length,
		Angle:      offsetDeg,
		RefSegment: refSegment,
	}
	s.Segments[seg.ID] = seg
	a.Children = appendChild(a.Children, seg.ID)
	far.Children = appendChild(far.Children, seg.ID)
	ref.Children = appendChild(ref.Children, seg.ID)
	return seg
}

// AddCircleRadius creates a circle around an existing center point.
func (s *State) AddCircleRadius(center ID, radius float64) *Circle {
	c := s.Points[center]
	if c == nil {
		return nil
	}

	circle := &Circle{
		ID:     s.allocID(),
		Type:   CircleRadius,
		Center: center,
		Radius: radius,
	}
	s.Circles[circle.ID] = circle
	c.Children = appendChild(c.Children, circle.ID)
	return circle
}

// AddCircleCircumference creates a circle around center passing through an
// existing point. The radius is frozen at the construction-time distance;
// moving either point later does not update it.
func (s *State) AddCircleCircumference(center, through ID) *Circle {
	c := s.Points[center]
	t := s.Points[through]
	if c == nil || t == nil {
		return nil
	}

	circle := &Circle{
		ID:     s.allocID(),
		Type:   CircleRadius,
		Center: center,
		Radius: geom.Dist(c.X, c.Y, t.X, t.Y),
		Points: []ID{through},
	}
	s.Circles[circle.ID] = circle
	c.Children = appendChild(c.Children, circle.ID)
	t.Children = appendChild(t.Children, circle.ID)
	return circle
}

// AddCircleThreePoints creates the circumcircle of three existing points,
// materializing its center as a new point. Collinear points fail. The
// radius is frozen at construction.
func (s *State) AddCircleThreePoints(p1, p2, p3 ID) *Circle {
	a := s.Points[p1]
	b := s.Points[p2]
	c := s.Points[p3]
	if a == nil || b == nil || c == nil {
		return nil
	}

	cx, cy, r, ok := geom.Circumcircle(a.X, a.Y, b.X, b.Y, c.X, c.Y)
	if !ok {
		return nil
	}
	center := s.AddPoint(cx, cy, false)

	circle := &Circle{
		ID:     s.allocID(),
		Type:   CircleThreePoints,
		Center: center.ID,
		Radius: r,
		Points: []ID{p1, p2, p3},
	}
	s.Circles[circle.ID] = circle
	center.Children = appendChild(center.Children, circle.ID)
	a.Children = appendChild(a.Children, circle.ID)
	b.Children = appendChild(b.Children, circle.ID)
	c.Children = appendChild(c.Children, circle.ID)
	return circle
}

// AddArc creates a counter-clockwise arc of an existing circle between two
// existing points.
func (s *State) AddArc(circle, start, end ID) *Arc {
	c := s.Circles[circle]
	sp := s.Points[start]
	ep := s.Points[end]
	if c == nil || sp == nil || ep == nil {
		return nil
	}

	arc := &Arc{
		ID:     s.allocID(),
		Circle: circle,
		Start:  start,
		End:    end,
	}
	s.Arcs[arc.ID] = arc
	c.Children = appendChild(c.Children, arc.ID)
	sp.Children = appendChild(sp.Children, arc.ID)
	ep.Children = appendChild(ep.Children, arc.ID)
	return arc
}

// AddVariable creates a named variable. Names are unique; a duplicate
// returns nil.
func (s *State) AddVariable(name string, value float64, determined bool) *Variable {
	if _, exists := s.Variables[name]; exists {
		return nil
	}
	v := &Variable{
		Name:       name,
		Value:      value,
		HasValue:   true,
		Determined: determined,
	}
	s.Variables[name] = v
	return v
}

// AddVariableAuto creates a solver-determined variable with no value yet.
// It evaluates as unresolved until a solve assigns it.
func (s *State) AddVariableAuto(name string) *Variable {
	if _, exists := s.Variables[name]; exists {
		return nil
	}
	v := &Variable{Name: name, Determined: true}
	s.Variables[name] = v
	return v
}

// AppendConstraint assigns an id to the constraint, wires it into the
// dependency graph as a child of each referenced point and of its target
// entity, and appends it to the store. Missing referents return nil.
func (s *State) AppendConstraint(c *Constraint) *Constraint {
	for _, pid := range c.Points {
		if s.Points[pid] == nil {
			return nil
		}
	}
	if c.Target != 0 && !s.targetExists(c.Target) {
		return nil
	}

	c.ID = s.allocID()
	for _, pid := range c.Points {
		p := s.Points[pid]
		p.Children = appendChild(p.Children, c.ID)
	}
	if c.Target != 0 {
		s.appendTargetChild(c.Target, c.ID)
	}
	s.Constraints = append(s.Constraints, c)
	return c
}

func (s *State) targetExists(id ID) bool {
	return s.Segments[id] != nil || s.Circles[id] != nil || s.Arcs[id] != nil
}

func (s *State) appendTargetChild(target, child ID) {
	if seg := s.Segments[target]; seg != nil {
		seg.Children = appendChild(seg.Children, child)
	} else if circle := s.Circles[target]; circle != nil {
		circle.Children = appendChild(circle.Children, child)
	} else if arc := s.Arcs[target]; arc != nil {
		arc.Children = appendChild(arc.Children, child)
	}
}

// appendChild adds id to children unless already present.
func appendChild(children []ID, id ID) []ID {
	for _, c := range children {
		if c == id {
			return children
		}
	}
	return append(children, id)
}
