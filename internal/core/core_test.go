package core

import (
	"math"
	"testing"
)

func TestAddPoint_Labels(t *testing.T) {
	s := NewState()

	expected := []string{"A", "B", "C"}
	for i, want := range expected {
		p := s.AddPoint(float64(i), 0, false)
		if p.Label != want {
			t.Errorf("point %d labeled %q, expected %q", i, p.Label, want)
		}
	}
}

func TestLabelWrapAround(t *testing.T) {
	s := NewState()
	var last *Point
	for i := 0; i < 28; i++ {
		last = s.AddPoint(float64(i), 0, false)
	}
	if last.Label != "B1" {
		t.Errorf("28th label = %q, expected B1", last.Label)
	}
}

func TestAddSegmentTwoPoints(t *testing.T) {
	s := NewState()
	a := s.AddPoint(0, 0, false)
	b := s.AddPoint(10, 0, false)

	seg := s.AddSegmentTwoPoints(a.ID, b.ID)
	if seg == nil {
		t.Fatal("AddSegmentTwoPoints returned nil")
	}
	if !containsID(a.Children, seg.ID) || !containsID(b.Children, seg.ID) {
		t.Error("segment not registered as child of its endpoints")
	}

	if s.AddSegmentTwoPoints(a.ID, a.ID) != nil {
		t.Error("expected nil for coincident endpoint ids")
	}
	if s.AddSegmentTwoPoints(a.ID, 999) != nil {
		t.Error("expected nil for missing endpoint")
	}
}

func TestAddSegmentAbsAngle(t *testing.T) {
	s := NewState()
	a := s.AddPoint(0, 0, false)

	seg := s.AddSegmentAbsAngle(a.ID, 10, 90)
	if seg == nil {
		t.Fatal("AddSegmentAbsAngle returned nil")
	}
	far := s.Points[seg.P2]
	if far == nil {
		t.Fatal("far endpoint not materialized")
	}
	// 90 degrees points up, which is negative screen Y.
	if math.Abs(far.X) > 1e-9 || math.Abs(far.Y+10) > 1e-9 {
		t.Errorf("far endpoint at (%v, %v), expected (0, -10)", far.X, far.Y)
	}
	if seg.Length != 10 || seg.Angle != 90 {
		t.Errorf("stored length/angle = %v/%v", seg.Length, seg.Angle)
	}
}

func TestAddSegmentRelAngle(t *testing.T) {
	s := NewState()
	a := s.AddPoint(0, 0, false)
	b := s.AddPoint(10, 0, false)
	ref := s.AddSegmentTwoPoints(a.ID, b.ID) // angle 0

	seg := s.AddSegmentRelAngle(a.ID, ref.ID, 5, 90)
	if seg == nil {
		t.Fatal("AddSegmentRelAngle returned nil")
	}
	far := s.Points[seg.P2]
	if math.Abs(far.X) > 1e-9 || math.Abs(far.Y+5) > 1e-9 {
		t.Errorf("far endpoint at (%v, %v), expected (0, -5)", far.X, far.Y)
	}
	if seg.RefSegment != ref.ID {
		t.Error("reference segment not recorded")
	}
	if !containsID(ref.Children, seg.ID) {
		t.Error("new segment not a child of its reference segment")
	}
}

func TestAddCircleCircumference_FrozenRadius(t *testing.T) {
	s := NewState()
	c := s.AddPoint(0, 0, false)
	through := s.AddPoint(3, 4, false)

	circle := s.AddCircleCircumference(c.ID, through.ID)
	if circle == nil {
		t.Fatal("AddCircleCircumference returned nil")
	}
	if math.Abs(circle.Radius-5) > 1e-9 {
		t.Errorf("radius = %v, expected 5", circle.Radius)
	}

	// Moving the circumference point must not change the frozen radius.
	through.X = 100
	if math.Abs(circle.Radius-5) > 1e-9 {
		t.Error("radius should stay frozen after point move")
	}
}

func TestAddCircleThreePoints(t *testing.T) {
	s := NewState()
	a := s.AddPoint(0, 0, false)
	b := s.AddPoint(4, 0, false)
	c := s.AddPoint(0, 3, false)

	circle := s.AddCircleThreePoints(a.ID, b.ID, c.ID)
	if circle == nil {
		t.Fatal("AddCircleThreePoints returned nil")
	}
	center := s.Points[circle.Center]
	if center == nil {
		t.Fatal("center point not materialized")
	}
	if math.Abs(center.X-2) > 1e-9 || math.Abs(center.Y-1.5) > 1e-9 {
		t.Errorf("center at (%v, %v), expected (2, 1.5)", center.X, center.Y)
	}
	if math.Abs(circle.Radius-2.5) > 1e-9 {
		t.Errorf("radius = %v, expected 2.5", circle.Radius)
	}
	if !containsID(center.Children, circle.ID) {
		t.Error("circle not registered as child of its center point")
	}

	// Collinear points cannot define a circle.
	d := s.AddPoint(1, 1, false)
	e := s.AddPoint(2, 2, false)
	f := s.AddPoint(3, 3, false)
	if s.AddCircleThreePoints(d.ID, e.ID, f.ID) != nil {
		t.Error("expected nil for collinear points")
	}
}

func TestAddVariable_UniqueNames(t *testing.T) {
	s := NewState()
	if s.AddVariable("x", 1, true) == nil {
		t.Fatal("first AddVariable failed")
	}
	if s.AddVariable("x", 2, false) != nil {
		t.Error("duplicate variable name should return nil")
	}
}

func TestCascadingDelete(t *testing.T) {
	s := NewState()
	a := s.AddPoint(0, 0, false)
	b := s.AddPoint(10, 0, false)
	c := s.AddPoint(5, 8, false)
	seg := s.AddSegmentTwoPoints(a.ID, b.ID)
	circle := s.AddCircleThreePoints(a.ID, b.ID, c.ID)
	arc := s.AddArc(circle.ID, a.ID, b.ID)

	s.DeleteEntity(a.ID)

	if s.Points[a.ID] != nil {
		t.Error("deleted point still present")
	}
	if s.Segments[seg.ID] != nil {
		t.Error("segment referencing deleted point still present")
	}
	if s.Circles[circle.ID] != nil {
		t.Error("circle referencing deleted point still present")
	}
	if s.Arcs[arc.ID] != nil {
		t.Error("arc of deleted circle still present")
	}
	assertNoDanglingRefs(t, s)

	// Idempotent on stale ids.
	s.DeleteEntity(a.ID)
	s.DeleteEntity(seg.ID)
}

func TestDeleteSegment_UnlinksEndpoints(t *testing.T) {
	s := NewState()
	a := s.AddPoint(0, 0, false)
	b := s.AddPoint(10, 0, false)
	seg := s.AddSegmentTwoPoints(a.ID, b.ID)

	s.DeleteEntity(seg.ID)

	if containsID(a.Children, seg.ID) || containsID(b.Children, seg.ID) {
		t.Error("endpoints still reference the deleted segment")
	}
	if s.Points[a.ID] == nil || s.Points[b.ID] == nil {
		t.Error("endpoints must survive segment deletion")
	}
}

func TestDeletePoint_RemovesConstraints(t *testing.T) {
	s := NewState()
	a := s.AddPoint(0, 0, false)
	b := s.AddPoint(10, 0, true)

	c := s.AppendConstraint(&Constraint{
		Type:   ConstraintDistance,
		Points: []ID{a.ID, b.ID},
		Expr:   "10",
	})
	if c == nil {
		t.Fatal("AppendConstraint failed")
	}

	s.DeleteEntity(b.ID)

	if len(s.Constraints) != 0 {
		t.Error("constraint referencing deleted point still present")
	}
	if containsID(a.Children, c.ID) {
		t.Error("surviving point still references the deleted constraint")
	}
}

func TestFindAllIntersections(t *testing.T) {
	s := NewState()
	a := s.AddPoint(0, 0, false)
	b := s.AddPoint(10, 10, false)
	c := s.AddPoint(0, 10, false)
	d := s.AddPoint(10, 0, false)
	s.AddSegmentTwoPoints(a.ID, b.ID)
	s.AddSegmentTwoPoints(c.ID, d.ID)

	created := s.FindAllIntersections()
	if len(created) != 1 {
		t.Fatalf("expected 1 new point, got %d", len(created))
	}
	p := created[0]
	if math.Abs(p.X-5) > 1e-9 || math.Abs(p.Y-5) > 1e-9 {
		t.Errorf("intersection at (%v, %v), expected (5, 5)", p.X, p.Y)
	}

	// A second pass must be a no-op.
	if again := s.FindAllIntersections(); len(again) != 0 {
		t.Errorf("second pass created %d points, expected 0", len(again))
	}
}

func TestFindAllIntersections_SegmentCircle(t *testing.T) {
	s := NewState()
	center := s.AddPoint(0, 0, false)
	s.AddCircleRadius(center.ID, 5)
	a := s.AddPoint(-10, 0, false)
	b := s.AddPoint(10, 0, false)
	s.AddSegmentTwoPoints(a.ID, b.ID)

	created := s.FindAllIntersections()
	if len(created) != 2 {
		t.Fatalf("expected 2 new points, got %d", len(created))
	}
	for _, p := range created {
		if math.Abs(math.Abs(p.X)-5) > 1e-9 || math.Abs(p.Y) > 1e-9 {
			t.Errorf("unexpected intersection (%v, %v)", p.X, p.Y)
		}
	}
}

func TestCloneForTrial_Isolation(t *testing.T) {
	s := NewState()
	p := s.AddPoint(1, 2, true)
	s.AddVariable("x", 5, true)

	clone := s.CloneForTrial()
	clone.Points[p.ID].X = 100
	clone.Variables["x"].Value = 100

	if s.Points[p.ID].X != 1 {
		t.Error("clone mutation leaked into original point")
	}
	if s.Variables["x"].Value != 5 {
		t.Error("clone mutation leaked into original variable")
	}
}

func TestMeasureHistory(t *testing.T) {
	s := NewState()
	s.AddToMeasureHistory(Measurement{Kind: "distance", Value: 10})
	s.AddToMeasureHistory(Measurement{Kind: "angle", Value: 45})
	if len(s.MeasureHistory) != 2 {
		t.Fatalf("history length = %d, expected 2", len(s.MeasureHistory))
	}
	s.ClearMeasureHistory()
	if len(s.MeasureHistory) != 0 {
		t.Error("history not cleared")
	}
}

func containsID(ids []ID, id ID) bool {
	for _, c := range ids {
		if c == id {
			return true
		}
	}
	return false
}

// assertNoDanglingRefs checks that every id referenced anywhere still
// resolves in the store.
func assertNoDanglingRefs(t *testing.T, s *State) {
	t.Helper()
	resolves := func(id ID) bool {
		return s.Points[id] != nil || s.Segments[id] != nil ||
			s.Circles[id] != nil || s.Arcs[id] != nil || s.Constraint(id) != nil
	}
	for _, p := range s.Points {
		for _, c := range p.Children {
			if !resolves(c) {
				t.Errorf("point %d has dangling child %d", p.ID, c)
			}
		}
	}
	for _, seg := range s.Segments {
		if s.Points[seg.P1] == nil || s.Points[seg.P2] == nil {
			t.Errorf("segment %d has dangling endpoint", seg.ID)
		}
		for _, c := range seg.Children {
			if !resolves(c) {
				t.Errorf("segment %d has dangling child %d", seg.ID, c)
			}
		}
	}
	for _, circle := range s.Circles {
		if circle.Center != 0 && s.Points[circle.Center] == nil {
			t.Errorf("circle %d has dangling center", circle.ID)
		}
		for _, pid := range circle.Points {
			if s.Points[pid] == nil {
				t.Errorf("circle %d has dangling defining point", circle.ID)
			}
		}
	}
	for _, arc := range s.Arcs {
		if s.Circles[arc.Circle] == nil || s.Points[arc.Start] == nil || s.Points[arc.End] == nil {
			t.Errorf("arc %d has dangling reference", arc.ID)
		}
	}
	for _, c := range s.Constraints {
		for _, pid := range c.Points {
			if s.Points[pid] == nil {
				t.Errorf("constraint %d has dangling point", c.ID)
			}
		}
	}
}
