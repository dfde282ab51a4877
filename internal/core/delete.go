package core

// DeleteEntity removes the entity with the given id together with every
// entity constructed in reference to it, transitively. Children are deleted
// depth-first before the entity itself; back-references in parents are
// unlinked last. A stale id is a no-op.
func (s *State) DeleteEntity(id ID) {
	switch {
	case s.Points[id] != nil:
		s.deletePoint(id)
	case s.Segments[id] != nil:
		s.deleteSegment(id)
	case s.Circles[id] != nil:
		s.deleteCircle(id)
	case s.Arcs[id] != nil:
		s.deleteArc(id)
	case s.Constraint(id) != nil:
		s.deleteConstraint(id)
	}
}

func (s *State) deletePoint(id ID) {
	p := s.Points[id]
	if p == nil {
		return
	}
	for _, child := range snapshot(p.Children) {
		s.DeleteEntity(child)
	}
	delete(s.Points, id)
}

func (s *State) deleteSegment(id ID) {
	seg := s.Segments[id]
	if seg == nil {
		return
	}
	for _, child := range snapshot(seg.Children) {
		s.DeleteEntity(child)
	}
	s.unlinkFromPoint(seg.P1, id)
	s.unlinkFromPoint(seg.P2, id)
	if seg.RefSegment != 0 {
		if ref := s.Segments[seg.RefSegment]; ref != nil {
			ref.Children = removeChild(ref.Children, id)
		}
	}
	delete(s.Segments, id)
}

func (s *State) deleteCircle(id ID) {
	circle := s.Circles[id]
	if circle == nil {
		return
	}
	for _, child := range snapshot(circle.Children) {
		s.DeleteEntity(child)
	}
	if circle.Center != 0 {
		s.unlinkFromPoint(circle.Center, id)
	}
	for _, pid := range circle.Points {
		s.unlinkFromPoint(pid, id)
	}
	delete(s.Circles, id)
}

func (s *State) deleteArc(id ID) {
	arc := s.Arcs[id]
	if arc == nil {
		return
	}
	for _, child := range snapshot(arc.Children) {
		s.DeleteEntity(child)
	}
	if c := s.Circles[arc.Circle]; c != nil {
		c.Children = removeChild(c.Children, id)
	}
	s.unlinkFromPoint(arc.Start, id)
	s.unlinkFromPoint(arc.End, id)
	delete(s.Arcs, id)
}

func (s *State) deleteConstraint(id ID) {
	c := s.Constraint(id)
	if c == nil {
		return
	}
	for _, pid := range c.Points {
		s.unlinkFromPoint(pid, id)
	}
	if c.Target != 0 {
		if seg := s.Segments[c.Target]; seg != nil {
			seg.Children = removeChild(seg.Children, id)
		} else if circle := s.Circles[c.Target]; circle != nil {
			circle.Children = removeChild(circle.Children, id)
		} else if arc := s.Arcs[c.Target]; arc != nil {
			arc.Children = removeChild(arc.Children, id)
		}
	}
	for i, existing := range s.Constraints {
		if existing.ID == id {
			s.Constraints = append(s.Constraints[:i], s.Constraints[i+1:]...)
			break
		}
	}
}

func (s *State) unlinkFromPoint(pid, child ID) {
	if p := s.Points[pid]; p != nil {
		p.Children = removeChild(p.Children, child)
	}
}

// snapshot copies a child list so recursive deletion can mutate the
// original while iterating.
func snapshot(ids []ID) []ID {
	out := make([]ID, len(ids))
	copy(out, ids)
	return out
}

func removeChild(children []ID, id ID) []ID {
	for i, c := range children {
		if c == id {
			return append(children[:i], children[i+1:]...)
		}
	}
	return children
}
