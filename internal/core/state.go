package core

import (
	"sort"
	"strconv"
)

// State is the entity store of one document. All cross-references between
// entities are by id; nothing holds a pointer into another container.
type State struct {
	Points      map[ID]*Point
	Segments    map[ID]*Segment
	Circles     map[ID]*Circle
	Arcs        map[ID]*Arc
	Variables   map[string]*Variable
	Constraints []*Constraint

	ActiveTool     Tool
	Zoom           float64
	OffsetX        float64
	OffsetY        float64
	Selected       []ID
	MeasureHistory []Measurement

	nextID    ID
	nextLabel int
}

// NewState returns an empty document: no entities, SELECT tool, unit zoom,
// zero offset.
func NewState() *State {
	return &State{
		Points:     make(map[ID]*Point),
		Segments:   make(map[ID]*Segment),
		Circles:    make(map[ID]*Circle),
		Arcs:       make(map[ID]*Arc),
		Variables:  make(map[string]*Variable),
		ActiveTool: ToolSelect,
		Zoom:       1,
	}
}

func (s *State) allocID() ID {
	s.nextID++
	return s.nextID
}

// allocLabel hands out A..Z, then A1..Z1, and so on. Every point creation
// consumes a label, including synthesized intersection points and circle
// centers.
func (s *State) allocLabel() string {
	k := s.nextLabel
	s.nextLabel++
	label := string(rune('A' + k%26))
	if k/26 > 0 {
		label += strconv.Itoa(k / 26)
	}
	return label
}

// Counters exposes the id and label allocator positions for persistence.
func (s *State) Counters() (ID, int) {
	return s.nextID, s.nextLabel
}

// SetCounters restores allocator positions from a persisted scene.
func (s *State) SetCounters(nextID ID, nextLabel int) {
	s.nextID = nextID
	s.nextLabel = nextLabel
}

// Constraint returns the constraint with the given id, or nil.
func (s *State) Constraint(id ID) *Constraint {
	for _, c := range s.Constraints {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// VarValues returns the values of all variables that currently have one,
// keyed by name, for expression evaluation.
func (s *State) VarValues() map[string]float64 {
	vals := make(map[string]float64, len(s.Variables))
	for name, v := range s.Variables {
		if v.HasValue {
			vals[name] = v.Value
		}
	}
	return vals
}

// CloneForTrial builds a clone suitable for a trial solve: points and
// variables are copied by value so the solver cannot touch the originals,
// the remaining containers are shared, and the constraint list is copied so
// a candidate can be appended.
func (s *State) CloneForTrial() *State {
	clone := &State{
		Points:      make(map[ID]*Point, len(s.Points)),
		Segments:    s.Segments,
		Circles:     s.Circles,
		Arcs:        s.Arcs,
		Variables:   make(map[string]*Variable, len(s.Variables)),
		Constraints: make([]*Constraint, len(s.Constraints), len(s.Constraints)+1),
		ActiveTool:  s.ActiveTool,
		Zoom:        s.Zoom,
		OffsetX:     s.OffsetX,
		OffsetY:     s.OffsetY,
		nextID:      s.nextID,
		nextLabel:   s.nextLabel,
	}
	for id, p := range s.Points {
		cp := *p
		clone.Points[id] = &cp
	}
	for name, v := range s.Variables {
		cv := *v
		clone.Variables[name] = &cv
	}
	copy(clone.Constraints, s.Constraints)
	return clone
}

// SetActiveTool records the UI's active tool.
func (s *State) SetActiveTool(t Tool) {
	s.ActiveTool = t
}

// AddToMeasureHistory appends a measurement for UI playback.
func (s *State) AddToMeasureHistory(m Measurement) {
	s.MeasureHistory = append(s.MeasureHistory, m)
}

// ClearMeasureHistory drops all recorded measurements.
func (s *State) ClearMeasureHistory() {
	s.MeasureHistory = nil
}

// PointIDs returns all point ids in ascending order.
func (s *State) PointIDs() []ID {
	ids := make([]ID, 0, len(s.Points))
	for id := range s.Points {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// SegmentIDs returns all segment ids in ascending order.
func (s *State) SegmentIDs() []ID {
	ids := make([]ID, 0, len(s.Segments))
	for id := range s.Segments {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// CircleIDs returns all circle ids in ascending order.
func (s *State) CircleIDs() []ID {
	ids := make([]ID, 0, len(s.Circles))
	for id := range s.Circles {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// ArcIDs returns all arc ids in ascending order.
func (s *State) ArcIDs() []ID {
	ids := make([]ID, 0, len(s.Arcs))
	for id := range s.Arcs {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// VariableNames returns all variable names sorted.
func (s *State) VariableNames() []string {
	names := make([]string, 0, len(s.Variables))
	for name := range s.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortIDs(ids []ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
