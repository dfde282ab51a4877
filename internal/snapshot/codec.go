package snapshot

import (
	"encoding/json"
	"fmt"

	"planar/internal/core"
)

// The scene document is the canonical serialized form of a core.State:
// fixed field order, entity lists sorted by id, variables sorted by name.
// The blake3 digest of this encoding identifies the scene content.

type sceneDoc struct {
	Points      []pointDoc      `json:"points"`
	Segments    []segmentDoc    `json:"segments"`
	Circles     []circleDoc     `json:"circles"`
	Arcs        []arcDoc        `json:"arcs"`
	Variables   []variableDoc   `json:"variables"`
	Constraints []constraintDoc `json:"constraints"`
	ActiveTool  string          `json:"activeTool"`
	Zoom        float64         `json:"zoom"`
	OffsetX     float64         `json:"offsetX"`
	OffsetY     float64         `json:"offsetY"`
	NextID      int64           `json:"nextId"`
	NextLabel   int             `json:"nextLabel"`
}

type pointDoc struct {
	ID       int64   `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Label    string  `json:"label"`
	Children []int64 `json:"children,omitempty"`
	Floating bool    `json:"floating,omitempty"`
}

type segmentDoc struct {
	ID         int64   `json:"id"`
	P1         int64   `json:"p1"`
	P2         int64   `json:"p2"`
	Type       string  `json:"type"`
	Length     float64 `json:"length,omitempty"`
	Angle      float64 `json:"angle,omitempty"`
	RefSegment int64   `json:"refSegment,omitempty"`
	Children   []int64 `json:"children,omitempty"`
}

type circleDoc struct {
	ID       int64   `json:"id"`
	Type     string  `json:"type"`
	Center   int64   `json:"center,omitempty"`
	Radius   float64 `json:"radius"`
	Points   []int64 `json:"points,omitempty"`
	Children []int64 `json:"children,omitempty"`
}

type arcDoc struct {
	ID       int64   `json:"id"`
	Circle   int64   `json:"circle"`
	Start    int64   `json:"start"`
	End      int64   `json:"end"`
	Children []int64 `json:"children,omitempty"`
}

type variableDoc struct {
	Name       string   `json:"name"`
	Value      *float64 `json:"value"`
	Determined bool     `json:"determined,omitempty"`
}

type constraintDoc struct {
	ID     int64   `json:"id"`
	Type   string  `json:"type"`
	Points []int64 `json:"points,omitempty"`
	Target int64   `json:"target,omitempty"`
	Expr   string  `json:"expr,omitempty"`
}

// EncodeScene serializes a state into its canonical JSON document.
func EncodeScene(st *core.State) ([]byte, error) {
	var doc sceneDoc

	for _, id := range st.PointIDs() {
		p := st.Points[id]
		doc.Points = append(doc.Points, pointDoc{
			ID:       int64(p.ID),
			X:        p.X,
			Y:        p.Y,
			Label:    p.Label,
			Children: idsToInt64(p.Children),
			Floating: p.Floating,
		})
	}
	for _, id := range st.SegmentIDs() {
		seg := st.Segments[id]
		doc.Segments = append(doc.Segments, segmentDoc{
			ID:         int64(seg.ID),
			P1:         int64(seg.P1),
			P2:         int64(seg.P2),
			Type:       string(seg.Type),
			Length:     seg.Length,
			Angle:      seg.Angle,
			RefSegment: int64(seg.RefSegment),
			Children:   idsToInt64(seg.Children),
		})
	}
	for _, id := range st.CircleIDs() {
		c := st.Circles[id]
		doc.Circles = append(doc.Circles, circleDoc{
			ID:       int64(c.ID),
			Type:     string(c.Type),
			Center:   int64(c.Center),
			Radius:   c.Radius,
			Points:   idsToInt64(c.Points),
			Children: idsToInt64(c.Children),
		})
	}
	for _, id := range st.ArcIDs() {
		a := st.Arcs[id]
		doc.Arcs = append(doc.Arcs, arcDoc{
			ID:       int64(a.ID),
			Circle:   int64(a.Circle),
			Start:    int64(a.Start),
			End:      int64(a.End),
			Children: idsToInt64(a.Children),
		})
	}
	for _, name := range st.VariableNames() {
		v := st.Variables[name]
		vd := variableDoc{Name: name, Determined: v.Determined}
		if v.HasValue {
			val := v.Value
			vd.Value = &val
		}
		doc.Variables = append(doc.Variables, vd)
	}
	for _, c := range st.Constraints {
		doc.Constraints = append(doc.Constraints, constraintDoc{
			ID:     int64(c.ID),
			Type:   string(c.Type),
			Points: idsToInt64(c.Points),
			Target: int64(c.Target),
			Expr:   c.Expr,
		})
	}

	doc.ActiveTool = string(st.ActiveTool)
	doc.Zoom = st.Zoom
	doc.OffsetX = st.OffsetX
	doc.OffsetY = st.OffsetY
	nextID, nextLabel := st.Counters()
	doc.NextID = int64(nextID)
	doc.NextLabel = nextLabel

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling scene: %w", err)
	}
	return data, nil
}

// DecodeScene rebuilds a state from its canonical JSON document.
func DecodeScene(data []byte) (*core.State, error) {
	var doc sceneDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling scene: %w", err)
	}

	st := core.NewState()
	for _, pd := range doc.Points {
		st.Points[core.ID(pd.ID)] = &core.Point{
			ID:       core.ID(pd.ID),
			X:        pd.X,
			Y:        pd.Y,
			Label:    pd.Label,
			Children: int64ToIDs(pd.Children),
			Floating: pd.Floating,
		}
	}
	for _, sd := range doc.Segments {
		st.Segments[core.ID(sd.ID)] = &core.Segment{
			ID:         core.ID(sd.ID),
			P1:         core.ID(sd.P1),
			P2:         core.ID(sd.P2),
			Type:       core.SegmentType(sd.Type),
			Length:     sd.Length,
			Angle:      sd.Angle,
			RefSegment: core.ID(sd.RefSegment),
			Children:   int64ToIDs(sd.Children),
		}
	}
	for _, cd := range doc.Circles {
		st.Circles[core.ID(cd.ID)] = &core.Circle{
			ID:       core.ID(cd.ID),
			Type:     core.CircleType(cd.Type),
			Center:   core.ID(cd.Center),
			Radius:   cd.Radius,
			Points:   int64ToIDs(cd.Points),
			Children: int64ToIDs(cd.Children),
		}
	}
	for _, ad := range doc.Arcs {
		st.Arcs[core.ID(ad.ID)] = &core.Arc{
			ID:       core.ID(ad.ID),
			Circle:   core.ID(ad.Circle),
			Start:    core.ID(ad.Start),
			End:      core.ID(ad.End),
			Children: int64ToIDs(ad.Children),
		}
	}
	for _, vd := range doc.Variables {
		v := &core.Variable{Name: vd.Name, Determined: vd.Determined}
		if vd.Value != nil {
			v.Value = *vd.Value
			v.HasValue = true
		}
		st.Variables[vd.Name] = v
	}
	for _, cd := range doc.Constraints {
		st.Constraints = append(st.Constraints, &core.Constraint{
			ID:     core.ID(cd.ID),
			Type:   core.ConstraintType(cd.Type),
			Points: int64ToIDs(cd.Points),
			Target: core.ID(cd.Target),
			Expr:   cd.Expr,
		})
	}

	if doc.ActiveTool != "" {
		st.ActiveTool = core.Tool(doc.ActiveTool)
	}
	if doc.Zoom != 0 {
		st.Zoom = doc.Zoom
	}
	st.OffsetX = doc.OffsetX
	st.OffsetY = doc.OffsetY
	st.SetCounters(core.ID(doc.NextID), doc.NextLabel)
	return st, nil
}

func idsToInt64(ids []core.ID) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func int64ToIDs(ids []int64) []core.ID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]core.ID, len(ids))
	for i, id := range ids {
		out[i] = core.ID(id)
	}
	return out
}
