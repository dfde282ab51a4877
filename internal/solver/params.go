package solver

import "planar/internal/core"

type paramKind int

const (
	paramPointX paramKind = iota
	paramPointY
	paramVariable
)

// paramSlot describes one entry of the flat parameter vector: which point
// coordinate or variable it belongs to.
type paramSlot struct {
	kind  paramKind
	point core.ID
	name  string
}

// extractParams snapshots the free parameters of the state: x then y of
// every floating point (ascending id), then every determined variable
// (sorted by name).
func extractParams(st *core.State) ([]float64, []paramSlot) {
	var vals []float64
	var slots []paramSlot

	for _, id := range st.PointIDs() {
		p := st.Points[id]
		if !p.Floating {
			continue
		}
		vals = append(vals, p.X, p.Y)
		slots = append(slots,
			paramSlot{kind: paramPointX, point: id},
			paramSlot{kind: paramPointY, point: id})
	}

	for _, name := range st.VariableNames() {
		v := st.Variables[name]
		if !v.Determined {
			continue
		}
		vals = append(vals, v.Value)
		slots = append(slots, paramSlot{kind: paramVariable, name: name})
	}

	return vals, slots
}

// applyParams writes the parameter vector back into the state. Slots whose
// point or variable has since been deleted are skipped.
func applyParams(st *core.State, slots []paramSlot, vals []float64) {
	for i, slot := range slots {
		switch slot.kind {
		case paramPointX:
			if p := st.Points[slot.point]; p != nil {
				p.X = vals[i]
			}
		case paramPointY:
			if p := st.Points[slot.point]; p != nil {
				p.Y = vals[i]
			}
		case paramVariable:
			if v := st.Variables[slot.name]; v != nil {
				v.Value = vals[i]
				v.HasValue = true
			}
		}
	}
}
