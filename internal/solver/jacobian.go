package solver

import (
	"math"

	"planar/internal/core"
)

// jacobian computes forward differences of the residual vector with respect
// to each parameter. Rows index parameters, columns index constraints.
// Non-finite derivatives (coincident points, degenerate segments) are
// zeroed so the iteration can continue. The state is restored to the
// baseline parameter vector before returning.
func jacobian(st *core.State, slots []paramSlot, params, base []float64) [][]float64 {
	j := make([][]float64, len(params))
	work := make([]float64, len(params))

	for i := range params {
		eps := 1e-6
		if scaled := math.Abs(params[i]) * 1e-6; scaled > eps {
			eps = scaled
		}

		copy(work, params)
		work[i] += eps
		applyParams(st, slots, work)

		perturbed := Residuals(st)
		row := make([]float64, len(base))
		for k := range base {
			d := (perturbed[k] - base[k]) / eps
			if math.IsNaN(d) || math.IsInf(d, 0) {
				d = 0
			}
			row[k] = d
		}
		j[i] = row
	}

	applyParams(st, slots, params)
	return j
}
