package solver

import "planar/internal/core"

// ValidateConstraint reports whether the system remains solvable with the
// candidate constraint appended. The solve runs on a trial clone, so the
// caller's state is never mutated.
func ValidateConstraint(st *core.State, c *core.Constraint) bool {
	trial := st.CloneForTrial()
	trial.Constraints = append(trial.Constraints, c)
	return Solve(trial).Success
}

// TryAddConstraint validates the candidate on a clone; on success it
// appends the constraint for real and runs a solve on the live state. The
// bool reports whether the constraint was kept.
func TryAddConstraint(st *core.State, c *core.Constraint) (Result, bool) {
	if !ValidateConstraint(st, c) {
		return Result{}, false
	}
	if st.AppendConstraint(c) == nil {
		return Result{}, false
	}
	return Solve(st), true
}
