package solver

import (
	"math"

	"planar/internal/core"
)

// Options tunes the Levenberg-Marquardt iteration.
type Options struct {
	MaxIterations  int
	ConvergenceEps float64
	LambdaInit     float64
	LambdaUp       float64
	LambdaDown     float64
}

// DefaultOptions returns the standard solver tuning.
func DefaultOptions() Options {
	return Options{
		MaxIterations:  100,
		ConvergenceEps: 1e-4,
		LambdaInit:     0.01,
		LambdaUp:       10,
		LambdaDown:     0.1,
	}
}

// Result reports the outcome of a solve.
type Result struct {
	Success    bool
	Iterations int
	FinalError float64
}

// Solve runs the solver with default options.
func Solve(st *core.State) Result {
	return SolveWith(st, DefaultOptions())
}

// SolveWith minimizes the sum of squared residuals over the state's free
// parameters. Accepted steps never increase the residual norm; rejected
// steps restore the previous parameters and raise the damping.
func SolveWith(st *core.State, opts Options) Result {
	params, slots := extractParams(st)
	lambda := opts.LambdaInit

	iter := 0
	for ; iter < opts.MaxIterations; iter++ {
		applyParams(st, slots, params)
		res := Residuals(st)
		norm := l2norm(res)
		if norm < opts.ConvergenceEps {
			return Result{Success: true, Iterations: iter, FinalError: norm}
		}

		j := jacobian(st, slots, params, res)
		if len(j) == 0 {
			break
		}

		n := len(params)
		h := make([][]float64, n)
		g := make([]float64, n)
		for a := 0; a < n; a++ {
			h[a] = make([]float64, n)
			for b := 0; b < n; b++ {
				var sum float64
				for k := range res {
					sum += j[a][k] * j[b][k]
				}
				h[a][b] = sum
			}
			var sum float64
			for k := range res {
				sum += j[a][k] * res[k]
			}
			g[a] = sum
		}

		// Relative damping with a floor so parameters with no local
		// effect do not collapse the system.
		for a := 0; a < n; a++ {
			floor := h[a][a]
			if floor < 1e-6 {
				floor = 1e-6
			}
			h[a][a] += lambda * floor
		}

		rhs := make([]float64, n)
		for a := 0; a < n; a++ {
			rhs[a] = -g[a]
		}
		delta := solveLinear(h, rhs)

		trial := make([]float64, n)
		for a := 0; a < n; a++ {
			trial[a] = params[a] + delta[a]
		}

		applyParams(st, slots, trial)
		if l2norm(Residuals(st)) < norm {
			params = trial
			lambda *= opts.LambdaDown
		} else {
			applyParams(st, slots, params)
			lambda *= opts.LambdaUp
		}
	}

	applyParams(st, slots, params)
	final := l2norm(Residuals(st))
	return Result{Success: final < opts.ConvergenceEps, Iterations: iter, FinalError: final}
}

// solveLinear solves a*x = b in place by Gaussian elimination with partial
// pivoting. A singular pivot leaves the corresponding component of x at
// zero instead of failing; the damping keeps the remaining system usable.
func solveLinear(a [][]float64, b []float64) []float64 {
	n := len(b)

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			continue
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			f := a[row][col] / a[col][col]
			if f == 0 {
				continue
			}
			for k := col; k < n; k++ {
				a[row][k] -= f * a[col][k]
			}
			b[row] -= f * b[col]
		}
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		if math.Abs(a[i][i]) < 1e-12 {
			x[i] = 0
			continue
		}
		sum := b[i]
		for k := i + 1; k < n; k++ {
			sum -= a[i][k] * x[k]
		}
		x[i] = sum / a[i][i]
	}
	return x
}

func l2norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
