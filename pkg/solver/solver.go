// Package solver implements the nonlinear-equation solver contract spec §1
// and §9 scope out of the core engine proper ("the embedded nonlinear-
// equation solver (Powell hybrid / dogleg) ... specified only as the
// contract the core requires from them"). ResidualFunc/Solve are the
// contract; the implementation below is a reference damped-Newton/dogleg
// trust-region solver bounded by maxfev = 200*(n+1). No other package of
// this module imports it; its own tests exercise it.
package solver

import "math"

// ResidualFunc evaluates the residual vector F(x) for a system the caller
// wants driven to zero. It must be pure: same x in, same F(x) out, no
// shared mutable state (spec §5: "each evaluation is pure and bounded").
type ResidualFunc func(x []float64) []float64

// Failure is the spec §7 SolverFailure error kind: Powell hybrid did not
// converge within maxfev. Recoverable: it carries the evaluation count and
// final residual norm so a caller can treat it as a penalty rather than a
// hard error.
type Failure struct {
	Evaluations int
	Residual    float64
}

func (e Failure) Error() string {
	return "solver did not converge within maxfev evaluations"
}

// Result is the solution state Solve returns on success.
type Result struct {
	X           []float64
	Residual    []float64
	Evaluations int
}

// Options configures a Solve call. A zero Options uses the spec-mandated
// defaults (tol = 1e-9, maxfev = 200*(n+1)).
type Options struct {
	Tolerance    float64
	MaxFevFactor int // maxfev = MaxFevFactor * (n+1); spec default 200
}

func (o Options) withDefaults() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-9
	}
	if o.MaxFevFactor <= 0 {
		o.MaxFevFactor = 200
	}
	return o
}

// Solve drives fn to (approximately) zero starting from x0, using a
// Jacobian estimated by forward differences and a dogleg trust-region step
// between the Cauchy (steepest-descent) direction and the Gauss-Newton
// direction — the idiomatic-Go analogue of the Powell hybrid method's
// dogleg step (spec §9), without carrying over MINPACK's Fortran control
// flow.
func Solve(fn ResidualFunc, x0 []float64, opts Options) (Result, error) {
	opts = opts.withDefaults()
	n := len(x0)
	maxfev := opts.MaxFevFactor * (n + 1)

	x := append([]float64(nil), x0...)
	fx := fn(x)
	evals := 1

	trustRadius := 1.0
	const minTrustRadius = 1e-12

	for evals < maxfev {
		if norm(fx) < opts.Tolerance {
			return Result{X: x, Residual: fx, Evaluations: evals}, nil
		}

		jac, jacEvals := jacobian(fn, x, fx)
		evals += jacEvals
		if evals >= maxfev {
			break
		}

		step := doglegStep(jac, fx, trustRadius)

		xTrial := make([]float64, n)
		for i := range x {
			xTrial[i] = x[i] + step[i]
		}
		fTrial := fn(xTrial)
		evals++

		if norm(fTrial) < norm(fx) {
			x = xTrial
			fx = fTrial
			trustRadius = math.Min(trustRadius*2, 1e6)
		} else {
			trustRadius *= 0.5
			if trustRadius < minTrustRadius {
				break
			}
		}
	}

	return Result{}, Failure{Evaluations: evals, Residual: norm(fx)}
}

func norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// jacobian estimates d(fn)/dx by forward differences, consuming n
// additional residual evaluations.
func jacobian(fn ResidualFunc, x, fx []float64) ([][]float64, int) {
	n := len(x)
	m := len(fx)
	jac := make([][]float64, m)
	for i := range jac {
		jac[i] = make([]float64, n)
	}
	const eps = 1e-7
	for j := 0; j < n; j++ {
		h := eps * math.Max(1, math.Abs(x[j]))
		xh := append([]float64(nil), x...)
		xh[j] += h
		fh := fn(xh)
		for i := 0; i < m; i++ {
			jac[i][j] = (fh[i] - fx[i]) / h
		}
	}
	return jac, n
}

// doglegStep computes a dogleg step between the steepest-descent direction
// and the Gauss-Newton direction (solved here via damped normal equations
// since the core only ever calls this with small square systems), clipped
// to the trust region radius.
func doglegStep(jac [][]float64, fx []float64, radius float64) []float64 {
	n := len(fx)

	// Steepest-descent (Cauchy) direction: -J^T f.
	grad := make([]float64, n)
	for j := 0; j < n; j++ {
		s := 0.0
		for i := 0; i < n; i++ {
			s += jac[i][j] * fx[i]
		}
		grad[j] = -s
	}

	// Gauss-Newton direction via damped normal equations (J^T J + damp I) d = -J^T f.
	gn := gaussNewtonStep(jac, fx)

	gnNorm := norm(gn)
	if gnNorm <= radius {
		return gn
	}

	gradNorm := norm(grad)
	if gradNorm == 0 {
		return scaled(gn, radius/math.Max(gnNorm, 1e-300))
	}
	return scaled(grad, radius/gradNorm)
}

func scaled(v []float64, s float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * s
	}
	return out
}

// gaussNewtonStep solves (J^T J + damp I) d = -J^T f for small n via
// Gauss-Jordan elimination; damp keeps the normal equations nonsingular
// when J is rank-deficient near the solution.
func gaussNewtonStep(jac [][]float64, fx []float64) []float64 {
	n := len(fx)
	const damp = 1e-10

	jtj := make([][]float64, n)
	jtf := make([]float64, n)
	for i := 0; i < n; i++ {
		jtj[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			s := 0.0
			for k := 0; k < n; k++ {
				s += jac[k][i] * jac[k][j]
			}
			jtj[i][j] = s
		}
		jtj[i][i] += damp
		s := 0.0
		for k := 0; k < n; k++ {
			s += jac[k][i] * fx[k]
		}
		jtf[i] = -s
	}

	return gaussJordan(jtj, jtf)
}

func gaussJordan(a [][]float64, b []float64) []float64 {
	n := len(b)
	aug := make([][]float64, n)
	for i := range aug {
		aug[i] = append(append([]float64(nil), a[i]...), b[i])
	}
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]
		pv := aug[col][col]
		if math.Abs(pv) < 1e-300 {
			continue
		}
		for k := col; k <= n; k++ {
			aug[col][k] /= pv
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := aug[r][col]
			for k := col; k <= n; k++ {
				aug[r][k] -= factor * aug[col][k]
			}
		}
	}
	x := make([]float64, n)
	for i := range x {
		x[i] = aug[i][n]
	}
	return x
}
