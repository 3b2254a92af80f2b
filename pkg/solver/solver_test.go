package solver

import (
	"math"
	"testing"
)

func TestSolveLinearSystem(t *testing.T) {
	// F(x) = [2x0 + x1 - 3, x0 - x1] => x0 = 1, x1 = 1
	fn := func(x []float64) []float64 {
		return []float64{2*x[0] + x[1] - 3, x[0] - x[1]}
	}
	res, err := Solve(fn, []float64{0, 0}, Options{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if math.Abs(res.X[0]-1) > 1e-4 || math.Abs(res.X[1]-1) > 1e-4 {
		t.Fatalf("unexpected solution %v", res.X)
	}
}

func TestSolveNonlinear(t *testing.T) {
	// F(x) = x^2 - 2 => x = sqrt(2)
	fn := func(x []float64) []float64 {
		return []float64{x[0]*x[0] - 2}
	}
	res, err := Solve(fn, []float64{1}, Options{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if math.Abs(res.X[0]-math.Sqrt2) > 1e-4 {
		t.Fatalf("unexpected solution %v, want %v", res.X[0], math.Sqrt2)
	}
}

func TestSolveFailureIsRecoverable(t *testing.T) {
	// A residual that never reaches zero and whose Jacobian vanishes,
	// stalling the trust region until maxfev is exhausted.
	fn := func(x []float64) []float64 {
		return []float64{1 + 0*x[0]}
	}
	_, err := Solve(fn, []float64{0}, Options{MaxFevFactor: 2})
	if err == nil {
		t.Fatal("expected a Failure")
	}
	if _, ok := err.(Failure); !ok {
		t.Fatalf("expected Failure, got %T", err)
	}
}
