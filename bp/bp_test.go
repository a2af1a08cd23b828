// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bp

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/cpmech/trajopt/cost"
	"github.com/cpmech/trajopt/inp"
	"github.com/cpmech/trajopt/traj"
)

func diag(d ...float64) *la.Matrix {
	m := la.NewMatrix(len(d), len(d))
	for i, v := range d {
		m.Set(i, i, v)
	}
	return m
}

func defaultRegularizer() *Regularizer {
	return &Regularizer{Phi: 1.6, RhoMin: 1e-6, RhoMax: 1e10}
}

func Test_regularizer_increase_grows_rho_and_drho(tst *testing.T) {

	chk.PrintTitle("regularizer_increase_grows_rho_and_drho")

	r := defaultRegularizer()
	rho, dRho, overflow := r.Increase(0, 0)

	if overflow {
		tst.Errorf("did not expect overflow on first increase")
	}
	chk.Scalar(tst, "dRho after first increase", 1e-15, dRho, r.Phi)
	chk.Scalar(tst, "rho after first increase from zero", 1e-15, rho, r.RhoMin)

	rho2, dRho2, _ := r.Increase(rho, dRho)
	if rho2 <= rho {
		tst.Errorf("rho should strictly grow on repeated increases: %g -> %g", rho, rho2)
	}
	if dRho2 <= dRho {
		tst.Errorf("dRho should strictly grow on repeated increases: %g -> %g", dRho, dRho2)
	}
}

func Test_regularizer_increase_clamps_and_signals_overflow_at_rho_max(tst *testing.T) {

	chk.PrintTitle("regularizer_increase_clamps_and_signals_overflow_at_rho_max")

	r := &Regularizer{Phi: 2.0, RhoMin: 1, RhoMax: 100}
	rho, dRho := 90.0, 10.0
	newRho, _, overflow := r.Increase(rho, dRho)

	if newRho > r.RhoMax {
		tst.Errorf("rho must be clamped to RhoMax, got %g > %g", newRho, r.RhoMax)
	}
	if !overflow {
		tst.Errorf("expected overflow to be reported once rho clamps to RhoMax")
	}
}

func Test_regularizer_decrease_shrinks_rho_and_floors_at_zero(tst *testing.T) {

	chk.PrintTitle("regularizer_decrease_shrinks_rho_and_floors_at_zero")

	r := defaultRegularizer()
	rho, dRho, _ := r.Increase(0, 0)
	rho, dRho, _ = r.Increase(rho, dRho)

	newRho, newDRho := r.Decrease(rho, dRho)
	if newRho >= rho {
		tst.Errorf("decrease should shrink rho: %g -> %g", rho, newRho)
	}
	if newDRho >= dRho {
		tst.Errorf("decrease should shrink dRho: %g -> %g", dRho, newDRho)
	}

	// once rho*dRho falls below RhoMin, decrease floors it at exactly zero
	floored, _ := r.Decrease(r.RhoMin, 1.0/r.Phi)
	chk.Scalar(tst, "rho floors at zero below RhoMin", 1e-15, floored, 0)
}

// tinyLQR builds a one-stage, scalar-state, scalar-control, unconstrained
// Store (P=0) with linear dynamics x' = x+u and quadratic costs, the
// smallest instance that exercises the Riccati recursion end to end.
func tinyLQR() (*traj.Store, cost.StageCost, cost.TerminalCost) {
	d := inp.Dims{N: 2, Nx: 1, Nu: 1, Mbar: 1, Mm: 1, P: 0, PI: 0, PE: 0}
	s := traj.New(d)
	copy(s.X[0], la.Vector{1})
	copy(s.X[1], la.Vector{0})
	copy(s.U[0], la.Vector{0.5})
	s.Fdx[0].Set(0, 0, 1)
	s.Fdu[0].Set(0, 0, 1)

	stageCost := cost.NewQuadratic(diag(1), diag(1), la.Vector{0})
	termCost := cost.NewQuadraticTerminal(diag(4), la.Vector{0})
	return s, stageCost, termCost
}

func Test_run_produces_a_descent_direction_on_a_tiny_lqr_problem(tst *testing.T) {

	chk.PrintTitle("run_produces_a_descent_direction_on_a_tiny_lqr_problem")

	s, stageCost, termCost := tinyLQR()
	reg := defaultRegularizer()

	result := Run(s, stageCost, termCost, reg, inp.BpRegControl)

	if result.Indefinite {
		tst.Errorf("did not expect an indefinite Quu_reg on a strictly convex LQR problem")
	}
	if result.Overflow {
		tst.Errorf("did not expect regularization overflow")
	}
	// Dv1 = d.Qu = -Quᵀ Quu⁻¹ Qu <= 0 for a PD Quu (spec.md §8 Law: descent
	// on accept); Dv2 = ½ d.(Quu d) >= 0.
	if result.Dv1 > 1e-12 {
		tst.Errorf("Dv1 = %g, want <= 0", result.Dv1)
	}
	if result.Dv2 < -1e-12 {
		tst.Errorf("Dv2 = %g, want >= 0", result.Dv2)
	}

	// the terminal value-function Hessian must be left symmetric PD.
	chk.Scalar(tst, "S[N-1] matches terminal Qf", 1e-12, s.S[1].Get(0, 0), 4)
}

func Test_todorov_gradient_is_nonnegative_and_zero_for_zero_feedforward(tst *testing.T) {

	chk.PrintTitle("todorov_gradient_is_nonnegative_and_zero_for_zero_feedforward")

	d := inp.Dims{N: 3, Nx: 1, Nu: 1, Mbar: 1, Mm: 1, P: 0}
	s := traj.New(d)
	if g := TodorovGradient(s); g != 0 {
		tst.Errorf("expected zero metric for all-zero feedforward, got %g", g)
	}

	copy(s.D[0], la.Vector{0.5})
	copy(s.U[0], la.Vector{1})
	copy(s.D[1], la.Vector{-2})
	copy(s.U[1], la.Vector{0})

	g := TodorovGradient(s)
	if g <= 0 {
		tst.Errorf("expected a strictly positive metric, got %g", g)
	}
	want := (0.5/(1+1) + 2.0/(0+1)) / 2
	chk.Scalar(tst, "mean of per-knot worst ratios", 1e-14, g, want)
}

func Test_run_square_root_reconstructs_s_from_its_u_factor(tst *testing.T) {

	chk.PrintTitle("run_square_root_reconstructs_s_from_its_u_factor")

	s, stageCost, termCost := tinyLQR()
	reg := defaultRegularizer()

	_, U := RunSquareRoot(s, stageCost, termCost, reg, inp.BpRegControl)

	n := s.Dims.Nx
	for k := 0; k < s.Dims.N; k++ {
		UtU := la.NewMatrix(n, n)
		matTrMulMat(UtU, U[k], U[k])
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				chk.Scalar(tst, "UtU reconstructs S", 1e-10, UtU.Get(i, j), s.S[k].Get(i, j))
			}
		}
	}
}
