// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fp

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/cpmech/trajopt/bp"
	"github.com/cpmech/trajopt/cost"
	"github.com/cpmech/trajopt/dynamics/examples"
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

func Test_cost_sums_stage_and_terminal_value_with_no_constraints(tst *testing.T) {

	chk.PrintTitle("cost_sums_stage_and_terminal_value_with_no_constraints")

	d := inp.Dims{N: 3, Nx: 1, Nu: 1, Mbar: 1, Mm: 1, P: 0}
	s := traj.New(d)
	stageCost := cost.NewQuadratic(diag(2), diag(1), la.Vector{0})
	termCost := cost.NewQuadraticTerminal(diag(4), la.Vector{0})

	X := []la.Vector{{1}, {2}, {3}}
	U := []la.Vector{{0.5}, {-0.5}}

	got := Cost(s, stageCost, termCost, nil, X, U, la.Vector{0}, nil, nil, nil, nil, false, 0)

	want := stageCost.Value(0, X[0], U[0]) + stageCost.Value(1, X[1], U[1]) + termCost.Value(X[2])
	chk.Scalar(tst, "unconstrained cost is the plain stage+terminal sum", 1e-14, got, want)
}

func tinyForwardStore() (*traj.Store, *examples.DoubleIntegrator) {
	d := inp.Dims{N: 2, Nx: 2, Nu: 1, Mbar: 1, Mm: 1, P: 0}
	s := traj.New(d)
	s.SetInitialState(la.Vector{1, 0})
	copy(s.U[0], la.Vector{0})
	// K=0 (zero-valued by allocation), D supplies the step direction.
	return s, examples.NewDoubleIntegrator()
}

func zeroCost() (cost.StageCost, cost.TerminalCost) {
	return cost.NewQuadratic(diag(0, 0), diag(0), la.Vector{0, 0}),
		cost.NewQuadraticTerminal(diag(0, 0), la.Vector{0, 0})
}

func Test_run_accepts_a_step_whose_reduction_ratio_lands_in_range(tst *testing.T) {

	chk.PrintTitle("run_accepts_a_step_whose_reduction_ratio_lands_in_range")

	s, model := tinyForwardStore()
	copy(s.D[0], la.Vector{0.1})
	stageCost, termCost := zeroCost()
	reg := &bp.Regularizer{Phi: 1.6, RhoMin: 1e-6, RhoMax: 1e10}
	p := Params{ZMin: 0.1, ZMax: 2, AlphaMin: 0.01, Beta: 0.5, MaxLineSearch: 10, XMaxBound: 1e6}

	// with a zero cost, jNew is always 0; jPrev=2 and dv1=-2,dv2=0 gives
	// z = (2-0)/2 = 1, inside [ZMin,ZMax].
	res := Run(s, model, 0.1, false, nil, nil, stageCost, termCost, nil, la.Vector{0, 0},
		-2, 0, 2, reg, p, false, 0)

	if !res.Accepted {
		tst.Fatalf("expected the step to be accepted")
	}
	chk.Scalar(tst, "alpha", 1e-15, res.Alpha, 1)
	chk.Scalar(tst, "JNew", 1e-15, res.JNew, 0)
	chk.Vector(tst, "committed trajectory promoted from the candidate", 1e-15, s.X[1], s.Xn[1])
}

func Test_run_rejects_immediately_when_expected_reduction_is_nonnegative(tst *testing.T) {

	chk.PrintTitle("run_rejects_immediately_when_expected_reduction_is_nonnegative")

	s, model := tinyForwardStore()
	copy(s.D[0], la.Vector{0.1})
	stageCost, termCost := zeroCost()
	reg := &bp.Regularizer{Phi: 1.6, RhoMin: 1e-6, RhoMax: 1e10}
	p := Params{ZMin: 0.1, ZMax: 2, AlphaMin: 0.01, Beta: 0.5, MaxLineSearch: 10, XMaxBound: 1e6}

	res := Run(s, model, 0.1, false, nil, nil, stageCost, termCost, nil, la.Vector{0, 0},
		1, 1, 2, reg, p, false, 0)

	if res.Accepted {
		tst.Fatalf("a nonnegative expected reduction must never be accepted")
	}
	chk.Scalar(tst, "alpha on an immediate reject is the first attempt's", 1e-15, res.Alpha, 1)
	chk.Scalar(tst, "JNew falls back to jPrev on reject", 1e-15, res.JNew, 2)
}

func Test_run_rejects_when_the_reduction_ratio_never_lands_in_range(tst *testing.T) {

	chk.PrintTitle("run_rejects_when_the_reduction_ratio_never_lands_in_range")

	s, model := tinyForwardStore()
	copy(s.D[0], la.Vector{0.1})
	stageCost, termCost := zeroCost()
	reg := &bp.Regularizer{Phi: 1.6, RhoMin: 1e-6, RhoMax: 1e10}
	p := Params{ZMin: 0.5, ZMax: 2, AlphaMin: 0.01, Beta: 0.5, MaxLineSearch: 4, XMaxBound: 1e6}

	// z = (jPrev-0)/(-expected) stays far below ZMin at every step size,
	// since expected shrinks linearly in a while jPrev-jNew is constant.
	res := Run(s, model, 0.1, false, nil, nil, stageCost, termCost, nil, la.Vector{0, 0},
		-10, 0, 0.05, reg, p, false, 0)

	if res.Accepted {
		tst.Fatalf("expected the line search to exhaust its budget without accepting")
	}
	chk.Scalar(tst, "JNew falls back to jPrev on full rejection", 1e-15, res.JNew, 0.05)
}

func Test_rollout_clamps_controls_to_bounds(tst *testing.T) {

	chk.PrintTitle("rollout_clamps_controls_to_bounds")

	s, model := tinyForwardStore()
	copy(s.D[0], la.Vector{10}) // large feedforward that would blow past umax
	uMin := la.Vector{-1}
	uMax := la.Vector{1}

	ok := rollout(s, model, 0.1, 1.0, true, uMin, uMax, 1e6)
	if !ok {
		tst.Fatalf("rollout should succeed (state stays bounded)")
	}
	chk.Scalar(tst, "control clamped to its upper bound", 1e-15, s.Un[0][0], 1)
}

func Test_rollout_fails_when_state_exceeds_the_bound(tst *testing.T) {

	chk.PrintTitle("rollout_fails_when_state_exceeds_the_bound")

	s, model := tinyForwardStore()
	copy(s.D[0], la.Vector{1000})

	ok := rollout(s, model, 1.0, 1.0, false, nil, nil, 1.0)
	if ok {
		tst.Fatalf("rollout should report failure once the state norm exceeds xMaxBound")
	}
}
