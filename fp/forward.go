// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fp implements the Forward Pass (C6): a backtracking line search
// over step α that rolls out the affine feedback policy computed by the
// backward pass and accepts or rejects the step by comparing expected vs.
// actual cost reduction (spec.md §4.3).
package fp

import (
	"github.com/cpmech/gosl/la"
	"gonum.org/v1/gonum/floats"

	"github.com/cpmech/trajopt/bp"
	"github.com/cpmech/trajopt/constraint"
	"github.com/cpmech/trajopt/cost"
	"github.com/cpmech/trajopt/dynamics"
	"github.com/cpmech/trajopt/inp"
	"github.com/cpmech/trajopt/traj"
)

// Params bundles the line-search tunables read from inp.Options.
type Params struct {
	ZMin, ZMax    float64
	AlphaMin      float64
	Beta          float64
	MaxLineSearch int
	XMaxBound     float64
}

func ParamsFromOptions(o *inp.Options) Params {
	return Params{
		ZMin: o.ZMin, ZMax: o.ZMax, AlphaMin: o.AlphaMin,
		Beta: o.Beta, MaxLineSearch: o.MaxLineSearch, XMaxBound: o.XMaxBound,
	}
}

// Result reports the outcome of Run.
type Result struct {
	Accepted bool
	JNew     float64
	Alpha    float64
}

// Run executes the backtracking line search of spec.md §4.3. model steps
// the dynamics; stageCost/termCost evaluate the raw cost; eval assembles
// the stacked constraints for the AL cost addition (nil when the problem
// is unconstrained); xf is the terminal target state; dv1/dv2 and jPrev
// come from the backward pass and the previous accepted iterate. On
// acceptance, Run promotes the candidate trajectory into the committed
// one via s.CommitCandidate() and applies reg.Decrease to s.Rho/s.DRho;
// on rejection it applies reg.Increase and leaves s.X, s.U untouched.
func Run(s *traj.Store, model dynamics.Model, dt float64, hasUBounds bool, uMin, uMax la.Vector,
	stageCost cost.StageCost, termCost cost.TerminalCost, eval *constraint.Evaluator, xf la.Vector,
	dv1, dv2, jPrev float64, reg *bp.Regularizer, p Params, minimumTime bool, nu int) Result {

	a := 1.0
	for attempt := 0; attempt < p.MaxLineSearch; attempt++ {
		if a < p.AlphaMin {
			break
		}

		if !rollout(s, model, dt, a, hasUBounds, uMin, uMax, p.XMaxBound) {
			a *= p.Beta
			continue
		}

		jNew := Cost(s, stageCost, termCost, eval, s.Xn, s.Un, xf, s.Lambda, s.IMu, s.LambdaN, s.IMuN, minimumTime, nu)

		expected := a*dv1 + a*a*dv2
		if expected >= 0 {
			newRho, newDRho, _ := reg.Increase(s.Rho, s.DRho)
			s.Rho, s.DRho = newRho, newDRho
			return Result{Accepted: false, JNew: jPrev, Alpha: a}
		}

		z := (jPrev - jNew) / (-expected)
		if z >= p.ZMin && z <= p.ZMax {
			s.CommitCandidate()
			newRho, newDRho := reg.Decrease(s.Rho, s.DRho)
			s.Rho, s.DRho = newRho, newDRho
			return Result{Accepted: true, JNew: jNew, Alpha: a}
		}

		a *= p.Beta
	}

	newRho, newDRho, _ := reg.Increase(s.Rho, s.DRho)
	s.Rho, s.DRho = newRho, newDRho
	return Result{Accepted: false, JNew: jPrev, Alpha: a}
}

// rollout simulates the affine policy at the given step α, writing into
// s.Xn/s.Un. It returns false on a non-finite state or a state norm
// exceeding xMaxBound (spec.md §4.3 "Rollout failure").
func rollout(s *traj.Store, model dynamics.Model, dt, a float64, hasUBounds bool, uMin, uMax la.Vector, xMaxBound float64) bool {
	n := s.Dims.Nx
	copy(s.Xn[0], s.X[0])
	dx := la.NewVector(n)
	for k := 0; k < len(s.U); k++ {
		for i := 0; i < n; i++ {
			dx[i] = s.Xn[k][i] - s.X[k][i]
		}
		Kdx := la.NewVector(len(s.U[k]))
		matMulVec(Kdx, s.K[k], dx)
		for i := range s.Un[k] {
			s.Un[k][i] = s.U[k][i] + Kdx[i] + a*s.D[k][i]
		}
		if hasUBounds {
			for i := range uMin {
				if s.Un[k][i] < uMin[i] {
					s.Un[k][i] = uMin[i]
				}
				if s.Un[k][i] > uMax[i] {
					s.Un[k][i] = uMax[i]
				}
			}
		}
		model.Step(s.Xn[k+1], s.Xn[k], s.Un[k], dt)
		if floats.HasNaN(s.Xn[k+1]) {
			return false
		}
		if floats.Norm(s.Xn[k+1], 2) > xMaxBound {
			return false
		}
	}
	return true
}

func matMulVec(out la.Vector, A *la.Matrix, v la.Vector) {
	for i := 0; i < A.M; i++ {
		var s float64
		for j := 0; j < A.N; j++ {
			s += A.Get(i, j) * v[j]
		}
		out[i] = s
	}
}

// Cost evaluates the total trajectory cost, including the augmented-
// Lagrangian addition, of an arbitrary (X,U) pair under the given
// multipliers and active-penalty weights. It is used both by Run to
// score a line-search candidate (X=s.Xn, U=s.Un) and by the solver
// driver to score the committed trajectory at the start of an inner
// iteration (X=s.X, U=s.U), so the two are compared on equal footing.
// eval may be nil for an unconstrained problem.
func Cost(s *traj.Store, stageCost cost.StageCost, termCost cost.TerminalCost, eval *constraint.Evaluator,
	X, U []la.Vector, xf la.Vector, lambda []la.Vector, iMu []la.Vector, lambdaN, iMuN la.Vector,
	minimumTime bool, nu int) float64 {

	var cWork la.Vector
	var cxWork, cuWork *la.Matrix
	if eval != nil {
		cWork = la.NewVector(s.Dims.P)
		cxWork = la.NewMatrix(s.Dims.P, s.Dims.Nx)
		cuWork = la.NewMatrix(s.Dims.P, s.Dims.Mm)
	}
	var sqrtDt0 float64
	if minimumTime && len(U) > 0 {
		sqrtDt0 = U[0][nu]
	}

	var J float64
	for k := 0; k < len(U); k++ {
		J += stageCost.Value(k, X[k], U[k])
		if eval != nil {
			var sqrtDt float64
			if minimumTime {
				sqrtDt = U[k][nu]
			}
			eval.Evaluate(cWork, cxWork, cuWork, X[k], U[k], sqrtDt, sqrtDt0*sqrtDt0)
			J += constraint.AugmentedCost(cWork, lambda[k], iMu[k])
		}
	}
	last := len(X) - 1
	J += termCost.Value(X[last])
	if eval != nil {
		cN := la.NewVector(s.Dims.Nx)
		for i := range cN {
			cN[i] = X[last][i] - xf[i]
		}
		J += constraint.AugmentedCost(cN, lambdaN, iMuN)
	}
	return J
}
