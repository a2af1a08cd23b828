// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solver implements the Solver Driver (C9): it composes the
// Trajectory Store, Constraint Evaluator, Backward Pass, Forward Pass,
// and Outer Loop into the nested iLQR/Augmented-Lagrangian loop of
// spec.md §5, owns the run statistics, and applies the error-recovery
// policy of spec.md §7.
package solver

import (
	"math"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"

	"github.com/cpmech/trajopt/al"
	"github.com/cpmech/trajopt/bp"
	"github.com/cpmech/trajopt/constraint"
	"github.com/cpmech/trajopt/cost"
	"github.com/cpmech/trajopt/dynamics"
	"github.com/cpmech/trajopt/fp"
	"github.com/cpmech/trajopt/inp"
	"github.com/cpmech/trajopt/traj"
)

// Config bundles everything a solve needs: the problem/options pair and
// the external oracles spec.md §1 keeps out of scope (dynamics, cost,
// optional user constraint).
type Config struct {
	Problem   *inp.Problem
	Options   *inp.Options
	Model     dynamics.Model
	StageCost cost.StageCost
	TermCost  cost.TerminalCost
	User      constraint.UserFunc
}

// Solve runs the core nested loop of spec.md §5 to convergence or the
// iteration caps, returning the Trajectory Store holding the final
// accepted trajectory. Config errors (the only hard-failure kind,
// spec.md §7) are reported before any iteration runs; everything else is
// recovered internally and surfaced as a Statistics.Warnings entry.
func Solve(cfg Config) (*traj.Store, *Statistics, error) {
	if err := cfg.Problem.Validate(); err != nil {
		return nil, nil, err
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, nil, err
	}

	setupStart := time.Now()
	mode := inp.NewMode(cfg.Problem, cfg.Options)
	dims := cfg.Problem.Dims(cfg.Options, false)
	s := traj.New(dims)
	s.SetInitialState(cfg.Problem.X0)
	s.InitControls(cfg.Problem.U0)
	s.Rho = cfg.Options.RhoInitial
	for k := range s.Mu {
		for i := range s.Mu[k] {
			s.Mu[k][i] = cfg.Options.MuInitial
		}
	}
	for i := range s.MuN {
		s.MuN[i] = cfg.Options.MuInitial
	}

	var eval *constraint.Evaluator
	if mode.Constrained {
		eval = constraint.NewEvaluator(cfg.Problem, inp.Mode{MinimumTime: mode.MinimumTime, Infeasible: mode.Infeasible}, dims.Mm, cfg.User)
		if p, _, _ := eval.NumConstraints(); p != dims.P {
			chk.Panic("solver: evaluator assembled %d constraint rows, Dims() predicted %d", p, dims.P)
		}
	}

	stats := &Statistics{}
	recoverBadInitialControls(s, cfg.Model, cfg.Problem.Dt, &stats.Warnings)

	reg := &bp.Regularizer{Phi: cfg.Options.Phi, RhoMin: cfg.Options.RhoMin, RhoMax: cfg.Options.RhoMax}

	solveStart := time.Now()
	stats.SetupSeconds = solveStart.Sub(setupStart).Seconds()

	runSolveLoop(s, cfg, mode, eval, reg, stats)

	stats.RuntimeSeconds = time.Since(solveStart).Seconds()
	return s, stats, nil
}

// recoverBadInitialControls implements spec.md §7 "Bad initial
// controls": if the rollout of the initial guess under the nominal
// dynamics produces a non-finite state, zero the controls once and
// retry.
func recoverBadInitialControls(s *traj.Store, model dynamics.Model, dt float64, warnings *[]string) {
	if rolloutFinite(s, model, dt) {
		return
	}
	for k := range s.U {
		for i := range s.U[k] {
			s.U[k][i] = 0
		}
	}
	*warnings = append(*warnings, "bad initial controls: fell back to zero controls")
	rolloutFinite(s, model, dt) // best effort; failure here surfaces via the first backward pass
}

func rolloutFinite(s *traj.Store, model dynamics.Model, dt float64) bool {
	x := s.X[0]
	xNext := la.NewVector(len(x))
	for k := range s.U {
		model.Step(xNext, x, s.U[k], dt)
		for _, v := range xNext {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
		x = xNext
		xNext = la.NewVector(len(x))
	}
	return true
}

// runSolveLoop executes the nested outer/inner iteration structure of
// spec.md §5 against an already-allocated, already-seeded Store.
func runSolveLoop(s *traj.Store, cfg Config, mode inp.Mode, eval *constraint.Evaluator, reg *bp.Regularizer, stats *Statistics) {
	opt := cfg.Options
	fpParams := fp.ParamsFromOptions(opt)

	var hasUBounds bool
	var uMin, uMax la.Vector
	if cfg.Problem.HasControlBounds() {
		hasUBounds = true
		uMin, uMax = cfg.Problem.UMin, cfg.Problem.UMax
	}

	var lastDeltaJ, lastGrad float64 = math.Inf(1), math.Inf(1)

	for outer := 0; outer < opt.IterationsOuter; outer++ {
		stats.MajorIterations++
		consecutiveFailures := 0

		// inner convergence uses the intermediate tolerances, except on the
		// final outer iteration (the only one of an unconstrained problem)
		costTol, gradTol := opt.CostIntermediateTolerance, opt.GradientIntermediateTolerance
		if !mode.Constrained || outer == opt.IterationsOuter-1 {
			costTol, gradTol = opt.CostTolerance, opt.GradientTolerance
		}

		for inner := 0; inner < opt.Iterations; inner++ {
			assemble(s, cfg.Model, eval, cfg.Problem.Dt, cfg.Problem.Xf, mode.MinimumTime, cfg.Problem.Nu)
			if eval != nil {
				refreshActiveSet(s)
			}

			regType := opt.BpRegType
			var bpResult bp.Result
			if mode.SquareRoot {
				bpResult, _ = bp.RunSquareRoot(s, cfg.StageCost, cfg.TermCost, reg, regType)
			} else {
				bpResult = bp.Run(s, cfg.StageCost, cfg.TermCost, reg, regType)
			}
			stats.Iterations++
			if opt.Verbose {
				io.Pf("outer %d inner %d: rho=%.3e dv1=%.3e dv2=%.3e\n", outer, inner, s.Rho, bpResult.Dv1, bpResult.Dv2)
			}

			if bpResult.Overflow {
				stats.Warnings = append(stats.Warnings, "regularization overflow: abandoning current step")
				if opt.Verbose {
					io.PfRed("regularization overflow at outer %d inner %d\n", outer, inner)
				}
				break
			}

			jPrev := fp.Cost(s, cfg.StageCost, cfg.TermCost, eval, s.X, s.U, cfg.Problem.Xf, s.Lambda, s.IMu, s.LambdaN, s.IMuN,
				mode.MinimumTime, cfg.Problem.Nu)
			fwd := fp.Run(s, cfg.Model, cfg.Problem.Dt, hasUBounds, uMin, uMax, cfg.StageCost, cfg.TermCost, eval, cfg.Problem.Xf,
				bpResult.Dv1, bpResult.Dv2, jPrev, reg, fpParams, mode.MinimumTime, cfg.Problem.Nu)
			stats.Cost = append(stats.Cost, fwd.JNew)

			if !fwd.Accepted {
				consecutiveFailures++
				if consecutiveFailures >= opt.MaxConsecutiveLineSearchFailures {
					stats.Warnings = append(stats.Warnings, "line-search failure: exceeded consecutive-failure bound")
					break
				}
				continue
			}
			consecutiveFailures = 0

			lastDeltaJ = jPrev - fwd.JNew
			lastGrad = bp.TodorovGradient(s)
			stats.CMax = append(stats.CMax, s.CMax())

			if lastDeltaJ < costTol || lastGrad < gradTol {
				break
			}
			if inner == opt.Iterations-1 {
				stats.Warnings = append(stats.Warnings, "max inner iterations reached")
			}
		}

		if !mode.Constrained {
			break
		}

		assemble(s, cfg.Model, eval, cfg.Problem.Dt, cfg.Problem.Xf, mode.MinimumTime, cfg.Problem.Nu)
		cMax := s.CMax()
		stats.CMax = append(stats.CMax, cMax)

		if al.Converged(cMax, lastDeltaJ, lastGrad, opt.ConstraintTolerance, opt.CostTolerance, opt.GradientTolerance) {
			return
		}
		if outer == opt.IterationsOuter-1 {
			stats.Warnings = append(stats.Warnings, "max outer iterations reached")
			return
		}

		al.UpdateMultipliers(s, opt.LambdaMin, opt.LambdaMax)
		al.UpdatePenalties(s, opt.OuterLoopUpdate, opt.Gamma, opt.GammaNo, opt.Tau, opt.MuMax)
		s.SnapshotConstraints()
	}
}

// assemble fills the Jacobian and constraint buffers for the current
// committed trajectory (spec.md §5 step (i)): model.Jacobians at every
// stage, eval.Evaluate when the problem is constrained, and the terminal
// residual CN = X[N]-xf. When minimum-time is enabled, every knot's √dt
// control is tied to the first knot's (spec.md glossary "equality tying
// successive dt's"); the first knot's row is then trivially satisfied.
func assemble(s *traj.Store, model dynamics.Model, eval *constraint.Evaluator, dt float64, xf la.Vector, minimumTime bool, nu int) {
	var sqrtDt0 float64
	if minimumTime && len(s.U) > 0 {
		sqrtDt0 = s.U[0][nu]
	}
	for k := range s.U {
		model.Jacobians(s.Fdx[k], s.Fdu[k], s.X[k], s.U[k], dt)
		if eval != nil {
			var sqrtDt float64
			if minimumTime {
				sqrtDt = s.U[k][nu]
			}
			eval.Evaluate(s.C[k], s.Cx[k], s.Cu[k], s.X[k], s.U[k], sqrtDt, sqrtDt0*sqrtDt0)
		}
	}
	last := len(s.X) - 1
	for i := range s.CN {
		s.CN[i] = s.X[last][i] - xf[i]
	}
}

// refreshActiveSet recomputes Iμ from the freshly-assembled C and the
// current λ,μ (spec.md §4.2); the terminal block is always active since
// CN is always an equality.
func refreshActiveSet(s *traj.Store) {
	pI := s.Dims.PI
	for k := range s.C {
		constraint.ActiveSet(s.IMu[k], s.C[k], s.Lambda[k], s.Mu[k], pI)
	}
	copy(s.IMuN, s.MuN)
}

