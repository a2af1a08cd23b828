// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"github.com/cpmech/gosl/la"

	"github.com/cpmech/trajopt/bp"
	"github.com/cpmech/trajopt/cost"
	"github.com/cpmech/trajopt/fp"
	"github.com/cpmech/trajopt/infeasible"
	"github.com/cpmech/trajopt/inp"
	"github.com/cpmech/trajopt/traj"
)

// SolveInfeasible wraps Solve with the Infeasible Start Transformer (C8,
// spec.md §4.6). When the problem does not request infeasible-start it
// degrades to a plain Solve. Otherwise cfg.Problem.U0 is expected sized
// to the nominal (pre-slack) control dimension; the slack controls
// ComputeSlacks derives from cfg.Problem.X0Traj are appended automatically.
func SolveInfeasible(cfg Config) (*traj.Store, *Statistics, error) {
	if !(cfg.Options.Infeasible && cfg.Problem.Infeasible) {
		return Solve(cfg)
	}

	mode := inp.NewMode(cfg.Problem, cfg.Options)
	slackOff := cfg.Problem.Nu
	if mode.MinimumTime {
		slackOff++
	}
	nx := cfg.Problem.Nx

	augModel := infeasible.NewAugmentedModel(cfg.Model, slackOff)
	slacks := make([]la.Vector, cfg.Problem.N-1)
	for k := range slacks {
		slacks[k] = la.NewVector(nx)
	}
	u0 := cfg.Problem.U0
	if u0 == nil {
		u0 = make([]la.Vector, cfg.Problem.N-1)
		for k := range u0 {
			u0[k] = la.NewVector(slackOff)
		}
	}
	infeasible.ComputeSlacks(slacks, cfg.Problem.X0Traj, u0, cfg.Model, cfg.Problem.Dt)

	augmentedU0 := make([]la.Vector, cfg.Problem.N-1)
	for k := range augmentedU0 {
		augmentedU0[k] = la.NewVector(slackOff + nx)
		copy(augmentedU0[k][:slackOff], u0[k])
		copy(augmentedU0[k][slackOff:], slacks[k])
	}

	phase1Cfg := cfg
	phase1Cfg.Model = augModel
	phase1Problem := *cfg.Problem
	phase1Problem.U0 = augmentedU0
	phase1Problem.X0 = cfg.Problem.X0Traj[0]
	phase1Cfg.Problem = &phase1Problem

	phase1Store, phase1Stats, err := Solve(phase1Cfg)
	if err != nil {
		return nil, nil, err
	}

	s2, stats2 := projectFeasible(cfg, phase1Store, slackOff)
	stats2.Phase1 = phase1Stats
	return s2, stats2, nil
}

// projectFeasible runs the single backward/forward pass of spec.md §4.6
// step 3: a time-varying LQR tracking controller that pulls a rollout of
// the NOMINAL (unaugmented) dynamics back toward the slack-augmented
// solve's trajectory, producing a dynamically feasible (X,U).
func projectFeasible(cfg Config, phase1 *traj.Store, slackOff int) (*traj.Store, *Statistics) {
	nominalDims := cfg.Problem.Dims(cfg.Options, true)
	s2 := traj.New(nominalDims)
	s2.SetInitialState(cfg.Problem.X0)

	stripped := make([]la.Vector, len(phase1.U))
	for k := range stripped {
		stripped[k] = la.NewVector(slackOff)
	}
	infeasible.Strip(stripped, phase1.U, slackOff)
	s2.InitControls(stripped)

	n := cfg.Problem.Nx
	identity := func(size int) *la.Matrix {
		m := la.NewMatrix(size, size)
		for i := 0; i < size; i++ {
			m.Set(i, i, 1)
		}
		return m
	}
	trackStage := &cost.TrackingQuadratic{Q: identity(n), R: identity(slackOff), Xref: phase1.X, Uref: stripped}
	trackTerm := &cost.TrackingTerminal{Qf: identity(n), Xref: phase1.X[len(phase1.X)-1]}

	// roll the stripped controls out under the nominal dynamics so the
	// pass linearizes around a dynamically consistent (X,U)
	for k := range s2.U {
		cfg.Model.Step(s2.X[k+1], s2.X[k], s2.U[k], cfg.Problem.Dt)
	}
	for k := range s2.U {
		cfg.Model.Jacobians(s2.Fdx[k], s2.Fdu[k], s2.X[k], s2.U[k], cfg.Problem.Dt)
	}

	reg := &bp.Regularizer{Phi: cfg.Options.Phi, RhoMin: cfg.Options.RhoMin, RhoMax: cfg.Options.RhoMax}
	s2.Rho = cfg.Options.RhoInitial
	bpResult := bp.Run(s2, trackStage, trackTerm, reg, cfg.Options.BpRegType)

	jPrev := fp.Cost(s2, trackStage, trackTerm, nil, s2.X, s2.U, nil, nil, nil, nil, nil, false, 0)
	fwd := fp.Run(s2, cfg.Model, cfg.Problem.Dt, false, nil, nil, trackStage, trackTerm, nil, nil,
		bpResult.Dv1, bpResult.Dv2, jPrev, reg, fp.ParamsFromOptions(cfg.Options), false, 0)

	stats := &Statistics{
		Iterations:      1,
		MajorIterations: 1,
		Cost:            []float64{fwd.JNew},
	}
	if !fwd.Accepted {
		stats.Warnings = append(stats.Warnings, "feasibility projection pass rejected its only line-search step")
	}
	return s2, stats
}
