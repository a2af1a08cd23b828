// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import "github.com/cpmech/gosl/la"

// Dims holds the dimensions of §3: state size n, nominal control size m,
// the minimum-time-augmented m̄, and the infeasible-slack-augmented mm.
type Dims struct {
	N    int // number of knot points
	Nx   int // n: state dimension
	Nu   int // m: nominal control dimension
	Mbar int // m̄: m plus 1 if minimum-time is enabled
	Mm   int // mm: m̄ plus n if infeasible-start slacks are enabled
	P    int // p: number of stacked stage constraints
	PI   int // pI: inequality rows (including bound-derived)
	PE   int // pE: equality rows
}

// Problem describes the boundary-value problem to be solved: horizon,
// state/control dimensions, endpoints, and the optional features that are
// active. It plays the role gofem's inp.Region/inp.ElemData play for an
// FEM analysis: a static description consumed once at solve entry.
type Problem struct {
	N  int // knot points, N >= 2
	Nx int // state dimension n
	Nu int // nominal control dimension m
	Dt float64

	X0 la.Vector // initial state
	Xf la.Vector // goal / terminal-equality state

	// bounds; a pair is used only when both vectors are set at full length,
	// otherwise that pair contributes no constraint rows
	UMin, UMax la.Vector // length Nu
	XMin, XMax la.Vector // length Nx

	// optional features
	MinimumTime bool
	Infeasible  bool

	// initial guesses
	U0 []la.Vector // length N-1, nominal control guess
	X0Traj []la.Vector // length N, initial state-trajectory guess (infeasible-start)

	// number of rows produced by the user constraint oracle, used to size
	// buffers before the first evaluation.
	UserInequalityRows int
	UserEqualityRows   int
}

// Validate checks problem-level configuration, the other class of hard
// failure allowed by §7.
func (p *Problem) Validate() error {
	if p.N < 2 {
		return errf("Problem.N must be >= 2, got %d", p.N)
	}
	if p.Nx <= 0 || p.Nu <= 0 {
		return errf("Problem: need positive Nx, Nu, got %d, %d", p.Nx, p.Nu)
	}
	if p.Dt <= 0 {
		return errf("Problem.Dt must be positive, got %g", p.Dt)
	}
	if len(p.X0) != p.Nx {
		return errf("Problem.X0 has length %d, want %d", len(p.X0), p.Nx)
	}
	if len(p.Xf) != p.Nx {
		return errf("Problem.Xf has length %d, want %d", len(p.Xf), p.Nx)
	}
	if p.UserInequalityRows < 0 || p.UserEqualityRows < 0 {
		return errf("Problem: user constraint row counts must be >= 0")
	}
	if p.Infeasible && len(p.X0Traj) != p.N {
		return errf("Problem.X0Traj has length %d, want %d for infeasible-start", len(p.X0Traj), p.N)
	}
	return nil
}

// HasControlBounds reports whether both UMin and UMax are set with length
// Nu; a one-sided control bound is not used.
func (p *Problem) HasControlBounds() bool {
	return len(p.UMin) == p.Nu && len(p.UMax) == p.Nu
}

// HasStateBounds reports whether both XMin and XMax are set with length
// Nx; a one-sided state bound is not used.
func (p *Problem) HasStateBounds() bool {
	return len(p.XMin) == p.Nx && len(p.XMax) == p.Nx
}

// IsConstrained reports whether any stage constraint source is active.
func (p *Problem) IsConstrained() bool {
	return p.HasControlBounds() || p.HasStateBounds() ||
		p.UserInequalityRows > 0 || p.UserEqualityRows > 0 || p.MinimumTime
}

// Dims computes the dimension table of §3 for this problem under the given
// options. unconstrained forces p=0 regardless of constraint sources,
// used by the infeasible-start transformer's unconstrained-original-problem
// cast (§4.6.4).
func (p *Problem) Dims(opt *Options, unconstrained bool) Dims {
	d := Dims{N: p.N, Nx: p.Nx, Nu: p.Nu}
	d.Mbar = p.Nu
	if p.MinimumTime {
		d.Mbar++
	}
	d.Mm = d.Mbar
	if unconstrained {
		// The feasibility-projection pass (§4.6 step 3) drives the nominal
		// (pre-slack) model, so its control width stops at Mbar even when
		// the original problem requested infeasible-start.
		return d
	}
	if opt.Infeasible && p.Infeasible {
		d.Mm += p.Nx
	}
	if p.HasControlBounds() {
		d.PI += 2 * p.Nu
	}
	if p.HasStateBounds() {
		d.PI += 2 * p.Nx
	}
	d.PI += p.UserInequalityRows
	d.PE += p.UserEqualityRows
	if p.MinimumTime {
		d.PE++ // dt-tying equality row
	}
	if opt.Infeasible && p.Infeasible {
		d.PE += p.Nx // slack == 0 rows
	}
	d.P = d.PI + d.PE
	return d
}

// Mode is the explicit solve-time descriptor of Design Notes §9: all
// hot-path branches key off this value, computed once at solve entry,
// instead of scattering option checks through the inner loops.
type Mode struct {
	Constrained     bool
	MinimumTime     bool
	Infeasible      bool
	BpReg           BpRegType
	OuterUpdate     OuterUpdateType
	SquareRoot      bool
	SecondOrderDual bool
}

// NewMode derives the Mode descriptor from a Problem and its Options.
func NewMode(p *Problem, opt *Options) Mode {
	return Mode{
		Constrained:     p.IsConstrained() || (opt.Infeasible && p.Infeasible),
		MinimumTime:     p.MinimumTime,
		Infeasible:      opt.Infeasible && p.Infeasible,
		BpReg:           opt.BpRegType,
		OuterUpdate:     opt.OuterLoopUpdate,
		SquareRoot:      opt.SquareRoot,
		SecondOrderDual: opt.SecondOrderDual,
	}
}
