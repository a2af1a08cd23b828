// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package infeasible implements the Infeasible Start Transformer (C8):
// it lets a caller supply an arbitrary initial state trajectory X0 (not
// necessarily reachable under the dynamics from a single initial state)
// by augmenting the controls with per-stage slack inputs that absorb the
// mismatch, then strips the slacks and projects back onto the feasible
// manifold once the augmented problem has converged (spec.md §4.6).
package infeasible

import (
	"github.com/cpmech/gosl/la"

	"github.com/cpmech/trajopt/dynamics"
)

// ComputeSlacks fills slack[k] = X0[k+1] - f(X0[k], U0[k], dt) for every
// stage, so the augmented dynamics f̃(x,[u;s]) = f(x,u)+s reproduce X0
// exactly when driven by U0 and these slacks (spec.md §4.6 step 1).
func ComputeSlacks(slack []la.Vector, X0 []la.Vector, U0 []la.Vector, model dynamics.Model, dt float64) {
	n := model.Nx()
	fx := la.NewVector(n)
	for k := range slack {
		model.Step(fx, X0[k], U0[k], dt)
		for i := 0; i < n; i++ {
			slack[k][i] = X0[k+1][i] - fx[i]
		}
	}
}

// AugmentedModel wraps a dynamics.Model so its control vector carries nx
// extra slack components appended after the nominal (possibly
// minimum-time-augmented) controls, implementing f̃(x,[u;s]) = f(x,u)+s.
type AugmentedModel struct {
	Base      dynamics.Model
	SlackOff  int // index of the first slack component within u
}

func NewAugmentedModel(base dynamics.Model, slackOff int) *AugmentedModel {
	return &AugmentedModel{Base: base, SlackOff: slackOff}
}

func (m *AugmentedModel) Nx() int { return m.Base.Nx() }
func (m *AugmentedModel) Nu() int { return m.SlackOff + m.Base.Nx() }

func (m *AugmentedModel) Step(xNext, x, u la.Vector, dt float64) {
	m.Base.Step(xNext, x, u[:m.SlackOff], dt)
	for i := range xNext {
		xNext[i] += u[m.SlackOff+i]
	}
}

func (m *AugmentedModel) Jacobians(fdx, fdu *la.Matrix, x, u la.Vector, dt float64) {
	n := m.Base.Nx()
	baseFdu := la.NewMatrix(n, m.SlackOff)
	m.Base.Jacobians(fdx, baseFdu, x, u[:m.SlackOff], dt)
	for i := 0; i < n; i++ {
		for j := 0; j < m.SlackOff; j++ {
			fdu.Set(i, j, baseFdu.Get(i, j))
		}
		for j := 0; j < n; j++ {
			fdu.Set(i, m.SlackOff+j, boolToFloat(i == j))
		}
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// SlackNorm returns the max-absolute slack value across the horizon, the
// quantity compared against ε_c by Testable Property 7 ("slack controls
// are driven below ε_c").
func SlackNorm(U []la.Vector, slackOff, nx int) float64 {
	var m float64
	for k := range U {
		for i := 0; i < nx; i++ {
			v := U[k][slackOff+i]
			if v < 0 {
				v = -v
			}
			if v > m {
				m = v
			}
		}
	}
	return m
}

// Strip copies the nominal (non-slack) controls out of an augmented
// trajectory, producing the control sequence spec.md §4.6 step 3 hands to
// the feasibility-projection pass.
func Strip(stripped, augmented []la.Vector, slackOff int) {
	for k := range augmented {
		copy(stripped[k], augmented[k][:slackOff])
	}
}
