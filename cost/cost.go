// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cost implements the Cost Oracle (C3): stage and terminal cost
// evaluation and their quadratic expansions. Cost functions are "supplied
// as coefficient structs" per spec.md §1; this package fixes the
// StageCost/TerminalCost interfaces the backward pass consumes and ships
// the one concrete implementation spec.md §6 fully specifies: a fixed
// quadratic (Q,R,Qf,xf[,Qxu]) cost.
package cost

import "github.com/cpmech/gosl/la"

// StageCost evaluates ℓ(x,u) and its first/second derivatives at knot k.
// k is threaded through the interface so a cost oracle may vary the
// expansion by stage (time-varying LQR, or a one-off test perturbation);
// the fixed-quadratic implementation below simply ignores it.
type StageCost interface {
	Value(k int, x, u la.Vector) float64
	Gradient(k int, lx, lu la.Vector, x, u la.Vector)
	Hessian(k int, lxx, luu, lux *la.Matrix, x, u la.Vector)
}

// TerminalCost evaluates ℓf(x) and its first/second derivatives.
type TerminalCost interface {
	Value(x la.Vector) float64
	Gradient(lx la.Vector, x la.Vector)
	Hessian(lxx *la.Matrix, x la.Vector)
}

// Quadratic is the stage cost ℓ(x,u) = ½(x-xf)ᵀQ(x-xf) + ½uᵀRu +
// (x-xf)ᵀQxu·u, with Qxu an optional state/control cross term (nil means
// no cross term).
type Quadratic struct {
	Q, R, Qxu *la.Matrix
	Xf        la.Vector
}

// NewQuadratic allocates a cross-term-free quadratic stage cost.
func NewQuadratic(Q, R *la.Matrix, xf la.Vector) *Quadratic {
	return &Quadratic{Q: Q, R: R, Xf: xf}
}

func (c *Quadratic) dx(out, x la.Vector) {
	for i := range out {
		out[i] = x[i] - c.Xf[i]
	}
}

func (c *Quadratic) Value(k int, x, u la.Vector) float64 {
	n, m := len(x), len(u)
	dx := la.NewVector(n)
	c.dx(dx, x)
	var v float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v += 0.5 * dx[i] * c.Q.Get(i, j) * dx[j]
		}
	}
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			v += 0.5 * u[i] * c.R.Get(i, j) * u[j]
		}
	}
	if c.Qxu != nil {
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				v += dx[i] * c.Qxu.Get(i, j) * u[j]
			}
		}
	}
	return v
}

func (c *Quadratic) Gradient(k int, lx, lu la.Vector, x, u la.Vector) {
	n, m := len(x), len(u)
	dx := la.NewVector(n)
	c.dx(dx, x)
	for i := 0; i < n; i++ {
		var s float64
		for j := 0; j < n; j++ {
			s += c.Q.Get(i, j) * dx[j]
		}
		if c.Qxu != nil {
			for j := 0; j < m; j++ {
				s += c.Qxu.Get(i, j) * u[j]
			}
		}
		lx[i] = s
	}
	for i := 0; i < m; i++ {
		var s float64
		for j := 0; j < m; j++ {
			s += c.R.Get(i, j) * u[j]
		}
		if c.Qxu != nil {
			for j := 0; j < n; j++ {
				s += c.Qxu.Get(j, i) * dx[j]
			}
		}
		lu[i] = s
	}
}

func (c *Quadratic) Hessian(k int, lxx, luu, lux *la.Matrix, x, u la.Vector) {
	n, m := len(x), len(u)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			lxx.Set(i, j, c.Q.Get(i, j))
		}
	}
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			luu.Set(i, j, c.R.Get(i, j))
		}
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			if c.Qxu != nil {
				lux.Set(i, j, c.Qxu.Get(j, i))
			} else {
				lux.Set(i, j, 0)
			}
		}
	}
}

// Perturbed wraps a StageCost and subtracts Weight from every diagonal
// entry of ℓuu at the single knot Knot; Value and Gradient are those of the
// wrapped cost, unchanged. It exists to build
// the regularization-recovery fixture of Testable Property D (spec.md
// §8 D): a stage whose action-value Hessian Quu is indefinite on the
// first backward-pass attempt.
type Perturbed struct {
	StageCost
	Knot   int
	Weight float64
}

func (c *Perturbed) Hessian(k int, lxx, luu, lux *la.Matrix, x, u la.Vector) {
	c.StageCost.Hessian(k, lxx, luu, lux, x, u)
	if k == c.Knot {
		for i := 0; i < luu.M; i++ {
			luu.Set(i, i, luu.Get(i, i)-c.Weight)
		}
	}
}

// TrackingQuadratic is a time-varying stage cost ℓ(x,u) =
// ½(x-Xref[k])ᵀQ(x-Xref[k]) + ½(u-Uref[k])ᵀR(u-Uref[k]), used by the
// infeasible-start feasibility-projection pass (spec.md §4.6 step 3) to
// pull a dynamically-feasible rollout back toward the reference
// trajectory produced by the slack-augmented solve.
type TrackingQuadratic struct {
	Q, R       *la.Matrix
	Xref, Uref []la.Vector
}

func (c *TrackingQuadratic) Value(k int, x, u la.Vector) float64 {
	n, m := len(x), len(u)
	var v float64
	for i := 0; i < n; i++ {
		dxi := x[i] - c.Xref[k][i]
		for j := 0; j < n; j++ {
			v += 0.5 * dxi * c.Q.Get(i, j) * (x[j] - c.Xref[k][j])
		}
	}
	for i := 0; i < m; i++ {
		dui := u[i] - c.Uref[k][i]
		for j := 0; j < m; j++ {
			v += 0.5 * dui * c.R.Get(i, j) * (u[j] - c.Uref[k][j])
		}
	}
	return v
}

func (c *TrackingQuadratic) Gradient(k int, lx, lu la.Vector, x, u la.Vector) {
	n, m := len(x), len(u)
	for i := 0; i < n; i++ {
		var s float64
		for j := 0; j < n; j++ {
			s += c.Q.Get(i, j) * (x[j] - c.Xref[k][j])
		}
		lx[i] = s
	}
	for i := 0; i < m; i++ {
		var s float64
		for j := 0; j < m; j++ {
			s += c.R.Get(i, j) * (u[j] - c.Uref[k][j])
		}
		lu[i] = s
	}
}

func (c *TrackingQuadratic) Hessian(k int, lxx, luu, lux *la.Matrix, x, u la.Vector) {
	n, m := len(x), len(u)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			lxx.Set(i, j, c.Q.Get(i, j))
		}
	}
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			luu.Set(i, j, c.R.Get(i, j))
		}
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			lux.Set(i, j, 0)
		}
	}
}

// TrackingTerminal is the terminal half of TrackingQuadratic: ℓf(x) =
// ½(x-xref)ᵀQf(x-xref).
type TrackingTerminal struct {
	Qf   *la.Matrix
	Xref la.Vector
}

func (c *TrackingTerminal) Value(x la.Vector) float64 {
	n := len(x)
	var v float64
	for i := 0; i < n; i++ {
		dxi := x[i] - c.Xref[i]
		for j := 0; j < n; j++ {
			v += 0.5 * dxi * c.Qf.Get(i, j) * (x[j] - c.Xref[j])
		}
	}
	return v
}

func (c *TrackingTerminal) Gradient(lx la.Vector, x la.Vector) {
	n := len(x)
	for i := 0; i < n; i++ {
		var s float64
		for j := 0; j < n; j++ {
			s += c.Qf.Get(i, j) * (x[j] - c.Xref[j])
		}
		lx[i] = s
	}
}

func (c *TrackingTerminal) Hessian(lxx *la.Matrix, x la.Vector) {
	n := len(x)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			lxx.Set(i, j, c.Qf.Get(i, j))
		}
	}
}

// QuadraticTerminal is the terminal cost ℓf(x) = ½(x-xf)ᵀQf(x-xf).
type QuadraticTerminal struct {
	Qf *la.Matrix
	Xf la.Vector
}

func NewQuadraticTerminal(Qf *la.Matrix, xf la.Vector) *QuadraticTerminal {
	return &QuadraticTerminal{Qf: Qf, Xf: xf}
}

func (c *QuadraticTerminal) dx(out, x la.Vector) {
	for i := range out {
		out[i] = x[i] - c.Xf[i]
	}
}

func (c *QuadraticTerminal) Value(x la.Vector) float64 {
	n := len(x)
	dx := la.NewVector(n)
	c.dx(dx, x)
	var v float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v += 0.5 * dx[i] * c.Qf.Get(i, j) * dx[j]
		}
	}
	return v
}

func (c *QuadraticTerminal) Gradient(lx la.Vector, x la.Vector) {
	n := len(x)
	dx := la.NewVector(n)
	c.dx(dx, x)
	for i := 0; i < n; i++ {
		var s float64
		for j := 0; j < n; j++ {
			s += c.Qf.Get(i, j) * dx[j]
		}
		lx[i] = s
	}
}

func (c *QuadraticTerminal) Hessian(lxx *la.Matrix, x la.Vector) {
	n := len(x)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			lxx.Set(i, j, c.Qf.Get(i, j))
		}
	}
}
