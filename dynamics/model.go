// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dynamics defines the Dynamics Oracle interface (C2): a
// callable, pure, synchronous supplier of discrete dynamics and their
// Jacobians. Dynamics models themselves are out of scope of the solver
// core (spec.md §1); this package only fixes the interface the core
// consumes, plus a small set of reference models (under examples/) used
// by the end-to-end scenario tests.
package dynamics

import "github.com/cpmech/gosl/la"

// Model evaluates discrete dynamics x' = f(x,u,dt) and its Jacobians.
// Implementations must be pure functions of their arguments: the solver
// core calls Step/Jacobians synchronously, many times per iteration, from
// buffers it owns (§5 "all oracles are synchronous pure functions").
type Model interface {
	// Nx, Nu report state and control dimensions.
	Nx() int
	Nu() int

	// Step evaluates x' = f(x,u,dt), writing into xNext.
	Step(xNext, x, u la.Vector, dt float64)

	// Jacobians evaluates ∂f/∂x and ∂f/∂u at (x,u,dt), writing into fdx
	// (Nx x Nx) and fdu (Nx x Nu).
	Jacobians(fdx, fdu *la.Matrix, x, u la.Vector, dt float64)
}

// FirstOrderHold is implemented by models that also support the
// first-order-hold discretization named in §6: a sensitivity to the
// control at the *next* knot, and an accessor for the interpolated
// midpoint state used by some FOH schemes.
type FirstOrderHold interface {
	Model
	JacobianUNext(fdv *la.Matrix, x, u, uNext la.Vector, dt float64)
	Midpoint(mid, x, xNext, u, uNext la.Vector, dt float64)
}
