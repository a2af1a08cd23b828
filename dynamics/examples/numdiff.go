// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package examples bundles reference Dynamics Oracle implementations used
// by the solver's end-to-end scenario tests (spec.md §8 A-F): a double
// integrator, a cartpole, and a simple pendulum. None of this package is
// part of the solver core; it plays the same role gofem's tests/ data
// files play for the FEM solver — fixtures that exercise the real
// interface.
package examples

import "github.com/cpmech/gosl/la"

// centralDiffJacobians fills fdx and fdu by central differences, mirroring
// the numerical-Jacobian fallback of gosl/num.NlSolver (numJ mode) rather
// than hand-deriving closed forms for these small toy systems.
func centralDiffJacobians(step func(xNext, x, u la.Vector, dt float64), fdx, fdu *la.Matrix, x, u la.Vector, dt float64, h float64) {
	nx := len(x)
	nu := len(u)
	xp := la.NewVector(nx)
	xm := la.NewVector(nx)
	xPert := la.NewVector(nx)
	uPert := la.NewVector(nu)
	for j := 0; j < nx; j++ {
		copy(xPert, x)
		xPert[j] += h
		step(xp, xPert, u, dt)
		copy(xPert, x)
		xPert[j] -= h
		step(xm, xPert, u, dt)
		for i := 0; i < nx; i++ {
			fdx.Set(i, j, (xp[i]-xm[i])/(2*h))
		}
	}
	for j := 0; j < nu; j++ {
		copy(uPert, u)
		uPert[j] += h
		step(xp, x, uPert, dt)
		copy(uPert, u)
		uPert[j] -= h
		step(xm, x, uPert, dt)
		for i := 0; i < nx; i++ {
			fdu.Set(i, j, (xp[i]-xm[i])/(2*h))
		}
	}
}

const diffStep = 1e-6
