// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package examples

import "github.com/cpmech/gosl/la"

// DoubleIntegrator implements the discrete system used by Scenario A:
//
//	x' = x + dt*[v; u]
//
// with state [position, velocity] and a single scalar control.
type DoubleIntegrator struct{}

func NewDoubleIntegrator() *DoubleIntegrator { return &DoubleIntegrator{} }

func (m *DoubleIntegrator) Nx() int { return 2 }
func (m *DoubleIntegrator) Nu() int { return 1 }

func (m *DoubleIntegrator) Step(xNext, x, u la.Vector, dt float64) {
	xNext[0] = x[0] + dt*x[1]
	xNext[1] = x[1] + dt*u[0]
}

func (m *DoubleIntegrator) Jacobians(fdx, fdu *la.Matrix, x, u la.Vector, dt float64) {
	fdx.Set(0, 0, 1)
	fdx.Set(0, 1, dt)
	fdx.Set(1, 0, 0)
	fdx.Set(1, 1, 1)
	fdu.Set(0, 0, 0)
	fdu.Set(1, 0, dt)
}
