// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package examples

import (
	"math"

	"github.com/cpmech/gosl/la"
)

// Pendulum implements a simple torque-actuated pendulum, state
// [angle, angular velocity], used as a second small nonlinear system for
// regularization-recovery testing (Scenario D can be built on any system;
// this one is kept around as an additional nonlinear fixture).
type Pendulum struct {
	Mass, Length, G, Damping float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{Mass: 1.0, Length: 1.0, G: 9.81, Damping: 0.1}
}

func (m *Pendulum) Nx() int { return 2 }
func (m *Pendulum) Nu() int { return 1 }

func (m *Pendulum) continuous(xdot, x, u la.Vector) {
	theta := x[0]
	omega := x[1]
	inertia := m.Mass * m.Length * m.Length
	xdot[0] = omega
	xdot[1] = (u[0] - m.Damping*omega - m.Mass*m.G*m.Length*math.Sin(theta)) / inertia
}

func (m *Pendulum) Step(xNext, x, u la.Vector, dt float64) {
	k1 := la.NewVector(2)
	k2 := la.NewVector(2)
	k3 := la.NewVector(2)
	k4 := la.NewVector(2)
	aux := la.NewVector(2)

	m.continuous(k1, x, u)
	for i := range aux {
		aux[i] = x[i] + 0.5*dt*k1[i]
	}
	m.continuous(k2, aux, u)
	for i := range aux {
		aux[i] = x[i] + 0.5*dt*k2[i]
	}
	m.continuous(k3, aux, u)
	for i := range aux {
		aux[i] = x[i] + dt*k3[i]
	}
	m.continuous(k4, aux, u)

	for i := range xNext {
		xNext[i] = x[i] + (dt/6.0)*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
}

func (m *Pendulum) Jacobians(fdx, fdu *la.Matrix, x, u la.Vector, dt float64) {
	centralDiffJacobians(m.Step, fdx, fdu, x, u, dt, diffStep)
}
