// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package examples

import (
	"math"

	"github.com/cpmech/gosl/la"
	"gonum.org/v1/gonum/mat"
)

// Cartpole implements the standard cart-and-pole system used by Scenario
// B. State is [cart position, cart velocity, pole angle, pole angular
// velocity]; the single control is the horizontal force on the cart.
//
// The continuous dynamics are assembled as a mass matrix M(q) q̈ = b(q,q̇,u)
// and solved with gonum/mat, then advanced one step with a fixed-substep
// 4th-order Runge-Kutta integrator in the style of godesim's RK4Solver.
type Cartpole struct {
	Mc, Mp, L, G float64
	Substeps     int
}

// NewCartpole returns a Cartpole with the textbook parameters used by
// Scenario B.
func NewCartpole() *Cartpole {
	return &Cartpole{Mc: 1.0, Mp: 0.2, L: 0.5, G: 9.81, Substeps: 4}
}

func (m *Cartpole) Nx() int { return 4 }
func (m *Cartpole) Nu() int { return 1 }

// continuous evaluates ẋ = f_c(x,u).
func (m *Cartpole) continuous(xdot, x la.Vector, u la.Vector) {
	theta := x[2]
	thetadot := x[3]
	sinT, cosT := math.Sin(theta), math.Cos(theta)

	var M mat.Dense
	M.ReuseAs(2, 2)
	M.Set(0, 0, m.Mc+m.Mp)
	M.Set(0, 1, m.Mp*m.L*cosT)
	M.Set(1, 0, m.Mp*m.L*cosT)
	M.Set(1, 1, m.Mp*m.L*m.L)

	b := mat.NewVecDense(2, []float64{
		u[0] + m.Mp*m.L*thetadot*thetadot*sinT,
		m.Mp * m.G * m.L * sinT,
	})

	var qddot mat.VecDense
	if err := qddot.SolveVec(&M, b); err != nil {
		// singular mass matrix cannot occur for physical Mc,Mp,L > 0;
		// treated as a programmer-error invariant violation.
		panic(err)
	}

	xdot[0] = x[1]
	xdot[1] = qddot.AtVec(0)
	xdot[2] = x[3]
	xdot[3] = qddot.AtVec(1)
}

func (m *Cartpole) Step(xNext, x, u la.Vector, dt float64) {
	n := m.Substeps
	if n < 1 {
		n = 1
	}
	h := dt / float64(n)
	cur := la.NewVector(4)
	copy(cur, x)
	k1 := la.NewVector(4)
	k2 := la.NewVector(4)
	k3 := la.NewVector(4)
	k4 := la.NewVector(4)
	aux := la.NewVector(4)
	for s := 0; s < n; s++ {
		m.continuous(k1, cur, u)

		for i := range aux {
			aux[i] = cur[i] + 0.5*h*k1[i]
		}
		m.continuous(k2, aux, u)

		for i := range aux {
			aux[i] = cur[i] + 0.5*h*k2[i]
		}
		m.continuous(k3, aux, u)

		for i := range aux {
			aux[i] = cur[i] + h*k3[i]
		}
		m.continuous(k4, aux, u)

		for i := range cur {
			cur[i] += (h / 6.0) * (k1[i] + 2*k2[i] + 2*k3[i] + k4[i])
		}
	}
	copy(xNext, cur)
}

func (m *Cartpole) Jacobians(fdx, fdu *la.Matrix, x, u la.Vector, dt float64) {
	centralDiffJacobians(m.Step, fdx, fdu, x, u, dt, diffStep)
}
