// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package examples

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

func Test_pendulum_jacobians_match_finite_difference(tst *testing.T) {

	chk.PrintTitle("pendulum_jacobians_match_finite_difference")

	m := NewPendulum()
	x := la.Vector{0.3, -0.1}
	u := la.Vector{0.5}
	dt := 0.05
	fdx := la.NewMatrix(2, 2)
	fdu := la.NewMatrix(2, 1)
	m.Jacobians(fdx, fdu, x, u, dt)

	checkJacobianByFiniteDifference(tst, m, x, u, dt, fdx, fdu, 1e-6, 1e-6)
}

func Test_pendulum_rest_is_stationary_without_control(tst *testing.T) {

	chk.PrintTitle("pendulum_rest_is_stationary_without_control")

	m := NewPendulum()
	x := la.Vector{0, 0} // hanging straight down, at rest
	u := la.Vector{0}
	xNext := la.NewVector(2)
	m.Step(xNext, x, u, 0.1)

	chk.Scalar(tst, "theta", 1e-12, xNext[0], 0)
	chk.Scalar(tst, "omega", 1e-12, xNext[1], 0)
}
