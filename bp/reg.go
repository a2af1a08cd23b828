// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bp

import "github.com/cpmech/gosl/utl"

// Regularizer implements the Tassa two-parameter regularization schedule
// of spec.md §4.5: ρ is the value in use, dρ is the current multiplicative
// rate.
type Regularizer struct {
	Phi    float64
	RhoMin float64
	RhoMax float64
}

// Increase applies the schedule's increase branch, used whenever the
// backward pass finds Quu_reg indefinite or the forward pass rejects a
// step. It reports overflow when the clamp hits RhoMax (spec.md §4.5,
// §7 "Regularization-overflow").
func (r *Regularizer) Increase(rho, dRho float64) (newRho, newDRho float64, overflow bool) {
	newDRho = utl.Max(dRho*r.Phi, r.Phi)
	newRho = utl.Max(rho*newDRho, r.RhoMin)
	if newRho > r.RhoMax {
		newRho = r.RhoMax
	}
	overflow = newRho >= r.RhoMax
	return
}

// Decrease applies the schedule's decrease branch, used after a backward
// pass completes without a regularization reset (spec.md §4.1
// "Termination") and after an accepted forward-pass step.
func (r *Regularizer) Decrease(rho, dRho float64) (newRho, newDRho float64) {
	newDRho = utl.Min(dRho/r.Phi, 1/r.Phi)
	candidate := rho * newDRho
	if candidate >= r.RhoMin {
		newRho = candidate
	} else {
		newRho = 0
	}
	return
}
