// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package al implements the Outer Loop / Augmented Lagrangian Updater
// (C7): multiplier and penalty updates driving constraint satisfaction to
// tolerance, and the outer convergence check (spec.md §4.4).
package al

import (
	"github.com/cpmech/gosl/utl"

	"github.com/cpmech/trajopt/inp"
	"github.com/cpmech/trajopt/traj"
)

// UpdateMultipliers applies the 1st-order multiplier update of spec.md
// §4.4: λ ← clamp(λ+μ⊙c, λmin, λmax), then projects inequality rows
// (the first pI of each stage block, and none of the terminal block,
// which is always an equality) onto λ ≥ 0.
func UpdateMultipliers(s *traj.Store, lambdaMin, lambdaMax float64) {
	pI := s.Dims.PI
	for k := range s.Lambda {
		for i := range s.Lambda[k] {
			v := s.Lambda[k][i] + s.Mu[k][i]*s.C[k][i]
			if v < lambdaMin {
				v = lambdaMin
			}
			if v > lambdaMax {
				v = lambdaMax
			}
			if i < pI && v < 0 {
				v = 0
			}
			s.Lambda[k][i] = v
		}
	}
	for i := range s.LambdaN {
		v := s.LambdaN[i] + s.MuN[i]*s.CN[i]
		if v < lambdaMin {
			v = lambdaMin
		}
		if v > lambdaMax {
			v = lambdaMax
		}
		s.LambdaN[i] = v
	}
}

// UpdatePenalties applies the penalty-update scheme selected by
// inp.OuterUpdateType (spec.md §4.4). scheme == individual compares each
// constraint's current violation against its snapshot from
// Store.SnapshotConstraints; scheme == default scales every entry by the
// fast factor uniformly.
func UpdatePenalties(s *traj.Store, scheme inp.OuterUpdateType, gamma, gammaNo, tau, muMax float64) {
	pI := s.Dims.PI
	switch scheme {
	case inp.OuterUpdateDefault:
		for k := range s.Mu {
			for i := range s.Mu[k] {
				s.Mu[k][i] = utl.Min(muMax, gamma*s.Mu[k][i])
			}
		}
		for i := range s.MuN {
			s.MuN[i] = utl.Min(muMax, gamma*s.MuN[i])
		}
	case inp.OuterUpdateIndividual:
		for k := range s.Mu {
			for i := range s.Mu[k] {
				viol := violation(s.C[k][i], i, pI)
				prevViol := violation(s.Cprev[k][i], i, pI)
				factor := gamma
				if viol <= tau*prevViol {
					factor = gammaNo
				}
				s.Mu[k][i] = utl.Min(muMax, factor*s.Mu[k][i])
			}
		}
		for i := range s.MuN {
			viol := absf(s.CN[i])
			prevViol := absf(s.CNprev[i])
			factor := gamma
			if viol <= tau*prevViol {
				factor = gammaNo
			}
			s.MuN[i] = utl.Min(muMax, factor*s.MuN[i])
		}
	}
}

// violation is |c_i| for equality rows (i>=pI) and max(0,c_i) for
// inequality rows (i<pI), the quantity the individual penalty scheme
// compares against its threshold τ (spec.md §4.4).
func violation(c float64, i, pI int) float64 {
	if i < pI {
		if c < 0 {
			return 0
		}
		return c
	}
	return absf(c)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Converged reports the outer-loop stopping criterion of spec.md §4.4:
// c_max below tolerance and (ΔJ or gradient) below tolerance.
func Converged(cMax, deltaJ, grad, epsC, epsJ, epsG float64) bool {
	return cMax < epsC && (deltaJ < epsJ || grad < epsG)
}
