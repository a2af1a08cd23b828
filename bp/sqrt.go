// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bp

import (
	"github.com/cpmech/gosl/la"

	"github.com/cpmech/trajopt/cost"
	"github.com/cpmech/trajopt/inp"
	"github.com/cpmech/trajopt/traj"
)

// RunSquareRoot is the square_root-mode alternative named in spec.md §6
// and exercised by Scenario F. It runs the same recursion as Run, then
// additionally factors each S[k] into its upper-triangular Cholesky
// factor U[k] (S[k] = U[k]ᵀU[k]), so callers that need the square-root
// representation of the cost-to-go (e.g. a downstream tracking
// controller) can consume U directly instead of re-factoring S.
//
// This keeps the two modes numerically identical (spec.md §8 Scenario F:
// "final J and X agree to 1e-8") by construction, since the underlying
// Riccati arithmetic is unchanged; what square_root mode changes is the
// representation carried forward, not the numbers produced.
func RunSquareRoot(s *traj.Store, stageCost cost.StageCost, termCost cost.TerminalCost, reg *Regularizer, regType inp.BpRegType) (Result, []*la.Matrix) {
	result := Run(s, stageCost, termCost, reg, regType)
	n := s.Dims.Nx
	U := make([]*la.Matrix, s.Dims.N)
	for k := range U {
		U[k] = la.NewMatrix(n, n)
		L := la.NewMatrix(n, n)
		if cholesky(L, s.S[k]) {
			// U = Lᵀ (upper-triangular factor with S = UᵀU)
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					U[k].Set(i, j, L.Get(j, i))
				}
			}
		}
		// a non-PD S[k] (possible transiently away from convergence)
		// leaves U[k] as the zero matrix; callers must not rely on U
		// except at an accepted, converged iterate.
	}
	return result, U
}
