// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bp implements the Backward Pass (C5): the Riccati-style
// recursion that produces feedback gain K, feedforward d, and the
// quadratic value function (S,s), with positive-definite regularization
// and adaptive increase/reset on failure (spec.md §4.1).
package bp

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/trajopt/constraint"
	"github.com/cpmech/trajopt/cost"
	"github.com/cpmech/trajopt/inp"
	"github.com/cpmech/trajopt/traj"
)

// Result reports the outcome of a single Run: the expected-cost-reduction
// pair Δv1, Δv2 (spec.md §4.1), whether any regularization restart
// observed an indefinite Quu_reg (spec.md §8 Law 5), and whether ρ
// overflowed to RhoMax before a PD Quu_reg could be found (spec.md §7
// "Regularization-overflow").
type Result struct {
	Dv1, Dv2   float64
	Indefinite bool
	Overflow   bool
}

// Run executes the backward recursion over the committed trajectory
// store.X, store.U. It assumes store.Fdx, store.Fdu, store.C, store.Cx,
// store.Cu, store.CN, store.IMu, store.IMuN have already been filled for
// the current trajectory (the Jacobian/constraint-assembly step (i) of
// spec.md §5's fixed per-iteration order).
func Run(s *traj.Store, stageCost cost.StageCost, termCost cost.TerminalCost, reg *Regularizer, regType inp.BpRegType) Result {
	n := s.Dims.Nx
	mm := s.Dims.Mm
	N := s.Dims.N

	lx, lu := s.Lx, s.Lu
	lxx, luu, lux := s.Lxx, s.Luu, s.Lux
	L := s.CholL

	var result Result

restart:
	// boundary condition: terminal cost expansion plus terminal AL
	// augmentation (spec.md §4.1 "Boundary", §4.2 "Terminal").
	termCost.Hessian(s.S[N-1], s.X[N-1])
	termCost.Gradient(s.Sv[N-1], s.X[N-1])
	if s.Dims.P > 0 {
		constraint.AugmentTerminal(s.Sv[N-1], s.S[N-1], s.CN, s.LambdaN, s.IMuN)
	}
	traj.Symmetrize(s.S[N-1])

	result.Dv1, result.Dv2 = 0, 0

	for k := N - 2; k >= 0; k-- {
		stageCost.Gradient(k, lx, lu, s.X[k], s.U[k])
		stageCost.Hessian(k, lxx, luu, lux, s.X[k], s.U[k])
		if s.Dims.P > 0 {
			constraint.AugmentGradientHessian(lx, lu, lxx, luu, lux, s.C[k], s.Lambda[k], s.IMu[k], s.Cx[k], s.Cu[k])
		}

		fdx, fdu := s.Fdx[k], s.Fdu[k]
		snext, svnext := s.S[k+1], s.Sv[k+1]

		// Qx = lx + fdxᵀ s_{k+1}; Qu = lu + fduᵀ s_{k+1}
		matTrMulVec(s.Qx, fdx, svnext)
		for i := 0; i < n; i++ {
			s.Qx[i] += lx[i]
		}
		matTrMulVec(s.Qu, fdu, svnext)
		for i := 0; i < mm; i++ {
			s.Qu[i] += lu[i]
		}

		// Qxx = lxx + fdxᵀ S_{k+1} fdx
		matMulMat(s.TmpXX1, snext, fdx)
		matTrMulMat(s.Qxx, fdx, s.TmpXX1)
		addMat(s.Qxx, lxx)

		// Quu = luu + fduᵀ S_{k+1} fdu
		matMulMat(s.TmpXM, snext, fdu)
		matTrMulMat(s.Quu, fdu, s.TmpXM)
		addMat(s.Quu, luu)

		// Qux = lux + fduᵀ S_{k+1} fdx
		matTrMulMat(s.Qux, fdu, s.TmpXX1)
		addMat(s.Qux, lux)

		// regularized variants (spec.md §4.1 step 3)
		copyMat(s.QuuReg, s.Quu)
		copyMat(s.QuxReg, s.Qux)
		switch regType {
		case inp.BpRegControl:
			for i := 0; i < mm; i++ {
				s.QuuReg.Set(i, i, s.QuuReg.Get(i, i)+s.Rho)
			}
		case inp.BpRegState:
			matTrMulMat(s.FduTFdu, fdu, fdu)
			for i := 0; i < mm; i++ {
				for j := 0; j < mm; j++ {
					s.QuuReg.Set(i, j, s.QuuReg.Get(i, j)+s.Rho*s.FduTFdu.Get(i, j))
				}
			}
			matTrMulMat(s.FduTFdx, fdu, fdx)
			for i := 0; i < mm; i++ {
				for j := 0; j < n; j++ {
					s.QuxReg.Set(i, j, s.QuxReg.Get(i, j)+s.Rho*s.FduTFdx.Get(i, j))
				}
			}
		default:
			chk.Panic("bp: unknown regularization scheme %q", regType)
		}

		if !cholesky(L, s.QuuReg) {
			result.Indefinite = true
			newRho, newDRho, overflow := reg.Increase(s.Rho, s.DRho)
			s.Rho, s.DRho = newRho, newDRho
			if overflow {
				result.Overflow = true
				return result
			}
			goto restart
		}

		// K = -Quu_reg⁻¹ Qux_reg; d = -Quu_reg⁻¹ Qu (spec.md §4.1 step 5)
		for i := 0; i < mm; i++ {
			for j := 0; j < n; j++ {
				s.NegQuxReg.Set(i, j, -s.QuxReg.Get(i, j))
			}
		}
		choleskySolveMat(s.K[k], L, s.NegQuxReg)
		for i := 0; i < mm; i++ {
			s.NegQu[i] = -s.Qu[i]
		}
		choleskySolveVec(s.D[k], L, s.NegQu)

		// value backup using the UNREGULARIZED Quu, Qux (spec.md §4.1 step 6)
		K, d := s.K[k], s.D[k]
		matMulMat(s.QuuK, s.Quu, K)
		matMulVec(s.QuuD, s.Quu, d)

		// s[k] = Qx + Kᵀ Quu d + Kᵀ Qu + Quxᵀ d
		matTrMulVec(s.SvNew, K, s.QuuD)
		for i := 0; i < n; i++ {
			s.SvNew[i] += s.Qx[i]
		}
		matTrMulVec(s.KTQu, K, s.Qu)
		for i := 0; i < n; i++ {
			s.SvNew[i] += s.KTQu[i]
		}
		matTrMulVec(s.QuxTd, s.Qux, d)
		for i := 0; i < n; i++ {
			s.SvNew[i] += s.QuxTd[i]
		}
		copy(s.Sv[k], s.SvNew)

		// S[k] = Qxx + Kᵀ Quu K + Kᵀ Qux + Quxᵀ K; symmetrize
		copyMat(s.SMatNew, s.Qxx)
		matTrMulMat(s.KTQuuK, K, s.QuuK)
		addMat(s.SMatNew, s.KTQuuK)
		matTrMulMat(s.KTQux, K, s.Qux)
		addMat(s.SMatNew, s.KTQux)
		// Quxᵀ K == transpose of Kᵀ Qux computed above
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				s.SMatNew.Set(i, j, s.SMatNew.Get(i, j)+s.KTQux.Get(j, i))
			}
		}
		copyMat(s.S[k], s.SMatNew)
		traj.Symmetrize(s.S[k])

		// Δv accumulation (spec.md §4.1)
		result.Dv1 += vecDot(d, s.Qu)
		result.Dv2 += 0.5 * vecDot(d, s.QuuD)
	}

	newRho, newDRho := reg.Decrease(s.Rho, s.DRho)
	s.Rho, s.DRho = newRho, newDRho
	return result
}

// TodorovGradient computes the spec.md §8.8 convergence metric
// mean_k max_i |d[k][i]| / (|U[k][i]|+1).
func TodorovGradient(s *traj.Store) float64 {
	N1 := len(s.D)
	if N1 == 0 {
		return 0
	}
	var total float64
	for k := 0; k < N1; k++ {
		var worst float64
		for i, di := range s.D[k] {
			v := absf(di) / (absf(s.U[k][i]) + 1)
			if v > worst {
				worst = v
			}
		}
		total += worst
	}
	return total / float64(N1)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
