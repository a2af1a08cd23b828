// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraint

import "github.com/cpmech/gosl/la"

// ActiveSet computes, for each of the first pI rows of c, whether that
// inequality row is active: c[i] > 0 OR lambda[i] > 0 (spec.md §4.2).
// Equality rows (i >= pI) are always active. iMu receives the resulting
// diagonal penalty weights: mu[i] on active rows, zero on inactive ones.
func ActiveSet(iMu la.Vector, c, lambda, mu la.Vector, pI int) {
	p := len(c)
	for i := 0; i < p; i++ {
		if i < pI {
			if c[i] > 0 || lambda[i] > 0 {
				iMu[i] = mu[i]
			} else {
				iMu[i] = 0
			}
		} else {
			iMu[i] = mu[i]
		}
	}
}

// AugmentedCost evaluates the scalar augmented-Lagrangian addition
// λᵀc + ½cᵀIμc to the raw stage/terminal cost (spec.md §4.2).
func AugmentedCost(c, lambda, iMu la.Vector) float64 {
	var v float64
	for i := range c {
		v += lambda[i] * c[i]
		v += 0.5 * iMu[i] * c[i] * c[i]
	}
	return v
}

// AugmentGradientHessian adds the augmented-Lagrangian contribution to an
// already-computed raw stage-cost expansion (lx, lu, lxx, luu, lux), via
// the Gauss-Newton approximation that drops second derivatives of c
// (spec.md §4.2):
//
//	lx  += Cxᵀ(λ + Iμ·c)
//	lu  += Cuᵀ(λ + Iμ·c)
//	lxx += Cxᵀ Iμ Cx
//	luu += Cuᵀ Iμ Cu
//	lux += Cuᵀ Iμ Cx
func AugmentGradientHessian(lx, lu la.Vector, lxx, luu, lux *la.Matrix, c, lambda, iMu la.Vector, Cx, Cu *la.Matrix) {
	p, nx, mm := len(c), lxx.M, luu.M
	w := la.NewVector(p) // w = λ + Iμ·c
	for i := 0; i < p; i++ {
		w[i] = lambda[i] + iMu[i]*c[i]
	}

	for j := 0; j < nx; j++ {
		var s float64
		for i := 0; i < p; i++ {
			s += Cx.Get(i, j) * w[i]
		}
		lx[j] += s
	}
	for j := 0; j < mm; j++ {
		var s float64
		for i := 0; i < p; i++ {
			s += Cu.Get(i, j) * w[i]
		}
		lu[j] += s
	}

	// lxx += Cxᵀ Iμ Cx
	for a := 0; a < nx; a++ {
		for b := 0; b < nx; b++ {
			var s float64
			for i := 0; i < p; i++ {
				s += Cx.Get(i, a) * iMu[i] * Cx.Get(i, b)
			}
			lxx.Set(a, b, lxx.Get(a, b)+s)
		}
	}
	// luu += Cuᵀ Iμ Cu
	for a := 0; a < mm; a++ {
		for b := 0; b < mm; b++ {
			var s float64
			for i := 0; i < p; i++ {
				s += Cu.Get(i, a) * iMu[i] * Cu.Get(i, b)
			}
			luu.Set(a, b, luu.Get(a, b)+s)
		}
	}
	// lux += Cuᵀ Iμ Cx
	for a := 0; a < mm; a++ {
		for b := 0; b < nx; b++ {
			var s float64
			for i := 0; i < p; i++ {
				s += Cu.Get(i, a) * iMu[i] * Cx.Get(i, b)
			}
			lux.Set(a, b, lux.Get(a, b)+s)
		}
	}
}

// AugmentTerminal adds the terminal augmentation of spec.md §4.2 to the
// boundary value-function pair (S[N], s[N]):
//
//	s[N] += CxNᵀ (λN + IμN·CN)
//	S[N] += CxNᵀ IμN CxN
//
// CxN is the identity for the fixed terminal-equality constraint
// CN = X[N] - xf, so this reduces to a direct add.
func AugmentTerminal(s la.Vector, S *la.Matrix, CN, lambdaN, iMuN la.Vector) {
	n := len(CN)
	for i := 0; i < n; i++ {
		s[i] += lambdaN[i] + iMuN[i]*CN[i]
		S.Set(i, i, S.Get(i, i)+iMuN[i])
	}
}
