// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package traj implements the Trajectory Store (C1): the sole owner of
// all per-knot state/control sequences, gains, cost-to-go, constraint
// values, multipliers, penalties, and regularization scalar (spec.md §3).
// All other components borrow these buffers mutably with non-overlapping
// index ranges; there is no hidden aliasing between X/X_ or U/U_.
package traj

import (
	"github.com/cpmech/gosl/la"

	"github.com/cpmech/trajopt/inp"
)

// Store owns every per-knot buffer named in spec.md §3. It is allocated
// once per solve at the dimensions fixed by Problem/Mode and mutated in
// place for the remainder of the solve.
type Store struct {
	Dims inp.Dims

	X, U   []la.Vector // committed trajectory, length N / N-1
	Xn, Un []la.Vector // candidate ("_") trajectory for line search

	K []*la.Matrix // feedback gain, length N-1, Mm x Nx
	D []la.Vector  // feedforward, length N-1, Mm

	S []*la.Matrix // cost-to-go Hessian, length N, Nx x Nx
	Sv []la.Vector // cost-to-go gradient ("s"), length N, Nx

	C     []la.Vector // stage constraint residual, length N-1, P
	CN    la.Vector   // terminal equality residual, Nx
	Cprev []la.Vector // previous-iteration snapshot of C
	CNprev la.Vector

	Cx []*la.Matrix // P x Nx, length N-1
	Cu []*la.Matrix // P x Mm, length N-1

	Lambda  []la.Vector // stage multipliers, length N-1, P
	LambdaN la.Vector   // terminal multiplier, Nx

	Mu  []la.Vector // stage penalties, length N-1, P
	MuN la.Vector   // terminal penalty, Nx

	IMu  []la.Vector // active-penalty diagonal, length N-1, P
	IMuN la.Vector   // terminal active-penalty diagonal, Nx

	Fdx []*la.Matrix // discrete dynamics state Jacobian, length N-1, Nx x Nx
	Fdu []*la.Matrix // discrete dynamics control Jacobian, length N-1, Nx x Mm

	Rho  float64 // regularization level
	DRho float64 // multiplicative increment state

	// backward-pass scratch, reused across knots and iterations (§5: no
	// per-iteration allocation in the hot path).
	Qx, Qu         la.Vector
	Qxx, Quu, Qux  *la.Matrix
	QuuReg, QuxReg *la.Matrix

	// further backward-pass scratch for the intermediate products of
	// Run's Qxx/Quu/Qux assembly, the BpRegState cross terms, the
	// regularized-gain solve, and the value-function backup (§4.1 steps
	// 3-6); never allocated inside the per-knot loop.
	TmpXX1, TmpXM          *la.Matrix // Snext*fdx (nxn), Snext*fdu (nxmm)
	FduTFdu, FduTFdx       *la.Matrix // BpRegState cross terms, mmxmm / mmxn
	NegQuxReg              *la.Matrix // -QuxReg, mmxn
	NegQu                  la.Vector  // -Qu, mm
	QuuK                   *la.Matrix // Quu*K, mmxn
	QuuD                   la.Vector  // Quu*d, mm
	SvNew                  la.Vector  // candidate Sv[k] before copy, n
	KTQu, QuxTd            la.Vector  // Kᵀ Qu, Quxᵀ d, n
	SMatNew, KTQuuK, KTQux *la.Matrix // candidate S[k] before copy and its terms, nxn

	// per-stage cost-expansion scratch and the Cholesky factor, filled
	// fresh by every knot of Run but allocated once per solve rather than
	// once per Run call.
	Lx, Lu        la.Vector
	Lxx, Luu, Lux *la.Matrix
	CholL         *la.Matrix
}

// New allocates a Store at the given dimensions.
func New(d inp.Dims) *Store {
	s := &Store{Dims: d}
	n, mm, p, N := d.Nx, d.Mm, d.P, d.N

	s.X = allocVecs(N, n)
	s.U = allocVecs(N-1, mm)
	s.Xn = allocVecs(N, n)
	s.Un = allocVecs(N-1, mm)

	s.K = allocMats(N-1, mm, n)
	s.D = allocVecs(N-1, mm)

	s.S = allocMats(N, n, n)
	s.Sv = allocVecs(N, n)

	s.C = allocVecs(N-1, p)
	s.CN = la.NewVector(n)
	s.Cprev = allocVecs(N-1, p)
	s.CNprev = la.NewVector(n)

	s.Cx = allocMats(N-1, p, n)
	s.Cu = allocMats(N-1, p, mm)

	s.Lambda = allocVecs(N-1, p)
	s.LambdaN = la.NewVector(n)

	s.Mu = allocVecs(N-1, p)
	s.MuN = la.NewVector(n)

	s.IMu = allocVecs(N-1, p)
	s.IMuN = la.NewVector(n)

	s.Fdx = allocMats(N-1, n, n)
	s.Fdu = allocMats(N-1, n, mm)

	s.Qx = la.NewVector(n)
	s.Qu = la.NewVector(mm)
	s.Qxx = la.NewMatrix(n, n)
	s.Quu = la.NewMatrix(mm, mm)
	s.Qux = la.NewMatrix(mm, n)
	s.QuuReg = la.NewMatrix(mm, mm)
	s.QuxReg = la.NewMatrix(mm, n)

	s.TmpXX1 = la.NewMatrix(n, n)
	s.TmpXM = la.NewMatrix(n, mm)
	s.FduTFdu = la.NewMatrix(mm, mm)
	s.FduTFdx = la.NewMatrix(mm, n)
	s.NegQuxReg = la.NewMatrix(mm, n)
	s.NegQu = la.NewVector(mm)
	s.QuuK = la.NewMatrix(mm, n)
	s.QuuD = la.NewVector(mm)
	s.SvNew = la.NewVector(n)
	s.KTQu = la.NewVector(n)
	s.QuxTd = la.NewVector(n)
	s.SMatNew = la.NewMatrix(n, n)
	s.KTQuuK = la.NewMatrix(n, n)
	s.KTQux = la.NewMatrix(n, n)

	s.Lx = la.NewVector(n)
	s.Lu = la.NewVector(mm)
	s.Lxx = la.NewMatrix(n, n)
	s.Luu = la.NewMatrix(mm, mm)
	s.Lux = la.NewMatrix(mm, n)
	s.CholL = la.NewMatrix(mm, mm)

	return s
}

func allocVecs(count, size int) []la.Vector {
	out := make([]la.Vector, count)
	for i := range out {
		out[i] = la.NewVector(size)
	}
	return out
}

func allocMats(count, rows, cols int) []*la.Matrix {
	out := make([]*la.Matrix, count)
	for i := range out {
		out[i] = la.NewMatrix(rows, cols)
	}
	return out
}

// SetInitialState seeds X[0] (and Xn[0]), the first knot, with the
// problem's initial state. Outside an
// infeasible-start augmentation this value never changes (spec.md §3
// invariant: "X[1] equals the problem's initial state at all times").
func (s *Store) SetInitialState(x0 la.Vector) {
	copy(s.X[0], x0)
	copy(s.Xn[0], x0)
}

// InitControls copies the guess u0 into U. Entries of U that u0 does not
// cover (all of them when u0 is nil) are left as they are.
func (s *Store) InitControls(u0 []la.Vector) {
	for k := range s.U {
		if u0 != nil && k < len(u0) {
			copy(s.U[k], u0[k])
		}
	}
}

// CommitCandidate promotes the candidate trajectory Xn,Un to the
// committed X,U after a forward-pass acceptance (spec.md §3 lifecycle).
func (s *Store) CommitCandidate() {
	for k := range s.X {
		copy(s.X[k], s.Xn[k])
	}
	for k := range s.U {
		copy(s.U[k], s.Un[k])
	}
}

// SnapshotConstraints copies C, CN into Cprev, CNprev (spec.md §4.4
// "Snapshot" step, used by the per-constraint individual penalty update).
func (s *Store) SnapshotConstraints() {
	for k := range s.C {
		copy(s.Cprev[k], s.C[k])
	}
	copy(s.CNprev, s.CN)
}

// Symmetrize enforces S[k] = ½(S[k]+S[k]ᵀ), the explicit symmetrization
// the backward pass performs after every assembly (spec.md §3 invariant,
// §4.1 step 6, Design Notes "Symmetric PD check").
func Symmetrize(S *la.Matrix) {
	n := S.M
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			avg := 0.5 * (S.Get(i, j) + S.Get(j, i))
			S.Set(i, j, avg)
			S.Set(j, i, avg)
		}
	}
}

// CMax returns the maximum constraint violation across the whole
// trajectory: max(0,c_i) for inequality rows, |c_i| for equality rows and
// the terminal residual (spec.md §4.4 outer-convergence criterion).
func (s *Store) CMax() float64 {
	var m float64
	pI := s.Dims.PI
	for k := range s.C {
		for i, c := range s.C[k] {
			v := c
			if i < pI {
				if v < 0 {
					v = 0
				}
			} else {
				v = absf(v)
			}
			if v > m {
				m = v
			}
		}
	}
	for _, c := range s.CN {
		if absf(c) > m {
			m = absf(c)
		}
	}
	return m
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
