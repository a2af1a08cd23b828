// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bp

import (
	"math"

	"github.com/cpmech/gosl/la"
)

// This file collects the small-dense-matrix algebra the backward pass
// needs, written as explicit index loops against la.Matrix/la.Vector
// Get/Set rather than calling into a BLAS — the same style gosl's
// num.NlSolver uses for its dense Newton step (matrix inverse, residual
// dot products) instead of hiding the arithmetic behind a generic linear
// algebra package.

// matTrMulMat computes out = Aᵀ·B where A is (p x q) and B is (p x r),
// leaving out as (q x r).
func matTrMulMat(out, A, B *la.Matrix) {
	p, q, r := A.M, A.N, B.N
	for i := 0; i < q; i++ {
		for j := 0; j < r; j++ {
			var s float64
			for k := 0; k < p; k++ {
				s += A.Get(k, i) * B.Get(k, j)
			}
			out.Set(i, j, s)
		}
	}
}

// matMulMat computes out = A·B where A is (p x q) and B is (q x r).
func matMulMat(out, A, B *la.Matrix) {
	p, q, r := A.M, A.N, B.N
	for i := 0; i < p; i++ {
		for j := 0; j < r; j++ {
			var s float64
			for k := 0; k < q; k++ {
				s += A.Get(i, k) * B.Get(k, j)
			}
			out.Set(i, j, s)
		}
	}
}

// matTrMulVec computes out = Aᵀ·v where A is (p x q), v has length p, out
// has length q.
func matTrMulVec(out la.Vector, A *la.Matrix, v la.Vector) {
	p, q := A.M, A.N
	for i := 0; i < q; i++ {
		var s float64
		for k := 0; k < p; k++ {
			s += A.Get(k, i) * v[k]
		}
		out[i] = s
	}
}

// matMulVec computes out = A·v where A is (p x q), v has length q.
func matMulVec(out la.Vector, A *la.Matrix, v la.Vector) {
	p, q := A.M, A.N
	for i := 0; i < p; i++ {
		var s float64
		for k := 0; k < q; k++ {
			s += A.Get(i, k) * v[k]
		}
		out[i] = s
	}
}

func vecDot(a, b la.Vector) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func addMat(dst, src *la.Matrix) {
	for i := 0; i < dst.M; i++ {
		for j := 0; j < dst.N; j++ {
			dst.Set(i, j, dst.Get(i, j)+src.Get(i, j))
		}
	}
}

func copyMat(dst, src *la.Matrix) {
	for i := 0; i < dst.M; i++ {
		for j := 0; j < dst.N; j++ {
			dst.Set(i, j, src.Get(i, j))
		}
	}
}

// cholesky attempts the Cholesky factorization A = L·Lᵀ of the symmetric
// matrix A, writing the lower-triangular factor into L. It returns false
// at the first non-positive pivot instead of computing a full spectral
// decomposition, per Design Notes §9 ("prefer Cholesky attempt-and-fall-
// back over a full spectral check"); the backward pass treats a false
// return as the regularization-indefinite signal of spec.md §4.1 step 4.
func cholesky(L *la.Matrix, A *la.Matrix) bool {
	n := A.M
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := A.Get(i, j)
			for k := 0; k < j; k++ {
				sum -= L.Get(i, k) * L.Get(j, k)
			}
			if i == j {
				if sum <= 0 {
					return false
				}
				L.Set(i, j, math.Sqrt(sum))
			} else {
				L.Set(i, j, sum/L.Get(j, j))
			}
		}
		for j := i + 1; j < n; j++ {
			L.Set(i, j, 0)
		}
	}
	return true
}

// choleskySolveMat solves A·X = B given A's Cholesky factor L (A = L·Lᵀ),
// where B is (n x r); X is written in place of B's shape into out.
func choleskySolveMat(out, L, B *la.Matrix) {
	n, r := L.M, B.N
	y := la.NewMatrix(n, r)
	// forward solve L·y = B
	for col := 0; col < r; col++ {
		for i := 0; i < n; i++ {
			sum := B.Get(i, col)
			for k := 0; k < i; k++ {
				sum -= L.Get(i, k) * y.Get(k, col)
			}
			y.Set(i, col, sum/L.Get(i, i))
		}
	}
	// backward solve Lᵀ·x = y
	for col := 0; col < r; col++ {
		for i := n - 1; i >= 0; i-- {
			sum := y.Get(i, col)
			for k := i + 1; k < n; k++ {
				sum -= L.Get(k, i) * out.Get(k, col)
			}
			out.Set(i, col, sum/L.Get(i, i))
		}
	}
}

// choleskySolveVec solves A·x = b given A's Cholesky factor L.
func choleskySolveVec(out la.Vector, L *la.Matrix, b la.Vector) {
	n := L.M
	y := la.NewVector(n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for k := 0; k < i; k++ {
			sum -= L.Get(i, k) * y[k]
		}
		y[i] = sum / L.Get(i, i)
	}
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		for k := i + 1; k < n; k++ {
			sum -= L.Get(k, i) * out[k]
		}
		out[i] = sum / L.Get(i, i)
	}
}
