// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cost

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

func diag(d ...float64) *la.Matrix {
	m := la.NewMatrix(len(d), len(d))
	for i, v := range d {
		m.Set(i, i, v)
	}
	return m
}

// checkStageExpansion cross-checks a StageCost's analytic Gradient/Hessian
// against central differences of Value, the same style gofem's msolid
// models verify a closed-form tangent modulus against a numerical one.
func checkStageExpansion(tst *testing.T, c StageCost, k int, x, u la.Vector, h, tol float64) {
	n, m := len(x), len(u)
	lx := la.NewVector(n)
	lu := la.NewVector(m)
	c.Gradient(k, lx, lu, x, u)

	xPert := la.NewVector(n)
	for i := 0; i < n; i++ {
		copy(xPert, x)
		xPert[i] += h
		vp := c.Value(k, xPert, u)
		copy(xPert, x)
		xPert[i] -= h
		vm := c.Value(k, xPert, u)
		want := (vp - vm) / (2 * h)
		if absf(lx[i]-want) > tol {
			tst.Errorf("lx[%d] = %g, want %g (tol %g)", i, lx[i], want, tol)
		}
	}
	uPert := la.NewVector(m)
	for i := 0; i < m; i++ {
		copy(uPert, u)
		uPert[i] += h
		vp := c.Value(k, x, uPert)
		copy(uPert, u)
		uPert[i] -= h
		vm := c.Value(k, x, uPert)
		want := (vp - vm) / (2 * h)
		if absf(lu[i]-want) > tol {
			tst.Errorf("lu[%d] = %g, want %g (tol %g)", i, lu[i], want, tol)
		}
	}

	lxx := la.NewMatrix(n, n)
	luu := la.NewMatrix(m, m)
	lux := la.NewMatrix(m, n)
	c.Hessian(k, lxx, luu, lux, x, u)

	for i := 0; i < n; i++ {
		copy(xPert, x)
		xPert[i] += h
		lxp, lup := la.NewVector(n), la.NewVector(m)
		c.Gradient(k, lxp, lup, xPert, u)
		copy(xPert, x)
		xPert[i] -= h
		lxm, lum := la.NewVector(n), la.NewVector(m)
		c.Gradient(k, lxm, lum, xPert, u)
		for j := 0; j < n; j++ {
			want := (lxp[j] - lxm[j]) / (2 * h)
			if absf(lxx.Get(j, i)-want) > tol {
				tst.Errorf("lxx[%d][%d] = %g, want %g (tol %g)", j, i, lxx.Get(j, i), want, tol)
			}
		}
		for j := 0; j < m; j++ {
			want := (lup[j] - lum[j]) / (2 * h)
			if absf(lux.Get(j, i)-want) > tol {
				tst.Errorf("lux[%d][%d] = %g, want %g (tol %g)", j, i, lux.Get(j, i), want, tol)
			}
		}
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func Test_quadratic_expansion_matches_finite_difference(tst *testing.T) {

	chk.PrintTitle("quadratic_expansion_matches_finite_difference")

	Q := diag(2, 3)
	R := diag(0.5)
	xf := la.Vector{1, -1}
	c := NewQuadratic(Q, R, xf)

	x := la.Vector{0.3, 2.1}
	u := la.Vector{-0.7}
	checkStageExpansion(tst, c, 0, x, u, 1e-6, 1e-6)
}

func Test_quadratic_with_cross_term(tst *testing.T) {

	chk.PrintTitle("quadratic_with_cross_term")

	Q := diag(1, 1)
	R := diag(1)
	xf := la.Vector{0, 0}
	c := NewQuadratic(Q, R, xf)
	c.Qxu = la.NewMatrix(2, 1)
	c.Qxu.Set(0, 0, 0.4)
	c.Qxu.Set(1, 0, -0.2)

	x := la.Vector{0.5, -0.5}
	u := la.Vector{1.3}
	checkStageExpansion(tst, c, 0, x, u, 1e-6, 1e-6)
}

func Test_quadratic_terminal_matches_finite_difference(tst *testing.T) {

	chk.PrintTitle("quadratic_terminal_matches_finite_difference")

	Qf := diag(10, 20)
	xf := la.Vector{1, 2}
	c := NewQuadraticTerminal(Qf, xf)

	x := la.Vector{4, -1}
	n := len(x)
	h := 1e-6

	lx := la.NewVector(n)
	c.Gradient(lx, x)
	xPert := la.NewVector(n)
	for i := 0; i < n; i++ {
		copy(xPert, x)
		xPert[i] += h
		vp := c.Value(xPert)
		copy(xPert, x)
		xPert[i] -= h
		vm := c.Value(xPert)
		want := (vp - vm) / (2 * h)
		if absf(lx[i]-want) > 1e-6 {
			tst.Errorf("lx[%d] = %g, want %g", i, lx[i], want)
		}
	}
}

func Test_perturbed_adds_bump_only_at_its_knot(tst *testing.T) {

	chk.PrintTitle("perturbed_adds_bump_only_at_its_knot")

	base := NewQuadratic(diag(1, 1), diag(1), la.Vector{0, 0})
	p := &Perturbed{StageCost: base, Knot: 2, Weight: 5.0}

	x := la.Vector{0.1, 0.2}
	u := la.Vector{0.3}
	lxx := la.NewMatrix(2, 2)
	luu := la.NewMatrix(1, 1)
	lux := la.NewMatrix(1, 2)

	p.Hessian(1, lxx, luu, lux, x, u)
	chk.Scalar(tst, "luu away from perturbed knot", 1e-15, luu.Get(0, 0), 1)

	p.Hessian(2, lxx, luu, lux, x, u)
	chk.Scalar(tst, "luu at perturbed knot", 1e-15, luu.Get(0, 0), 1-5.0)

	_ = x
	_ = u
}

func Test_tracking_quadratic_zero_at_reference(tst *testing.T) {

	chk.PrintTitle("tracking_quadratic_zero_at_reference")

	xref := []la.Vector{{1, 2}, {3, 4}}
	uref := []la.Vector{{0.5}}
	c := &TrackingQuadratic{Q: diag(1, 1), R: diag(1), Xref: xref, Uref: uref}

	v := c.Value(0, xref[0], uref[0])
	chk.Scalar(tst, "value at reference", 1e-15, v, 0)

	checkStageExpansion(tst, c, 0, la.Vector{0.2, -0.4}, la.Vector{1.1}, 1e-6, 1e-6)
}

func Test_tracking_terminal_zero_at_reference(tst *testing.T) {

	chk.PrintTitle("tracking_terminal_zero_at_reference")

	c := &TrackingTerminal{Qf: diag(1, 1), Xref: la.Vector{2, 2}}
	chk.Scalar(tst, "value at reference", 1e-15, c.Value(la.Vector{2, 2}), 0)
	if c.Value(la.Vector{3, 2}) <= 0 {
		tst.Errorf("expected strictly positive cost away from the reference")
	}
}
