// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraint

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/cpmech/trajopt/inp"
)

// Evaluator assembles the stacked stage constraint vector and Jacobians in
// the fixed order of spec.md §4.2:
//
//  1. user inequality rows
//  2. control upper-bound rows
//  3. control lower-bound rows
//  4. state upper-bound rows
//  5. state lower-bound rows
//  6. user equality rows
//  7. minimum-time equality row (if enabled)
//  8. infeasible-slack equality rows (if enabled)
type Evaluator struct {
	Nx, Nu, Mm int
	User       UserFunc

	umin, umax la.Vector
	xmin, xmax la.Vector

	minimumTime bool
	infeasible  bool

	// row layout, computed once in NewEvaluator
	P, PI, PE                                             int
	offUserIneq, offUUp, offULo, offXUp, offXLo           int
	offUserEq, offMinTime, offSlack                       int
	nUserIneq, nUserEq                                    int
}

// NewEvaluator builds the row layout for a problem under the given
// dimensions and Mode. mm is the (possibly slack-augmented) control
// dimension carried by the trajectory store for this stage.
func NewEvaluator(p *inp.Problem, mode inp.Mode, mm int, user UserFunc) *Evaluator {
	e := &Evaluator{Nx: p.Nx, Nu: p.Nu, Mm: mm, User: user}
	if p.HasControlBounds() {
		e.umin, e.umax = p.UMin, p.UMax
	}
	if p.HasStateBounds() {
		e.xmin, e.xmax = p.XMin, p.XMax
	}
	e.minimumTime = mode.MinimumTime
	e.infeasible = mode.Infeasible

	if user != nil {
		e.nUserIneq = user.NumInequality()
		e.nUserEq = user.NumEquality()
	}

	off := 0
	e.offUserIneq = off
	off += e.nUserIneq
	if e.umin != nil {
		e.offUUp = off
		off += e.Nu
		e.offULo = off
		off += e.Nu
	}
	if e.xmin != nil {
		e.offXUp = off
		off += e.Nx
		e.offXLo = off
		off += e.Nx
	}
	e.PI = off

	e.offUserEq = off
	off += e.nUserEq
	if e.minimumTime {
		e.offMinTime = off
		off++
	}
	if e.infeasible {
		e.offSlack = off
		off += e.Nx
	}
	e.P = off
	e.PE = e.P - e.PI
	return e
}

// NumConstraints returns (p, pI, pE).
func (e *Evaluator) NumConstraints() (p, pI, pE int) { return e.P, e.PI, e.PE }

// Evaluate fills c (length P) and the Jacobians Cx (P x Nx), Cu (P x Mm).
// sqrtDt is U[Nu] when minimum-time is enabled (the √dt augmented
// control); slack is U[offset:offset+Nx] when infeasible-start is
// enabled. Both are ignored (may be zero-length) when the corresponding
// feature is off.
func (e *Evaluator) Evaluate(c la.Vector, Cx, Cu *la.Matrix, x, u la.Vector, sqrtDt float64, dtNominal float64) {
	if len(c) != e.P {
		chk.Panic("constraint: c has length %d, want %d", len(c), e.P)
	}
	for i := range c {
		c[i] = 0
	}
	zeroMat(Cx)
	zeroMat(Cu)

	if e.User != nil && e.nUserIneq+e.nUserEq > 0 {
		sub := la.NewVector(e.nUserIneq + e.nUserEq)
		e.User.Value(sub, x, u)
		subCx := la.NewMatrix(e.nUserIneq+e.nUserEq, e.Nx)
		subCu := la.NewMatrix(e.nUserIneq+e.nUserEq, e.Mm)
		e.User.Jacobians(subCx, subCu, x, u)
		for i := 0; i < e.nUserIneq; i++ {
			c[e.offUserIneq+i] = sub[i]
			copyRow(Cx, e.offUserIneq+i, subCx, i)
			copyRow(Cu, e.offUserIneq+i, subCu, i)
		}
		for i := 0; i < e.nUserEq; i++ {
			c[e.offUserEq+i] = sub[e.nUserIneq+i]
			copyRow(Cx, e.offUserEq+i, subCx, e.nUserIneq+i)
			copyRow(Cu, e.offUserEq+i, subCu, e.nUserIneq+i)
		}
	}

	if e.umin != nil {
		for i := 0; i < e.Nu; i++ {
			c[e.offUUp+i] = u[i] - e.umax[i]
			Cu.Set(e.offUUp+i, i, 1)
			c[e.offULo+i] = e.umin[i] - u[i]
			Cu.Set(e.offULo+i, i, -1)
		}
	}
	if e.xmin != nil {
		for i := 0; i < e.Nx; i++ {
			c[e.offXUp+i] = x[i] - e.xmax[i]
			Cx.Set(e.offXUp+i, i, 1)
			c[e.offXLo+i] = e.xmin[i] - x[i]
			Cx.Set(e.offXLo+i, i, -1)
		}
	}
	if e.minimumTime {
		// ties this knot's √dt control to a reference step: the driver
		// passes the square of the first knot's √dt as dtNominal.
		c[e.offMinTime] = sqrtDt*sqrtDt - dtNominal
		Cu.Set(e.offMinTime, e.Nu, 2*sqrtDt)
	}
	if e.infeasible {
		slackOff := e.Mm - e.Nx
		for i := 0; i < e.Nx; i++ {
			c[e.offSlack+i] = u[slackOff+i]
			Cu.Set(e.offSlack+i, slackOff+i, 1)
		}
	}
}

func zeroMat(m *la.Matrix) {
	for i := 0; i < m.M; i++ {
		for j := 0; j < m.N; j++ {
			m.Set(i, j, 0)
		}
	}
}

func copyRow(dst *la.Matrix, dstRow int, src *la.Matrix, srcRow int) {
	for j := 0; j < src.N; j++ {
		dst.Set(dstRow, j, src.Get(srcRow, j))
	}
}
