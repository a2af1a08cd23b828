// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package constraint implements the Constraint Evaluator (C4): it
// assembles the stacked constraint vector C(x,u), its Jacobians Cx, Cu,
// the inequality active set, and the augmented-Lagrangian contribution to
// the stage cost expansion (spec.md §4.2).
package constraint

import "github.com/cpmech/gosl/la"

// UserFunc is the user-supplied constraint oracle of spec.md §6:
// c_user(x,u) -> R^(pI_user+pE_user), inequalities first, with Jacobians.
type UserFunc interface {
	NumInequality() int
	NumEquality() int
	Value(c la.Vector, x, u la.Vector)
	Jacobians(cx, cu *la.Matrix, x, u la.Vector)
}
