// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

// Statistics is the run-statistics dictionary of spec.md §6, rendered as
// a typed struct rather than an untyped dictionary. Phase1 is non-nil
// only for an infeasible-start solve, carrying the first (slack-
// augmented) phase's numbers under the "(infeasible)"-suffixed keys the
// spec describes.
type Statistics struct {
	Iterations      int
	MajorIterations int
	RuntimeSeconds  float64
	SetupSeconds    float64
	Cost            []float64
	CMax            []float64
	Warnings        []string

	Phase1 *Statistics
}

// ToMap renders the statistics as the flat dictionary spec.md §6
// describes, merging Phase1 under "(infeasible)"-suffixed keys.
func (s *Statistics) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"iterations":       s.Iterations,
		"major iterations": s.MajorIterations,
		"runtime":          s.RuntimeSeconds,
		"setup_time":       s.SetupSeconds,
		"cost":             s.Cost,
		"c_max":            s.CMax,
	}
	if s.Phase1 != nil {
		m["iterations (infeasible)"] = s.Phase1.Iterations
		m["major iterations (infeasible)"] = s.Phase1.MajorIterations
		m["runtime (infeasible)"] = s.Phase1.RuntimeSeconds
		m["setup_time (infeasible)"] = s.Phase1.SetupSeconds
		m["cost (infeasible)"] = s.Phase1.Cost
		m["c_max (infeasible)"] = s.Phase1.CMax
	}
	return m
}
