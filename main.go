// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command trajopt runs the Scenario A fixture (LQR sanity: a discrete
// double integrator driven to the origin) end to end and prints the
// resulting statistics table. It exists only as a smoke-test driver for
// the solver core; CLI ergonomics are explicitly out of this module's
// scope.
package main

import (
	"flag"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"

	"github.com/cpmech/trajopt/cost"
	"github.com/cpmech/trajopt/dynamics/examples"
	"github.com/cpmech/trajopt/inp"
	"github.com/cpmech/trajopt/solver"
)

func main() {
	optsPath := flag.String("opts", "", "path to a JSON options file (defaults built in if empty)")
	verbose := flag.Bool("verbose", true, "print the per-iteration diagnostic table")
	flag.Parse()

	io.PfWhite("\ntrajopt -- constrained trajectory optimization core\n\n")

	opt := inp.DefaultOptions()
	if *optsPath != "" {
		loaded, err := inp.ReadOptions(*optsPath)
		if err != nil {
			chk.Panic("cannot read options file %q: %v", *optsPath, err)
		}
		opt = loaded
	}
	opt.Verbose = *verbose

	n, m, N := 2, 1, 51
	dt := 0.1
	x0 := la.Vector{1, 0}
	xf := la.Vector{0, 0}

	problem := &inp.Problem{
		N: N, Nx: n, Nu: m, Dt: dt,
		X0: x0, Xf: xf,
	}
	if err := problem.Validate(); err != nil {
		chk.Panic("invalid problem: %v", err)
	}

	Q := diag(1, 1)
	R := diag(1)
	Qf := diag(100, 100)

	cfg := solver.Config{
		Problem:   problem,
		Options:   opt,
		Model:     examples.NewDoubleIntegrator(),
		StageCost: cost.NewQuadratic(Q, R, xf),
		TermCost:  cost.NewQuadraticTerminal(Qf, xf),
	}

	store, stats, err := solver.Solve(cfg)
	if err != nil {
		chk.Panic("solve failed: %v", err)
	}

	io.Pf("iterations       = %d\n", stats.Iterations)
	io.Pf("major iterations = %d\n", stats.MajorIterations)
	io.Pf("setup time (s)   = %g\n", stats.SetupSeconds)
	io.Pf("runtime (s)      = %g\n", stats.RuntimeSeconds)
	if len(stats.Cost) > 0 {
		io.Pf("final cost       = %g\n", stats.Cost[len(stats.Cost)-1])
	}
	for _, w := range stats.Warnings {
		io.PfYel("warning: %s\n", w)
	}
	io.PfGreen("\nfinal state X[N] = %v (target %v)\n", store.X[len(store.X)-1], xf)
}

func diag(d ...float64) *la.Matrix {
	m := la.NewMatrix(len(d), len(d))
	for i, v := range d {
		m.Set(i, i, v)
	}
	return m
}
