// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inp implements the input data (options and problem description)
// consumed by the trajectory optimization solver.
package inp

import (
	"encoding/json"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
)

// BpRegType selects the backward-pass regularization scheme of §4.1.
type BpRegType string

const (
	BpRegControl BpRegType = "control" // Quu_reg = Quu + ρ·I
	BpRegState   BpRegType = "state"   // Quu_reg = Quu + ρ·fduᵀfdu
)

// OuterUpdateType selects the penalty-update scheme of §4.4.
type OuterUpdateType string

const (
	OuterUpdateDefault    OuterUpdateType = "default"    // μ ← min(μmax, γ·μ) uniformly
	OuterUpdateIndividual OuterUpdateType = "individual" // per-constraint fast/slow factor
)

// Options holds all tunable solver parameters, mirroring the flat,
// JSON-tagged style of gofem's inp.SolverData.
type Options struct {

	// inner-loop tolerances
	CostTolerance             float64 `json:"cost_tolerance"`
	CostIntermediateTolerance float64 `json:"cost_intermediate_tolerance"`
	GradientTolerance         float64 `json:"gradient_tolerance"`
	GradientIntermediateTolerance float64 `json:"gradient_intermediate_tolerance"`

	// outer-loop tolerance
	ConstraintTolerance float64 `json:"constraint_tolerance"`

	// iteration caps
	Iterations      int `json:"iterations"`       // inner loop cap
	IterationsOuter int `json:"iterations_outerloop"`

	// augmented Lagrangian penalty/multiplier parameters
	MuInitial float64 `json:"mu_initial"`
	MuMax     float64 `json:"mu_max"`
	Gamma     float64 `json:"gamma"`    // fast penalty growth factor
	GammaNo   float64 `json:"gamma_no"` // slow penalty growth factor
	Tau       float64 `json:"tau"`      // individual-update threshold

	LambdaMin float64 `json:"lambda_min"`
	LambdaMax float64 `json:"lambda_max"`

	// regularization (Tassa two-parameter schedule, §4.5)
	RhoInitial float64 `json:"rho_initial"`
	RhoMin     float64 `json:"rho_min"`
	RhoMax     float64 `json:"rho_max"`
	Phi        float64 `json:"phi"`

	// line search (§4.3)
	ZMin          float64 `json:"z_min"`
	ZMax          float64 `json:"z_max"`
	AlphaMin      float64 `json:"alpha_min"`
	Beta          float64 `json:"beta"` // step-halving factor
	MaxLineSearch int     `json:"max_line_search"`
	XMaxBound     float64 `json:"x_max_bound"`

	// error-recovery bounds (§7)
	MaxConsecutiveLineSearchFailures int `json:"max_consecutive_line_search_failures"`

	// scheme selectors
	BpRegType       BpRegType       `json:"bp_reg_type"`
	OuterLoopUpdate OuterUpdateType `json:"outer_loop_update"`
	SquareRoot      bool            `json:"square_root"`
	SecondOrderDual bool            `json:"second_order_dual"` // §4.4, off by default

	// solver-mode flags
	UseStatic                  bool `json:"use_static"`
	MinimumTime                bool `json:"minimum_time"`
	Infeasible                 bool `json:"infeasible"`
	ResolveFeasible             bool `json:"resolve_feasible"`
	UnconstrainedOriginalProblem bool `json:"unconstrained_original_problem"`

	// observability only (§6)
	LivePlotting bool `json:"live_plotting"`
	Verbose      bool `json:"verbose"`
}

// DefaultOptions returns the solver's default parameter set.
func DefaultOptions() *Options {
	return &Options{
		CostTolerance:                  1e-4,
		CostIntermediateTolerance:      1e-3,
		GradientTolerance:              1e-5,
		GradientIntermediateTolerance:  1e-3,
		ConstraintTolerance:            1e-4,
		Iterations:                     300,
		IterationsOuter:                30,
		MuInitial:                      1.0,
		MuMax:                          1e8,
		Gamma:                          10.0,
		GammaNo:                        1.0,
		Tau:                            0.25,
		LambdaMin:                      -1e8,
		LambdaMax:                      1e8,
		RhoInitial:                     0.0,
		RhoMin:                         1e-8,
		RhoMax:                         1e8,
		Phi:                            1.6,
		ZMin:                           1e-8,
		ZMax:                           10.0,
		AlphaMin:                       1e-20,
		Beta:                           0.5,
		MaxLineSearch:                  11,
		XMaxBound:                      1e8,
		MaxConsecutiveLineSearchFailures: 3,
		BpRegType:                      BpRegControl,
		OuterLoopUpdate:                OuterUpdateDefault,
		SquareRoot:                     false,
		SecondOrderDual:                false,
	}
}

// Validate checks the option set for internal consistency. Configuration
// errors are the only errors this module surfaces as hard failures (§7);
// they are reported here, before the solve loop starts.
func (o *Options) Validate() error {
	if o.Iterations <= 0 {
		return errf("Options.Iterations must be positive, got %d", o.Iterations)
	}
	if o.IterationsOuter <= 0 {
		return errf("Options.IterationsOuter must be positive, got %d", o.IterationsOuter)
	}
	if o.MuInitial <= 0 || o.MuMax < o.MuInitial {
		return errf("Options: need 0 < mu_initial <= mu_max, got %g, %g", o.MuInitial, o.MuMax)
	}
	if o.Gamma <= 1 {
		return errf("Options.Gamma must be > 1, got %g", o.Gamma)
	}
	if o.GammaNo < 1 {
		return errf("Options.GammaNo must be >= 1, got %g", o.GammaNo)
	}
	if o.RhoMin <= 0 || o.RhoMax < o.RhoMin {
		return errf("Options: need 0 < rho_min <= rho_max, got %g, %g", o.RhoMin, o.RhoMax)
	}
	if o.Phi <= 1 {
		return errf("Options.Phi must be > 1, got %g", o.Phi)
	}
	if o.Beta <= 0 || o.Beta >= 1 {
		return errf("Options.Beta must be in (0,1), got %g", o.Beta)
	}
	if o.ZMin >= o.ZMax {
		return errf("Options: need z_min < z_max, got %g, %g", o.ZMin, o.ZMax)
	}
	switch o.BpRegType {
	case BpRegControl, BpRegState:
	default:
		return errf("Options.BpRegType unknown: %q", o.BpRegType)
	}
	switch o.OuterLoopUpdate {
	case OuterUpdateDefault, OuterUpdateIndividual:
	default:
		return errf("Options.OuterLoopUpdate unknown: %q", o.OuterLoopUpdate)
	}
	return nil
}

// FromParams overrides option fields from a gosl/fun.Params list, mirroring
// the "prms" override convention used by gosl's num.NlSolver.Init and
// opt.LinIpm.Init.
func (o *Options) FromParams(prms fun.Params) {
	for _, p := range prms {
		switch p.N {
		case "cost_tolerance":
			o.CostTolerance = p.V
		case "gradient_tolerance":
			o.GradientTolerance = p.V
		case "constraint_tolerance":
			o.ConstraintTolerance = p.V
		case "iterations":
			o.Iterations = int(p.V)
		case "iterations_outerloop":
			o.IterationsOuter = int(p.V)
		case "mu_initial":
			o.MuInitial = p.V
		case "mu_max":
			o.MuMax = p.V
		case "gamma":
			o.Gamma = p.V
		case "gamma_no":
			o.GammaNo = p.V
		case "tau":
			o.Tau = p.V
		case "rho_initial":
			o.RhoInitial = p.V
		case "phi":
			o.Phi = p.V
		case "verbose":
			o.Verbose = p.V > 0
		default:
			chk.Panic("inp: unknown option parameter %q", p.N)
		}
	}
}

// ReadOptions loads an Options set from a JSON file using gosl/io, the way
// gofem's inp package loads its .sim files, falling back to defaults for
// zero-valued fields left unset in the file.
func ReadOptions(filepath string) (*Options, error) {
	o := DefaultOptions()
	b, err := io.ReadFile(filepath)
	if err != nil {
		return nil, errf("inp: cannot read options file %q: %v", filepath, err)
	}
	if err := json.Unmarshal(b, o); err != nil {
		return nil, errf("inp: cannot parse options file %q: %v", filepath, err)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func errf(format string, a ...interface{}) error {
	return &ConfigError{msg: io.Sf(format, a...)}
}

// ConfigError marks configuration errors, the only hard-failure error kind
// in this module (§7).
type ConfigError struct{ msg string }

func (e *ConfigError) Error() string { return e.msg }
