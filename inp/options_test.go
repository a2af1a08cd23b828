// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
)

func Test_default_options_valid(tst *testing.T) {

	chk.PrintTitle("default_options_valid")

	o := DefaultOptions()
	if err := o.Validate(); err != nil {
		tst.Errorf("default options must validate cleanly: %v", err)
	}
}

func Test_options_validate_rejects_bad_fields(tst *testing.T) {

	chk.PrintTitle("options_validate_rejects_bad_fields")

	cases := []func(*Options){
		func(o *Options) { o.Iterations = 0 },
		func(o *Options) { o.IterationsOuter = -1 },
		func(o *Options) { o.MuInitial = 0 },
		func(o *Options) { o.MuMax = 0.5; o.MuInitial = 1 },
		func(o *Options) { o.Gamma = 1 },
		func(o *Options) { o.GammaNo = 0.5 },
		func(o *Options) { o.RhoMin = -1 },
		func(o *Options) { o.Phi = 1 },
		func(o *Options) { o.Beta = 1.5 },
		func(o *Options) { o.ZMin = o.ZMax },
		func(o *Options) { o.BpRegType = "bogus" },
		func(o *Options) { o.OuterLoopUpdate = "bogus" },
	}
	for i, mutate := range cases {
		o := DefaultOptions()
		mutate(o)
		if err := o.Validate(); err == nil {
			tst.Errorf("case %d: expected validation error", i)
		}
	}
}

func Test_options_from_params(tst *testing.T) {

	chk.PrintTitle("options_from_params")

	o := DefaultOptions()
	prms := fun.Params{
		&fun.Prm{N: "cost_tolerance", V: 1e-6},
		&fun.Prm{N: "iterations", V: 50},
		&fun.Prm{N: "verbose", V: 1},
	}
	o.FromParams(prms)

	chk.Scalar(tst, "cost_tolerance", 1e-17, o.CostTolerance, 1e-6)
	if o.Iterations != 50 {
		tst.Errorf("Iterations = %d, want 50", o.Iterations)
	}
	if !o.Verbose {
		tst.Errorf("Verbose should be true after verbose=1 override")
	}
}

func Test_read_options_roundtrip(tst *testing.T) {

	chk.PrintTitle("read_options_roundtrip")

	dir := tst.TempDir()
	fn := filepath.Join(dir, "opts.json")
	body := `{"cost_tolerance": 0.002, "iterations": 77, "bp_reg_type": "state"}`
	if err := os.WriteFile(fn, []byte(body), 0644); err != nil {
		tst.Fatalf("cannot write fixture file: %v", err)
	}

	o, err := ReadOptions(fn)
	if err != nil {
		tst.Fatalf("ReadOptions failed: %v", err)
	}
	chk.Scalar(tst, "cost_tolerance", 1e-17, o.CostTolerance, 0.002)
	if o.Iterations != 77 {
		tst.Errorf("Iterations = %d, want 77", o.Iterations)
	}
	if o.BpRegType != BpRegState {
		tst.Errorf("BpRegType = %q, want %q", o.BpRegType, BpRegState)
	}
	// fields absent from the file fall back to the defaults seeded before unmarshal
	chk.Scalar(tst, "mu_max (default fallback)", 1e-17, o.MuMax, DefaultOptions().MuMax)
}

func Test_read_options_missing_file(tst *testing.T) {

	chk.PrintTitle("read_options_missing_file")

	_, err := ReadOptions(io.Sf("%s/does-not-exist.json", tst.TempDir()))
	if err == nil {
		tst.Errorf("expected an error reading a nonexistent options file")
	}
	if _, ok := err.(*ConfigError); !ok {
		tst.Errorf("expected a *ConfigError, got %T", err)
	}
}
