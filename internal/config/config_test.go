package config

import (
	"os"
	"path/filepath"
	"testing"
)

func knownMethods(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestDefaultsAreValidWithSource(t *testing.T) {
	opts := Defaults()
	opts.Source = "jacobi.c"
	if err := opts.Validate(knownMethods("nelder-mead")); err != nil {
		t.Fatalf("expected valid defaults, got: %v", err)
	}
	opts.Normalize()
	if opts.CompileCommand != PGCCCompile {
		t.Fatalf("expected default compile command, got %q", opts.CompileCommand)
	}
}

func TestValidateRequiresExactlyOneOfSourceAndCommand(t *testing.T) {
	known := knownMethods("nelder-mead")

	opts := Defaults()
	if err := opts.Validate(known); err == nil {
		t.Fatal("expected error with neither source nor compile command")
	}

	opts = Defaults()
	opts.CompileCommand = "make bench"
	if err := opts.Validate(known); err != nil {
		t.Fatalf("compile command alone should validate: %v", err)
	}

	opts = Defaults()
	opts.Source = "jacobi.c"
	opts.CompileCommand = "make bench"
	if err := opts.Validate(known); err == nil {
		t.Fatal("expected error with both source and compile command")
	}
}

func TestNormalizeKernelTimingCommand(t *testing.T) {
	opts := Defaults()
	opts.KernelTiming = true
	opts.Normalize()
	if opts.CompileCommand != PGCCCompileKernelTiming {
		t.Fatalf("expected kernel timing compile command, got %q", opts.CompileCommand)
	}
}

func TestNormalizeKeepsExplicitCommand(t *testing.T) {
	opts := Defaults()
	opts.CompileCommand = "make build"
	opts.KernelTiming = true
	opts.Normalize()
	if opts.CompileCommand != "make build" {
		t.Fatalf("explicit compile command overwritten: %q", opts.CompileCommand)
	}
}

func TestReplayDetection(t *testing.T) {
	opts := Options{Source: "results.CSV"}
	if !opts.Replay() {
		t.Fatal("expected .csv source to replay")
	}
	opts.Source = "jacobi.c"
	if opts.Replay() {
		t.Fatal("expected .c source to compile")
	}
}

func TestValidateRejectsBadOptions(t *testing.T) {
	known := knownMethods("nelder-mead")
	cases := []struct {
		name   string
		mutate func(*Options)
	}{
		{"missing source", func(o *Options) { o.Source = "" }},
		{"zero repetitions", func(o *Options) { o.Repetitions = 0 }},
		{"unknown method", func(o *Options) { o.SearchMethod = "random-walk" }},
		{"zero gang minimum", func(o *Options) { o.NumGangsMin = 0 }},
		{"inverted gang bounds", func(o *Options) { o.NumGangsMax = 1 }},
		{"inverted vector bounds", func(o *Options) { o.VectorLengthMax = 1 }},
		{"missing executable", func(o *Options) { o.Executable = "" }},
	}
	for _, tc := range cases {
		opts := Defaults()
		opts.Source = "jacobi.c"
		tc.mutate(&opts)
		if err := opts.Validate(known); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestValidateReplayNeedsNoExecutable(t *testing.T) {
	opts := Defaults()
	opts.Source = "history.csv"
	opts.Executable = ""
	if err := opts.Validate(knownMethods("nelder-mead")); err != nil {
		t.Fatalf("replay should not require an executable: %v", err)
	}
}

func TestLoadFileOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tune.yaml")
	content := `source: jacobi.c
search_method: exhaustive256
repetitions: 5
num_gangs_max: 512
kernel_timing: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	opts := Defaults()
	if err := LoadFile(path, &opts); err != nil {
		t.Fatalf("load: %v", err)
	}
	if opts.SearchMethod != "exhaustive256" || opts.Repetitions != 5 {
		t.Fatalf("unexpected overlay: %+v", opts)
	}
	if opts.NumGangsMax != 512 || opts.NumGangsMin != 2 {
		t.Fatalf("expected only listed fields replaced, got %+v", opts)
	}
	if !opts.KernelTiming {
		t.Fatal("expected kernel_timing set")
	}
}

func TestLoadFileErrors(t *testing.T) {
	opts := Defaults()
	if err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"), &opts); err == nil {
		t.Fatal("expected read error")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("::: not yaml"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := LoadFile(path, &opts); err == nil {
		t.Fatal("expected parse error")
	}
}
