// Package config holds the tuning run configuration: what to compile
// and execute, how to search, and where to write results. Options can
// come from CLI flags, a YAML file, or both, with flags winning.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default PGI compilation commands. The kernel timing variant asks the
// runtime to print its accelerator profile so timings can be scraped
// without instrumenting the program.
const (
	PGCCCompile = "pgcc -acc -DNUM_GANGS={num_gangs} " +
		"-DVECTOR_LENGTH={vector_length} {source}"
	PGCCCompileKernelTiming = "pgcc -acc -DNUM_GANGS={num_gangs} " +
		"-DVECTOR_LENGTH={vector_length} -ta=nvidia,time {source}"
)

// DefaultTimePattern matches lines like "time=1.234" or "Time: 1.234"
// in the program's output. Case folding is applied by the caller.
const DefaultTimePattern = `(?:time)[=:\s]*([\d.]+)`

// Options configures a single tuning run.
type Options struct {
	// Source is the file under test: a C source to compile and run, or a
	// CSV dataset of prior measurements to replay.
	Source string `yaml:"source"`

	Executable     string `yaml:"executable"`
	CompileCommand string `yaml:"compile_command"`
	SearchMethod   string `yaml:"search_method"`
	UseHeuristic   bool   `yaml:"use_heuristic"`
	Repetitions    int    `yaml:"repetitions"`
	TimePattern    string `yaml:"time_regexp"`
	KernelTiming   bool   `yaml:"kernel_timing"`
	IgnoreExit     bool   `yaml:"ignore_exit"`

	NumGangsMin     int `yaml:"num_gangs_min"`
	NumGangsMax     int `yaml:"num_gangs_max"`
	VectorLengthMin int `yaml:"vector_length_min"`
	VectorLengthMax int `yaml:"vector_length_max"`

	WriteCSV string `yaml:"write_csv"`

	StoreBackend string `yaml:"store_backend"`
	StorePath    string `yaml:"store_path"`

	LogLevel string `yaml:"log_level"`
}

// Defaults returns the baseline options for a run. The compile command
// is left empty here; Normalize picks the right PGI default once the
// kernel timing choice is known.
func Defaults() Options {
	return Options{
		Executable:      "./a.out",
		SearchMethod:    "nelder-mead",
		Repetitions:     10,
		TimePattern:     DefaultTimePattern,
		NumGangsMin:     2,
		NumGangsMax:     1024,
		VectorLengthMin: 2,
		VectorLengthMax: 1024,
		StoreBackend:    "memory",
		LogLevel:        "info",
	}
}

// LoadFile overlays YAML settings from path onto opts. Fields absent
// from the file keep their current values.
func LoadFile(path string, opts *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Replay reports whether the source is a recorded dataset rather than a
// program to compile.
func (o *Options) Replay() bool {
	return strings.HasSuffix(strings.ToLower(o.Source), ".csv")
}

// Normalize fills derived defaults that depend on other fields.
func (o *Options) Normalize() {
	if o.CompileCommand == "" {
		if o.KernelTiming {
			o.CompileCommand = PGCCCompileKernelTiming
		} else {
			o.CompileCommand = PGCCCompile
		}
	}
}

// Validate checks the options against knownMethod, which reports
// whether a search method identifier is recognized. It must run before
// Normalize, while an unset compile command is still distinguishable
// from the default.
func (o *Options) Validate(knownMethod func(string) bool) error {
	if o.Source == "" && o.CompileCommand == "" {
		return fmt.Errorf("a source file, dataset, or compile command is required")
	}
	if o.Source != "" && o.CompileCommand != "" {
		return fmt.Errorf("source and compile command are mutually exclusive")
	}
	if o.Repetitions <= 0 {
		return fmt.Errorf("repetitions must be positive, got %d", o.Repetitions)
	}
	if !knownMethod(o.SearchMethod) {
		return fmt.Errorf("unknown search method: %s", o.SearchMethod)
	}
	if o.NumGangsMin <= 0 || o.VectorLengthMin <= 0 {
		return fmt.Errorf("num_gangs and vector_length minimums must be positive")
	}
	if o.NumGangsMax < o.NumGangsMin {
		return fmt.Errorf("num_gangs_max %d below num_gangs_min %d", o.NumGangsMax, o.NumGangsMin)
	}
	if o.VectorLengthMax < o.VectorLengthMin {
		return fmt.Errorf("vector_length_max %d below vector_length_min %d", o.VectorLengthMax, o.VectorLengthMin)
	}
	if !o.Replay() && o.Executable == "" {
		return fmt.Errorf("an executable path is required when compiling")
	}
	return nil
}
