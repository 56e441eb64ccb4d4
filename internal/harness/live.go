package harness

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"acctune/internal/model"
	"acctune/internal/stats"
)

// kernelTimingRE matches the PGI accelerator profile block emitted when a
// program is compiled with -ta=nvidia,time. The captured value is in
// microseconds with digit-group commas.
var kernelTimingRE = regexp.MustCompile(`Accelerator Kernel Timing data\n` +
	`(?:[^\n]*\n){2}` +
	`\s*time\(us\): ([\d,]+)`)

// CommandRunner abstracts shelling out so the harness is testable without
// spawning processes. Run returns the command's combined output and exit
// code; err is reserved for failures to launch at all.
type CommandRunner interface {
	Run(ctx context.Context, command string, extraEnv []string) (output string, exitCode int, err error)
}

// ShellRunner runs commands through `sh -c` with the parent environment
// preserved (PATH and compiler licensing variables matter here).
type ShellRunner struct{}

func (ShellRunner) Run(ctx context.Context, command string, extraEnv []string) (string, int, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Env = append(os.Environ(), extraEnv...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), exitErr.ExitCode(), nil
		}
		return string(out), 0, err
	}
	return string(out), 0, nil
}

// LiveRunner measures points by compiling and running the target program.
type LiveRunner struct {
	// CompileCommand is a template with {source}, {num_gangs} and
	// {vector_length} placeholders.
	CompileCommand string
	Source         string
	Executable     string
	TimePattern    *regexp.Regexp
	KernelTiming   bool
	IgnoreExit     bool

	Commands  CommandRunner
	Collector RunCollector
	Log       *slog.Logger
}

func (l *LiveRunner) Test(ctx context.Context, p model.Point, repetitions int) model.Result {
	command := strings.NewReplacer(
		"{source}", l.Source,
		"{num_gangs}", strconv.Itoa(p.NumGangs),
		"{vector_length}", strconv.Itoa(p.VectorLength),
	).Replace(l.CompileCommand)

	// NUM_GANGS and VECTOR_LENGTH are exported so Makefile-driven builds
	// can pick the parameters up without template substitution.
	env := []string{
		"NUM_GANGS=" + strconv.Itoa(p.NumGangs),
		"VECTOR_LENGTH=" + strconv.Itoa(p.VectorLength),
	}

	l.Log.Debug("compiling", "point", p.String(), "command", command)
	output, code, err := l.Commands.Run(ctx, command, env)
	if err != nil {
		l.Log.Error("compile command could not run", "point", p.String(), "error", err)
		return model.Failed(p, model.FailureCompileFailed, err.Error())
	}
	if code != 0 {
		l.Log.Error("compile command failed, skipping this point",
			"point", p.String(), "exit_code", code, "output", output)
		return model.Failed(p, model.FailureCompileFailed, output)
	}

	var timings []float64
	for i := 0; i < repetitions; i++ {
		l.Log.Debug("running", "point", p.String(), "executable", l.Executable)
		output, code, err := l.Commands.Run(ctx, l.Executable, nil)
		if err != nil {
			l.Log.Error("executable could not run", "point", p.String(), "error", err)
			return model.Failed(p, model.FailureExecuteFailed, err.Error())
		}
		if code != 0 && !l.IgnoreExit {
			l.Log.Error("executable failed", "point", p.String(),
				"executable", l.Executable, "exit_code", code)
			// A crashing program is assumed to crash every time; the
			// remaining repetitions are abandoned.
			return model.Failed(p, model.FailureExecuteFailed, output)
		}

		seconds, failure := l.extractTiming(output)
		if failure != model.FailureNone {
			l.Log.Error("timing data missing from output", "point", p.String(),
				"executable", l.Executable, "output", output)
			return model.Failed(p, failure, output)
		}

		l.Log.Debug("timed repetition", "point", p.String(), "seconds", seconds)
		timings = append(timings, seconds)
		if l.Collector != nil {
			l.Collector.LogRun(p, seconds)
		}
	}

	if len(timings) == 0 {
		return model.Failed(p, model.FailureNoPointsTested, "")
	}
	mean, err := stats.Mean(timings)
	if err != nil {
		return model.Failed(p, model.FailureNoPointsTested, err.Error())
	}
	stdev, err := stats.SampleStdDev(timings)
	if err != nil {
		return model.Failed(p, model.FailureNoPointsTested, err.Error())
	}
	l.Log.Info("point measured", "point", p.String(), "average", mean, "stdev", stdev)
	return model.Success(p, mean, stdev)
}

func (l *LiveRunner) extractTiming(output string) (float64, model.FailureKind) {
	if l.KernelTiming {
		match := kernelTimingRE.FindStringSubmatch(output)
		if match == nil {
			return 0, model.FailureKernelTimingMissing
		}
		micros, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
		if err != nil {
			return 0, model.FailureKernelTimingMissing
		}
		return micros * 1e-6, model.FailureNone
	}

	match := l.TimePattern.FindStringSubmatch(output)
	if match == nil || len(match) < 2 {
		return 0, model.FailureTimingDataMissing
	}
	seconds, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, model.FailureTimingDataMissing
	}
	return seconds, model.FailureNone
}

var _ CommandRunner = ShellRunner{}
