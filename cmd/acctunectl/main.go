package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"acctune/internal/config"
	"acctune/internal/logging"
	"acctune/pkg/acctune"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "tune":
		return runTune(ctx, args[1:])
	case "methods":
		return runMethods(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "results":
		return runResults(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runTune(ctx context.Context, args []string) error {
	opts := config.Defaults()

	fs := flag.NewFlagSet("tune", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file; flags given here override it")
	fs.StringVar(&opts.Executable, "executable", opts.Executable, "path of the executable to benchmark")
	fs.StringVar(&opts.CompileCommand, "compile-command", "", "compile command template with {source}, {num_gangs} and {vector_length} placeholders")
	fs.StringVar(&opts.SearchMethod, "search-method", opts.SearchMethod, "search method: "+strings.Join(acctune.Methods(), "|"))
	fs.BoolVar(&opts.UseHeuristic, "use-heuristic", false, "probe both dimensions first and skip tuning ones that do not matter")
	fs.IntVar(&opts.Repetitions, "repetitions", opts.Repetitions, "times to run the executable per point")
	fs.StringVar(&opts.TimePattern, "time-regexp", opts.TimePattern, "regexp matching the timing in the program output")
	fs.BoolVar(&opts.KernelTiming, "kernel-timing", false, "compile with -ta=nvidia,time and scrape the accelerator profile")
	fs.BoolVar(&opts.IgnoreExit, "ignore-exit", false, "keep timings from runs with a nonzero exit status")
	fs.IntVar(&opts.NumGangsMin, "num-gangs-min", opts.NumGangsMin, "minimum num_gangs")
	fs.IntVar(&opts.NumGangsMax, "num-gangs-max", opts.NumGangsMax, "maximum num_gangs")
	fs.IntVar(&opts.VectorLengthMin, "vector-length-min", opts.VectorLengthMin, "minimum vector_length")
	fs.IntVar(&opts.VectorLengthMax, "vector-length-max", opts.VectorLengthMax, "maximum vector_length")
	fs.StringVar(&opts.WriteCSV, "write-csv", "", "write every result to this CSV file")
	fs.StringVar(&opts.StoreBackend, "store", opts.StoreBackend, "store backend: memory|sqlite")
	fs.StringVar(&opts.StorePath, "db-path", "acctune.db", "sqlite database path")
	fs.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "log level: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *configPath != "" {
		// Reload over the file, then reapply the explicit flags so the
		// command line wins.
		fileOpts := config.Defaults()
		if err := config.LoadFile(*configPath, &fileOpts); err != nil {
			return err
		}
		merged := fileOpts
		fs.Visit(func(f *flag.Flag) {
			applyFlag(&merged, &opts, f.Name)
		})
		opts = merged
	}

	if fs.NArg() > 0 {
		opts.Source = fs.Arg(0)
	}

	log := logging.New(opts.LogLevel, os.Stderr)
	client, err := acctune.New(opts.StoreBackend, opts.StorePath, log)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Tune(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Printf("run %s finished: best %s after %d points\n",
		summary.RunID, summary.Best.String(), summary.PointsTested)
	return nil
}

// applyFlag copies one explicitly-set flag value from src onto dst.
func applyFlag(dst, src *config.Options, name string) {
	switch name {
	case "executable":
		dst.Executable = src.Executable
	case "compile-command":
		dst.CompileCommand = src.CompileCommand
	case "search-method":
		dst.SearchMethod = src.SearchMethod
	case "use-heuristic":
		dst.UseHeuristic = src.UseHeuristic
	case "repetitions":
		dst.Repetitions = src.Repetitions
	case "time-regexp":
		dst.TimePattern = src.TimePattern
	case "kernel-timing":
		dst.KernelTiming = src.KernelTiming
	case "ignore-exit":
		dst.IgnoreExit = src.IgnoreExit
	case "num-gangs-min":
		dst.NumGangsMin = src.NumGangsMin
	case "num-gangs-max":
		dst.NumGangsMax = src.NumGangsMax
	case "vector-length-min":
		dst.VectorLengthMin = src.VectorLengthMin
	case "vector-length-max":
		dst.VectorLengthMax = src.VectorLengthMax
	case "write-csv":
		dst.WriteCSV = src.WriteCSV
	case "store":
		dst.StoreBackend = src.StoreBackend
	case "db-path":
		dst.StorePath = src.StorePath
	case "log-level":
		dst.LogLevel = src.LogLevel
	}
}

func runMethods(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("methods", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, m := range acctune.Methods() {
		fmt.Println(m)
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	storeBackend := fs.String("store", "sqlite", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "acctune.db", "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return fmt.Errorf("limit must be > 0")
	}

	client, err := acctune.New(*storeBackend, *dbPath, logging.New("warn", os.Stderr))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, *limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		return json.NewEncoder(os.Stdout).Encode(runs)
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  method=%s repetitions=%d\n",
			r.RunID, r.CreatedAtUTC, r.SearchMethod, r.Repetitions)
	}
	return nil
}

func runResults(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("results", flag.ContinueOnError)
	runID := fs.String("run", "", "run ID to show results for")
	storeBackend := fs.String("store", "sqlite", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "acctune.db", "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit results as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return fmt.Errorf("a -run ID is required")
	}

	client, err := acctune.New(*storeBackend, *dbPath, logging.New("warn", os.Stderr))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	results, err := client.Results(ctx, *runID)
	if err != nil {
		return err
	}
	if *jsonOut {
		return json.NewEncoder(os.Stdout).Encode(results)
	}
	for _, r := range results {
		fmt.Println(r.String())
	}
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: acctunectl <tune|methods|runs|results> [flags]", msg)
}
