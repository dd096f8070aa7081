package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/eisodos-svm/eisodos-bench/internal/build"
	"github.com/eisodos-svm/eisodos-bench/internal/config"
	"github.com/eisodos-svm/eisodos-bench/internal/executor"
	"github.com/eisodos-svm/eisodos-bench/internal/gitops"
	"github.com/eisodos-svm/eisodos-bench/internal/project"
	"github.com/eisodos-svm/eisodos-bench/internal/report"
	"github.com/eisodos-svm/eisodos-bench/internal/result"
	"github.com/eisodos-svm/eisodos-bench/internal/runner"
)

// BenchmarksFileName is the declarations file expected inside the
// benchmarked crate.
const BenchmarksFileName = "eisodos_benchmarks.toml"

var (
	flagCrate      string
	flagBenchmark  string
	flagEntrypoint string
	flagParallel   int
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compile and execute the declared benchmarks",
		RunE:  runBenchmarks,
	}
	cmd.Flags().StringVar(&flagCrate, "crate", "", "path to the benchmarked crate, relative to the workspace")
	cmd.MarkFlagRequired("crate")
	cmd.Flags().StringVar(&flagBenchmark, "benchmark", "", "filter to a single benchmark id")
	cmd.Flags().StringVar(&flagEntrypoint, "entrypoint", "", "filter to a single entrypoint")
	cmd.Flags().IntVar(&flagParallel, "parallel", 1, "max concurrent units")
	cmd.Flags().StringVar(&flagFormat, "format", "table", "output format for the results table")
	return cmd
}

func runBenchmarks(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	crateDir := resolveUnder(cfg.Workspace, flagCrate)
	if info, err := os.Stat(crateDir); err != nil || !info.IsDir() {
		return fmt.Errorf("benchmarked crate directory not found: %s", crateDir)
	}

	benches, err := config.LoadBenchmarks(filepath.Join(crateDir, BenchmarksFileName))
	if err != nil {
		return err
	}

	crateName, err := project.PackageName(crateDir)
	if err != nil {
		return fmt.Errorf("reading benchmarked crate manifest: %w", err)
	}

	depsBlock, missing, err := project.WorkspaceDepsBlock(cfg.Workspace, cfg.WorkspaceDeps)
	if err != nil {
		return fmt.Errorf("extracting workspace dependencies: %w", err)
	}
	for _, dep := range missing {
		logger.Warn("dependency not declared in workspace manifest", "dependency", dep)
	}

	var toolchainEnv map[string]string
	if cfg.Toolchain.EnvFile != "" {
		toolchainEnv, err = config.ParseEnvFile(resolveUnder(cfg.Workspace, cfg.Toolchain.EnvFile))
		if err != nil {
			return fmt.Errorf("loading toolchain env: %w", err)
		}
	}

	units := runner.EnumerateUnits(benches, runner.Filter{
		Benchmark:  flagBenchmark,
		Entrypoint: flagEntrypoint,
	}, logger)
	if len(units) == 0 {
		fmt.Println("No benchmarks matched.")
		return nil
	}
	logger.Info("enumerated units", "count", len(units))

	proc := &runner.Processor{
		Synth: &project.Synthesizer{
			TemplatesDir: resolveUnder(cfg.Workspace, cfg.TemplatesDir),
			StagingDir:   resolveUnder(cfg.Workspace, cfg.StagingDir),
			CrateDir:     crateDir,
			CrateName:    crateName,
			DepsBlock:    depsBlock,
			Logger:       logger,
		},
		Builder: &build.Driver{
			BuildCmd:  cfg.Toolchain.BuildCmd,
			KeygenCmd: cfg.Toolchain.KeygenCmd,
			Image:     cfg.Toolchain.Image,
			Env:       toolchainEnv,
			Timeout:   cfg.BuildTimeout(),
			Logger:    logger,
		},
		Exec: &executor.Runner{
			Command: cfg.Executor.Command,
			WorkDir: cfg.Workspace,
			Env:     toolchainEnv,
			Timeout: cfg.RunTimeout(),
			Logger:  logger,
		},
		Logger: logger,
	}

	runDir, err := result.CreateRunDir(resolveUnder(cfg.Workspace, cfg.Results.Dir))
	if err != nil {
		return err
	}
	fmt.Printf("Run directory: %s\n", runDir)

	startedAt := time.Now()
	ctx := context.Background()
	var agg result.Aggregator
	var (
		mu      sync.Mutex
		results []*runner.UnitResult
	)
	collect := func(unit runner.Unit) error {
		res, err := proc.ProcessUnit(ctx, unit)
		if err != nil {
			return err
		}
		agg.Add(res.Records...)
		mu.Lock()
		results = append(results, res)
		mu.Unlock()
		return nil
	}

	if flagParallel > 1 {
		jobs := make([]runner.Job, 0, len(units))
		for _, unit := range units {
			jobs = append(jobs, func() error { return collect(unit) })
		}
		for _, err := range runner.RunPool(ctx, flagParallel, jobs) {
			logger.Warn("unit failed", "err", err)
		}
	} else {
		for _, unit := range units {
			if err := collect(unit); err != nil {
				logger.Warn("unit failed", "err", err)
			}
		}
	}

	records := agg.Records()
	if err := result.WriteRecords(runDir, records); err != nil {
		return err
	}
	if err := result.WriteRunMeta(runDir, runMeta(cfg.Workspace, startedAt, len(units), len(records), logger)); err != nil {
		logger.Warn("could not write run metadata", "err", err)
	}

	if len(records) > 0 {
		reportPath := resolveUnder(cfg.Workspace, cfg.Results.ReportPath)
		if err := writeReport(reportPath, records); err != nil {
			return err
		}
		fmt.Printf("Report generated: %s\n", reportPath)

		fmt.Println("\n--- Results ---")
		if err := report.Generate(records, flagFormat, os.Stdout); err != nil {
			return err
		}
	} else {
		fmt.Println("\nNo benchmark results to report.")
	}

	printSummary(os.Stdout, results)
	return nil
}

// resolveUnder anchors a relative path at root. Absolute paths pass
// through.
func resolveUnder(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// runMeta assembles the pass description. Git state is best-effort: a
// workspace outside version control still gets a meta file.
func runMeta(workspace string, startedAt time.Time, units, records int, logger *log.Logger) *result.RunMeta {
	meta := &result.RunMeta{
		StartedAt:        startedAt.UTC(),
		DurationS:        int(time.Since(startedAt).Seconds()),
		Workspace:        workspace,
		BenchmarkFilter:  flagBenchmark,
		EntrypointFilter: flagEntrypoint,
		Units:            units,
		Records:          records,
	}
	commit, err := gitops.HeadCommit(workspace)
	if err != nil {
		logger.Debug("workspace git state unavailable", "err", err)
		return meta
	}
	meta.Commit = commit
	if dirty, err := gitops.IsDirty(workspace); err == nil {
		meta.Dirty = dirty
	}
	return meta
}

func writeReport(path string, records []result.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := report.Generate(records, "markdown", f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(w io.Writer, results []*runner.UnitResult) {
	fmt.Fprintln(w, "\n=== Summary ===")
	var artifacts []string
	for _, res := range results {
		if res.Artifact.Path != "" {
			artifacts = append(artifacts, res.Artifact.Path)
		}
	}
	if len(artifacts) == 0 {
		fmt.Fprintln(w, "No artifacts were built successfully.")
		return
	}
	fmt.Fprintln(w, "Successfully built artifacts:")
	for _, path := range artifacts {
		fmt.Fprintf(w, " - %s\n", path)
	}
	fmt.Fprintln(w, "Note: Execution of these artifacts depends on the entrypoint environment (e.g., native, SVM).")
}
