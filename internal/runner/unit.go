// Package runner expands benchmark declarations into work units and
// drives each one through project synthesis, compilation, and executor
// runs.
package runner

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/eisodos-svm/eisodos-bench/internal/build"
	"github.com/eisodos-svm/eisodos-bench/internal/config"
	"github.com/eisodos-svm/eisodos-bench/internal/executor"
	"github.com/eisodos-svm/eisodos-bench/internal/plan"
	"github.com/eisodos-svm/eisodos-bench/internal/project"
	"github.com/eisodos-svm/eisodos-bench/internal/result"
)

// Unit is one benchmark compiled against one entrypoint, with the
// feature set declared for that pairing.
type Unit struct {
	Bench      config.BenchmarkSpec
	Entrypoint string
	Features   []string
	Function   plan.FunctionPath
	ProjectID  string
}

// Filter narrows enumeration. Empty fields match everything.
type Filter struct {
	Benchmark  string
	Entrypoint string
}

// EnumerateUnits expands declarations into the units to process.
// Defective entries are logged and skipped; a bad declaration never
// takes down the rest of the suite.
func EnumerateUnits(benches []config.BenchmarkSpec, filter Filter, logger *log.Logger) []Unit {
	var units []Unit
	seen := make(map[string]bool, len(benches))
	for _, bench := range benches {
		if bench.ID == "" {
			logger.Warn("skipping benchmark with empty id")
			continue
		}
		if seen[bench.ID] {
			logger.Warn("skipping duplicate benchmark id", "id", bench.ID)
			continue
		}
		seen[bench.ID] = true
		if filter.Benchmark != "" && bench.ID != filter.Benchmark {
			continue
		}
		if bench.Function == "" {
			logger.Warn("skipping benchmark without a function", "id", bench.ID)
			continue
		}
		fn, err := plan.ParseFunctionPath(bench.Function)
		if err != nil {
			logger.Warn("skipping benchmark with malformed function path",
				"id", bench.ID, "function", bench.Function, "err", err)
			continue
		}
		if len(bench.Entrypoints) == 0 {
			logger.Warn("skipping benchmark without entrypoints", "id", bench.ID)
			continue
		}
		// Deduplicate entrypoints: repeats would stage into the same
		// project directory and race.
		seenEntry := make(map[string]bool, len(bench.Entrypoints))
		for _, entry := range bench.Entrypoints {
			if entry == "" {
				logger.Warn("skipping empty entrypoint", "id", bench.ID)
				continue
			}
			if seenEntry[entry] {
				logger.Warn("skipping repeated entrypoint", "id", bench.ID, "entrypoint", entry)
				continue
			}
			seenEntry[entry] = true
			if filter.Entrypoint != "" && entry != filter.Entrypoint {
				continue
			}
			features := featuresFor(bench, entry)
			units = append(units, Unit{
				Bench:      bench,
				Entrypoint: entry,
				Features:   features,
				Function:   fn,
				ProjectID:  project.ProjectDirName(bench.ID, entry, features),
			})
		}
	}
	return units
}

// featuresFor returns the features declared for an entrypoint. The
// first matching selection wins.
func featuresFor(bench config.BenchmarkSpec, entrypoint string) []string {
	for _, sel := range bench.Features {
		if sel.Entrypoint == entrypoint {
			return sel.Features
		}
	}
	return nil
}

// Processor drives units through the full pipeline.
type Processor struct {
	Synth   *project.Synthesizer
	Builder *build.Driver
	Exec    *executor.Runner
	Logger  *log.Logger
}

// UnitResult is what one unit produced. Records is empty when the
// artifact could not be executed.
type UnitResult struct {
	Unit     Unit
	Artifact build.Artifact
	Records  []result.Record
}

// ProcessUnit synthesizes, builds, and runs one unit. Synthesis and
// build failures fail the unit; individual run failures are logged and
// the remaining runs continue. An artifact without a program id is
// returned without records since the executor cannot load it.
func (p *Processor) ProcessUnit(ctx context.Context, unit Unit) (*UnitResult, error) {
	p.Logger.Info("processing unit",
		"benchmark", unit.Bench.ID, "entrypoint", unit.Entrypoint, "features", unit.Features)

	projectDir, err := p.Synth.Synthesize(unit.ProjectID, unit.Entrypoint, unit.Features, unit.Function)
	if err != nil {
		return nil, fmt.Errorf("synthesizing %s: %w", unit.ProjectID, err)
	}

	artifact, err := p.Builder.Build(ctx, projectDir)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", unit.ProjectID, err)
	}

	unitResult := &UnitResult{Unit: unit, Artifact: *artifact}
	if artifact.ProgramID == "" {
		p.Logger.Warn("program id unavailable, skipping execution",
			"benchmark", unit.Bench.ID, "entrypoint", unit.Entrypoint, "artifact", artifact.Path)
		return unitResult, nil
	}

	for _, run := range plan.BuildRunPlan(unit.Bench, p.Logger) {
		seed := result.Record{
			ID:                unit.Bench.ID + run.Suffix,
			Entrypoint:        unit.Entrypoint,
			Features:          unit.Features,
			Artifact:          artifact.Path,
			ProgramID:         artifact.ProgramID,
			AccountsProcessed: run.NumAccounts,
		}
		records, err := p.Exec.Execute(ctx, artifact.Path, artifact.ProgramID, run, seed)
		if err != nil {
			p.Logger.Warn("run failed", "id", seed.ID, "err", err)
			continue
		}
		if len(records) == 0 {
			p.Logger.Warn("executor output contained no metrics", "id", seed.ID)
			continue
		}
		unitResult.Records = append(unitResult.Records, records...)
	}
	return unitResult, nil
}
