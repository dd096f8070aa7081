//go:build integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/eisodos-svm/eisodos-bench/internal/build"
	"github.com/eisodos-svm/eisodos-bench/internal/config"
	"github.com/eisodos-svm/eisodos-bench/internal/executor"
	"github.com/eisodos-svm/eisodos-bench/internal/project"
	"github.com/eisodos-svm/eisodos-bench/internal/report"
	"github.com/eisodos-svm/eisodos-bench/internal/result"
	"github.com/eisodos-svm/eisodos-bench/internal/runner"
)

const fixtureProgramID = "FixtureProgram11111111111111111111111111111"

// createFixtureWorkspace lays out a cargo workspace with one
// benchmarked crate, entrypoint templates, and stub toolchain binaries,
// so the whole pipeline runs without Rust installed.
func createFixtureWorkspace(t *testing.T) (string, *config.Config) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub toolchain scripts require a POSIX shell")
	}
	base := t.TempDir()

	write := func(rel, content string, mode os.FileMode) {
		path := filepath.Join(base, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), mode); err != nil {
			t.Fatal(err)
		}
	}

	write("Cargo.toml", `[workspace]
members = ["programs/*"]

[workspace.dependencies]
pinocchio = { version = "0.8", default-features = false }
solana-program = "2.1"
solana-program-error = "2.1"
`, 0o644)

	write("programs/fixtures/Cargo.toml", `[package]
name = "eisodos-bench-fixtures"
version = "0.1.0"
edition = "2021"
`, 0o644)
	write("programs/fixtures/src/lib.rs", "pub mod benches;\n", 0o644)
	write("programs/fixtures/eisodos_benchmarks.toml", `[[benchmark]]
id = "ping"
function = "fixtures::benches::bench_ping"
entrypoints = ["pinocchio"]

[[benchmark]]
id = "account_read"
function = "fixtures::benches::bench_account_read"
entrypoints = ["pinocchio"]

[[benchmark.account_setups]]
count = 1

[[benchmark.account_setups]]
count = 8
`, 0o644)

	write("templates/template.pinocchio.cargo.toml", `[package]
name = "%%BENCH_ID%%"
version = "0.0.0"
edition = "2021"

%%WORKSPACE_DEPENDENCIES_BLOCK%%

[dependencies]
%%CRATE_NAME%% = { path = "%%BENCHED_CRATE_COPY_DIR_NAME%%", features = [%%CRATE_FEATURES%%] }
%%ENTRYPOINT_SDK_DEPENDENCY_LINE%%
`, 0o644)
	write("templates/template.pinocchio.lib.rs",
		"use %%RUST_IMPORT_CRATE_NAME%%::%%BENCHMARK_FUNCTION_MODULE%%::%%BENCHMARK_FUNCTION_NAME%%;\n", 0o644)

	write("bin/fake-build-sbf", `#!/bin/sh
name=$(sed -n 's/^name = "\(.*\)"$/\1/p' Cargo.toml | head -1)
stem=$(echo "$name" | tr '-' '_')
mkdir -p target/deploy
touch "target/deploy/$stem.so"
echo '[7,7,7]' > "target/deploy/$stem-keypair.json"
`, 0o755)
	write("bin/fake-keygen", "#!/bin/sh\necho "+fixtureProgramID+"\n", 0o755)
	write("bin/fake-executor", `#!/bin/sh
echo '--- Benchmark Metrics ---'
echo 'BenchmarkName: fixture'
echo 'MedianComputeUnits: 42'
echo '--- End Metrics ---'
`, 0o755)

	cfg, err := config.Load(filepath.Join(base, "no-such-config.yaml"))
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}
	cfg.Workspace = base
	cfg.TemplatesDir = "templates"
	cfg.StagingDir = "staging"
	cfg.Toolchain.BuildCmd = filepath.Join(base, "bin", "fake-build-sbf")
	cfg.Toolchain.KeygenCmd = filepath.Join(base, "bin", "fake-keygen")
	cfg.Executor.Command = []string{filepath.Join(base, "bin", "fake-executor")}
	cfg.Results.Dir = "results"
	return base, cfg
}

func TestPipelineIntegration(t *testing.T) {
	base, cfg := createFixtureWorkspace(t)
	logger := log.New(os.Stderr)
	logger.SetLevel(log.ErrorLevel)

	crateDir := filepath.Join(base, "programs", "fixtures")
	benches, err := config.LoadBenchmarks(filepath.Join(crateDir, "eisodos_benchmarks.toml"))
	if err != nil {
		t.Fatalf("LoadBenchmarks: %v", err)
	}
	crateName, err := project.PackageName(crateDir)
	if err != nil {
		t.Fatalf("PackageName: %v", err)
	}
	if crateName != "eisodos-bench-fixtures" {
		t.Fatalf("crate name = %q", crateName)
	}
	depsBlock, missing, err := project.WorkspaceDepsBlock(cfg.Workspace, cfg.WorkspaceDeps)
	if err != nil {
		t.Fatalf("WorkspaceDepsBlock: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("unexpected missing deps %v", missing)
	}

	units := runner.EnumerateUnits(benches, runner.Filter{}, logger)
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}

	proc := &runner.Processor{
		Synth: &project.Synthesizer{
			TemplatesDir: filepath.Join(base, cfg.TemplatesDir),
			StagingDir:   filepath.Join(base, cfg.StagingDir),
			CrateDir:     crateDir,
			CrateName:    crateName,
			DepsBlock:    depsBlock,
			Logger:       logger,
		},
		Builder: &build.Driver{
			BuildCmd:  cfg.Toolchain.BuildCmd,
			KeygenCmd: cfg.Toolchain.KeygenCmd,
			Timeout:   cfg.BuildTimeout(),
			Logger:    logger,
		},
		Exec: &executor.Runner{
			Command: cfg.Executor.Command,
			WorkDir: cfg.Workspace,
			Timeout: cfg.RunTimeout(),
			Logger:  logger,
		},
		Logger: logger,
	}

	ctx := context.Background()
	var agg result.Aggregator
	for _, unit := range units {
		res, err := proc.ProcessUnit(ctx, unit)
		if err != nil {
			t.Fatalf("ProcessUnit(%s): %v", unit.ProjectID, err)
		}
		if res.Artifact.ProgramID != fixtureProgramID {
			t.Errorf("program id = %q", res.Artifact.ProgramID)
		}
		agg.Add(res.Records...)
	}

	records := agg.Records()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(records), records)
	}
	byID := make(map[string]result.Record, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}
	for _, id := range []string{"ping_default_run", "account_read_accounts_1", "account_read_accounts_8"} {
		if _, ok := byID[id]; !ok {
			t.Errorf("missing record %q", id)
		}
	}
	if rec := byID["account_read_accounts_8"]; rec.AccountsProcessed != 8 {
		t.Errorf("accounts processed = %d, want 8", rec.AccountsProcessed)
	}
	if v, ok := byID["ping_default_run"].Metrics["MedianComputeUnits"]; !ok || v.Int != 42 {
		t.Errorf("unexpected metrics %+v", byID["ping_default_run"].Metrics)
	}

	runDir, err := result.CreateRunDir(filepath.Join(base, cfg.Results.Dir))
	if err != nil {
		t.Fatalf("CreateRunDir: %v", err)
	}
	if err := result.WriteRecords(runDir, records); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}
	reread, err := result.ReadRecords(filepath.Join(base, cfg.Results.Dir, "latest", "records.json"))
	if err != nil {
		t.Fatalf("ReadRecords via latest: %v", err)
	}
	if len(reread) != len(records) {
		t.Errorf("round trip lost records: %d != %d", len(reread), len(records))
	}

	var md strings.Builder
	if err := report.Generate(records, "markdown", &md); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(md.String(), "# Eisodos Benchmark Results") {
		t.Errorf("unexpected report header:\n%s", md.String())
	}
	if !strings.Contains(md.String(), "ping_default_run") {
		t.Error("report missing ping row")
	}

	stagedManifest := filepath.Join(base, cfg.StagingDir, "ping_pinocchio_nofeatures", "Cargo.toml")
	data, err := os.ReadFile(stagedManifest)
	if err != nil {
		t.Fatalf("reading staged manifest: %v", err)
	}
	if !strings.Contains(string(data), "[workspace.dependencies]") {
		t.Error("staged manifest missing workspace dependencies block")
	}
	if !strings.Contains(string(data), `eisodos-bench-fixtures = { path = "benched_crate_src"`) {
		t.Errorf("staged manifest missing crate dependency:\n%s", data)
	}
}
