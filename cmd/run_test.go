package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eisodos-svm/eisodos-bench/internal/build"
	"github.com/eisodos-svm/eisodos-bench/internal/config"
	"github.com/eisodos-svm/eisodos-bench/internal/runner"
)

func TestResolveUnder(t *testing.T) {
	tests := []struct {
		name string
		root string
		path string
		want string
	}{
		{"relative joins", "/srv/eisodos", "programs/bench", "/srv/eisodos/programs/bench"},
		{"absolute passes through", "/srv/eisodos", "/opt/crate", "/opt/crate"},
		{"dot root", ".", "results", "results"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveUnder(tt.root, tt.path)
			if got != tt.want {
				t.Errorf("resolveUnder(%q, %q) = %q, want %q", tt.root, tt.path, got, tt.want)
			}
		})
	}
}

func TestPrintSummary(t *testing.T) {
	var buf strings.Builder
	printSummary(&buf, []*runner.UnitResult{
		{Artifact: build.Artifact{Path: "/tmp/a.so", ProgramID: "A"}},
		{Artifact: build.Artifact{}},
		{Artifact: build.Artifact{Path: "/tmp/b.so"}},
	})
	out := buf.String()
	if !strings.Contains(out, "=== Summary ===") {
		t.Error("missing summary header")
	}
	if !strings.Contains(out, " - /tmp/a.so") || !strings.Contains(out, " - /tmp/b.so") {
		t.Errorf("missing artifact lines:\n%s", out)
	}
	if !strings.Contains(out, "depends on the entrypoint environment") {
		t.Error("missing note line")
	}
}

func TestPrintSummaryEmpty(t *testing.T) {
	var buf strings.Builder
	printSummary(&buf, nil)
	if !strings.Contains(buf.String(), "No artifacts were built successfully.") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func lintTemplatesDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"template.pinocchio.cargo.toml", "template.pinocchio.lib.rs"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("stub"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLintBenchmark(t *testing.T) {
	templatesDir := lintTemplatesDir(t)

	tests := []struct {
		name     string
		bench    config.BenchmarkSpec
		errors   int
		warnings int
	}{
		{
			name: "clean",
			bench: config.BenchmarkSpec{
				ID: "ping", Function: "eisodos::bench_ping", Entrypoints: []string{"pinocchio"},
			},
		},
		{
			name:   "missing id and function",
			bench:  config.BenchmarkSpec{Entrypoints: []string{"pinocchio"}},
			errors: 2,
		},
		{
			name: "malformed function",
			bench: config.BenchmarkSpec{
				ID: "a", Function: "nocolons", Entrypoints: []string{"pinocchio"},
			},
			errors: 1,
		},
		{
			name:   "no entrypoints",
			bench:  config.BenchmarkSpec{ID: "b", Function: "x::y"},
			errors: 1,
		},
		{
			name: "unknown entrypoint template",
			bench: config.BenchmarkSpec{
				ID: "c", Function: "x::y", Entrypoints: []string{"unknown-sdk"},
			},
			errors: 2,
		},
		{
			name: "repeated entrypoint",
			bench: config.BenchmarkSpec{
				ID: "d", Function: "x::y", Entrypoints: []string{"pinocchio", "pinocchio"},
			},
			errors: 1,
		},
		{
			name: "unlisted feature entrypoint",
			bench: config.BenchmarkSpec{
				ID: "e", Function: "x::y", Entrypoints: []string{"pinocchio"},
				Features: []config.FeatureSelection{{Entrypoint: "agave", Features: []string{"std"}}},
			},
			warnings: 1,
		},
		{
			name: "unknown category",
			bench: config.BenchmarkSpec{
				ID: "f", Function: "x::y", Entrypoints: []string{"pinocchio"}, Category: "mystery",
			},
			warnings: 1,
		},
		{
			name: "payload without tag",
			bench: config.BenchmarkSpec{
				ID: "g", Function: "x::y", Entrypoints: []string{"pinocchio"},
				InstructionPayload: map[string]any{"amount": int64(5)},
			},
			warnings: 1,
		},
		{
			name: "bad account counts",
			bench: config.BenchmarkSpec{
				ID: "h", Function: "x::y", Entrypoints: []string{"pinocchio"},
				AccountSetups: []config.AccountSetup{
					{Count: int64(0)}, {Count: "eight"}, {Count: int64(3)},
				},
			},
			warnings: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := lintBenchmark(tt.bench, make(map[string]bool), templatesDir)
			errors, warnings := 0, 0
			for _, f := range findings {
				if f.level == lintError {
					errors++
				} else {
					warnings++
				}
			}
			if errors != tt.errors || warnings != tt.warnings {
				t.Errorf("got %d errors %d warnings, want %d and %d: %+v",
					errors, warnings, tt.errors, tt.warnings, findings)
			}
		})
	}
}

func TestLintBenchmarkDuplicateID(t *testing.T) {
	templatesDir := lintTemplatesDir(t)
	seen := make(map[string]bool)
	bench := config.BenchmarkSpec{ID: "ping", Function: "x::y", Entrypoints: []string{"pinocchio"}}

	if findings := lintBenchmark(bench, seen, templatesDir); len(findings) != 0 {
		t.Fatalf("first declaration should be clean, got %+v", findings)
	}
	findings := lintBenchmark(bench, seen, templatesDir)
	if len(findings) != 1 || findings[0].level != lintError {
		t.Errorf("expected one duplicate-id error, got %+v", findings)
	}
}
