package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eisodos-svm/eisodos-bench/internal/config"
	"github.com/eisodos-svm/eisodos-bench/internal/plan"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check benchmark declarations without building anything",
		Long: "Load a crate's benchmark declarations and report everything the run " +
			"command would skip or degrade: missing functions, unknown entrypoint " +
			"templates, unserializable payloads, invalid account counts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			crateDir := resolveUnder(cfg.Workspace, flagCrate)
			benches, err := config.LoadBenchmarks(filepath.Join(crateDir, BenchmarksFileName))
			if err != nil {
				return err
			}
			templatesDir := resolveUnder(cfg.Workspace, cfg.TemplatesDir)

			errors, warnings := 0, 0
			seen := make(map[string]bool, len(benches))
			for i, b := range benches {
				label := b.ID
				if label == "" {
					label = fmt.Sprintf("#%d", i)
				}
				findings := lintBenchmark(b, seen, templatesDir)
				if len(findings) == 0 {
					fmt.Printf("  %s: ok\n", label)
					continue
				}
				fmt.Printf("  %s:\n", label)
				for _, f := range findings {
					fmt.Printf("    %s: %s\n", f.level, f.msg)
					if f.level == lintError {
						errors++
					} else {
						warnings++
					}
				}
			}

			fmt.Printf("%d benchmarks, %d errors, %d warnings\n", len(benches), errors, warnings)
			if errors > 0 {
				return fmt.Errorf("%d benchmark declarations would be skipped", errors)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flagCrate, "crate", "", "path to the benchmarked crate, relative to the workspace")
	cmd.MarkFlagRequired("crate")
	return cmd
}

const (
	lintError   = "error"
	lintWarning = "warning"
)

type lintFinding struct {
	level string
	msg   string
}

// lintBenchmark reports what the run command would skip (errors) or
// degrade (warnings) for one declaration. seen carries ids across calls
// for duplicate detection.
func lintBenchmark(b config.BenchmarkSpec, seen map[string]bool, templatesDir string) []lintFinding {
	var findings []lintFinding
	fail := func(format string, args ...any) {
		findings = append(findings, lintFinding{lintError, fmt.Sprintf(format, args...)})
	}
	warn := func(format string, args ...any) {
		findings = append(findings, lintFinding{lintWarning, fmt.Sprintf(format, args...)})
	}

	if b.ID == "" {
		fail("missing id")
	} else if seen[b.ID] {
		fail("duplicate id %q", b.ID)
	} else {
		seen[b.ID] = true
	}

	if b.Function == "" {
		fail("missing function")
	} else if _, err := plan.ParseFunctionPath(b.Function); err != nil {
		fail("function %q: %v", b.Function, err)
	}

	if len(b.Entrypoints) == 0 {
		fail("no entrypoints declared")
	}
	declared := make(map[string]bool, len(b.Entrypoints))
	for _, entry := range b.Entrypoints {
		if entry == "" {
			fail("empty entrypoint")
			continue
		}
		if declared[entry] {
			fail("repeated entrypoint %q", entry)
			continue
		}
		declared[entry] = true
		stem := strings.ReplaceAll(entry, "-", "_")
		for _, name := range []string{"template." + stem + ".cargo.toml", "template." + stem + ".lib.rs"} {
			if _, err := os.Stat(filepath.Join(templatesDir, name)); err != nil {
				fail("entrypoint %q: template %s not found", entry, name)
			}
		}
	}

	for _, sel := range b.Features {
		if !declared[sel.Entrypoint] {
			warn("features declared for unlisted entrypoint %q", sel.Entrypoint)
		}
	}

	if b.Category != "" {
		if _, err := plan.ParseCategory(b.Category); err != nil {
			warn("unknown category %q, will infer from id", b.Category)
		}
	}

	if len(b.InstructionPayload) > 0 {
		if _, err := plan.EncodePayload(b.InstructionPayload); err != nil {
			warn("instruction payload will degrade to the sentinel byte: %v", err)
		}
	}
	for _, setup := range b.AccountSetups {
		switch n := setup.Count.(type) {
		case int64:
			if n < 1 || n > 255 {
				warn("account count %d out of range, run will be skipped", n)
			}
		case int:
			if n < 1 || n > 255 {
				warn("account count %d out of range, run will be skipped", n)
			}
		default:
			warn("account count %v is not an integer, run will be skipped", setup.Count)
		}
	}

	return findings
}
