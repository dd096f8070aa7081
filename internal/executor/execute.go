// Package executor invokes the benchmark executor binary for each
// planned run and extracts the metrics it reports.
package executor

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/eisodos-svm/eisodos-bench/internal/plan"
	"github.com/eisodos-svm/eisodos-bench/internal/result"
)

// Runner invokes the executor process. Command is the full invocation
// prefix (typically a cargo run command ending in "--"); the per-run
// arguments are appended to it.
type Runner struct {
	Command []string
	WorkDir string
	// Env entries are added to the executor process environment on top
	// of the inherited one.
	Env     map[string]string
	Timeout time.Duration
	Logger  *log.Logger
}

// Argv builds the full command line for one run: the configured prefix,
// the artifact and program identity, the hex instruction bytes, then
// one --account-spec tuple per templated account.
func (r *Runner) Argv(artifactPath, programID string, run plan.RunSpec) []string {
	argv := make([]string, 0, len(r.Command)+4+2*len(run.AccountSpecs))
	argv = append(argv, r.Command...)
	argv = append(argv, artifactPath, programID)
	argv = append(argv, "--instruction-data", hex.EncodeToString(run.InstructionData))
	for _, spec := range run.AccountSpecs {
		argv = append(argv, "--account-spec", spec.String())
	}
	return argv
}

// Execute performs one run and returns the records extracted from the
// executor's stdout. A non-zero exit, missing binary, or timeout fails
// just this run.
func (r *Runner) Execute(ctx context.Context, artifactPath, programID string, run plan.RunSpec, seed result.Record) ([]result.Record, error) {
	if len(r.Command) == 0 {
		return nil, fmt.Errorf("executor command not configured")
	}
	argv := r.Argv(artifactPath, programID, run)
	r.Logger.Info("executing run", "id", seed.ID, "accounts", run.NumAccounts,
		"instruction", hex.EncodeToString(run.InstructionData))
	r.Logger.Debug("executor command", "argv", strings.Join(argv, " "))

	runCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = r.WorkDir
	if len(r.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range r.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("executor timed out after %s", r.Timeout)
		}
		return nil, fmt.Errorf("executor failed: %s: %w", strings.TrimSpace(stderr.String()), err)
	}

	if stderr.Len() > 0 {
		r.Logger.Debug("executor stderr", "output", stderr.String())
	}
	return ParseMetrics(stdout.String(), seed), nil
}
