// Package build compiles synthesized projects with the SBF toolchain
// and recovers each artifact's on-chain identity.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/eisodos-svm/eisodos-bench/internal/project"
	"github.com/eisodos-svm/eisodos-bench/internal/sandbox"
)

// Driver runs the build toolchain. When Image is set the build command
// executes inside that container with the project mounted; identity
// recovery still happens on the host since it only reads the keypair
// file the build wrote into the mounted tree.
type Driver struct {
	BuildCmd  string
	KeygenCmd string
	Image     string
	// Env entries are added to the toolchain process environment on top
	// of the inherited one.
	Env     map[string]string
	Timeout time.Duration
	Logger  *log.Logger
}

// Artifact is one compiled program. ProgramID is empty when the build
// succeeded but identity recovery did not; callers must treat that as
// buildable-but-not-runnable.
type Artifact struct {
	Path      string
	ProgramID string
}

// Build compiles the project and locates its artifact. The expected
// filenames derive from the generated package name with hyphens folded
// to underscores, matching what the toolchain emits under
// target/deploy.
func (d *Driver) Build(ctx context.Context, projectDir string) (*Artifact, error) {
	pkg, err := project.PackageName(projectDir)
	if err != nil {
		return nil, fmt.Errorf("determining package name: %w", err)
	}
	stem := strings.ReplaceAll(pkg, "-", "_")
	deployDir := filepath.Join(projectDir, "target", "deploy")
	soPath := filepath.Join(deployDir, stem+".so")
	keypairPath := filepath.Join(deployDir, stem+"-keypair.json")

	d.Logger.Info("building project", "dir", projectDir, "cmd", d.BuildCmd)
	if d.Image != "" {
		err = d.containerBuild(ctx, projectDir)
	} else {
		err = d.hostBuild(ctx, projectDir)
	}
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(soPath); err != nil {
		return nil, fmt.Errorf("artifact not found at %s", soPath)
	}
	artifact := &Artifact{Path: soPath}

	if _, err := os.Stat(keypairPath); err != nil {
		d.Logger.Warn("keypair not found, cannot determine program id", "path", keypairPath)
		return artifact, nil
	}
	artifact.ProgramID = d.recoverProgramID(ctx, keypairPath)
	return artifact, nil
}

func (d *Driver) hostBuild(ctx context.Context, projectDir string) error {
	buildCtx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	cmd := exec.CommandContext(buildCtx, d.BuildCmd)
	cmd.Dir = projectDir
	if len(d.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range d.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		if buildCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("build timed out after %s", d.Timeout)
		}
		return fmt.Errorf("build command failed: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (d *Driver) containerBuild(ctx context.Context, projectDir string) error {
	absDir, err := filepath.Abs(projectDir)
	if err != nil {
		return fmt.Errorf("resolving project dir: %w", err)
	}
	res, err := sandbox.Run(ctx, &sandbox.RunOpts{
		Image:      d.Image,
		Command:    []string{d.BuildCmd},
		ProjectDir: absDir,
		Env:        d.Env,
		Timeout:    d.Timeout,
		UserID:     fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid()),
	})
	if err != nil {
		return fmt.Errorf("running build container: %w", err)
	}
	if res.TimedOut {
		return fmt.Errorf("build timed out after %s", d.Timeout)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("build container exited %d: %s", res.ExitCode, strings.TrimSpace(string(res.Logs)))
	}
	return nil
}

// recoverProgramID runs the keygen tool against the artifact keypair.
// Failures degrade to an empty id; the artifact itself is still good.
func (d *Driver) recoverProgramID(ctx context.Context, keypairPath string) string {
	cmd := exec.CommandContext(ctx, d.KeygenCmd, "pubkey", keypairPath)
	if len(d.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range d.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			d.Logger.Warn("identity recovery failed",
				"keypair", keypairPath, "stderr", strings.TrimSpace(string(exitErr.Stderr)))
		} else {
			d.Logger.Warn("identity recovery failed", "keypair", keypairPath, "err", err)
		}
		return ""
	}
	id := strings.TrimSpace(string(out))
	if id == "" {
		d.Logger.Warn("identity recovery returned empty output", "keypair", keypairPath)
	}
	return id
}
