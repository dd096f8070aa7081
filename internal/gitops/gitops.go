// Package gitops records the git state of the benchmarked workspace so
// stored results can be traced back to the code that produced them.
package gitops

import (
	"fmt"
	"os/exec"
	"strings"
)

// HeadCommit returns the workspace's checked-out commit hash.
func HeadCommit(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsDirty reports whether the workspace has uncommitted changes,
// untracked files included.
func IsDirty(dir string) (bool, error) {
	cmd := exec.Command("git", "status", "--porcelain")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return len(strings.TrimSpace(string(out))) > 0, nil
}
