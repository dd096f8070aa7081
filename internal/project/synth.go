// Package project materializes throwaway build projects: one isolated
// cargo workspace per (benchmark, entrypoint) pair, holding a copy of
// the benchmarked crate plus a generated runner crate that calls the
// declared function behind the chosen entrypoint.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/eisodos-svm/eisodos-bench/internal/plan"
)

// ErrTemplateMissing reports an entrypoint with no manifest/entry-source
// template pair on disk.
var ErrTemplateMissing = errors.New("no templates for entrypoint")

// ErrStagingFailed reports a copy or write failure while materializing a
// project tree.
var ErrStagingFailed = errors.New("staging failed")

// Synthesizer materializes projects under StagingDir. The per-pass
// fields (crate location, resolved package name, rendered dependency
// block) are computed once by the caller and reused for every unit.
type Synthesizer struct {
	TemplatesDir string
	StagingDir   string
	CrateDir     string
	CrateName    string
	DepsBlock    string
	Logger       *log.Logger
}

// Synthesize builds the project tree for one unit and returns its
// directory. Any existing tree for the same unit is removed first, so a
// given project id must not be synthesized concurrently.
func (s *Synthesizer) Synthesize(projectID, entrypoint string, features []string, fn plan.FunctionPath) (string, error) {
	stem := strings.ReplaceAll(entrypoint, "-", "_")
	manifestTemplate := filepath.Join(s.TemplatesDir, "template."+stem+".cargo.toml")
	sourceTemplate := filepath.Join(s.TemplatesDir, "template."+stem+".lib.rs")

	manifestText, err := os.ReadFile(manifestTemplate)
	if err != nil {
		return "", fmt.Errorf("%w: %s (%s)", ErrTemplateMissing, entrypoint, manifestTemplate)
	}
	sourceText, err := os.ReadFile(sourceTemplate)
	if err != nil {
		return "", fmt.Errorf("%w: %s (%s)", ErrTemplateMissing, entrypoint, sourceTemplate)
	}

	projectDir := filepath.Join(s.StagingDir, projectID)
	s.Logger.Info("creating project", "dir", projectDir)
	if err := os.RemoveAll(projectDir); err != nil {
		return "", fmt.Errorf("%w: clearing %s: %v", ErrStagingFailed, projectDir, err)
	}
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", ErrStagingFailed, projectDir, err)
	}

	benchedDst := filepath.Join(projectDir, BenchedCrateDirName)
	s.Logger.Debug("copying benchmarked crate", "from", s.CrateDir, "to", benchedDst)
	if err := CopyTree(s.CrateDir, benchedDst); err != nil {
		return "", fmt.Errorf("%w: copying crate source: %v", ErrStagingFailed, err)
	}

	manifest := RenderManifest(string(manifestText), ManifestData{
		ProjectID:          projectID,
		BenchedCrateDir:    BenchedCrateDirName,
		WorkspaceDepsBlock: s.DepsBlock,
		CrateName:          s.CrateName,
		CrateFeatures:      FormatFeatures(features),
		SDKDependencyLine:  SDKDependencyLine(entrypoint),
	})
	if err := os.WriteFile(filepath.Join(projectDir, "Cargo.toml"), []byte(manifest), 0o644); err != nil {
		return "", fmt.Errorf("%w: writing manifest: %v", ErrStagingFailed, err)
	}

	srcDir := filepath.Join(projectDir, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", ErrStagingFailed, srcDir, err)
	}
	source := RenderEntrySource(string(sourceText), EntrySourceData{
		ImportCrate: fn.Crate,
		Module:      fn.Module,
		Function:    fn.Function,
	})
	if err := os.WriteFile(filepath.Join(srcDir, "lib.rs"), []byte(source), 0o644); err != nil {
		return "", fmt.Errorf("%w: writing entry source: %v", ErrStagingFailed, err)
	}

	return projectDir, nil
}
