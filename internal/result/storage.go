package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CreateRunDir makes a timestamped directory for one pass under
// baseDir/runs and points baseDir/latest at it.
func CreateRunDir(baseDir string) (string, error) {
	runsDir := filepath.Join(baseDir, "runs")
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	runDir := filepath.Join(runsDir, stamp)
	runDir, err := filepath.Abs(runDir)
	if err != nil {
		return "", fmt.Errorf("resolving run dir: %w", err)
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("creating run dir: %w", err)
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(runDir, latest); err != nil {
		return "", fmt.Errorf("creating latest symlink: %w", err)
	}
	return runDir, nil
}

// WriteRecords persists the pass's records as records.json in runDir.
func WriteRecords(runDir string, records []Record) error {
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("creating run dir: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}
	return os.WriteFile(filepath.Join(runDir, "records.json"), data, 0o644)
}

// ReadRecords loads a records.json written by WriteRecords.
func ReadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing records: %w", err)
	}
	return records, nil
}

// RunMeta describes one whole pass: when it ran, what code it ran
// against, and how it was narrowed.
type RunMeta struct {
	StartedAt        time.Time `json:"started_at"`
	DurationS        int       `json:"duration_s"`
	Workspace        string    `json:"workspace"`
	Commit           string    `json:"commit,omitempty"`
	Dirty            bool      `json:"dirty,omitempty"`
	BenchmarkFilter  string    `json:"benchmark_filter,omitempty"`
	EntrypointFilter string    `json:"entrypoint_filter,omitempty"`
	Units            int       `json:"units"`
	Records          int       `json:"records"`
}

// WriteRunMeta persists the pass description as meta.json in runDir.
func WriteRunMeta(runDir string, meta *RunMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run meta: %w", err)
	}
	return os.WriteFile(filepath.Join(runDir, "meta.json"), data, 0o644)
}

// ReadRunMeta loads a meta.json written by WriteRunMeta.
func ReadRunMeta(path string) (*RunMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run meta: %w", err)
	}
	var meta RunMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing run meta: %w", err)
	}
	return &meta, nil
}
