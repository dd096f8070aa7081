package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// BenchmarkSpec is one declared benchmark: a workspace function to bench
// and the entrypoint crates to bench it against.
type BenchmarkSpec struct {
	ID                 string             `toml:"id"`
	Function           string             `toml:"function"`
	Entrypoints        []string           `toml:"entrypoints"`
	Features           []FeatureSelection `toml:"features"`
	Category           string             `toml:"category"`
	InstructionPayload map[string]any     `toml:"instruction_payload"`
	AccountSetups      []AccountSetup     `toml:"account_setups"`
}

// FeatureSelection names the cargo features to enable when the benchmark
// is compiled against a given entrypoint crate.
type FeatureSelection struct {
	Entrypoint string   `toml:"entrypoint"`
	Features   []string `toml:"features"`
}

// AccountSetup declares one account-count variant of a benchmark. Count
// stays untyped here: a bad value skips that one variant at plan time
// instead of failing the whole declaration file.
type AccountSetup struct {
	Count any `toml:"count"`
}

// benchmarkFile matches the declaration file layout. The array table is
// singular, following cargo's [[bin]] / [[bench]] convention.
type benchmarkFile struct {
	Benchmarks []BenchmarkSpec `toml:"benchmark"`
}

// LoadBenchmarks reads the benchmark declarations from a TOML file. An
// unreadable or unparsable file is fatal. Defects inside individual
// entries are not: they are skipped with a warning when the pass
// enumerates its work, so one bad declaration never blocks the rest.
func LoadBenchmarks(path string) ([]BenchmarkSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading benchmarks %s: %w", path, err)
	}
	var file benchmarkFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing benchmarks %s: %w", path, err)
	}
	return file.Benchmarks, nil
}
