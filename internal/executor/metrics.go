package executor

import (
	"strings"

	"github.com/eisodos-svm/eisodos-bench/internal/result"
)

// Markers the bencher prints around its metrics block.
const (
	metricsStart = "--- Benchmark Metrics ---"
	metricsEnd   = "--- End Metrics ---"
)

// ParseMetrics scans executor stdout for delimited metrics blocks and
// returns one record per closed block. Every record starts from the
// seed's identity fields; `key: value` lines inside a block become
// metrics, integers when they parse as such. A block that never closes
// is discarded, and an end marker without a start is ignored.
//
// One block per run is the normal case; repeated blocks each produce
// their own record.
func ParseMetrics(output string, seed result.Record) []result.Record {
	var records []result.Record
	current := freshRecord(seed)
	inBlock := false

	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == metricsStart:
			inBlock = true
		case trimmed == metricsEnd:
			if !inBlock {
				continue
			}
			inBlock = false
			records = append(records, current)
			current = freshRecord(seed)
		case inBlock:
			key, value, found := strings.Cut(line, ":")
			if !found {
				continue
			}
			key = strings.TrimSpace(key)
			parsed := result.ParseValue(strings.TrimSpace(value))
			// The harness seeds AccountsProcessed from the run plan;
			// an executor that reports its own count wins.
			if key == "AccountsProcessed" && parsed.IsInt {
				current.AccountsProcessed = int(parsed.Int)
				continue
			}
			current.Metrics[key] = parsed
		}
	}
	return records
}

func freshRecord(seed result.Record) result.Record {
	record := seed
	record.Metrics = make(map[string]result.Value)
	return record
}
