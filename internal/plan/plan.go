// Package plan turns declared benchmarks into concrete run plans: the
// ordered executor invocations for one compiled (benchmark, entrypoint)
// artifact, each with its instruction bytes and account template.
package plan

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/eisodos-svm/eisodos-bench/internal/config"
)

// RunSpec is one planned executor invocation against a built artifact.
type RunSpec struct {
	// Suffix distinguishes the run within its benchmark, e.g.
	// "_accounts_8". The full run id is benchmark id + suffix.
	Suffix string
	// NumAccounts is recorded as the AccountsProcessed metric.
	NumAccounts int
	// InstructionData is passed to the executor hex-encoded.
	InstructionData []byte
	// AccountSpecs, when non-empty, are passed to the executor as
	// --account-spec tuples.
	AccountSpecs []AccountSpec
}

// CategoryFor resolves the account-template category of a benchmark. An
// explicit category field wins; otherwise the id text decides.
func CategoryFor(bench config.BenchmarkSpec, logger *log.Logger) Category {
	if bench.Category != "" {
		cat, err := ParseCategory(bench.Category)
		if err != nil {
			logger.Warn("unknown category, inferring from id",
				"benchmark", bench.ID, "category", bench.Category)
			return InferCategory(bench.ID)
		}
		return cat
	}
	return InferCategory(bench.ID)
}

// BuildRunPlan produces the runs to execute for one benchmark. Exactly
// one of the declared payload or the account setups drives the plan:
//
//  1. A declared payload yields a single run carrying the encoded
//     instruction and the category's account template.
//  2. Account setups yield one run per valid count, with the count byte
//     itself as the instruction.
//  3. Neither yields a single default run with instruction byte 0x01.
//
// Malformed payloads degrade to the sentinel byte and bad counts skip
// just their run; both are warned, neither fails the benchmark.
func BuildRunPlan(bench config.BenchmarkSpec, logger *log.Logger) []RunSpec {
	if len(bench.InstructionPayload) > 0 {
		cat := CategoryFor(bench, logger)
		data, err := EncodePayload(bench.InstructionPayload)
		if err != nil {
			logger.Warn("instruction payload not serializable, using sentinel byte",
				"benchmark", bench.ID, "err", err)
		}
		return []RunSpec{{
			Suffix:          "_custom_payload",
			NumAccounts:     cat.NumAccounts(),
			InstructionData: data,
			AccountSpecs:    cat.AccountSpecs(),
		}}
	}

	if len(bench.AccountSetups) > 0 {
		var runs []RunSpec
		for _, setup := range bench.AccountSetups {
			count, ok := setupCount(setup.Count)
			if !ok || count < 1 || count > 255 {
				logger.Warn("invalid count in account_setups, skipping run",
					"benchmark", bench.ID, "count", setup.Count)
				continue
			}
			runs = append(runs, RunSpec{
				Suffix:          fmt.Sprintf("_accounts_%d", count),
				NumAccounts:     int(count),
				InstructionData: []byte{byte(count)},
			})
		}
		return runs
	}

	return []RunSpec{{
		Suffix:          "_default_run",
		NumAccounts:     1,
		InstructionData: []byte{0x01},
	}}
}

func setupCount(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
