package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/eisodos-svm/eisodos-bench/internal/report"
	"github.com/eisodos-svm/eisodos-bench/internal/result"
)

func sampleRecords() []result.Record {
	return []result.Record{
		{
			ID:                "ping_default_run",
			Entrypoint:        "pinocchio",
			Features:          nil,
			Artifact:          "/work/target/deploy/ping.so",
			ProgramID:         "BenchPrgm1111111111111111111111111111111111",
			AccountsProcessed: 1,
			Metrics: map[string]result.Value{
				"MedianComputeUnits": result.IntValue(105),
				"BenchmarkName":      result.RawValue("ping"),
			},
		},
		{
			ID:                "log_custom_payload",
			Entrypoint:        "solana-program",
			Features:          []string{"std", "alloc"},
			Artifact:          "/work/target/deploy/log.so",
			ProgramID:         "LogPrgm2222222222222222222222222222222222",
			AccountsProcessed: 0,
			Metrics: map[string]result.Value{
				"MedianComputeUnits":   result.IntValue(340),
				"InstructionsExecuted": result.IntValue(1200),
			},
		},
	}
}

func TestGenerateMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := report.Generate(sampleRecords(), "markdown", &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if lines[0] != "# Eisodos Benchmark Results" {
		t.Errorf("title line = %q", lines[0])
	}
	header := lines[2]
	want := "| ID | Entrypoint | Features | AccountsProcessed | BenchmarkName | InstructionsExecuted | MedianComputeUnits | Program ID | Artifact |"
	if header != want {
		t.Errorf("header = %q\nwant %q", header, want)
	}

	if !strings.Contains(out, "| ping_default_run | pinocchio | none | 1 | ping | N/A | 105 | Benc...1111 | /work/target/deploy/ping.so |") {
		t.Errorf("ping row missing or wrong:\n%s", out)
	}
	if !strings.Contains(out, "| log_custom_payload | solana-program | std, alloc | 0 | N/A | 1200 | 340 | LogP...2222 | /work/target/deploy/log.so |") {
		t.Errorf("log row missing or wrong:\n%s", out)
	}
}

func TestGenerateTable(t *testing.T) {
	var buf bytes.Buffer
	if err := report.Generate(sampleRecords(), "table", &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "ping_default_run") || !strings.Contains(out, "log_custom_payload") {
		t.Errorf("expected both run ids in table:\n%s", out)
	}
	if !strings.Contains(out, "MedianComputeUnits") {
		t.Errorf("expected metric column in table:\n%s", out)
	}
}

func TestGenerateJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := report.Generate(sampleRecords(), "json", &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var decoded []result.Record
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("parsing json output: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(decoded))
	}
	if v := decoded[0].Metrics["MedianComputeUnits"]; !v.IsInt || v.Int != 105 {
		t.Errorf("metric round-trip = %+v", v)
	}
}

func TestGenerateShortProgramID(t *testing.T) {
	records := []result.Record{{
		ID:        "ping_default_run",
		ProgramID: "Short1",
		Metrics:   map[string]result.Value{},
	}}
	var buf bytes.Buffer
	if err := report.Generate(records, "markdown", &buf); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(buf.String(), "| Short1 |") {
		t.Errorf("short program id should not be truncated:\n%s", buf.String())
	}
}
