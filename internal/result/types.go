package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Value is one extracted metric value. Executor output is untyped text;
// values that parse as integers keep the number, everything else keeps
// the raw string.
type Value struct {
	Int   int64
	Raw   string
	IsInt bool
}

func IntValue(n int64) Value {
	return Value{Int: n, IsInt: true}
}

func RawValue(s string) Value {
	return Value{Raw: s}
}

// ParseValue interprets a metric value string, preferring integers.
func ParseValue(s string) Value {
	if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		return IntValue(n)
	}
	return RawValue(s)
}

func (v Value) String() string {
	if v.IsInt {
		return strconv.FormatInt(v.Int, 10)
	}
	return v.Raw
}

// MarshalJSON writes integers as JSON numbers and everything else as
// strings, so records.json stays queryable with ordinary tooling.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsInt {
		return json.Marshal(v.Int)
	}
	return json.Marshal(v.Raw)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch value := raw.(type) {
	case json.Number:
		if n, err := strconv.ParseInt(value.String(), 10, 64); err == nil {
			*v = IntValue(n)
		} else {
			*v = RawValue(value.String())
		}
	case string:
		*v = RawValue(value)
	default:
		return fmt.Errorf("metric value must be a number or string, got %T", raw)
	}
	return nil
}

// Record is the outcome of one executed run: the identity fields seeded
// by the harness plus whatever metrics the executor reported.
type Record struct {
	ID                string           `json:"id"`
	Entrypoint        string           `json:"entrypoint"`
	Features          []string         `json:"features"`
	Artifact          string           `json:"artifact"`
	ProgramID         string           `json:"program_id"`
	AccountsProcessed int              `json:"accounts_processed"`
	Metrics           map[string]Value `json:"metrics,omitempty"`
}
