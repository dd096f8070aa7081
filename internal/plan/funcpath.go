package plan

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPath reports a qualified function path that cannot be split
// into a crate and a function name.
var ErrMalformedPath = errors.New("malformed function path")

// FunctionPath is a parsed `crate::module::path::function` identifier.
// Module holds the intermediate segments and is empty for two-segment
// paths.
type FunctionPath struct {
	Crate    string
	Module   string
	Function string
}

// ParseFunctionPath splits a qualified Rust path into crate, module path
// and function name. At least two non-empty segments are required.
func ParseFunctionPath(path string) (FunctionPath, error) {
	parts := strings.Split(path, "::")
	if len(parts) < 2 {
		return FunctionPath{}, fmt.Errorf("%w: %q must include crate and function", ErrMalformedPath, path)
	}
	fp := FunctionPath{
		Crate:    parts[0],
		Function: parts[len(parts)-1],
	}
	if len(parts) > 2 {
		fp.Module = strings.Join(parts[1:len(parts)-1], "::")
	}
	if fp.Crate == "" || fp.Function == "" {
		return FunctionPath{}, fmt.Errorf("%w: %q has an empty segment", ErrMalformedPath, path)
	}
	return fp, nil
}
