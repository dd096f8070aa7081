package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Workspace struct {
		Dependencies map[string]any `toml:"dependencies"`
	} `toml:"workspace"`
}

// PackageName reads [package].name from the Cargo.toml in crateDir.
func PackageName(crateDir string) (string, error) {
	path := filepath.Join(crateDir, "Cargo.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var manifest cargoManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return "", fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if manifest.Package.Name == "" {
		return "", fmt.Errorf("no [package].name in %s", path)
	}
	return manifest.Package.Name, nil
}

// WorkspaceDepsBlock extracts the named entries from the workspace
// root's [workspace.dependencies] table and renders them as a TOML block
// ready for template substitution. Requested names absent from the table
// are returned separately so the caller can warn about them; the block
// is still produced from whatever was found.
func WorkspaceDepsBlock(workspaceRoot string, names []string) (string, []string, error) {
	path := filepath.Join(workspaceRoot, "Cargo.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading workspace manifest %s: %w", path, err)
	}
	var manifest cargoManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return "", nil, fmt.Errorf("parsing workspace manifest %s: %w", path, err)
	}

	var lines []string
	var missing []string
	for _, name := range names {
		value, ok := manifest.Workspace.Dependencies[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s = %s", name, formatTOMLValue(value)))
	}

	block := "[workspace.dependencies]"
	if len(lines) > 0 {
		block += "\n" + strings.Join(lines, "\n")
	}
	return block, missing, nil
}

// formatTOMLValue renders a decoded TOML value back to source form.
// Inline-table keys are sorted; the decoder hands back unordered maps.
func formatTOMLValue(v any) string {
	switch value := v.(type) {
	case string:
		return strconv.Quote(value)
	case bool:
		return strconv.FormatBool(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'g', -1, 64)
	case []any:
		items := make([]string, len(value))
		for i, item := range value {
			items[i] = formatTOMLValue(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]string, len(keys))
		for i, k := range keys {
			items[i] = fmt.Sprintf("%s = %s", k, formatTOMLValue(value[k]))
		}
		return "{ " + strings.Join(items, ", ") + " }"
	default:
		return fmt.Sprintf("%v", value)
	}
}
