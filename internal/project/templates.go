package project

import (
	"fmt"
	"strings"
)

// BenchedCrateDirName is the subdirectory of a synthesized project that
// receives the copied benchmarked crate source.
const BenchedCrateDirName = "benched_crate_src"

// ManifestData fills the build-manifest template for one synthesized
// project. Tokens are replaced verbatim, so the block and line fields
// carry ready-to-paste TOML text.
type ManifestData struct {
	ProjectID          string
	BenchedCrateDir    string
	WorkspaceDepsBlock string
	CrateName          string
	CrateFeatures      string
	SDKDependencyLine  string
}

// EntrySourceData fills the entry-source template: the use-path of the
// benchmarked function the generated program calls.
type EntrySourceData struct {
	ImportCrate string
	Module      string
	Function    string
}

// RenderManifest substitutes the manifest placeholder tokens.
func RenderManifest(template string, data ManifestData) string {
	return strings.NewReplacer(
		"%%BENCH_ID%%", data.ProjectID,
		"%%BENCHED_CRATE_COPY_DIR_NAME%%", data.BenchedCrateDir,
		"%%WORKSPACE_DEPENDENCIES_BLOCK%%", data.WorkspaceDepsBlock,
		"%%CRATE_NAME%%", data.CrateName,
		"%%CRATE_FEATURES%%", data.CrateFeatures,
		"%%ENTRYPOINT_SDK_DEPENDENCY_LINE%%", data.SDKDependencyLine,
	).Replace(template)
}

// RenderEntrySource substitutes the entry-source placeholder tokens.
func RenderEntrySource(template string, data EntrySourceData) string {
	return strings.NewReplacer(
		"%%RUST_IMPORT_CRATE_NAME%%", data.ImportCrate,
		"%%BENCHMARK_FUNCTION_MODULE%%", data.Module,
		"%%BENCHMARK_FUNCTION_NAME%%", data.Function,
	).Replace(template)
}

// FormatFeatures renders a feature list the way a Cargo.toml features
// array expects its elements: quoted and comma-separated. An empty list
// renders as an empty string.
func FormatFeatures(features []string) string {
	if len(features) == 0 {
		return ""
	}
	quoted := make([]string, len(features))
	for i, f := range features {
		quoted[i] = fmt.Sprintf("%q", f)
	}
	return strings.Join(quoted, ", ")
}

// SDKDependencyLine is the entrypoint-specific dependency declaration
// spliced into the generated manifest. Entrypoints without one get an
// empty line; their template must be self-contained.
func SDKDependencyLine(entrypoint string) string {
	switch entrypoint {
	case "pinocchio":
		return `pinocchio = { workspace = true, default-features = false } # For runner template`
	case "solana-program":
		return "solana-program = { workspace = true } # For runner template\n" +
			`solana-program-error = { workspace = true } # For direct ProgramResult import`
	default:
		return ""
	}
}

// ProjectDirName is the staging directory name for one (benchmark,
// entrypoint, features) combination.
func ProjectDirName(benchID, entrypoint string, features []string) string {
	suffix := "nofeatures"
	if len(features) > 0 {
		suffix = strings.Join(features, "_")
	}
	return fmt.Sprintf("%s_%s_%s", benchID, entrypoint, suffix)
}
