package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Workspace     string    `yaml:"workspace"`
	TemplatesDir  string    `yaml:"templates_dir"`
	StagingDir    string    `yaml:"staging_dir"`
	WorkspaceDeps []string  `yaml:"workspace_deps"`
	Toolchain     Toolchain `yaml:"toolchain"`
	Executor      Executor  `yaml:"executor"`
	Timeouts      Timeouts  `yaml:"timeouts"`
	Results       Results   `yaml:"results"`
}

type Toolchain struct {
	BuildCmd  string `yaml:"build_cmd"`
	KeygenCmd string `yaml:"keygen_cmd"`
	// Image, when non-empty, runs the build command inside this container
	// image with the synthesized project bind-mounted. Identity recovery
	// always runs on the host.
	Image string `yaml:"image"`
	// EnvFile, when non-empty, is a KEY=VALUE file whose entries are added
	// to the environment of every toolchain and executor process.
	EnvFile string `yaml:"env_file"`
}

type Executor struct {
	Command []string `yaml:"command"`
}

type Timeouts struct {
	BuildMinutes int `yaml:"build_minutes"`
	RunMinutes   int `yaml:"run_minutes"`
}

type Results struct {
	Dir        string `yaml:"dir"`
	ReportPath string `yaml:"report_path"`
}

// Load reads the harness config. A missing file is not an error: every
// field has a default, so the harness runs unconfigured.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := validate(&cfg); err != nil {
				return nil, fmt.Errorf("invalid config %s: %w", path, err)
			}
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Workspace == "" {
		cfg.Workspace = "."
	}
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = "scripts/benchmark_templates"
	}
	if cfg.StagingDir == "" {
		cfg.StagingDir = "target/bench_gen"
	}
	if len(cfg.WorkspaceDeps) == 0 {
		cfg.WorkspaceDeps = []string{"pinocchio", "solana-program", "solana-program-error"}
	}
	for i, dep := range cfg.WorkspaceDeps {
		if dep == "" {
			return fmt.Errorf("workspace_deps %d: name is empty", i)
		}
	}
	if cfg.Toolchain.BuildCmd == "" {
		cfg.Toolchain.BuildCmd = "cargo-build-sbf"
	}
	if cfg.Toolchain.KeygenCmd == "" {
		cfg.Toolchain.KeygenCmd = "solana-keygen"
	}
	if len(cfg.Executor.Command) == 0 {
		cfg.Executor.Command = []string{
			"cargo", "run", "-p", "eisodos", "--bin", "eisodos-bench-executor", "--",
		}
	}
	if cfg.Timeouts.BuildMinutes < 0 {
		return fmt.Errorf("timeouts.build_minutes must not be negative")
	}
	if cfg.Timeouts.RunMinutes < 0 {
		return fmt.Errorf("timeouts.run_minutes must not be negative")
	}
	if cfg.Timeouts.BuildMinutes == 0 {
		cfg.Timeouts.BuildMinutes = 15
	}
	if cfg.Timeouts.RunMinutes == 0 {
		cfg.Timeouts.RunMinutes = 5
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "results"
	}
	if cfg.Results.ReportPath == "" {
		cfg.Results.ReportPath = "benchmark_results.md"
	}
	return nil
}

// BuildTimeout bounds a single compile of a synthesized project.
func (c *Config) BuildTimeout() time.Duration {
	return time.Duration(c.Timeouts.BuildMinutes) * time.Minute
}

// RunTimeout bounds a single executor invocation.
func (c *Config) RunTimeout() time.Duration {
	return time.Duration(c.Timeouts.RunMinutes) * time.Minute
}
