package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eisodos-svm/eisodos-bench/internal/config"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the benchmarks a crate declares",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			crateDir := resolveUnder(cfg.Workspace, flagCrate)
			benches, err := config.LoadBenchmarks(filepath.Join(crateDir, BenchmarksFileName))
			if err != nil {
				return err
			}
			fmt.Printf("Benchmarks in %s:\n", crateDir)
			for _, b := range benches {
				fmt.Printf("  - %s (%s)\n", b.ID, b.Function)
				fmt.Printf("      entrypoints: %s\n", strings.Join(b.Entrypoints, ", "))
				for _, sel := range b.Features {
					fmt.Printf("      features[%s]: %s\n", sel.Entrypoint, strings.Join(sel.Features, ", "))
				}
				switch {
				case len(b.InstructionPayload) > 0:
					fmt.Printf("      runs: custom payload\n")
				case len(b.AccountSetups) > 0:
					fmt.Printf("      runs: %d account setups\n", len(b.AccountSetups))
				default:
					fmt.Printf("      runs: default\n")
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flagCrate, "crate", "", "path to the benchmarked crate, relative to the workspace")
	cmd.MarkFlagRequired("crate")
	return cmd
}
