package main

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"codexec/internal/config"
	"codexec/internal/registry"
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Verify the registry loads and the configured docker binary is reachable",
	RunE:  runHealthcheck,
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}

func runHealthcheck(cmd *cobra.Command, args []string) error {
	if _, err := registry.New(); err != nil {
		return fmt.Errorf("registry unhealthy: %w", err)
	}

	cfg, err := config.Load(configPathFlag)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if _, err := exec.LookPath(cfg.DockerBinary); err != nil {
		return fmt.Errorf("docker binary %q not found on PATH: %w", cfg.DockerBinary, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}
