package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codexec/internal/registry"
)

var listLanguagesCmd = &cobra.Command{
	Use:   "list-languages",
	Short: "Print the languages this build of codexecd can execute",
	RunE:  runListLanguages,
}

func init() {
	rootCmd.AddCommand(listLanguagesCmd)
}

func runListLanguages(cmd *cobra.Command, args []string) error {
	reg, err := registry.New()
	if err != nil {
		return fmt.Errorf("building registry: %w", err)
	}

	for _, entry := range reg.List() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", entry.Name, entry.Label)
	}
	return nil
}
