package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPathFlag string

var rootCmd = &cobra.Command{
	Use:   "codexecd",
	Short: "codexecd runs untrusted scripts in sandboxed containers",
	Long: `codexecd is the sandboxed code-execution daemon: it consumes
scripts from Kafka, compiles and runs them inside resource-limited,
network-isolated containers, and publishes the results back.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "path to a YAML config file (optional)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
