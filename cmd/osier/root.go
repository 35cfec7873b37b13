package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "osier",
	Short: "Osier is a state projection and merge engine",
	Long:  `Osier composes independent units over a shared, schema-checked state record: project, fan out, merge.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("file", "f", "pipeline.yaml", "Path to the pipeline manifest")
}
