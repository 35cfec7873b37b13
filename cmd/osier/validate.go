package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wickerworks/osier/pkg/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a pipeline manifest for consistency",
	Long:  `Parses the manifest, builds the unit registry and plan, and runs all registration-time checks (schema parsing, reducer bindings, write-collision detection).`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		if err := runValidate(file); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Pipeline is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(file string) error {
	m, err := manifest.Load(file)
	if err != nil {
		return err
	}

	// Build with no bound functions: exercises every registration-time check.
	if _, _, err := m.Build(nil); err != nil {
		return err
	}
	return nil
}
