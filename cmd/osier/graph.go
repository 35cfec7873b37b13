package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wickerworks/osier/internal/presentation/graph"
	"github.com/wickerworks/osier/pkg/manifest"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the pipeline visualization",
	Long:  `Parses the manifest and outputs a Mermaid diagram (graph TD) of its steps and fan-outs.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		if !cmd.Flags().Changed("file") && len(args) > 0 {
			file = args[0]
		}

		m, err := manifest.Load(file)
		if err != nil {
			fmt.Printf("Error loading manifest: %v\n", err)
			os.Exit(1)
		}

		reg, plan, err := m.Build(nil)
		if err != nil {
			fmt.Printf("Error building pipeline: %v\n", err)
			os.Exit(1)
		}

		// Generate and print Mermaid graph
		fmt.Print(graph.GenerateMermaid(plan, reg))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
