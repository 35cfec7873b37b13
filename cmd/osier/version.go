package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wickerworks/osier"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of osier",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("osier version %s\n", strings.TrimSpace(osier.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
