package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// buildVersion is stamped by release tooling; left as a placeholder for
// local builds.
var buildVersion = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("invader %s\n", buildVersion)
	},
}
