// Version command for the keeper CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is the release version stamped into builds.
const version = "v0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the keeper version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("keeper", version)
	},
}
