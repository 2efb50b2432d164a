package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return printJSON(VersionInfo.Map())
		}
		fmt.Println(VersionInfo.Full())
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "print as JSON")
}
