package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the sessionmap CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sessionmap version %s\n", version)
		fmt.Fprintln(cmd.OutOrStdout(), "Session level analytics and risk sizing for index futures")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
