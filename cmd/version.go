package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Print the version number of mysql-ai.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mysql-ai version %s\n", appVersion)
	},
}
