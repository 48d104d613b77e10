package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/schemata"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of schemata",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "schemata version %s\n", strings.TrimSpace(schemata.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
