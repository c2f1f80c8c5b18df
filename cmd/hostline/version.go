package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostline"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of hostline",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hostline version %s\n", hostline.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
