package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/equaio"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of equaio",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "equaio version %s\n", strings.TrimSpace(equaio.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
