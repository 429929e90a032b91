package main

import (
	"github.com/aretw0/equaio/internal/cli"
	"github.com/aretw0/equaio/pkg/ruleset"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [file]",
	Short: "List the rules of a rule set file or of the built-in algebra set",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set := ruleset.Builtin()
		if len(args) == 1 {
			var err error
			if set, err = ruleset.LoadFile(args[0]); err != nil {
				return err
			}
		}
		cli.PrintRuleSet(cmd.OutOrStdout(), set)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
