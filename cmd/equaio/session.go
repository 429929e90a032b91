package main

import (
	"fmt"

	"github.com/aretw0/equaio/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"sessions"},
	Short:   "Manage stored derivations",
	Long:    `List, inspect, and remove derivations stored in the configured session store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, _, _, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()
		return cli.ListSessions(cmd.Context(), b, cmd.OutOrStdout())
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print a stored derivation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, _, _, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()
		format, err := formatFlag(cmd, cli.FormatJSON)
		if err != nil {
			return err
		}
		return cli.InspectSession(cmd.Context(), b, args[0], format, cmd.OutOrStdout())
	},
}

var sessionRmCmd = &cobra.Command{
	Use:     "rm <session-id>",
	Aliases: []string{"delete"},
	Short:   "Remove a stored derivation",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, _, _, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()
		if err := cli.RemoveSession(cmd.Context(), b, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session '%s' removed.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd, sessionInspectCmd, sessionRmCmd)
	sessionInspectCmd.Flags().StringP("format", "f", "", "Output format: plain, markdown or json (default json)")
}
