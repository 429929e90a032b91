package main

import (
	"os"

	"github.com/aretw0/equaio/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var replCmd = &cobra.Command{
	Use:   "repl [script.yaml]",
	Short: "Derive interactively, one command per line",
	Long: `Reads commands such as

  set_current x + 3 = 5
  arith_both_sides - 3
  calculate 5 - 3

from standard input. "state" prints the derivation, "help" lists the
commands and "quit" leaves. The optional script runs first; without one the
built-in algebra rules are installed. With --json every line is a JSON
command and every reply a JSON line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, logger, _, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		opts := cli.REPLOptions{
			Interactive: term.IsTerminal(int(os.Stdin.Fd())),
		}
		if len(args) == 1 {
			opts.ScriptPath = args[0]
		}
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.JSON, _ = cmd.Flags().GetBool("json")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		err = cli.RunREPL(sigCtx, opts, b, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
		if sigCtx.Signal() != nil {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringP("session", "s", "", "Session ID to store the derivation under after every command")
	replCmd.Flags().Bool("fresh", false, "Discard the stored session before starting")
	replCmd.Flags().Bool("json", false, "JSON-Lines mode")
}
