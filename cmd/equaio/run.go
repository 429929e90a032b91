package main

import (
	"os"

	"github.com/aretw0/equaio/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run <script.yaml>",
	Short: "Run a derivation script and print the final state",
	Long: `Runs the steps of a derivation script in order and prints the resulting
state. The run stops at the first failing step; the state is printed anyway
and the command exits non-zero.

With --session the derivation is stored and resumed by later runs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, logger, _, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		fallback := cli.FormatPlain
		if term.IsTerminal(int(os.Stdout.Fd())) {
			fallback = cli.FormatMarkdown
		}
		format, err := formatFlag(cmd, fallback)
		if err != nil {
			return err
		}
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return cli.RunScript(sigCtx, cli.RunOptions{
			ScriptPath: args[0],
			SessionID:  sessionID,
			Fresh:      fresh,
			Format:     format,
		}, b, cmd.OutOrStdout(), logger)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("session", "s", "", "Session ID to store and resume the derivation under")
	runCmd.Flags().Bool("fresh", false, "Discard the stored session before running")
	runCmd.Flags().StringP("format", "f", "", "Output format: plain, markdown or json (default markdown on a terminal)")
}
