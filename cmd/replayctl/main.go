package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "replayctl",
		Short: "Inspect and verify recorded game sessions",
		Long: `replayctl reads the client's session journal and refolds recorded
inputs through the deterministic transition function, checking that replay
reproduces the authoritative snapshots the server sent.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.database, "db", "journal.db", "path to the session journal database")

	cmd.AddCommand(newSessionsCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newVerifyCommand(opts))
	return cmd
}

type rootOptions struct {
	database string
}
