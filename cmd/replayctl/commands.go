package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tianzhicdev/tetris-battle-sub004/internal/journal"
)

func newSessionsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := journal.Open(opts.database)
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.Sessions()
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no recorded sessions")
				return nil
			}
			for _, session := range sessions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  started=%s\n", session.ID, session.StartedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a session's inputs and snapshots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := journal.Open(opts.database)
			if err != nil {
				return err
			}
			defer store.Close()

			sessionID := args[0]
			inputs, err := store.Inputs(sessionID)
			if err != nil {
				return err
			}
			snapshots, err := store.Snapshots(sessionID)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "session %s: %d inputs, %d snapshots\n", sessionID, len(inputs), len(snapshots))
			for _, input := range inputs {
				fmt.Fprintf(cmd.OutOrStdout(), "  input  seq=%-4d action=%-11s sent=%s\n", input.Seq, input.Action, input.SentAt.Format(time.RFC3339Nano))
			}
			for _, snapshot := range snapshots {
				kind := "snapshot"
				if snapshot.Rejected {
					kind = "rejected"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s ack=%-4d score=%d stars=%d lines=%d gameOver=%v\n",
					kind, snapshot.AckSeq, snapshot.State.Score, snapshot.State.Stars, snapshot.State.Lines, snapshot.State.GameOver)
			}
			return nil
		},
	}
}

func newVerifyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <session-id>",
		Short: "Refold recorded inputs and check them against the recorded snapshots",
		Long: `verify folds each acknowledged input span over the preceding snapshot
with the deterministic transition function. A span whose fold matches the
next snapshot confirms the prediction path; a divergent span is reported —
divergence is expected whenever the server injected state the client could
not know (opponent garbage, rejected inputs). Each span is folded twice and
the two results compared, so a non-deterministic transition fails loudly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := journal.Open(opts.database)
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := verifySession(store, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "spans=%d matched=%d diverged=%d droppedInputs=%d\n",
				report.Spans, report.Matched, report.Diverged, report.DroppedInputs)
			for _, line := range report.Details {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", line)
			}
			return nil
		},
	}
}
