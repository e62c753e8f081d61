package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keelvcs/keel/pkg/repo"
)

func newCommitCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record staged changes as a new commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if message == "" {
				// A merge in progress supplies its own message.
				mergeMsg, err := r.MergeMessage()
				if err != nil {
					return err
				}
				message = strings.TrimSpace(mergeMsg)
			}
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			h, err := r.Commit(message)
			if err != nil {
				return err
			}

			branch := "HEAD"
			if current, err := r.CurrentBranch(); err == nil && current != "" {
				branch = current
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, shortHash(h), firstLine(message))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message (defaults to the pending merge message)")
	return cmd
}
