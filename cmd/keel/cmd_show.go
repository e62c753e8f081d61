package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keelvcs/keel/pkg/object"
	"github.com/keelvcs/keel/pkg/repo"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [ref]",
		Short: "Show a commit's metadata and changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			target := "HEAD"
			if len(args) == 1 {
				target = args[0]
			}
			h, err := r.ResolveRef(target)
			if err != nil {
				return err
			}
			if h == "" {
				return fmt.Errorf("show %q: %w", target, object.ErrNotFound)
			}
			commit, err := r.Store.ReadCommit(h)
			if err != nil {
				return fmt.Errorf("show: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "commit %s\n", h)
			if len(commit.Parents) == 2 {
				fmt.Fprintf(out, "Merge: %s %s\n", shortHash(commit.Parents[0]), shortHash(commit.Parents[1]))
			}
			fmt.Fprintln(out)
			for _, line := range strings.Split(strings.TrimRight(commit.Message, "\n"), "\n") {
				fmt.Fprintf(out, "    %s\n", line)
			}
			fmt.Fprintln(out)

			// Changes relative to the first parent; a root commit diffs
			// against the empty state, listing everything as added.
			var parent object.Hash
			if len(commit.Parents) > 0 {
				parent = commit.Parents[0]
			}
			res, err := r.DiffCommits(parent, h)
			if err != nil {
				return err
			}
			if res.Empty() {
				return nil
			}
			printNameStatus(out, res)

			if hasModified(res) {
				fmt.Fprintln(out)
				return printPatch(out, r, res, false)
			}
			return nil
		},
	}
}
