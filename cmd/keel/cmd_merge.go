package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keelvcs/keel/pkg/repo"
)

func newMergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <ref>",
		Short: "Merge a branch or commit into the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			report, err := r.Merge(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch report.Status {
			case repo.MergeAlreadyUpToDate:
				fmt.Fprintln(out, "already up to date")
			case repo.MergeFastForward:
				fmt.Fprintf(out, "fast-forwarded to %s\n", shortHash(report.Commit))
			case repo.MergeCommitted:
				current, err := r.CurrentBranch()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "[%s %s] Merge %s into %s\n", current, shortHash(report.Commit), args[0], current)
			case repo.MergeConflicted:
				for _, p := range report.Conflicts {
					fmt.Fprintf(out, "  %s: CONFLICT\n", p)
				}
				fmt.Fprintf(out, "merge stopped with %d conflict", len(report.Conflicts))
				if len(report.Conflicts) != 1 {
					fmt.Fprint(out, "s")
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, "fix conflicts and run keel commit")
			}
			return nil
		},
	}
}
