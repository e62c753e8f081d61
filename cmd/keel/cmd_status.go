package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/keelvcs/keel/pkg/diff"
	"github.com/keelvcs/keel/pkg/repo"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			st, err := r.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			switch {
			case st.Detached:
				fmt.Fprintf(out, "detached HEAD at %s\n", shortHash(st.Head))
			case st.Head == "":
				fmt.Fprintf(out, "on %s (no commits yet)\n", st.Branch)
			default:
				fmt.Fprintf(out, "on %s\n", st.Branch)
			}
			if st.MergeHead != "" {
				fmt.Fprintf(out, "merging %s\n", shortHash(st.MergeHead))
			}

			if len(st.Conflicted) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "conflicts:")
				for _, p := range st.Conflicted {
					fmt.Fprintf(out, "  ! %s\n", p)
				}
			}

			if !st.Staged.Empty() {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "staged:")
				printChangeList(out, st.Staged)
			}

			if !st.Unstaged.Empty() {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "unstaged:")
				printChangeList(out, st.Unstaged)
			}

			if len(st.Untracked) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "untracked:")
				for _, p := range st.Untracked {
					fmt.Fprintf(out, "  %s\n", p)
				}
			}

			return nil
		},
	}
}

func printChangeList(out io.Writer, res *diff.Result) {
	for _, ch := range res.Changes {
		switch ch.Type {
		case diff.Added:
			fmt.Fprintf(out, "  + %s\n", ch.Path)
		case diff.Modified:
			fmt.Fprintf(out, "  ~ %s\n", ch.Path)
		case diff.Removed:
			fmt.Fprintf(out, "  - %s\n", ch.Path)
		}
	}
}
