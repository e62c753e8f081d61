package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keelvcs/keel/pkg/repo"
)

func newLogCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log [ref]",
		Short: "Show commit history",
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
			start, err := r.ResolveRef(target)
			if err != nil {
				return err
			}
			if start == "" {
				// Unborn branch: nothing to show.
				return nil
			}

			entries, err := r.Log(start, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s %s\n", shortHash(e.Hash), firstLine(e.Commit.Message))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "max-count", "n", 0, "limit the number of commits (0 = all)")
	return cmd
}
