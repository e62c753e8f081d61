package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keelvcs/keel/pkg/repo"
)

func newRmCmd() *cobra.Command {
	var force bool
	var recursive bool

	cmd := &cobra.Command{
		Use:   "rm [-f] [-r] <files...>",
		Short: "Remove files from the index and working tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			removed, err := r.Remove(args, repo.RemoveOptions{Force: force, Recursive: recursive})
			if err != nil {
				return err
			}
			for _, p := range removed {
				fmt.Fprintf(cmd.OutOrStdout(), "removed '%s'\n", p)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force removal")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "remove directories recursively")
	return cmd
}
