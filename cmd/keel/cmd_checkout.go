package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keelvcs/keel/pkg/repo"
)

func newCheckoutCmd() *cobra.Command {
	var newBranch bool

	cmd := &cobra.Command{
		Use:   "checkout [-b] <ref>",
		Short: "Switch HEAD and the working tree to a branch or commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if newBranch {
				res, err := r.CheckoutNewBranch(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "switched to new branch '%s'\n", res.Target)
				return nil
			}

			res, err := r.Checkout(args[0])
			if err != nil {
				return err
			}
			if res.Detached {
				fmt.Fprintf(out, "detached HEAD at %s\n", shortHash(res.Hash))
				return nil
			}
			fmt.Fprintf(out, "switched to branch '%s'\n", res.Target)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&newBranch, "branch", "b", false, "create the branch at HEAD, then switch to it")

	return cmd
}
