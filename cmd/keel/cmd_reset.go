package main

import (
	"github.com/spf13/cobra"

	"github.com/keelvcs/keel/pkg/repo"
)

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [path]...",
		Short: "Restore index entries and files to HEAD's version",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			return r.Reset(args)
		},
	}
}
