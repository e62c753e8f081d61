package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keelvcs/keel/pkg/repo"
)

func newArchiveCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "archive <ref>",
		Short: "Export a commit's tree as a zstd-compressed tar stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if output == "" {
				return r.Archive(args[0], cmd.OutOrStdout())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("archive: create %q: %w", output, err)
			}
			if err := r.Archive(args[0], f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the archive to a file instead of stdout")

	return cmd
}
