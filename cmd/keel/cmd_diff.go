package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/keelvcs/keel/pkg/diff"
	"github.com/keelvcs/keel/pkg/repo"
)

func newDiffCmd() *cobra.Command {
	var patch bool

	cmd := &cobra.Command{
		Use:   "diff [ref] [ref]",
		Short: "Show changed paths between commits, the index, and the working tree",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			var res *diff.Result
			fromWorktree := false
			switch len(args) {
			case 0:
				ix, err := r.ReadIndex()
				if err != nil {
					return err
				}
				res, err = r.DiffIndexWorktree(ix)
				if err != nil {
					return err
				}
				fromWorktree = true
			case 1:
				h, err := r.ResolveRef(args[0])
				if err != nil {
					return err
				}
				res, err = r.DiffCommitWorktree(h)
				if err != nil {
					return err
				}
				fromWorktree = true
			case 2:
				a, err := r.ResolveRef(args[0])
				if err != nil {
					return err
				}
				b, err := r.ResolveRef(args[1])
				if err != nil {
					return err
				}
				res, err = r.DiffCommits(a, b)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			printNameStatus(out, res)
			if patch && hasModified(res) {
				fmt.Fprintln(out)
				return printPatch(out, r, res, fromWorktree)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&patch, "patch", "p", false, "also show unified line hunks for modified files")
	return cmd
}

func printNameStatus(out io.Writer, res *diff.Result) {
	ns := res.NameStatus()
	for _, p := range res.Paths() {
		fmt.Fprintf(out, "%s\t%s\n", ns[p], p)
	}
}

func hasModified(res *diff.Result) bool {
	for _, ch := range res.Changes {
		if ch.Type == diff.Modified {
			return true
		}
	}
	return false
}

// printPatch renders unified hunks for every modified path in the
// result. The before side always comes from the store; the after side
// comes from the working tree when the result was computed against it,
// since worktree hashes are never stored.
func printPatch(out io.Writer, r *repo.Repo, res *diff.Result, afterFromWorktree bool) error {
	for _, ch := range res.Changes {
		if ch.Type != diff.Modified {
			continue
		}
		beforeBlob, err := r.Store.ReadBlob(ch.Before)
		if err != nil {
			return fmt.Errorf("diff: read blob for %q: %w", ch.Path, err)
		}
		var after []byte
		if afterFromWorktree {
			after, err = os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(ch.Path)))
			if err != nil {
				return fmt.Errorf("diff: read %q: %w", ch.Path, err)
			}
		} else {
			afterBlob, err := r.Store.ReadBlob(ch.After)
			if err != nil {
				return fmt.Errorf("diff: read blob for %q: %w", ch.Path, err)
			}
			after = afterBlob.Data
		}
		if err := diff.FormatUnified(out, ch.Path, beforeBlob.Data, after); err != nil {
			return err
		}
	}
	return nil
}
