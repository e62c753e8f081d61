package repo

import (
	"archive/tar"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/keelvcs/keel/pkg/object"
)

// Archive writes the tree of the commit named by ref to w as a
// zstd-compressed tar stream. Entries are emitted in sorted path order
// with fixed mode and mtime, so archiving the same commit twice
// produces identical bytes.
func (r *Repo) Archive(ref string, w io.Writer) error {
	commitHash, err := r.ResolveRef(ref)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if commitHash == "" {
		return fmt.Errorf("archive %q: %w", ref, object.ErrNotFound)
	}
	commit, err := r.Store.ReadCommit(commitHash)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	toc, err := r.Store.Flatten(commit.TreeHash)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	paths := make([]string, 0, len(toc))
	for p := range toc {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	tw := tar.NewWriter(enc)

	for _, p := range paths {
		blob, err := r.Store.ReadBlob(toc[p])
		if err != nil {
			return fmt.Errorf("archive: read blob for %q: %w", p, err)
		}
		hdr := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     p,
			Mode:     0o644,
			Size:     int64(len(blob.Data)),
			ModTime:  time.Unix(0, 0),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("archive: write header for %q: %w", p, err)
		}
		if _, err := tw.Write(blob.Data); err != nil {
			return fmt.Errorf("archive: write %q: %w", p, err)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("archive: close tar stream: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("archive: close zstd stream: %w", err)
	}
	return nil
}
