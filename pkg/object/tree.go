package object

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// Node is one entry in a nested directory description passed to
// WriteDir: either File content at a leaf or a child Dir.
type Node interface {
	node()
}

// File is blob content at a leaf of a directory description.
type File []byte

// Dir maps entry names to files or subdirectories.
type Dir map[string]Node

func (File) node() {}
func (Dir) node()  {}

// WriteDir writes d and all of its children as tree objects, depth-first
// so every tree references already-stored hashes, and returns the root
// tree hash. An empty Dir writes an empty tree.
func (s *Store) WriteDir(d Dir) (Hash, error) {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)

	tr := &TreeObj{}
	for _, name := range names {
		switch n := d[name].(type) {
		case File:
			bh, err := s.WriteBlob(&Blob{Data: n})
			if err != nil {
				return "", err
			}
			tr.Entries = append(tr.Entries, TreeEntry{Name: name, Kind: TypeBlob, Hash: bh})
		case Dir:
			th, err := s.WriteDir(n)
			if err != nil {
				return "", err
			}
			tr.Entries = append(tr.Entries, TreeEntry{Name: name, Kind: TypeTree, Hash: th})
		default:
			return "", fmt.Errorf("write dir: entry %q: unsupported node %T", name, n)
		}
	}
	return s.WriteTree(tr)
}

// WriteTreeTOC folds a flat table of contents (slash-separated path to
// blob hash) into nested tree objects, written bottom-up, and returns
// the root tree hash. The blobs themselves must already be stored.
func (s *Store) WriteTreeTOC(toc map[string]Hash) (Hash, error) {
	return s.writeTreeDir("", toc)
}

// writeTreeDir writes the tree for one directory level. prefix is either
// empty (root) or ends with "/".
func (s *Store) writeTreeDir(prefix string, toc map[string]Hash) (Hash, error) {
	files := make(map[string]Hash)
	subdirs := make(map[string]bool)

	for p, h := range toc {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			subdirs[rest[:i]] = true
		} else {
			files[rest] = h
		}
	}

	names := make([]string, 0, len(files)+len(subdirs))
	for n := range files {
		names = append(names, n)
	}
	for n := range subdirs {
		if _, dup := files[n]; !dup {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	tr := &TreeObj{}
	for _, name := range names {
		if subdirs[name] {
			sub, err := s.writeTreeDir(prefix+name+"/", toc)
			if err != nil {
				return "", err
			}
			tr.Entries = append(tr.Entries, TreeEntry{Name: name, Kind: TypeTree, Hash: sub})
			continue
		}
		tr.Entries = append(tr.Entries, TreeEntry{Name: name, Kind: TypeBlob, Hash: files[name]})
	}
	return s.WriteTree(tr)
}

// Flatten walks the tree rooted at h and returns its full table of
// contents: a flat mapping from slash-separated path to blob hash.
func (s *Store) Flatten(h Hash) (map[string]Hash, error) {
	toc := make(map[string]Hash)
	if err := s.flattenInto(toc, "", h); err != nil {
		return nil, err
	}
	return toc, nil
}

func (s *Store) flattenInto(toc map[string]Hash, prefix string, h Hash) error {
	tr, err := s.ReadTree(h)
	if err != nil {
		return err
	}
	for _, e := range tr.Entries {
		p := path.Join(prefix, e.Name)
		switch e.Kind {
		case TypeTree:
			if err := s.flattenInto(toc, p, e.Hash); err != nil {
				return err
			}
		case TypeBlob:
			toc[p] = e.Hash
		default:
			return fmt.Errorf("flatten tree %s: entry %q: unexpected kind %q", h, p, e.Kind)
		}
	}
	return nil
}
