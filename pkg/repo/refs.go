package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/keelvcs/keel/pkg/object"
)

// headRefPrefix marks a symbolic HEAD pointing at a branch ref.
const headRefPrefix = "ref: "

// Head reads .keel/HEAD. If the content starts with "ref: ", it returns
// the ref path (e.g. "refs/heads/main"). Otherwise it returns the raw
// content as a detached hash string.
func (r *Repo) Head() (string, error) {
	data, err := os.ReadFile(r.metaPath("HEAD"))
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")

	if strings.HasPrefix(content, headRefPrefix) {
		return strings.TrimPrefix(content, headRefPrefix), nil
	}
	return content, nil
}

// IsHeadDetached reports whether HEAD holds a raw hash instead of a
// branch ref.
func (r *Repo) IsHeadDetached() (bool, error) {
	head, err := r.Head()
	if err != nil {
		return false, err
	}
	return !strings.HasPrefix(head, "refs/"), nil
}

// ResolveRef resolves a ref name to an object hash.
//
// Resolution order:
//  1. If name is "HEAD", read HEAD. A symbolic HEAD resolves its target
//     branch; an unborn branch (target ref file absent) resolves to the
//     empty hash with no error. A detached HEAD returns its raw hash.
//  2. If name starts with "refs/", read .keel/<name>.
//  3. Otherwise, try "refs/heads/<name>".
//  4. A 64-char lowercase hex string naming a stored object resolves to
//     itself. Branches shadow raw hashes.
//
// Anything else fails with an error wrapping object.ErrNotFound.
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	if name == "HEAD" {
		head, err := r.Head()
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(head, "refs/") {
			h, ok, err := r.readRefHash(head)
			if err != nil {
				return "", err
			}
			if !ok {
				// Unborn branch: HEAD names a ref that has no commit yet.
				return "", nil
			}
			return h, nil
		}
		// Detached HEAD: the value is a hash.
		return object.Hash(head), nil
	}

	refPath := name
	if !strings.HasPrefix(name, "refs/") {
		refPath = "refs/heads/" + name
	}
	h, ok, err := r.readRefHash(refPath)
	if err != nil {
		return "", err
	}
	if ok {
		return h, nil
	}

	if isHexHash(name) && r.Store.Has(object.Hash(name)) {
		return object.Hash(name), nil
	}

	return "", fmt.Errorf("resolve ref %q: %w", name, object.ErrNotFound)
}

// readRefHash reads the hash stored in the ref file at the given path
// relative to the metadata dir. A missing file reports ok=false with no
// error.
func (r *Repo) readRefHash(refPath string) (object.Hash, bool, error) {
	data, err := os.ReadFile(filepath.Join(r.KeelDir, filepath.FromSlash(refPath)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read ref %q: %w", refPath, err)
	}
	return object.Hash(strings.TrimSpace(string(data))), true, nil
}

// isHexHash reports whether s is a well-formed lowercase hex hash.
func isHexHash(s string) bool {
	if len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// UpdateRef writes a hash to the named ref file under .keel/ using temp
// file + rename. Parent directories are created as needed.
func (r *Repo) UpdateRef(name string, h object.Hash) error {
	refPath := filepath.Join(r.KeelDir, filepath.FromSlash(name))

	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(refPath), ".ref-tmp-*")
	if err != nil {
		return fmt.Errorf("update ref %q: tmpfile: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(string(h) + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("update ref %q: close: %w", name, err)
	}
	if err := os.Rename(tmpName, refPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("update ref %q: rename: %w", name, err)
	}
	return nil
}

// RemoveRef deletes the named ref file under .keel/.
func (r *Repo) RemoveRef(name string) error {
	if err := os.Remove(filepath.Join(r.KeelDir, filepath.FromSlash(name))); err != nil {
		return fmt.Errorf("remove ref %q: %w", name, err)
	}
	return nil
}

// SetHeadToBranch points HEAD at the named branch symbolically.
func (r *Repo) SetHeadToBranch(branch string) error {
	return r.writeHead(headRefPrefix + "refs/heads/" + branch)
}

// SetHeadDetached points HEAD directly at a commit hash.
func (r *Repo) SetHeadDetached(h object.Hash) error {
	return r.writeHead(string(h))
}

// writeHead atomically replaces .keel/HEAD.
func (r *Repo) writeHead(content string) error {
	headPath := r.metaPath("HEAD")

	tmp, err := os.CreateTemp(r.KeelDir, ".head-tmp-*")
	if err != nil {
		return fmt.Errorf("write HEAD: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write HEAD: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write HEAD: close: %w", err)
	}
	if err := os.Rename(tmpName, headPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write HEAD: rename: %w", err)
	}
	return nil
}

// LocalHeads lists branches under .keel/refs/heads. Names are returned
// relative to refs/heads, e.g. "main", "feature/x".
func (r *Repo) LocalHeads() (map[string]object.Hash, error) {
	root := filepath.Join(r.KeelDir, "refs", "heads")

	heads := make(map[string]object.Hash)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		// Skip in-flight temp files from UpdateRef.
		if strings.HasPrefix(d.Name(), ".ref-tmp-") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		heads[filepath.ToSlash(rel)] = object.Hash(strings.TrimSpace(string(data)))
		return nil
	})
	if os.IsNotExist(err) {
		return heads, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	return heads, nil
}
