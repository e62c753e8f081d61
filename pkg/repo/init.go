package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/keelvcs/keel/pkg/object"
)

// Init creates a new keel repository at path. The normal layout keeps
// metadata under path/.keel/; a bare repository keeps the same files at
// path itself and has no working tree. Fails with ErrAlreadyExists if a
// repository is already present at path.
func Init(path string, bare bool) (*Repo, error) {
	keelDir := filepath.Join(path, MetaDirName)
	if bare {
		keelDir = path
	}

	if _, err := os.Stat(filepath.Join(keelDir, "HEAD")); err == nil {
		return nil, fmt.Errorf("init: repository %w at %s", ErrAlreadyExists, keelDir)
	}
	if !bare {
		if _, err := os.Stat(keelDir); err == nil {
			return nil, fmt.Errorf("init: repository %w at %s", ErrAlreadyExists, keelDir)
		}
	}

	// Create directory structure.
	dirs := []string{
		filepath.Join(keelDir, "objects"),
		filepath.Join(keelDir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	// Write default HEAD.
	headPath := filepath.Join(keelDir, "HEAD")
	if err := os.WriteFile(headPath, []byte("ref: refs/heads/"+DefaultBranch+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	r := &Repo{
		RootDir: path,
		KeelDir: keelDir,
		Bare:    bare,
		Store:   object.NewStore(keelDir),
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	cfg.Section("core").SetOption("bare", boolString(bare))
	if err := r.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	return r, nil
}

// Open searches upward from path for a repository and opens it. Both
// layouts are recognized: a directory containing .keel/, or a bare
// repository root holding HEAD, objects/, and a config with core.bare
// set. Fails with ErrNotARepository when the search reaches the
// filesystem root.
func Open(path string) (*Repo, error) {
	// Resolve to absolute path for consistent traversal.
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		keelDir := filepath.Join(cur, MetaDirName)
		info, err := os.Stat(keelDir)
		if err == nil && info.IsDir() {
			return &Repo{
				RootDir: cur,
				KeelDir: keelDir,
				Store:   object.NewStore(keelDir),
			}, nil
		}

		if isBareRoot(cur) {
			return &Repo{
				RootDir: cur,
				KeelDir: cur,
				Bare:    true,
				Store:   object.NewStore(cur),
			}, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			// Reached the filesystem root without finding a repository.
			return nil, fmt.Errorf("open: %w (searched %s and all parents)", ErrNotARepository, abs)
		}
		cur = parent
	}
}

// isBareRoot reports whether dir looks like a bare repository root: it
// holds HEAD and objects/ and its config declares core.bare = true.
func isBareRoot(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, "HEAD")); err != nil {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, "objects"))
	if err != nil || !info.IsDir() {
		return false
	}
	probe := &Repo{RootDir: dir, KeelDir: dir}
	cfg, err := probe.ReadConfig()
	if err != nil {
		return false
	}
	return cfg.Section("core").Option("bare") == "true"
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
