package repo

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ignoreFileName is the per-repository exclusion file at the worktree root.
const ignoreFileName = ".keelignore"

// ignoreMatcher answers whether a worktree path is excluded from
// directory walks. The metadata directory is always excluded,
// independent of any rules.
type ignoreMatcher struct {
	matcher gitignore.Matcher
}

// ignoreRules parses .keelignore at the repository root. Blank lines and
// # comments are skipped; the remaining lines use gitignore pattern
// syntax (globs, **, trailing / for directories, leading ! to negate,
// last match wins). A missing file yields a matcher with no rules.
func (r *Repo) ignoreRules() (*ignoreMatcher, error) {
	var patterns []gitignore.Pattern
	data, err := os.ReadFile(filepath.Join(r.RootDir, ignoreFileName))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", ignoreFileName, err)
		}
	} else {
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(line, nil))
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read %s: %w", ignoreFileName, err)
		}
	}
	return &ignoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// Ignored reports whether the slash-separated repo-relative path is
// excluded. isDir distinguishes directory patterns from file patterns.
func (m *ignoreMatcher) Ignored(relPath string, isDir bool) bool {
	if relPath == "" || relPath == "." {
		return false
	}
	parts := strings.Split(relPath, "/")
	if parts[0] == MetaDirName {
		return true
	}
	return m.matcher.Match(parts, isDir)
}
