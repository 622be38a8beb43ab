// Package sourceroot finds the source roots of a workspace and strips them
// from file paths, producing the logical paths used by include statements.
package sourceroot

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dghubble/trie"
)

// NoSourceRootError is returned when a file is not under any source root.
type NoSourceRootError struct {
	Path string
}

func (e *NoSourceRootError) Error() string {
	return fmt.Sprintf("no source root found for %q", e.Path)
}

// Matcher decides whether a directory is a source root.
type Matcher struct {
	anchored []string
	trailing []string
	markers  map[string]bool
}

// NewMatcher constructs a Matcher.  Patterns starting with "/" match the
// whole workspace-relative directory ("/" is the workspace root); other
// patterns match the trailing components of a directory.  A directory
// containing a file named in markers is also a root.
func NewMatcher(patterns, markers []string) (*Matcher, error) {
	m := &Matcher{markers: make(map[string]bool, len(markers))}
	for _, p := range patterns {
		if p == "" {
			return nil, fmt.Errorf("empty source root pattern")
		}
		trimmed := strings.Trim(p, "/")
		if trimmed != "" && !doublestar.ValidatePattern(trimmed) {
			return nil, fmt.Errorf("invalid source root pattern %q", p)
		}
		if strings.HasPrefix(p, "/") {
			m.anchored = append(m.anchored, trimmed)
		} else {
			m.trailing = append(m.trailing, trimmed)
		}
	}
	for _, name := range markers {
		if name == "" || strings.Contains(name, "/") {
			return nil, fmt.Errorf("invalid marker filename %q", name)
		}
		m.markers[name] = true
	}
	return m, nil
}

// IsMarker reports whether the filename marks its directory as a root.
func (m *Matcher) IsMarker(filename string) bool {
	return m.markers[filename]
}

// MatchDir reports whether the workspace-relative dir ("" for the root) is a
// source root according to the patterns.
func (m *Matcher) MatchDir(dir string) bool {
	for _, p := range m.anchored {
		if p == "" {
			if dir == "" {
				return true
			}
			continue
		}
		if ok, _ := doublestar.Match(p, dir); ok {
			return true
		}
	}
	if dir == "" {
		return false
	}
	components := strings.Split(dir, "/")
	for _, p := range m.trailing {
		n := strings.Count(p, "/") + 1
		if n > len(components) {
			continue
		}
		tail := strings.Join(components[len(components)-n:], "/")
		if ok, _ := doublestar.Match(p, tail); ok {
			return true
		}
	}
	return false
}

// Roots is a set of source roots.
type Roots struct {
	trie  *trie.PathTrie
	roots map[string]bool
}

// NewRoots constructs a set of the given roots.
func NewRoots(roots ...string) *Roots {
	r := &Roots{
		trie:  trie.NewPathTrie(),
		roots: make(map[string]bool),
	}
	for _, root := range roots {
		r.Add(root)
	}
	return r
}

// Add records a workspace-relative root directory ("" for the workspace
// root).
func (r *Roots) Add(root string) {
	root = cleanDir(root)
	if r.roots[root] {
		return
	}
	r.roots[root] = true
	r.trie.Put(root, root)
}

// List returns the sorted roots.
func (r *Roots) List() []string {
	roots := make([]string, 0, len(r.roots))
	for root := range r.roots {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

// Find returns the deepest root enclosing the workspace-relative file.
func (r *Roots) Find(file string) (string, bool) {
	dir := cleanDir(path.Dir(file))
	var found string
	var ok bool
	if r.roots[""] {
		found, ok = "", true
	}
	r.trie.WalkPath(dir, func(_ string, value interface{}) error {
		if root, isRoot := value.(string); isRoot && encloses(root, dir) {
			found, ok = root, true
		}
		return nil
	})
	return found, ok
}

// Strip returns the file path relative to its deepest source root.
func (r *Roots) Strip(file string) (string, error) {
	root, ok := r.Find(file)
	if !ok {
		return "", &NoSourceRootError{Path: file}
	}
	if root == "" {
		return file, nil
	}
	return strings.TrimPrefix(file, root+"/"), nil
}

func encloses(root, dir string) bool {
	return root == "" || dir == root || strings.HasPrefix(dir, root+"/")
}

func cleanDir(dir string) string {
	dir = path.Clean(strings.Trim(dir, "/"))
	if dir == "." {
		return ""
	}
	return dir
}
