// Package snapshot captures the thrift-relevant state of a workspace: BUILD
// targets, owned files, their contents and source roots.
package snapshot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stackb/thrift-deps/pkg/address"
	"github.com/stackb/thrift-deps/pkg/collections"
	"github.com/stackb/thrift-deps/pkg/resolver"
	"github.com/stackb/thrift-deps/pkg/thrifttarget"
)

// File is a thrift file owned by a target.
type File struct {
	// Path is workspace-relative.
	Path string
	// LogicalPath is the path with its source root stripped.
	LogicalPath string
	// Digest is the sha256 of the content.
	Digest string
}

// Snapshot is an immutable view of a workspace.
type Snapshot struct {
	dir        string
	digest     string
	roots      []string
	buildFiles map[string]string
	generators []*thrifttarget.Generator
	targets    []*thrifttarget.Target
	byAddress  map[address.Address]*thrifttarget.Target
	files      map[string]*File
	contents   map[string][]byte
}

// Dir returns the workspace directory.
func (s *Snapshot) Dir() string {
	return s.dir
}

// Digest identifies the snapshot.  Snapshots with equal digests have equal
// targets, files and source roots.
func (s *Snapshot) Digest() string {
	return s.digest
}

// SourceRoots returns the sorted source roots.
func (s *Snapshot) SourceRoots() []string {
	return append([]string(nil), s.roots...)
}

// BuildFiles returns the sorted BUILD file paths.
func (s *Snapshot) BuildFiles() []string {
	paths := make([]string, 0, len(s.buildFiles))
	for p := range s.buildFiles {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Generators returns the declared targets, sorted by address.
func (s *Snapshot) Generators() []*thrifttarget.Generator {
	return append([]*thrifttarget.Generator(nil), s.generators...)
}

// Targets returns the file targets, sorted by address.
func (s *Snapshot) Targets() []*thrifttarget.Target {
	return append([]*thrifttarget.Target(nil), s.targets...)
}

// Target returns the file target with the given address.
func (s *Snapshot) Target(addr address.Address) (*thrifttarget.Target, bool) {
	t, ok := s.byAddress[addr]
	return t, ok
}

// File returns the owned file at the workspace-relative path.
func (s *Snapshot) File(path string) (*File, bool) {
	f, ok := s.files[path]
	return f, ok
}

// IsFile reports whether the workspace-relative path is an owned thrift file.
func (s *Snapshot) IsFile(path string) bool {
	_, ok := s.files[path]
	return ok
}

// Contents returns the content of the owned file at the workspace-relative
// path.
func (s *Snapshot) Contents(path string) ([]byte, error) {
	data, ok := s.contents[path]
	if !ok {
		return nil, fmt.Errorf("%s: not an owned thrift file", path)
	}
	return data, nil
}

// ContentDigest returns the sha256 of the owned file.
func (s *Snapshot) ContentDigest(path string) (string, bool) {
	f, ok := s.files[path]
	if !ok {
		return "", false
	}
	return f.Digest, true
}

// ContentDigests returns the sorted, distinct content digests of the owned
// files.
func (s *Snapshot) ContentDigests() []string {
	seen := make(map[string]bool, len(s.files))
	digests := make([]string, 0, len(s.files))
	for _, f := range s.files {
		if seen[f.Digest] {
			continue
		}
		seen[f.Digest] = true
		digests = append(digests, f.Digest)
	}
	sort.Strings(digests)
	return digests
}

// OwnedFiles pairs every target with the logical path of its file.
func (s *Snapshot) OwnedFiles() []resolver.OwnedFile {
	owned := make([]resolver.OwnedFile, 0, len(s.targets))
	for _, t := range s.targets {
		f := s.files[t.File()]
		owned = append(owned, resolver.OwnedFile{LogicalPath: f.LogicalPath, Address: t.Address})
	}
	return owned
}

// ResolveAddress parses an address spec, relative to the workspace root, as
// written on the command line.
func (s *Snapshot) ResolveAddress(spec string) (address.Address, error) {
	in, err := address.ParseInput(spec, "")
	if err != nil {
		return address.NoAddress, err
	}
	return in.Resolve(s.IsFile)
}

// ExplicitDependencies parses the dependencies field of the target.
func (s *Snapshot) ExplicitDependencies(t *thrifttarget.Target) (*resolver.ExplicitDependencies, error) {
	deps, err := resolver.ParseExplicitDependencies(t.Dependencies, t.Address.SpecPath, s.IsFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Address, err)
	}
	return deps, nil
}

func computeDigest(s *Snapshot) (string, error) {
	var lines []string
	for _, root := range s.roots {
		lines = append(lines, "root "+root)
	}
	for p, d := range s.buildFiles {
		lines = append(lines, "build "+p+" "+d)
	}
	for p, f := range s.files {
		lines = append(lines, "file "+p+" "+f.LogicalPath+" "+f.Digest)
	}
	sort.Strings(lines)
	return collections.Sha256(strings.NewReader(strings.Join(lines, "\n")))
}

func sortGenerators(generators []*thrifttarget.Generator) {
	sort.Slice(generators, func(i, j int) bool {
		return address.Less(generators[i].Address, generators[j].Address)
	})
}
