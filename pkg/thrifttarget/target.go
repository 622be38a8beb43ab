package thrifttarget

import (
	"path"
	"sort"

	"github.com/stackb/thrift-deps/pkg/address"
)

// Generator is a target as declared in a BUILD file.
type Generator struct {
	// Kind is the rule kind.
	Kind Kind
	// Address is the address of the declared target (no relative file part).
	Address address.Address
	// Sources are the owned files relative to the BUILD directory, sorted.
	Sources []string
	// Dependencies are the raw dependency specs.
	Dependencies []string
	// Tags are the declared tags.
	Tags []string
	// Overrides are per-file field overrides.
	Overrides []*Override
}

// Dir returns the directory of the BUILD file.
func (g *Generator) Dir() string {
	return g.Address.SpecPath
}

// Target is a single thrift file owner, either generated from a
// thrift_sources target or declared as thrift_source.
type Target struct {
	// Address is the target address.  For generated targets it carries the
	// relative file path.
	Address address.Address
	// Kind is the name of the declaring rule kind.
	Kind string
	// Source is the owned file relative to the BUILD directory.
	Source string
	// Dependencies are the raw dependency specs.
	Dependencies []string
	// Tags are the effective tags.
	Tags []string
}

// File returns the workspace-relative path of the owned file.
func (t *Target) File() string {
	return path.Join(t.Address.SpecPath, t.Source)
}

// SortTargets orders targets by address.
func SortTargets(targets []*Target) {
	sort.Slice(targets, func(i, j int) bool {
		return address.Less(targets[i].Address, targets[j].Address)
	})
}
