package resolver

import (
	"sort"

	"github.com/stackb/thrift-deps/pkg/address"
)

// OwnedFile associates the root-stripped logical path of a physical file with
// the address of a target that owns it.
type OwnedFile struct {
	// LogicalPath is the path used by include statements, e.g.
	// "dir/file.thrift".
	LogicalPath string
	// Address is the owning target (typically a generated file target).
	Address address.Address
}

// ThriftMapping is an immutable index of which address provides each logical
// path.  A logical path is present in exactly one of the unambiguous mapping
// or the ambiguous modules.
type ThriftMapping struct {
	mapping   map[string]address.Address
	ambiguous map[string][]address.Address
}

// BuildThriftMapping groups the given owned files by logical path.  Paths with
// a single owner are placed in the mapping; paths with several owners are
// withheld from it and recorded as ambiguous, with candidates sorted by their
// string form.  Duplicate (path, address) pairs count as one owner.
func BuildThriftMapping(files []OwnedFile) *ThriftMapping {
	owners := make(map[string]map[address.Address]bool)
	for _, f := range files {
		set, ok := owners[f.LogicalPath]
		if !ok {
			set = make(map[address.Address]bool)
			owners[f.LogicalPath] = set
		}
		set[f.Address] = true
	}

	m := &ThriftMapping{
		mapping:   make(map[string]address.Address),
		ambiguous: make(map[string][]address.Address),
	}
	for logicalPath, set := range owners {
		addrs := make([]address.Address, 0, len(set))
		for addr := range set {
			addrs = append(addrs, addr)
		}
		if len(addrs) == 1 {
			m.mapping[logicalPath] = addrs[0]
			continue
		}
		SortAddresses(addrs)
		m.ambiguous[logicalPath] = addrs
	}
	return m
}

// NewThriftMapping constructs a mapping from already-partitioned parts, e.g.
// when restoring from a cache.  It returns nil if a path appears in both or
// an ambiguous entry has less than two candidates.
func NewThriftMapping(mapping map[string]address.Address, ambiguous map[string][]address.Address) *ThriftMapping {
	m := &ThriftMapping{
		mapping:   make(map[string]address.Address, len(mapping)),
		ambiguous: make(map[string][]address.Address, len(ambiguous)),
	}
	for k, v := range mapping {
		m.mapping[k] = v
	}
	for k, v := range ambiguous {
		if _, ok := m.mapping[k]; ok || len(v) < 2 {
			return nil
		}
		addrs := append([]address.Address(nil), v...)
		SortAddresses(addrs)
		m.ambiguous[k] = addrs
	}
	return m
}

// Lookup returns the resolution of the given logical path.
func (m *ThriftMapping) Lookup(logicalPath string) Lookup {
	if owner, ok := m.mapping[logicalPath]; ok {
		return Lookup{Kind: LookupOwned, Owner: owner}
	}
	if candidates, ok := m.ambiguous[logicalPath]; ok {
		return Lookup{Kind: LookupAmbiguous, Candidates: append([]address.Address(nil), candidates...)}
	}
	return Lookup{Kind: LookupNotFound}
}

// Mapping returns a copy of the unambiguous entries.
func (m *ThriftMapping) Mapping() map[string]address.Address {
	out := make(map[string]address.Address, len(m.mapping))
	for k, v := range m.mapping {
		out[k] = v
	}
	return out
}

// AmbiguousModules returns a copy of the ambiguous entries.
func (m *ThriftMapping) AmbiguousModules() map[string][]address.Address {
	out := make(map[string][]address.Address, len(m.ambiguous))
	for k, v := range m.ambiguous {
		out[k] = append([]address.Address(nil), v...)
	}
	return out
}

// Paths returns all logical paths known to the mapping, sorted.
func (m *ThriftMapping) Paths() []string {
	paths := make([]string, 0, len(m.mapping)+len(m.ambiguous))
	for k := range m.mapping {
		paths = append(paths, k)
	}
	for k := range m.ambiguous {
		paths = append(paths, k)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of logical paths in the mapping.
func (m *ThriftMapping) Len() int {
	return len(m.mapping) + len(m.ambiguous)
}

// SortAddresses sorts in place by string form.
func SortAddresses(addrs []address.Address) {
	sort.Slice(addrs, func(i, j int) bool {
		return address.Less(addrs[i], addrs[j])
	})
}
