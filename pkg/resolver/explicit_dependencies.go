package resolver

import (
	"fmt"
	"strings"

	"github.com/stackb/thrift-deps/pkg/address"
)

// ExplicitDependencies is the parsed `dependencies` field of a target.  Plain
// entries are includes; entries prefixed by "!" (or "!!") are excludes, used to
// disambiguate inferred dependencies.  It is never mutated during resolution.
type ExplicitDependencies struct {
	Includes map[address.Address]bool
	Excludes map[address.Address]bool
}

// ParseExplicitDependencies parses the raw dependency specs of a target whose
// BUILD file lives in relativeTo.  The isFile predicate distinguishes file
// addresses from target addresses.
func ParseExplicitDependencies(specs []string, relativeTo string, isFile func(string) bool) (*ExplicitDependencies, error) {
	deps := &ExplicitDependencies{
		Includes: make(map[address.Address]bool),
		Excludes: make(map[address.Address]bool),
	}
	for _, spec := range specs {
		exclude := false
		if strings.HasPrefix(spec, "!") {
			exclude = true
			spec = strings.TrimPrefix(strings.TrimPrefix(spec, "!"), "!")
		}
		in, err := address.ParseInput(spec, relativeTo)
		if err != nil {
			return nil, fmt.Errorf("dependencies: %w", err)
		}
		addr, err := in.Resolve(isFile)
		if err != nil {
			return nil, fmt.Errorf("dependencies: %w", err)
		}
		if exclude {
			deps.Excludes[addr] = true
		} else {
			deps.Includes[addr] = true
		}
	}
	return deps, nil
}

// IsExcluded reports whether the address, or the target that generated it,
// was excluded.
func (d *ExplicitDependencies) IsExcluded(addr address.Address) bool {
	if d == nil {
		return false
	}
	return d.Excludes[addr] || d.Excludes[addr.Generator()]
}

// AnyIncluded reports whether any of the given addresses, or the targets that
// generated them, was explicitly listed.
func (d *ExplicitDependencies) AnyIncluded(addrs []address.Address) bool {
	if d == nil {
		return false
	}
	for _, addr := range addrs {
		if d.Includes[addr] || d.Includes[addr.Generator()] {
			return true
		}
	}
	return false
}

// Disambiguate partitions candidates into those remaining and those excluded.
// Input order is preserved.
func (d *ExplicitDependencies) Disambiguate(candidates []address.Address) (remaining, excluded []address.Address) {
	for _, addr := range candidates {
		if d.IsExcluded(addr) {
			excluded = append(excluded, addr)
		} else {
			remaining = append(remaining, addr)
		}
	}
	return
}

// IncludeList returns the includes sorted.
func (d *ExplicitDependencies) IncludeList() []address.Address {
	if d == nil {
		return nil
	}
	return sortedKeys(d.Includes)
}

// ExcludeList returns the excludes sorted.
func (d *ExplicitDependencies) ExcludeList() []address.Address {
	if d == nil {
		return nil
	}
	return sortedKeys(d.Excludes)
}

func sortedKeys(set map[address.Address]bool) []address.Address {
	addrs := make([]address.Address, 0, len(set))
	for addr := range set {
		addrs = append(addrs, addr)
	}
	SortAddresses(addrs)
	return addrs
}
