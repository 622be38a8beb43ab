package resolver

import (
	"errors"
	"sort"

	"github.com/bazelbuild/buildtools/build"

	"github.com/stackb/thrift-deps/pkg/address"
)

// ImportMap is a map of imports keyed by the import string.
type ImportMap map[string]*Import

func NewImportMap(imports ...*Import) ImportMap {
	m := make(ImportMap)
	for _, imp := range imports {
		m.Put(imp)
	}
	return m
}

// Keys returns a sorted list of imports.
func (imports ImportMap) Keys() []string {
	keys := make([]string, 0, len(imports))
	for k := range imports {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values returns a list of *Import sorted by key.
func (imports ImportMap) Values() []*Import {
	vals := make([]*Import, 0, len(imports))
	for _, k := range imports.Keys() {
		vals = append(vals, imports[k])
	}
	return vals
}

// Deps returns a de-duplicated, sorted list of addresses that represent the
// inferred deps for the importing target (from).  Self-dependencies are
// dropped.
func (imports ImportMap) Deps(from address.Address) []address.Address {
	seen := make(map[address.Address]bool)
	seen[address.NoAddress] = true
	seen[from] = true

	deps := make([]address.Address, 0, len(imports))
	for _, imp := range imports {
		if !imp.HasOwner() {
			continue
		}
		if seen[imp.Owner] {
			continue
		}
		deps = append(deps, imp.Owner)
		seen[imp.Owner] = true
	}
	SortAddresses(deps)

	return deps
}

// Ambiguous returns the diagnostics of all ambiguous imports, sorted by
// import.
func (imports ImportMap) Ambiguous() []*AmbiguousImportError {
	var errs []*AmbiguousImportError
	for _, imp := range imports.Values() {
		var ambiguous *AmbiguousImportError
		if errors.As(imp.Error, &ambiguous) {
			errs = append(errs, ambiguous)
		}
	}
	return errs
}

// Put the given import in the map.  A later import with the same key
// replaces an earlier one; resolution of the same key is deterministic.
func (imports ImportMap) Put(imp *Import) {
	imports[imp.Imp] = imp
}

// Annotate adds a comment line for each accepted import before the given
// comments block, e.g. the comments of a BUILD rule.
func (imports ImportMap) Annotate(comments *build.Comments, accept func(imp *Import) bool) {
	for _, key := range imports.Keys() {
		imp := imports[key]
		if !accept(imp) {
			continue
		}
		comments.Before = append(comments.Before, build.Comment{Token: "# " + imp.String()})
	}
}
