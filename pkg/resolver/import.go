package resolver

import (
	"fmt"

	"github.com/stackb/thrift-deps/pkg/address"
)

// ImportKind records how an import was resolved.
type ImportKind int

const (
	// ImportUnresolved means the path is not provided by any indexed file.
	ImportUnresolved ImportKind = iota
	// ImportOwned means the path has a single owner.
	ImportOwned
	// ImportDisambiguated means the path was ambiguous but exclusions left a
	// single owner.
	ImportDisambiguated
	// ImportExplicit means one of the owners is already listed in the
	// dependencies field, so nothing is inferred.
	ImportExplicit
	// ImportAmbiguous means the path remains ambiguous.
	ImportAmbiguous
)

func (k ImportKind) String() string {
	switch k {
	case ImportUnresolved:
		return "UNRESOLVED"
	case ImportOwned:
		return "OWNED"
	case ImportDisambiguated:
		return "DISAMBIGUATED"
	case ImportExplicit:
		return "EXPLICIT"
	case ImportAmbiguous:
		return "AMBIGUOUS"
	default:
		return fmt.Sprintf("ImportKind(%d)", int(k))
	}
}

// Import is used to trace how an include statement was resolved.
type Import struct {
	// Imp is the logical path as written in the include statement.
	Imp string
	// Kind is the resolution outcome.
	Kind ImportKind
	// Owner is the inferred dependency (ImportOwned, ImportDisambiguated).
	Owner address.Address
	// Error is assigned if there is a resolution error.
	Error error
}

// HasOwner reports whether the import yields a dependency edge.
func (imp *Import) HasOwner() bool {
	return imp.Error == nil && (imp.Kind == ImportOwned || imp.Kind == ImportDisambiguated)
}

func (imp *Import) String() string {
	switch {
	case imp.HasOwner():
		return fmt.Sprintf("%s -> %s (%v)", imp.Imp, imp.Owner, imp.Kind)
	case imp.Error != nil:
		return fmt.Sprintf("%s (%v: %v)", imp.Imp, imp.Kind, imp.Error)
	default:
		return fmt.Sprintf("%s (%v)", imp.Imp, imp.Kind)
	}
}
