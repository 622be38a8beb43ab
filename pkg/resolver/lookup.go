package resolver

import (
	"fmt"

	"github.com/stackb/thrift-deps/pkg/address"
)

// LookupKind classifies the result of a mapping lookup.
type LookupKind int

const (
	// LookupNotFound means no indexed file provides the path.
	LookupNotFound LookupKind = iota
	// LookupOwned means exactly one address provides the path.
	LookupOwned
	// LookupAmbiguous means several addresses provide the path.
	LookupAmbiguous
)

func (k LookupKind) String() string {
	switch k {
	case LookupNotFound:
		return "NOT_FOUND"
	case LookupOwned:
		return "OWNED"
	case LookupAmbiguous:
		return "AMBIGUOUS"
	default:
		return fmt.Sprintf("LookupKind(%d)", int(k))
	}
}

// Lookup is the tagged result of ThriftMapping.Lookup.  Owner is only set for
// LookupOwned, Candidates only for LookupAmbiguous.
type Lookup struct {
	Kind       LookupKind
	Owner      address.Address
	Candidates []address.Address
}
