package resolver

import (
	"github.com/stackb/thrift-deps/pkg/address"
)

// InferRequest describes one source file to resolve.
type InferRequest struct {
	// From is the address of the target owning the file.
	From address.Address
	// Imports are the parsed include paths, in any order, possibly with
	// duplicates.
	Imports []string
	// Explicit is the parsed dependencies field of the owning target.  May be
	// nil.
	Explicit *ExplicitDependencies
}

// InferResult is the outcome of InferDependencies.
type InferResult struct {
	// From is the importing target.
	From address.Address
	// Imports records the resolution of every distinct import.
	Imports ImportMap
	// Dependencies are the inferred edges, sorted.
	Dependencies []address.Address
	// Diagnostics are the unresolved ambiguities, sorted by import.
	Diagnostics []*AmbiguousImportError
}

// InferDependencies resolves the imports of one file against the mapping.
// Owned paths yield their owner.  Ambiguous paths yield an owner only if the
// request's exclusions leave exactly one candidate; if two or more remain a
// diagnostic is recorded instead.  Unknown paths are ignored.
func InferDependencies(mapping *ThriftMapping, req InferRequest) *InferResult {
	imports := NewImportMap()
	for _, imp := range req.Imports {
		if _, ok := imports[imp]; ok {
			continue
		}
		imports.Put(resolveImport(mapping, req, imp))
	}

	return &InferResult{
		From:         req.From,
		Imports:      imports,
		Dependencies: imports.Deps(req.From),
		Diagnostics:  imports.Ambiguous(),
	}
}

func resolveImport(mapping *ThriftMapping, req InferRequest, imp string) *Import {
	lookup := mapping.Lookup(imp)
	switch lookup.Kind {
	case LookupOwned:
		return &Import{Imp: imp, Kind: ImportOwned, Owner: lookup.Owner}

	case LookupAmbiguous:
		if req.Explicit.AnyIncluded(lookup.Candidates) {
			return &Import{Imp: imp, Kind: ImportExplicit}
		}
		remaining, excluded := req.Explicit.Disambiguate(lookup.Candidates)
		switch len(remaining) {
		case 0:
			return &Import{Imp: imp, Kind: ImportAmbiguous, Error: ErrAllCandidatesExcluded}
		case 1:
			return &Import{Imp: imp, Kind: ImportDisambiguated, Owner: remaining[0]}
		default:
			return &Import{
				Imp:   imp,
				Kind:  ImportAmbiguous,
				Error: NewAmbiguousImportError(req.From, imp, remaining, excluded),
			}
		}

	default:
		return &Import{Imp: imp, Kind: ImportUnresolved, Error: ErrImportNotFound}
	}
}

// Resolve runs InferDependencies and emits the diagnostics to the sink.
func Resolve(mapping *ThriftMapping, req InferRequest, sink DiagnosticsSink) *InferResult {
	result := InferDependencies(mapping, req)
	Emit(sink, result.Diagnostics)
	return result
}
