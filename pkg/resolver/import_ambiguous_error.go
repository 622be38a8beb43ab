package resolver

import (
	"fmt"
	"strings"

	"github.com/stackb/thrift-deps/pkg/address"
)

// NewAmbiguousImportError constructs a diagnostic for the import imp of the
// target from.  Candidates and excluded are copied and sorted.
func NewAmbiguousImportError(from address.Address, imp string, candidates, excluded []address.Address) *AmbiguousImportError {
	e := &AmbiguousImportError{
		From:       from,
		Imp:        imp,
		Candidates: append([]address.Address(nil), candidates...),
		Excluded:   append([]address.Address(nil), excluded...),
	}
	SortAddresses(e.Candidates)
	SortAddresses(e.Excluded)
	return e
}

// AmbiguousImportError is assigned to an Import when more than one target
// provides the imported path and the importing target's dependencies field
// does not narrow it down to one.
type AmbiguousImportError struct {
	// From is the importing target.
	From address.Address
	// Imp is the logical path that is ambiguous.
	Imp string
	// Candidates are the owners left after exclusions.
	Candidates []address.Address
	// Excluded are the owners removed by "!" entries.  They are only counted
	// in the message, never named.
	Excluded []address.Address
}

// Error implements the error interface.
func (e *AmbiguousImportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "The target %s imports `%s` ambiguously: it could be one of %s",
		e.From, e.Imp, formatAddressList(e.Candidates))
	switch n := len(e.Excluded); n {
	case 0:
	case 1:
		b.WriteString(` (1 other candidate excluded by "!" entries in the dependencies field)`)
	default:
		fmt.Fprintf(&b, ` (%d other candidates excluded by "!" entries in the dependencies field)`, n)
	}
	return b.String()
}

// Hint returns advice on how to fix the ambiguity.
func (e *AmbiguousImportError) Hint() string {
	return fmt.Sprintf("Please explicitly include the dependency you want in the `dependencies` field of %s, "+
		"or ignore the ones you do not want by prefixing with `!` so that one or no targets are left.", e.From)
}

// formatAddressList renders addresses as a bracketed list of quoted specs,
// e.g. ['a/b.thrift:x', 'a/b.thrift:y'].
func formatAddressList(addrs []address.Address) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, addr := range addrs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('\'')
		b.WriteString(addr.String())
		b.WriteByte('\'')
	}
	b.WriteByte(']')
	return b.String()
}
