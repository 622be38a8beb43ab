// Package thrifttarget models the BUILD targets that own thrift files.
package thrifttarget

const (
	// SourcesKind is the generator kind: one target per matched file.
	SourcesKind = "thrift_sources"
	// SourceKind is a single-file target.
	SourceKind = "thrift_source"
)

// Kind describes a rule kind that owns thrift files.
type Kind interface {
	// Name is the rule name as written in BUILD files.
	Name() string
	// SourcesAttr is the attribute holding the files.
	SourcesAttr() string
	// DefaultSources is used when SourcesAttr is not set.  Nil means the
	// attribute is required.
	DefaultSources() []string
	// Generates reports whether the kind expands into one target per file.
	Generates() bool
}

type sourcesKind struct{}

func (sourcesKind) Name() string             { return SourcesKind }
func (sourcesKind) SourcesAttr() string      { return "sources" }
func (sourcesKind) DefaultSources() []string { return []string{"*.thrift"} }
func (sourcesKind) Generates() bool          { return true }

type sourceKind struct{}

func (sourceKind) Name() string             { return SourceKind }
func (sourceKind) SourcesAttr() string      { return "source" }
func (sourceKind) DefaultSources() []string { return nil }
func (sourceKind) Generates() bool          { return false }

func init() {
	mustRegister(sourcesKind{})
	mustRegister(sourceKind{})
}

func mustRegister(kind Kind) {
	if err := GlobalKindRegistry().RegisterKind(kind); err != nil {
		panic(err)
	}
}
