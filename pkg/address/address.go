package address

import (
	"path"
	"strings"

	"github.com/bazelbuild/bazel-gazelle/label"
)

// Address identifies a node in the build graph.  A BUILD target is identified
// by the directory of its BUILD file (SpecPath) and its name.  A target
// generated for a single file of a multi-file target additionally carries the
// path of that file relative to SpecPath.
//
// Address is a comparable value type and can be used as a map key.  Use New to
// construct one so that TargetName is normalized.
type Address struct {
	// SpecPath is the workspace-relative directory of the BUILD file.
	SpecPath string
	// TargetName is the explicit target name.  It is empty when the name is
	// the default one (the basename of SpecPath).
	TargetName string
	// RelativeFilePath is the file, relative to SpecPath, for generated file
	// targets.
	RelativeFilePath string
}

// NoAddress is the zero value.
var NoAddress = Address{}

// New constructs a normalized address.
func New(specPath, targetName, relativeFilePath string) Address {
	specPath = cleanDir(specPath)
	if targetName == path.Base(specPath) && specPath != "" {
		targetName = ""
	}
	return Address{
		SpecPath:         specPath,
		TargetName:       targetName,
		RelativeFilePath: relativeFilePath,
	}
}

// Name returns the effective target name.
func (a Address) Name() string {
	if a.TargetName != "" {
		return a.TargetName
	}
	if a.SpecPath == "" {
		return ""
	}
	return path.Base(a.SpecPath)
}

// IsFileTarget reports whether this address refers to a single file of a
// multi-file target.
func (a Address) IsFileTarget() bool {
	return a.RelativeFilePath != ""
}

// Filename returns the workspace-relative path of the file for file targets,
// or the SpecPath otherwise.
func (a Address) Filename() string {
	if a.RelativeFilePath == "" {
		return a.SpecPath
	}
	return path.Join(a.SpecPath, a.RelativeFilePath)
}

// Generator returns the address of the target that generated this one.  For
// non-file addresses it returns the receiver.
func (a Address) Generator() Address {
	return Address{SpecPath: a.SpecPath, TargetName: a.TargetName}
}

// String renders the address spec, e.g. "src/thrift/f.thrift:lib" or
// "src/thrift:lib".
func (a Address) String() string {
	var b strings.Builder
	if a.SpecPath == "" {
		b.WriteString("//")
	}
	if a.RelativeFilePath == "" {
		b.WriteString(a.SpecPath)
		if a.TargetName != "" {
			b.WriteByte(':')
			b.WriteString(a.TargetName)
		}
		return b.String()
	}

	b.WriteString(a.Filename())
	// files in subdirectories of the BUILD file refer back up to it
	parents := strings.Repeat("../", strings.Count(a.RelativeFilePath, "/"))
	if a.TargetName != "" || parents != "" {
		b.WriteByte(':')
		b.WriteString(parents)
		b.WriteString(a.Name())
	}
	return b.String()
}

// Label converts the address into a bazel label.  File addresses keep the
// file as part of the package-relative name.
func (a Address) Label() label.Label {
	name := a.Name()
	if a.RelativeFilePath != "" {
		name = a.RelativeFilePath
	}
	return label.New("", a.SpecPath, name)
}

// Less orders addresses by their string form.
func Less(a, b Address) bool {
	return a.String() < b.String()
}

func cleanDir(dir string) string {
	dir = strings.TrimPrefix(dir, "//")
	if dir == "" || dir == "." {
		return ""
	}
	dir = path.Clean(dir)
	if dir == "." {
		return ""
	}
	return strings.TrimPrefix(dir, "/")
}
