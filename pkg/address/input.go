package address

import (
	"fmt"
	"path"
	"strings"
)

// Input is an unresolved address spec as written by a user in a BUILD file,
// e.g. ":lib", "./f.thrift:lib" or "//src/thrift:lib".
type Input struct {
	// PathComponent is the workspace-relative part before the ':'.
	PathComponent string
	// TargetComponent is the part after the ':' (may contain "../" prefixes
	// for file addresses).
	TargetComponent string
	// Spec is the original string, used for error messages.
	Spec string
}

// InvalidAddressError is returned when an address spec cannot be parsed.
type InvalidAddressError struct {
	Spec   string
	Reason string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address %q: %s", e.Spec, e.Reason)
}

// ParseInput parses the given spec.  Relative forms (":name", "./x", "../x")
// are interpreted relative to the directory relativeTo.
func ParseInput(spec, relativeTo string) (Input, error) {
	in := Input{Spec: spec}
	if strings.TrimSpace(spec) == "" {
		return in, &InvalidAddressError{Spec: spec, Reason: "empty spec"}
	}
	if strings.ContainsAny(spec, " \t\n") {
		return in, &InvalidAddressError{Spec: spec, Reason: "whitespace is not allowed"}
	}

	pathComponent := spec
	if i := strings.IndexByte(spec, ':'); i >= 0 {
		pathComponent = spec[:i]
		in.TargetComponent = spec[i+1:]
		if in.TargetComponent == "" {
			return in, &InvalidAddressError{Spec: spec, Reason: "empty target name"}
		}
		if strings.Contains(in.TargetComponent, ":") {
			return in, &InvalidAddressError{Spec: spec, Reason: "more than one ':'"}
		}
	}

	relativeTo = cleanDir(relativeTo)
	switch {
	case strings.HasPrefix(pathComponent, "//"):
		pathComponent = strings.TrimPrefix(pathComponent, "//")
	case pathComponent == "":
		pathComponent = relativeTo
	case pathComponent == "." || strings.HasPrefix(pathComponent, "./"),
		pathComponent == ".." || strings.HasPrefix(pathComponent, "../"):
		joined := path.Join(relativeTo, pathComponent)
		if joined == ".." || strings.HasPrefix(joined, "../") {
			return in, &InvalidAddressError{Spec: spec, Reason: "path escapes the workspace"}
		}
		pathComponent = joined
	}
	in.PathComponent = cleanDir(pathComponent)

	return in, nil
}

// DirAddress interprets the input as a BUILD target address.
func (in Input) DirAddress() Address {
	return New(in.PathComponent, in.TargetComponent, "")
}

// FileAddress interprets the input as a file address.  A target component of
// the form "../../name" means the BUILD file lives that many directories above
// the file.
func (in Input) FileAddress() (Address, error) {
	dir, file := path.Split(in.PathComponent)
	dir = strings.TrimSuffix(dir, "/")
	if in.TargetComponent == "" {
		return New(dir, "", file), nil
	}

	parents := strings.Count(in.TargetComponent, "/")
	if parents == 0 {
		return New(dir, in.TargetComponent, file), nil
	}

	prefix := in.TargetComponent[:strings.LastIndexByte(in.TargetComponent, '/')+1]
	if prefix != strings.Repeat("../", parents) {
		return NoAddress, &InvalidAddressError{Spec: in.Spec, Reason: "target name may only be prefixed by '../' segments"}
	}
	components := strings.Split(in.PathComponent, "/")
	if len(components) <= parents {
		return NoAddress, &InvalidAddressError{Spec: in.Spec, Reason: "too many '../' segments"}
	}
	split := len(components) - parents - 1
	return New(
		strings.Join(components[:split], "/"),
		path.Base(in.TargetComponent),
		strings.Join(components[split:], "/"),
	), nil
}

// Resolve turns the input into an Address.  The isFile predicate decides
// whether the path component names a file (yielding a file address) or a
// directory.
func (in Input) Resolve(isFile func(path string) bool) (Address, error) {
	if isFile != nil && isFile(in.PathComponent) {
		return in.FileAddress()
	}
	return in.DirAddress(), nil
}
