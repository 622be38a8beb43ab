package thrifttarget

import (
	"fmt"
	"strings"

	"github.com/stackb/thrift-deps/pkg/address"
)

// UnmatchedOverrideError is returned when keys of the overrides field match
// no generated file.
type UnmatchedOverrideError struct {
	Address address.Address
	Keys    []string
}

func (e *UnmatchedOverrideError) Error() string {
	return fmt.Sprintf("unused key in the `overrides` field for %s: ['%s']", e.Address, strings.Join(e.Keys, "', '"))
}

// ConflictingOverrideError is returned when a file is named by more than one
// overrides key.
type ConflictingOverrideError struct {
	Address address.Address
	File    string
}

func (e *ConflictingOverrideError) Error() string {
	return fmt.Sprintf("file %q is overridden more than once in the `overrides` field for %s", e.File, e.Address)
}

// BuildFileError wraps an error that occurred while reading a BUILD file
// target.
type BuildFileError struct {
	Path string
	Name string
	Err  error
}

func (e *BuildFileError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s: target %q: %v", e.Path, e.Name, e.Err)
}

func (e *BuildFileError) Unwrap() error {
	return e.Err
}
