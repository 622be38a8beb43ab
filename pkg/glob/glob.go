package glob

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/bazelbuild/bazel-gazelle/rule"
	"github.com/bazelbuild/buildtools/build"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
)

// Parse reads the patterns and excludes of a glob() call.  Identifiers are
// resolved against top-level assignments of the file.  Unsupported arguments
// are logged and skipped.
func Parse(file *rule.File, call *build.CallExpr, logger zerolog.Logger) (glob rule.GlobValue) {
	for i, expr := range call.List {
		switch e := expr.(type) {
		case *build.AssignExpr:
			ident, ok := e.LHS.(*build.Ident)
			if !ok {
				continue
			}
			if ident.Name != "exclude" {
				logger.Debug().Str("arg", ident.Name).Msg("skipping glob assignment (unrecognized property)")
				continue
			}
			values, err := ExprStrings(file, e.RHS)
			if err != nil {
				logger.Debug().Err(err).Msg("skipping glob exclude")
				continue
			}
			glob.Excludes = append(glob.Excludes, values...)
		case *build.ListExpr, *build.Ident:
			values, err := ExprStrings(file, e)
			if err != nil {
				logger.Debug().Err(err).Msg("skipping glob pattern list")
				continue
			}
			glob.Patterns = append(glob.Patterns, values...)
		default:
			logger.Debug().Int("index", i).Msgf("skipping glob argument %T", e)
		}
	}

	return
}

// FromSources converts a sources list, where entries prefixed by "!" are
// exclusions, into a GlobValue.
func FromSources(sources []string) (glob rule.GlobValue) {
	for _, src := range sources {
		if strings.HasPrefix(src, "!") {
			glob.Excludes = append(glob.Excludes, strings.TrimPrefix(src, "!"))
		} else {
			glob.Patterns = append(glob.Patterns, src)
		}
	}
	return
}

// Apply evaluates the glob over the filesystem.  The result contains regular
// files only, is sorted and free of duplicates.  An invalid pattern is an
// error.
func Apply(glob rule.GlobValue, fsys fs.FS) ([]string, error) {
	// part 1: gather candidates
	seen := make(map[string]bool)
	var includes []string
	for _, pattern := range glob.Patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
		names, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				includes = append(includes, name)
			}
		}
	}

	// part 2: filter candidates
	var srcs []string
loop:
	for _, name := range includes {
		for _, exclude := range glob.Excludes {
			if ok, _ := doublestar.PathMatch(exclude, name); ok {
				continue loop
			}
		}
		srcs = append(srcs, name)
	}
	sort.Strings(srcs)

	return srcs, nil
}

// IsPattern reports whether the string contains glob metacharacters.
func IsPattern(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}
