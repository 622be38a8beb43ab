package thrifttarget

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/bazelbuild/bazel-gazelle/rule"
	"github.com/bazelbuild/buildtools/build"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stackb/thrift-deps/pkg/address"
	"github.com/stackb/thrift-deps/pkg/glob"
)

// Loader reads thrift targets from BUILD files.
type Loader struct {
	registry KindRegistry
	logger   zerolog.Logger
}

// LoaderOption modifies the Loader.
type LoaderOption func(*Loader)

// WithKindRegistry sets the registry of recognized rule kinds.
func WithKindRegistry(registry KindRegistry) LoaderOption {
	return func(l *Loader) {
		l.registry = registry
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader constructs a Loader.  By default it uses the global kind
// registry and discards logs.
func NewLoader(options ...LoaderOption) *Loader {
	l := &Loader{
		registry: GlobalKindRegistry(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// LoadBuildFile parses the BUILD file at the workspace-relative buildPath and
// returns its thrift targets in declaration order.  Globs are evaluated over
// fsys, which is rooted at the workspace.  Rules of unknown kinds are skipped.
func (l *Loader) LoadBuildFile(fsys fs.FS, buildPath string, data []byte) ([]*Generator, error) {
	dir := path.Dir(buildPath)
	if dir == "." {
		dir = ""
	}
	file, err := rule.LoadData(buildPath, dir, data)
	if err != nil {
		return nil, &BuildFileError{Path: buildPath, Err: err}
	}

	dirFS := fsys
	if dir != "" {
		if dirFS, err = fs.Sub(fsys, dir); err != nil {
			return nil, &BuildFileError{Path: buildPath, Err: err}
		}
	}

	var generators []*Generator
	for _, r := range file.Rules {
		kind, err := l.registry.LookupKind(r.Kind())
		if status.Code(err) == codes.NotFound {
			continue
		}
		if err != nil {
			return nil, &BuildFileError{Path: buildPath, Name: r.Name(), Err: err}
		}
		g, err := l.loadRule(file, dirFS, dir, kind, r)
		if err != nil {
			return nil, &BuildFileError{Path: buildPath, Name: r.Name(), Err: err}
		}
		l.logger.Debug().
			Str("address", g.Address.String()).
			Int("sources", len(g.Sources)).
			Msg("loaded target")
		generators = append(generators, g)
	}

	return generators, nil
}

func (l *Loader) loadRule(file *rule.File, dirFS fs.FS, dir string, kind Kind, r *rule.Rule) (*Generator, error) {
	name := r.Name()
	if name == "" {
		if dir == "" {
			return nil, errors.New("name is required for targets at the workspace root")
		}
		name = path.Base(dir)
	}

	g := &Generator{
		Kind:    kind,
		Address: address.New(dir, name, ""),
	}

	var err error
	if g.Sources, err = l.loadSources(file, dirFS, kind, r); err != nil {
		return nil, err
	}
	if g.Dependencies, err = stringsAttr(file, r, "dependencies"); err != nil {
		return nil, err
	}
	if g.Tags, err = stringsAttr(file, r, "tags"); err != nil {
		return nil, err
	}
	if kind.Generates() {
		if g.Overrides, err = parseOverrides(file, r.Attr("overrides")); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func (l *Loader) loadSources(file *rule.File, dirFS fs.FS, kind Kind, r *rule.Rule) ([]string, error) {
	attr := kind.SourcesAttr()
	expr := r.Attr(attr)

	if !kind.Generates() {
		if expr == nil {
			return nil, fmt.Errorf("missing required field %q", attr)
		}
		values, err := glob.ExprStrings(file, expr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", attr, err)
		}
		if len(values) != 1 || glob.IsPattern(values[0]) {
			return nil, fmt.Errorf("%s: must name exactly one file", attr)
		}
		if info, err := fs.Stat(dirFS, values[0]); err != nil || info.IsDir() {
			return nil, fmt.Errorf("%s: file %q does not exist", attr, values[0])
		}
		return values, nil
	}

	if expr == nil {
		list := &build.ListExpr{}
		for _, src := range kind.DefaultSources() {
			list.List = append(list.List, &build.StringExpr{Value: src})
		}
		expr = list
	}
	files, err := glob.CollectFilenames(file, dirFS, expr, l.logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", attr, err)
	}
	return dedupeSorted(files), nil
}

func stringsAttr(file *rule.File, r *rule.Rule, name string) ([]string, error) {
	expr := r.Attr(name)
	if expr == nil {
		return nil, nil
	}
	values, err := glob.ExprStrings(file, expr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return values, nil
}

func dedupeSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
