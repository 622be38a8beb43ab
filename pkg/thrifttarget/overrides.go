package thrifttarget

import (
	"fmt"
	"sort"

	"github.com/bazelbuild/bazel-gazelle/rule"
	"github.com/bazelbuild/buildtools/build"

	"github.com/stackb/thrift-deps/pkg/address"
	"github.com/stackb/thrift-deps/pkg/glob"
	"github.com/stackb/thrift-deps/pkg/starlarkeval"
)

// Override replaces fields of the targets generated for Files.
type Override struct {
	// Files are the override key, relative to the BUILD directory.
	Files []string
	// Tags replaces the generator's tags when non-nil.
	Tags []string
	// Dependencies replaces the generator's dependencies when non-nil.
	Dependencies []string
}

// parseOverrides reads an overrides dict.  Keys are a file or a tuple of
// files; values are dicts of field replacements.
func parseOverrides(file *rule.File, expr build.Expr) ([]*Override, error) {
	if expr == nil {
		return nil, nil
	}
	if ident, ok := expr.(*build.Ident); ok {
		value, err := evalIdent(file, ident.Name)
		if err != nil {
			return nil, fmt.Errorf("overrides: %w", err)
		}
		expr = value
	}
	dict, ok := expr.(*build.DictExpr)
	if !ok {
		return nil, fmt.Errorf("overrides: expected a dict, got %T", expr)
	}

	var overrides []*Override
	for _, kv := range dict.List {
		files, err := glob.ExprStrings(file, kv.Key)
		if err != nil {
			return nil, fmt.Errorf("overrides key: %w", err)
		}
		fields, ok := kv.Value.(*build.DictExpr)
		if !ok {
			return nil, fmt.Errorf("overrides[%v]: expected a dict, got %T", files, kv.Value)
		}
		o := &Override{Files: files}
		for _, field := range fields.List {
			key, ok := field.Key.(*build.StringExpr)
			if !ok {
				return nil, fmt.Errorf("overrides[%v]: field names must be strings", files)
			}
			values, err := glob.ExprStrings(file, field.Value)
			if err != nil {
				return nil, fmt.Errorf("overrides[%v][%q]: %w", files, key.Value, err)
			}
			if values == nil {
				values = []string{}
			}
			switch key.Value {
			case "tags":
				o.Tags = values
			case "dependencies":
				o.Dependencies = values
			default:
				return nil, fmt.Errorf("overrides[%v]: unsupported field %q", files, key.Value)
			}
		}
		overrides = append(overrides, o)
	}
	return overrides, nil
}

func evalIdent(file *rule.File, name string) (build.Expr, error) {
	var kinds []string
	for _, r := range file.Rules {
		kinds = append(kinds, r.Kind())
	}
	globals, err := starlarkeval.ExecBuildFile(file.Path, file.Format(), kinds...)
	if err != nil {
		return nil, err
	}
	value, ok := globals[name]
	if !ok {
		return nil, fmt.Errorf("unknown global identifier: %s", name)
	}
	expr := starlarkeval.ConvValue(value)
	if expr == nil {
		return nil, fmt.Errorf("%s: unsupported value of type %s", name, value.Type())
	}
	return expr, nil
}

// overridesByFile indexes overrides by file.  A file named by more than one
// key is an error.
func overridesByFile(g *Generator) (map[string]*Override, error) {
	byFile := make(map[string]*Override)
	for _, o := range g.Overrides {
		for _, f := range o.Files {
			if _, ok := byFile[f]; ok {
				return nil, &ConflictingOverrideError{Address: g.Address, File: f}
			}
			byFile[f] = o
		}
	}
	return byFile, nil
}

// Generate expands the generator into its file targets, sorted by address.
func Generate(g *Generator) ([]*Target, error) {
	if !g.Kind.Generates() {
		return []*Target{{
			Address:      g.Address,
			Kind:         g.Kind.Name(),
			Source:       g.Sources[0],
			Dependencies: copyStrings(g.Dependencies),
			Tags:         copyStrings(g.Tags),
		}}, nil
	}

	byFile, err := overridesByFile(g)
	if err != nil {
		return nil, err
	}

	used := make(map[string]bool)
	targets := make([]*Target, 0, len(g.Sources))
	for _, src := range g.Sources {
		t := &Target{
			Address:      address.New(g.Dir(), g.Address.Name(), src),
			Kind:         g.Kind.Name(),
			Source:       src,
			Dependencies: copyStrings(g.Dependencies),
			Tags:         copyStrings(g.Tags),
		}
		if o, ok := byFile[src]; ok {
			used[src] = true
			if o.Tags != nil {
				t.Tags = copyStrings(o.Tags)
			}
			if o.Dependencies != nil {
				t.Dependencies = copyStrings(o.Dependencies)
			}
		}
		targets = append(targets, t)
	}

	var unused []string
	for f := range byFile {
		if !used[f] {
			unused = append(unused, f)
		}
	}
	if len(unused) > 0 {
		sort.Strings(unused)
		return nil, &UnmatchedOverrideError{Address: g.Address, Keys: unused}
	}

	SortTargets(targets)
	return targets, nil
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
