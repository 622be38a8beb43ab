package glob

import (
	"fmt"
	"io/fs"

	"github.com/bazelbuild/bazel-gazelle/rule"
	"github.com/bazelbuild/buildtools/build"
	"github.com/rs/zerolog"
	"go.starlark.net/starlark"

	"github.com/stackb/thrift-deps/pkg/starlarkeval"
)

type collector struct {
	file   *rule.File
	fsys   fs.FS
	logger zerolog.Logger
	glob   rule.GlobValue
	srcs   []string
}

// CollectFilenames returns the files matched by a sources attribute, relative
// to the root of fsys (the BUILD file directory).  The attribute may be a
// list of patterns (with "!" exclusions), a glob() call, a top-level
// identifier or a concatenation of these.
func CollectFilenames(file *rule.File, fsys fs.FS, expr build.Expr, logger zerolog.Logger) ([]string, error) {
	c := collector{file: file, fsys: fsys, logger: logger}
	if err := c.fromExpr(expr); err != nil {
		return nil, err
	}
	matched, err := Apply(c.glob, fsys)
	if err != nil {
		return nil, err
	}
	return append(c.srcs, matched...), nil
}

func (c *collector) fromExpr(expr build.Expr) error {
	switch t := expr.(type) {
	case *build.BinaryExpr:
		if err := c.fromExpr(t.X); err != nil {
			return err
		}
		return c.fromExpr(t.Y)
	case *build.CallExpr:
		// example: glob(["**/*.thrift"])
		ident, ok := t.X.(*build.Ident)
		if !ok {
			return fmt.Errorf("not attempting to resolve call expression %s: consider making this simpler", build.FormatString(t))
		}
		if ident.Name != "glob" {
			return fmt.Errorf("not attempting to resolve function call %v(): consider making this simpler", ident.Name)
		}
		g := Parse(c.file, t, c.logger)
		srcs, err := Apply(g, c.fsys)
		if err != nil {
			return err
		}
		c.srcs = append(c.srcs, srcs...)
		return nil
	case nil:
		return nil
	default:
		// example: ["*.thrift", "!skip.thrift"] or SOURCES
		values, err := ExprStrings(c.file, t)
		if err != nil {
			return fmt.Errorf("uninterpretable sources attribute: %w", err)
		}
		g := FromSources(values)
		c.glob.Patterns = append(c.glob.Patterns, g.Patterns...)
		c.glob.Excludes = append(c.glob.Excludes, g.Excludes...)
		return nil
	}
}

// ExprStrings interprets the expression as a list of strings.  Identifiers
// are resolved against the top-level assignments of the file.
func ExprStrings(file *rule.File, expr build.Expr) ([]string, error) {
	switch t := expr.(type) {
	case *build.StringExpr:
		return []string{t.Value}, nil
	case *build.ListExpr:
		return stringList(t)
	case *build.TupleExpr:
		return stringList(&build.ListExpr{List: t.List})
	case *build.Ident:
		return globalStringList(file, t)
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", expr)
	}
}

func stringList(list *build.ListExpr) ([]string, error) {
	values := make([]string, 0, len(list.List))
	for _, item := range list.List {
		elem, ok := item.(*build.StringExpr)
		if !ok {
			return nil, fmt.Errorf("list item %s is not a string", build.FormatString(item))
		}
		values = append(values, elem.Value)
	}
	return values, nil
}

// globalStringList resolves a top-level identifier.  Simple list literals are
// read from the AST; anything else is evaluated.
func globalStringList(file *rule.File, ident *build.Ident) ([]string, error) {
	if file == nil {
		return nil, fmt.Errorf("unknown global identifier: %s", ident.Name)
	}
	if value, err := resolveGlobalAssignment(file, ident.Name); err == nil {
		if list, ok := value.(*build.ListExpr); ok {
			if values, err := stringList(list); err == nil {
				return values, nil
			}
		}
	}
	value, err := evalGlobalIdentifier(file, ident.Name)
	if err != nil {
		return nil, fmt.Errorf("%s must resolve to a starlark List[String]: %w", ident.Name, err)
	}
	return starlarkeval.StringList(value)
}

func resolveGlobalAssignment(file *rule.File, identName string) (build.Expr, error) {
	for _, stmt := range file.File.Stmt {
		if t, ok := stmt.(*build.AssignExpr); ok {
			if ident, ok := t.LHS.(*build.Ident); ok && ident.Name == identName {
				return t.RHS, nil
			}
		}
	}
	return nil, fmt.Errorf("unknown global identifier: %s", identName)
}

func evalGlobalIdentifier(file *rule.File, identName string) (starlark.Value, error) {
	var kinds []string
	for _, r := range file.Rules {
		kinds = append(kinds, r.Kind())
	}
	globals, err := starlarkeval.ExecBuildFile(file.Path, file.Format(), kinds...)
	if err != nil {
		return nil, err
	}
	value, ok := globals[identName]
	if !ok {
		return nil, fmt.Errorf("unknown global identifier: %s", identName)
	}
	return value, nil
}
