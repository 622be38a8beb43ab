package starlarkeval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bazelbuild/buildtools/build"
	"go.starlark.net/starlark"
)

// ConvValue converts a starlark value into the equivalent build expression.
// It returns nil for values without a literal form.
func ConvValue(value starlark.Value) build.Expr {
	switch t := value.(type) {
	case starlark.Int:
		if val, ok := t.Int64(); ok {
			return &build.LiteralExpr{
				Token: strconv.FormatInt(val, 10),
			}
		}
	case starlark.String:
		return &build.StringExpr{
			Value:       t.GoString(),
			TripleQuote: strings.HasPrefix(t.String(), "\"\"\""),
		}
	case starlark.Bool:
		if t {
			return &build.Ident{Name: "True"}
		}
		return &build.Ident{Name: "False"}
	case *starlark.List:
		list := &build.ListExpr{}
		for i := 0; i < t.Len(); i++ {
			e := ConvValue(t.Index(i))
			if e == nil {
				return nil
			}
			list.List = append(list.List, e)
		}
		return list
	case starlark.Tuple:
		tuple := &build.TupleExpr{}
		for _, elem := range t {
			e := ConvValue(elem)
			if e == nil {
				return nil
			}
			tuple.List = append(tuple.List, e)
		}
		return tuple
	case *starlark.Dict:
		dict := &build.DictExpr{}
		for _, item := range t.Items() {
			k, v := ConvValue(item[0]), ConvValue(item[1])
			if k == nil || v == nil {
				return nil
			}
			dict.List = append(dict.List, &build.KeyValueExpr{Key: k, Value: v})
		}
		return dict
	}
	return nil
}

// StringList converts a starlark list or tuple of strings.
func StringList(value starlark.Value) ([]string, error) {
	iterable, ok := value.(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("want list of strings, got %s", value.Type())
	}
	var values []string
	iter := iterable.Iterate()
	defer iter.Done()
	var elem starlark.Value
	for iter.Next(&elem) {
		s, ok := starlark.AsString(elem)
		if !ok {
			return nil, fmt.Errorf("want string list element, got %s", elem.Type())
		}
		values = append(values, s)
	}
	return values, nil
}
