package resolver_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/stackb/thrift-deps/pkg/address"
	"github.com/stackb/thrift-deps/pkg/resolver"
)

func TestParseExplicitDependencies(t *testing.T) {
	for name, tc := range map[string]struct {
		specs        []string
		relativeTo   string
		wantIncludes []address.Address
		wantExcludes []address.Address
		wantErr      string
	}{
		"degenerate": {},
		"includes and excludes": {
			specs:      []string{":lib", "!./dep.thrift:dep2", "!!//other:x"},
			relativeTo: "src/thrifts",
			wantIncludes: []address.Address{
				address.New("src/thrifts", "lib", ""),
			},
			wantExcludes: []address.Address{
				address.New("other", "x", ""),
				address.New("src/thrifts", "dep2", "dep.thrift"),
			},
		},
		"default target name": {
			specs:        []string{"src/thrifts/project/f1.thrift"},
			wantIncludes: []address.Address{address.New("src/thrifts/project", "", "f1.thrift")},
		},
		"invalid": {
			specs:   []string{"!a:b:c"},
			wantErr: `dependencies: invalid address "a:b:c": more than one ':'`,
		},
	} {
		t.Run(name, func(t *testing.T) {
			deps, err := resolver.ParseExplicitDependencies(tc.specs, tc.relativeTo, isTestFile)
			if tc.wantErr != "" {
				if err == nil || err.Error() != tc.wantErr {
					t.Fatalf("want error %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.wantIncludes, deps.IncludeList(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("includes (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantExcludes, deps.ExcludeList(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("excludes (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExplicitDependenciesDisambiguate(t *testing.T) {
	a := address.New("src", "a", "x.thrift")
	b := address.New("src", "b", "x.thrift")
	c := address.New("src", "c", "x.thrift")

	deps := &resolver.ExplicitDependencies{
		Excludes: map[address.Address]bool{
			b:             true,
			c.Generator(): true,
		},
	}
	remaining, excluded := deps.Disambiguate([]address.Address{a, b, c})
	if diff := cmp.Diff([]address.Address{a}, remaining); diff != "" {
		t.Errorf("remaining (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]address.Address{b, c}, excluded); diff != "" {
		t.Errorf("excluded (-want +got):\n%s", diff)
	}
}

func TestExplicitDependenciesNil(t *testing.T) {
	var deps *resolver.ExplicitDependencies
	a := address.New("src", "a", "x.thrift")

	if deps.IsExcluded(a) {
		t.Error("nil deps excludes nothing")
	}
	if deps.AnyIncluded([]address.Address{a}) {
		t.Error("nil deps includes nothing")
	}
	remaining, excluded := deps.Disambiguate([]address.Address{a})
	if len(remaining) != 1 || len(excluded) != 0 {
		t.Errorf("unexpected partition: %v %v", remaining, excluded)
	}
	if deps.IncludeList() != nil || deps.ExcludeList() != nil {
		t.Error("nil lists expected")
	}
}
