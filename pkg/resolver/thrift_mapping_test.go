package resolver_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/stackb/thrift-deps/pkg/address"
	"github.com/stackb/thrift-deps/pkg/resolver"
)

func TestBuildThriftMapping(t *testing.T) {
	for name, tc := range map[string]struct {
		files         []resolver.OwnedFile
		wantMapping   map[string]address.Address
		wantAmbiguous map[string][]address.Address
	}{
		"degenerate": {},
		"two files one target, two owners of the same path": {
			files: []resolver.OwnedFile{
				{LogicalPath: "thrifts/f1.thrift", Address: address.New("root1/thrifts", "", "f1.thrift")},
				{LogicalPath: "thrifts/f2.thrift", Address: address.New("root1/thrifts", "", "f2.thrift")},
				// listed in reverse order on purpose
				{LogicalPath: "two_owners/f.thrift", Address: address.New("root2/two_owners", "", "f.thrift")},
				{LogicalPath: "two_owners/f.thrift", Address: address.New("root1/two_owners", "", "f.thrift")},
			},
			wantMapping: map[string]address.Address{
				"thrifts/f1.thrift": address.New("root1/thrifts", "", "f1.thrift"),
				"thrifts/f2.thrift": address.New("root1/thrifts", "", "f2.thrift"),
			},
			wantAmbiguous: map[string][]address.Address{
				"two_owners/f.thrift": {
					address.New("root1/two_owners", "", "f.thrift"),
					address.New("root2/two_owners", "", "f.thrift"),
				},
			},
		},
		"duplicate pairs collapse": {
			files: []resolver.OwnedFile{
				{LogicalPath: "a.thrift", Address: address.New("src", "", "a.thrift")},
				{LogicalPath: "a.thrift", Address: address.New("src", "", "a.thrift")},
			},
			wantMapping: map[string]address.Address{
				"a.thrift": address.New("src", "", "a.thrift"),
			},
		},
		"same file two targets": {
			files: []resolver.OwnedFile{
				{LogicalPath: "ambiguous/dep.thrift", Address: address.New("src/ambiguous", "dep2", "dep.thrift")},
				{LogicalPath: "ambiguous/dep.thrift", Address: address.New("src/ambiguous", "dep1", "dep.thrift")},
				{LogicalPath: "ambiguous/dep.thrift", Address: address.New("src/ambiguous", "dep3", "dep.thrift")},
			},
			wantAmbiguous: map[string][]address.Address{
				"ambiguous/dep.thrift": {
					address.New("src/ambiguous", "dep1", "dep.thrift"),
					address.New("src/ambiguous", "dep2", "dep.thrift"),
					address.New("src/ambiguous", "dep3", "dep.thrift"),
				},
			},
		},
	} {
		t.Run(name, func(t *testing.T) {
			m := resolver.BuildThriftMapping(tc.files)
			if diff := cmp.Diff(tc.wantMapping, m.Mapping(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("mapping (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantAmbiguous, m.AmbiguousModules(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ambiguous (-want +got):\n%s", diff)
			}

			// every provided path lands in exactly one of the two maps
			mapping := m.Mapping()
			ambiguous := m.AmbiguousModules()
			for _, f := range tc.files {
				_, inMapping := mapping[f.LogicalPath]
				_, inAmbiguous := ambiguous[f.LogicalPath]
				if inMapping == inAmbiguous {
					t.Errorf("%s: inMapping=%v inAmbiguous=%v", f.LogicalPath, inMapping, inAmbiguous)
				}
			}
		})
	}
}

func TestThriftMappingLookup(t *testing.T) {
	m := resolver.BuildThriftMapping([]resolver.OwnedFile{
		{LogicalPath: "a.thrift", Address: address.New("src", "", "a.thrift")},
		{LogicalPath: "b.thrift", Address: address.New("src", "x", "b.thrift")},
		{LogicalPath: "b.thrift", Address: address.New("src", "y", "b.thrift")},
	})

	for name, tc := range map[string]struct {
		path string
		want resolver.Lookup
	}{
		"owned": {
			path: "a.thrift",
			want: resolver.Lookup{Kind: resolver.LookupOwned, Owner: address.New("src", "", "a.thrift")},
		},
		"ambiguous": {
			path: "b.thrift",
			want: resolver.Lookup{
				Kind: resolver.LookupAmbiguous,
				Candidates: []address.Address{
					address.New("src", "x", "b.thrift"),
					address.New("src", "y", "b.thrift"),
				},
			},
		},
		"not found": {
			path: "c.thrift",
			want: resolver.Lookup{Kind: resolver.LookupNotFound},
		},
	} {
		t.Run(name, func(t *testing.T) {
			got := m.Lookup(tc.path)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}

	if diff := cmp.Diff([]string{"a.thrift", "b.thrift"}, m.Paths()); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}
}

func TestThriftMappingImmutable(t *testing.T) {
	m := resolver.BuildThriftMapping([]resolver.OwnedFile{
		{LogicalPath: "b.thrift", Address: address.New("src", "x", "b.thrift")},
		{LogicalPath: "b.thrift", Address: address.New("src", "y", "b.thrift")},
	})
	m.AmbiguousModules()["b.thrift"][0] = address.NoAddress
	m.Lookup("b.thrift").Candidates[1] = address.NoAddress

	got := m.Lookup("b.thrift").Candidates
	want := []address.Address{address.New("src", "x", "b.thrift"), address.New("src", "y", "b.thrift")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestNewThriftMapping(t *testing.T) {
	a := address.New("src", "", "a.thrift")
	if m := resolver.NewThriftMapping(
		map[string]address.Address{"a.thrift": a},
		map[string][]address.Address{"a.thrift": {a, a}},
	); m != nil {
		t.Error("path in both maps should be rejected")
	}
	if m := resolver.NewThriftMapping(nil, map[string][]address.Address{"a.thrift": {a}}); m != nil {
		t.Error("single candidate ambiguous entry should be rejected")
	}
	if m := resolver.NewThriftMapping(map[string]address.Address{"a.thrift": a}, nil); m == nil || m.Len() != 1 {
		t.Errorf("want valid mapping of len 1, got %v", m)
	}
}
