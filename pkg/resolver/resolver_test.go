package resolver_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/stackb/thrift-deps/pkg/address"
	"github.com/stackb/thrift-deps/pkg/resolver"
	"github.com/stackb/thrift-deps/pkg/resolver/mocks"
)

var (
	testsF       = address.New("src/thrifts/tests", "", "f.thrift")
	projectF1    = address.New("src/thrifts/project", "", "f1.thrift")
	projectF2    = address.New("src/thrifts/project", "", "f2.thrift")
	dep1         = address.New("src/thrifts/ambiguous", "dep1", "dep.thrift")
	dep2         = address.New("src/thrifts/ambiguous", "dep2", "dep.thrift")
	disamb1      = address.New("src/thrifts/ambiguous", "dep1", "disambiguated.thrift")
	disamb2      = address.New("src/thrifts/ambiguous", "dep2", "disambiguated.thrift")
	mainThrift   = address.New("src/thrifts/ambiguous", "main", "main.thrift")
	ambiguousDir = "src/thrifts/ambiguous"
)

func newTestMapping() *resolver.ThriftMapping {
	return resolver.BuildThriftMapping([]resolver.OwnedFile{
		{LogicalPath: "tests/f.thrift", Address: testsF},
		{LogicalPath: "project/f1.thrift", Address: projectF1},
		{LogicalPath: "project/f2.thrift", Address: projectF2},
		{LogicalPath: "ambiguous/dep.thrift", Address: dep1},
		{LogicalPath: "ambiguous/dep.thrift", Address: dep2},
		{LogicalPath: "ambiguous/disambiguated.thrift", Address: disamb1},
		{LogicalPath: "ambiguous/disambiguated.thrift", Address: disamb2},
		{LogicalPath: "ambiguous/main.thrift", Address: mainThrift},
	})
}

func isTestFile(p string) bool {
	return strings.HasSuffix(p, ".thrift")
}

func mustParseExplicit(t *testing.T, relativeTo string, specs ...string) *resolver.ExplicitDependencies {
	t.Helper()
	deps, err := resolver.ParseExplicitDependencies(specs, relativeTo, isTestFile)
	if err != nil {
		t.Fatal(err)
	}
	return deps
}

func TestInferDependencies(t *testing.T) {
	for name, tc := range map[string]struct {
		from      address.Address
		imports   []string
		explicit  []string
		want      []address.Address
		wantDiags []string
	}{
		"degenerate": {
			from: projectF1,
		},
		"unknown import is ignored": {
			from:    projectF1,
			imports: []string{"tests/f.thrift", "unrelated_path/foo.thrift"},
			want:    []address.Address{testsF},
		},
		"owned": {
			from:    projectF2,
			imports: []string{"project/f1.thrift"},
			want:    []address.Address{projectF1},
		},
		"self import is dropped": {
			from:    projectF1,
			imports: []string{"project/f1.thrift", "project/f2.thrift"},
			want:    []address.Address{projectF2},
		},
		"duplicates": {
			from:    projectF2,
			imports: []string{"project/f1.thrift", "tests/f.thrift", "project/f1.thrift"},
			want:    []address.Address{projectF1, testsF},
		},
		"disambiguated by exclusion, ambiguous warns": {
			from:     mainThrift,
			imports:  []string{"ambiguous/dep.thrift", "ambiguous/disambiguated.thrift"},
			explicit: []string{"!./disambiguated.thrift:dep2"},
			want:     []address.Address{disamb1},
			wantDiags: []string{
				"The target src/thrifts/ambiguous/main.thrift:main imports `ambiguous/dep.thrift` ambiguously: it could be one of ['src/thrifts/ambiguous/dep.thrift:dep1', 'src/thrifts/ambiguous/dep.thrift:dep2']",
			},
		},
		"one diagnostic per path": {
			from:    mainThrift,
			imports: []string{"ambiguous/dep.thrift", "ambiguous/dep.thrift", "ambiguous/dep.thrift"},
			wantDiags: []string{
				"The target src/thrifts/ambiguous/main.thrift:main imports `ambiguous/dep.thrift` ambiguously: it could be one of ['src/thrifts/ambiguous/dep.thrift:dep1', 'src/thrifts/ambiguous/dep.thrift:dep2']",
			},
		},
		"diagnostics are sorted by import": {
			from:    mainThrift,
			imports: []string{"ambiguous/disambiguated.thrift", "ambiguous/dep.thrift"},
			wantDiags: []string{
				"The target src/thrifts/ambiguous/main.thrift:main imports `ambiguous/dep.thrift` ambiguously: it could be one of ['src/thrifts/ambiguous/dep.thrift:dep1', 'src/thrifts/ambiguous/dep.thrift:dep2']",
				"The target src/thrifts/ambiguous/main.thrift:main imports `ambiguous/disambiguated.thrift` ambiguously: it could be one of ['src/thrifts/ambiguous/disambiguated.thrift:dep1', 'src/thrifts/ambiguous/disambiguated.thrift:dep2']",
			},
		},
		"excluding the generator target": {
			from:     mainThrift,
			imports:  []string{"ambiguous/dep.thrift"},
			explicit: []string{"!:dep1"},
			want:     []address.Address{dep2},
		},
		"all candidates excluded": {
			from:     mainThrift,
			imports:  []string{"ambiguous/dep.thrift"},
			explicit: []string{"!:dep1", "!./dep.thrift:dep2"},
		},
		"explicit include suppresses inference and warning": {
			from:     mainThrift,
			imports:  []string{"ambiguous/dep.thrift"},
			explicit: []string{":dep2"},
		},
		"excluding an unambiguous owner has no effect": {
			from:     projectF2,
			imports:  []string{"project/f1.thrift"},
			explicit: []string{"!src/thrifts/project/f1.thrift"},
			want:     []address.Address{projectF1},
		},
	} {
		t.Run(name, func(t *testing.T) {
			capturer := mocks.NewDiagnosticsCapturer(t)

			result := resolver.Resolve(newTestMapping(), resolver.InferRequest{
				From:     tc.from,
				Imports:  tc.imports,
				Explicit: mustParseExplicit(t, ambiguousDir, tc.explicit...),
			}, capturer.Sink)

			if diff := cmp.Diff(tc.want, result.Dependencies, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("deps (-want +got):\n%s", diff)
			}
			var got []string
			for _, d := range capturer.Got {
				got = append(got, d.Error())
			}
			if diff := cmp.Diff(tc.wantDiags, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("diagnostics (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInferDependenciesDiagnosticOmitsExcluded(t *testing.T) {
	dep3 := address.New(ambiguousDir, "dep3", "dep.thrift")
	mapping := resolver.BuildThriftMapping([]resolver.OwnedFile{
		{LogicalPath: "ambiguous/dep.thrift", Address: dep1},
		{LogicalPath: "ambiguous/dep.thrift", Address: dep2},
		{LogicalPath: "ambiguous/dep.thrift", Address: dep3},
	})

	sink := &resolver.CollectingSink{}
	result := resolver.Resolve(mapping, resolver.InferRequest{
		From:     mainThrift,
		Imports:  []string{"ambiguous/dep.thrift"},
		Explicit: mustParseExplicit(t, ambiguousDir, "!:dep3"),
	}, sink)

	if len(result.Dependencies) != 0 {
		t.Errorf("want no deps, got %v", result.Dependencies)
	}
	want := []string{
		"The target src/thrifts/ambiguous/main.thrift:main imports `ambiguous/dep.thrift` ambiguously: it could be one of ['src/thrifts/ambiguous/dep.thrift:dep1', 'src/thrifts/ambiguous/dep.thrift:dep2'] (1 other candidate excluded by \"!\" entries in the dependencies field)",
	}
	if diff := cmp.Diff(want, sink.Messages()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if strings.Contains(sink.Messages()[0], "dep3") {
		t.Error("excluded candidate must not be named")
	}
}

func TestInferDependenciesImportKinds(t *testing.T) {
	result := resolver.InferDependencies(newTestMapping(), resolver.InferRequest{
		From: mainThrift,
		Imports: []string{
			"tests/f.thrift",
			"nope.thrift",
			"ambiguous/dep.thrift",
			"ambiguous/disambiguated.thrift",
		},
		Explicit: mustParseExplicit(t, ambiguousDir, "!./disambiguated.thrift:dep2"),
	})

	got := make(map[string]resolver.ImportKind)
	for k, imp := range result.Imports {
		got[k] = imp.Kind
	}
	want := map[string]resolver.ImportKind{
		"tests/f.thrift":                 resolver.ImportOwned,
		"nope.thrift":                    resolver.ImportUnresolved,
		"ambiguous/dep.thrift":           resolver.ImportAmbiguous,
		"ambiguous/disambiguated.thrift": resolver.ImportDisambiguated,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if result.Imports["nope.thrift"].Error != resolver.ErrImportNotFound {
		t.Errorf("want ErrImportNotFound, got %v", result.Imports["nope.thrift"].Error)
	}
}
