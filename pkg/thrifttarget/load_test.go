package thrifttarget_test

import (
	"errors"
	"os"
	"testing"

	"github.com/bazelbuild/bazel-gazelle/testtools"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stackb/thrift-deps/pkg/address"
	"github.com/stackb/thrift-deps/pkg/testutil"
	"github.com/stackb/thrift-deps/pkg/thrifttarget"
)

func loadAndGenerate(t *testing.T, files []testtools.FileSpec, buildPath string) ([]*thrifttarget.Target, error) {
	t.Helper()
	tmpDir, _, cleanup := testutil.MustPrepareTestFiles(t, files)
	defer cleanup()

	data := testutil.MustReadTestFile(t, tmpDir, buildPath)
	loader := thrifttarget.NewLoader(thrifttarget.WithLogger(zerolog.New(zerolog.NewTestWriter(t))))
	generators, err := loader.LoadBuildFile(os.DirFS(tmpDir), buildPath, []byte(data))
	if err != nil {
		return nil, err
	}
	var targets []*thrifttarget.Target
	for _, g := range generators {
		generated, err := thrifttarget.Generate(g)
		if err != nil {
			return nil, err
		}
		targets = append(targets, generated...)
	}
	return targets, nil
}

func TestGenerateSourceTargets(t *testing.T) {
	for name, tc := range map[string]struct {
		files     []testtools.FileSpec
		buildPath string
		want      []*thrifttarget.Target
		wantErr   string
	}{
		"generated with overrides": {
			buildPath: "src/thrift/BUILD",
			files: []testtools.FileSpec{
				{
					Path: "src/thrift/BUILD",
					Content: `
thrift_sources(
    name = "lib",
    sources = ["**/*.thrift"],
    overrides = {"f1.thrift": {"tags": ["overridden"]}},
)
`,
				},
				{Path: "src/thrift/f1.thrift"},
				{Path: "src/thrift/f2.thrift"},
				{Path: "src/thrift/subdir/f.thrift"},
			},
			want: []*thrifttarget.Target{
				{
					Address: address.New("src/thrift", "lib", "f1.thrift"),
					Kind:    thrifttarget.SourcesKind,
					Source:  "f1.thrift",
					Tags:    []string{"overridden"},
				},
				{
					Address: address.New("src/thrift", "lib", "f2.thrift"),
					Kind:    thrifttarget.SourcesKind,
					Source:  "f2.thrift",
				},
				{
					Address: address.New("src/thrift", "lib", "subdir/f.thrift"),
					Kind:    thrifttarget.SourcesKind,
					Source:  "subdir/f.thrift",
				},
			},
		},
		"default name and sources, inherited fields": {
			buildPath: "src/thrifts/BUILD",
			files: []testtools.FileSpec{
				{
					Path: "src/thrifts/BUILD",
					Content: `
thrift_sources(
    dependencies = [":other", "!//x:y"],
    tags = ["t"],
)
`,
				},
				{Path: "src/thrifts/a.thrift"},
				{Path: "src/thrifts/notes.txt"},
				{Path: "src/thrifts/sub/b.thrift"},
			},
			want: []*thrifttarget.Target{
				{
					Address:      address.New("src/thrifts", "", "a.thrift"),
					Kind:         thrifttarget.SourcesKind,
					Source:       "a.thrift",
					Dependencies: []string{":other", "!//x:y"},
					Tags:         []string{"t"},
				},
			},
		},
		"tuple override key and dependencies": {
			buildPath: "BUILD",
			files: []testtools.FileSpec{
				{
					Path: "BUILD",
					Content: `
thrift_sources(
    name = "root",
    overrides = {("a.thrift", "b.thrift"): {"dependencies": [":x"]}},
)
`,
				},
				{Path: "a.thrift"},
				{Path: "b.thrift"},
				{Path: "c.thrift"},
			},
			want: []*thrifttarget.Target{
				{Address: address.New("", "root", "a.thrift"), Kind: thrifttarget.SourcesKind, Source: "a.thrift", Dependencies: []string{":x"}},
				{Address: address.New("", "root", "b.thrift"), Kind: thrifttarget.SourcesKind, Source: "b.thrift", Dependencies: []string{":x"}},
				{Address: address.New("", "root", "c.thrift"), Kind: thrifttarget.SourcesKind, Source: "c.thrift"},
			},
		},
		"single source": {
			buildPath: "src/BUILD",
			files: []testtools.FileSpec{
				{Path: "src/BUILD", Content: `thrift_source(name = "one", source = "one.thrift")`},
				{Path: "src/one.thrift"},
			},
			want: []*thrifttarget.Target{
				{Address: address.New("src", "one", ""), Kind: thrifttarget.SourceKind, Source: "one.thrift"},
			},
		},
		"other kinds are skipped": {
			buildPath: "src/BUILD",
			files: []testtools.FileSpec{
				{Path: "src/BUILD", Content: `java_library(name = "x", srcs = ["X.java"])`},
			},
		},
		"unmatched override": {
			buildPath: "src/BUILD",
			files: []testtools.FileSpec{
				{Path: "src/BUILD", Content: `thrift_sources(overrides = {"nope.thrift": {"tags": []}, "a.thrift": {}})`},
				{Path: "src/a.thrift"},
			},
			wantErr: "unused key in the `overrides` field for src: ['nope.thrift']",
		},
		"missing single source": {
			buildPath: "src/BUILD",
			files: []testtools.FileSpec{
				{Path: "src/BUILD", Content: `thrift_source(name = "one", source = "one.thrift")`},
			},
			wantErr: `src/BUILD: target "one": source: file "one.thrift" does not exist`,
		},
		"root requires name": {
			buildPath: "BUILD",
			files: []testtools.FileSpec{
				{Path: "BUILD", Content: `thrift_sources()`},
			},
			wantErr: "BUILD: name is required for targets at the workspace root",
		},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := loadAndGenerate(t, tc.files, tc.buildPath)
			if tc.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error %q", tc.wantErr)
				}
				if diff := cmp.Diff(tc.wantErr, err.Error()); diff != "" {
					t.Fatalf("error (-want +got):\n%s", diff)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnmatchedOverrideErrorType(t *testing.T) {
	_, err := loadAndGenerate(t, []testtools.FileSpec{
		{Path: "src/BUILD", Content: `thrift_sources(overrides = {"x.thrift": {}})`},
	}, "src/BUILD")

	var unmatched *thrifttarget.UnmatchedOverrideError
	if !errors.As(err, &unmatched) {
		t.Fatalf("want UnmatchedOverrideError, got %v", err)
	}
	if diff := cmp.Diff([]string{"x.thrift"}, unmatched.Keys); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestKindRegistry(t *testing.T) {
	if diff := cmp.Diff(
		[]string{thrifttarget.SourceKind, thrifttarget.SourcesKind},
		thrifttarget.GlobalKindRegistry().KindNames(),
	); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	registry := thrifttarget.NewKindRegistryMap()
	kind, err := thrifttarget.GlobalKindRegistry().LookupKind(thrifttarget.SourcesKind)
	if err != nil {
		t.Fatal(err)
	}
	if err := registry.RegisterKind(kind); err != nil {
		t.Fatal(err)
	}
	if err := registry.RegisterKind(kind); status.Code(err) != codes.AlreadyExists {
		t.Errorf("want AlreadyExists, got %v", err)
	}
	if _, err := registry.LookupKind("thrift_library"); status.Code(err) != codes.NotFound {
		t.Errorf("want NotFound, got %v", err)
	}
}
