package testutil

import "github.com/bazelbuild/bazel-gazelle/testtools"

// ThriftWorkspace is a workspace rooted at src/thrifts with a project that
// imports a tests package and an ambiguous package where two targets own the
// same files.  The main target disambiguates one of them with a "!" entry.
var ThriftWorkspace = []testtools.FileSpec{
	{
		Path:    "thriftdeps.yaml",
		Content: "source_root_patterns:\n  - src/thrifts\n",
	},
	{
		Path:    "src/thrifts/project/BUILD",
		Content: `thrift_sources()`,
	},
	{
		Path:    "src/thrifts/project/f1.thrift",
		Content: "include 'tests/f.thrift';\ninclude 'unrelated_path/foo.thrift\"\n",
	},
	{
		Path:    "src/thrifts/project/f2.thrift",
		Content: "include 'project/f1.thrift';\n",
	},
	{
		Path:    "src/thrifts/tests/BUILD",
		Content: `thrift_sources()`,
	},
	{
		Path:    "src/thrifts/tests/f.thrift",
		Content: "struct T {}\n",
	},
	{
		Path: "src/thrifts/ambiguous/BUILD",
		Content: `
thrift_sources(
    name = "dep1",
    sources = ["dep.thrift", "disambiguated.thrift"],
)

thrift_sources(
    name = "dep2",
    sources = ["dep.thrift", "disambiguated.thrift"],
)

thrift_sources(
    name = "main",
    sources = ["main.thrift"],
    dependencies = ["!./disambiguated.thrift:dep2"],
)
`,
	},
	{
		Path:    "src/thrifts/ambiguous/dep.thrift",
		Content: "struct Dep {}\n",
	},
	{
		Path:    "src/thrifts/ambiguous/disambiguated.thrift",
		Content: "struct Disambiguated {}\n",
	},
	{
		Path:    "src/thrifts/ambiguous/main.thrift",
		Content: "include \"ambiguous/dep.thrift\"\ninclude \"ambiguous/disambiguated.thrift\"\ninclude \"ambiguous/dep.thrift\"\n",
	},
}
