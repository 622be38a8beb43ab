package thriftconfig

import (
	"path/filepath"
	"testing"

	"github.com/bazelbuild/bazel-gazelle/testtools"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/stackb/thrift-deps/pkg/testutil"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, []string{"BUILD", "BUILD.bazel"}, cfg.BuildFileNames)
	require.Equal(t, 8, cfg.Parallelism)
	require.Contains(t, cfg.SourceRootPatterns, "/")
}

func TestLoad(t *testing.T) {
	for name, tc := range map[string]struct {
		content string
		want    *Config
		wantErr string
	}{
		"empty file keeps defaults": {
			content: "",
			want:    Default(),
		},
		"override fields": {
			content: `
source_root_patterns: [root1, root2, src/thrifts]
marker_filenames: [SOURCE_ROOT]
parallelism: 2
`,
			want: func() *Config {
				cfg := Default()
				cfg.SourceRootPatterns = []string{"root1", "root2", "src/thrifts"}
				cfg.MarkerFilenames = []string{"SOURCE_ROOT"}
				cfg.Parallelism = 2
				return cfg
			}(),
		},
		"unknown field": {
			content: "source_roots: [x]\n",
			wantErr: "field source_roots not found",
		},
		"invalid parallelism": {
			content: "parallelism: 0\n",
			wantErr: "parallelism: must be positive, got 0",
		},
	} {
		t.Run(name, func(t *testing.T) {
			tmpDir, _, cleanup := testutil.MustPrepareTestFiles(t, []testtools.FileSpec{
				{Path: Filename, Content: tc.content},
			})
			defer cleanup()

			got, err := LoadWorkspace(tmpDir)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), Filename))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestIgnoredDirs(t *testing.T) {
	cfg := Default()
	for name, want := range map[string]bool{
		".git":      true,
		".hidden":   true,
		"bazel-out": true,
		"src":       false,
		".":         false,
	} {
		if got := cfg.IsIgnoredDir(name); got != want {
			t.Errorf("IsIgnoredDir(%q) = %v, want %v", name, got, want)
		}
	}
}
