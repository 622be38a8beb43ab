// Package thriftconfig loads the thriftdeps.yaml workspace configuration.
package thriftconfig

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Filename is the name of the configuration file at the workspace root.
const Filename = "thriftdeps.yaml"

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the workspace configuration.
type Config struct {
	// SourceRootPatterns select source root directories.  A leading "/"
	// anchors the pattern at the workspace root.
	SourceRootPatterns []string `yaml:"source_root_patterns"`
	// MarkerFilenames are files whose presence makes a directory a source
	// root.
	MarkerFilenames []string `yaml:"marker_filenames"`
	// BuildFileNames are the names of BUILD files, in order of preference.
	BuildFileNames []string `yaml:"build_file_names"`
	// IgnoreDirs are directory names skipped while scanning.
	IgnoreDirs []string `yaml:"ignore_dirs"`
	// CacheFile is an optional path, relative to the workspace, where the
	// mapping is cached between runs.  The extension selects the encoding
	// (.json, .pbtext or binary).
	CacheFile string `yaml:"cache_file"`
	// Parallelism bounds the number of files resolved concurrently.
	Parallelism int `yaml:"parallelism"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := decode(&Config{}, bytes.NewReader(defaultsYAML))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded defaults: %v", err))
	}
	return cfg
}

// Load reads the file at filename over the defaults.  A missing file yields
// the defaults.
func Load(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(Default(), f)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", filename, err)
	}
	return cfg, nil
}

// LoadWorkspace reads the configuration file of the workspace directory.
func LoadWorkspace(dir string) (*Config, error) {
	return Load(filepath.Join(dir, Filename))
}

func decode(cfg *Config, in io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(in)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	for _, p := range c.SourceRootPatterns {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, errors.New("source_root_patterns: empty pattern"))
		}
	}
	if len(c.BuildFileNames) == 0 {
		errs = append(errs, errors.New("build_file_names: at least one name is required"))
	}
	for _, name := range append(append([]string{}, c.MarkerFilenames...), c.BuildFileNames...) {
		if name == "" || strings.ContainsRune(name, '/') {
			errs = append(errs, fmt.Errorf("invalid filename %q", name))
		}
	}
	if c.Parallelism <= 0 {
		errs = append(errs, fmt.Errorf("parallelism: must be positive, got %d", c.Parallelism))
	}
	return errors.Join(errs...)
}

// IsBuildFile reports whether the filename is a BUILD file.
func (c *Config) IsBuildFile(name string) bool {
	for _, n := range c.BuildFileNames {
		if n == name {
			return true
		}
	}
	return false
}

// IsIgnoredDir reports whether the directory name is skipped.  Hidden
// directories are always skipped.
func (c *Config) IsIgnoredDir(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." {
		return true
	}
	for _, n := range c.IgnoreDirs {
		if n == name {
			return true
		}
	}
	return false
}
