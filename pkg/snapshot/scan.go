package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/pcj/mobyprogress"
	"github.com/rs/zerolog"

	"github.com/stackb/thrift-deps/pkg/address"
	"github.com/stackb/thrift-deps/pkg/collections"
	"github.com/stackb/thrift-deps/pkg/sourceroot"
	"github.com/stackb/thrift-deps/pkg/thriftconfig"
	"github.com/stackb/thrift-deps/pkg/thrifttarget"
)

// ThriftExt is the extension of thrift files.
const ThriftExt = ".thrift"

type scanner struct {
	dir      string
	fsys     fs.FS
	cfg      *thriftconfig.Config
	logger   zerolog.Logger
	progress mobyprogress.Output
	loader   *thrifttarget.Loader
	matcher  *sourceroot.Matcher
}

// Option modifies a scan.
type Option func(*scanner)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *scanner) {
		s.logger = logger
	}
}

// WithProgress reports scan progress to the output.
func WithProgress(output mobyprogress.Output) Option {
	return func(s *scanner) {
		s.progress = output
	}
}

// WithFS scans the given filesystem instead of the workspace directory.
func WithFS(fsys fs.FS) Option {
	return func(s *scanner) {
		s.fsys = fsys
	}
}

// Scan reads the workspace at dir.
func Scan(ctx context.Context, dir string, cfg *thriftconfig.Config, options ...Option) (*Snapshot, error) {
	s := &scanner{
		dir:    dir,
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.fsys == nil {
		s.fsys = os.DirFS(dir)
	}
	s.loader = thrifttarget.NewLoader(thrifttarget.WithLogger(s.logger))

	matcher, err := sourceroot.NewMatcher(cfg.SourceRootPatterns, cfg.MarkerFilenames)
	if err != nil {
		return nil, err
	}
	s.matcher = matcher

	return s.scan(ctx)
}

func (s *scanner) scan(ctx context.Context) (*Snapshot, error) {
	roots := sourceroot.NewRoots()
	buildFiles, err := s.walk(ctx, roots)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		dir:        s.dir,
		roots:      roots.List(),
		buildFiles: make(map[string]string, len(buildFiles)),
		byAddress:  make(map[address.Address]*thrifttarget.Target),
		files:      make(map[string]*File),
		contents:   make(map[string][]byte),
	}

	for i, buildPath := range buildFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.writeProgress("load", "loading BUILD files", i+1, len(buildFiles), i+1 == len(buildFiles))
		if err := s.loadBuildFile(snap, roots, buildPath); err != nil {
			return nil, err
		}
	}

	thrifttarget.SortTargets(snap.targets)
	sortGenerators(snap.generators)

	if snap.digest, err = computeDigest(snap); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("digest", snap.digest).
		Int("build_files", len(snap.buildFiles)).
		Int("targets", len(snap.targets)).
		Int("files", len(snap.files)).
		Strs("source_roots", snap.roots).
		Msg("scanned workspace")

	return snap, nil
}

// walk collects source roots and returns the sorted BUILD file paths, one per
// directory, chosen by the order of BuildFileNames.
func (s *scanner) walk(ctx context.Context, roots *sourceroot.Roots) ([]string, error) {
	preferred := make(map[string]int)
	chosen := make(map[string]string)

	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := p
		if rel == "." {
			rel = ""
		}
		if d.IsDir() {
			if rel != "" && s.cfg.IsIgnoredDir(d.Name()) {
				return fs.SkipDir
			}
			if s.matcher.MatchDir(rel) {
				roots.Add(rel)
			}
			return nil
		}
		dir := path.Dir(p)
		if dir == "." {
			dir = ""
		}
		if s.matcher.IsMarker(d.Name()) {
			roots.Add(dir)
		}
		for i, name := range s.cfg.BuildFileNames {
			if d.Name() != name {
				continue
			}
			if prev, ok := preferred[dir]; !ok || i < prev {
				preferred[dir] = i
				chosen[dir] = p
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.dir, err)
	}

	buildFiles := make([]string, 0, len(chosen))
	for _, p := range chosen {
		buildFiles = append(buildFiles, p)
	}
	sort.Strings(buildFiles)
	return buildFiles, nil
}

func (s *scanner) loadBuildFile(snap *Snapshot, roots *sourceroot.Roots, buildPath string) error {
	data, err := fs.ReadFile(s.fsys, buildPath)
	if err != nil {
		return err
	}
	digest, err := collections.Sha256(bytes.NewReader(data))
	if err != nil {
		return err
	}
	snap.buildFiles[buildPath] = digest

	generators, err := s.loader.LoadBuildFile(s.fsys, buildPath, data)
	if err != nil {
		return err
	}
	for _, g := range generators {
		targets, err := thrifttarget.Generate(g)
		if err != nil {
			return fmt.Errorf("%s: %w", buildPath, err)
		}
		snap.generators = append(snap.generators, g)
		for _, t := range targets {
			if _, dup := snap.byAddress[t.Address]; dup {
				return fmt.Errorf("%s: duplicate target address %s", buildPath, t.Address)
			}
			if !strings.HasSuffix(t.Source, ThriftExt) {
				s.logger.Warn().Str("address", t.Address.String()).Msg("ignoring non-thrift source")
				continue
			}
			if err := s.addFile(snap, roots, t.File()); err != nil {
				return err
			}
			snap.byAddress[t.Address] = t
			snap.targets = append(snap.targets, t)
		}
	}
	return nil
}

func (s *scanner) addFile(snap *Snapshot, roots *sourceroot.Roots, filename string) error {
	if _, ok := snap.files[filename]; ok {
		return nil
	}
	logical, err := roots.Strip(filename)
	if err != nil {
		return err
	}
	data, err := fs.ReadFile(s.fsys, filename)
	if err != nil {
		return err
	}
	digest, err := collections.Sha256(bytes.NewReader(data))
	if err != nil {
		return err
	}
	snap.files[filename] = &File{Path: filename, LogicalPath: logical, Digest: digest}
	snap.contents[filename] = data
	return nil
}

func (s *scanner) writeProgress(id, action string, current, total int, last bool) {
	if s.progress == nil {
		return
	}
	s.progress.WriteProgress(mobyprogress.Progress{
		ID:         id,
		Action:     action,
		Current:    int64(current),
		Total:      int64(total),
		Units:      "files",
		LastUpdate: last,
	})
}
