// Package infer resolves the thrift dependencies of a workspace snapshot.
package infer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/stackb/thrift-deps/pkg/address"
	"github.com/stackb/thrift-deps/pkg/protobuf"
	"github.com/stackb/thrift-deps/pkg/resolver"
	"github.com/stackb/thrift-deps/pkg/snapshot"
	"github.com/stackb/thrift-deps/pkg/thriftparse"
)

// Engine resolves dependencies, memoizing the mapping per snapshot digest and
// parsed imports per content digest.
type Engine struct {
	logger      zerolog.Logger
	sink        resolver.DiagnosticsSink
	parser      *thriftparse.MemoParser
	cacheFile   string
	parallelism int

	group    singleflight.Group
	mu       sync.Mutex
	mappings map[string]*resolver.ThriftMapping
}

// Option modifies the Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDiagnosticsSink sets the receiver of ambiguity diagnostics.
func WithDiagnosticsSink(sink resolver.DiagnosticsSink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithCacheFile persists mappings to the given file.  Relative paths are
// resolved against the snapshot directory.
func WithCacheFile(filename string) Option {
	return func(e *Engine) {
		e.cacheFile = filename
	}
}

// WithParallelism bounds the number of files resolved concurrently.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		e.parallelism = n
	}
}

// NewEngine constructs an Engine.  Without a sink, diagnostics are logged as
// warnings.
func NewEngine(options ...Option) *Engine {
	e := &Engine{
		logger:      zerolog.Nop(),
		parallelism: 8,
		mappings:    make(map[string]*resolver.ThriftMapping),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.sink == nil {
		e.sink = resolver.NewLoggerSink(e.logger, false)
	}
	if e.parallelism <= 0 {
		e.parallelism = 1
	}
	e.parser = thriftparse.NewMemoParser(e.logger)
	return e
}

// Mapping returns the mapping of the snapshot.  Concurrent callers with the
// same snapshot digest share one build.
func (e *Engine) Mapping(ctx context.Context, snap *snapshot.Snapshot) (*resolver.ThriftMapping, error) {
	digest := snap.Digest()

	e.mu.Lock()
	m, ok := e.mappings[digest]
	e.mu.Unlock()
	if ok {
		return m, nil
	}

	ch := e.group.DoChan(digest, func() (interface{}, error) {
		m, err := e.loadOrBuildMapping(snap)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.mappings[digest] = m
		e.mu.Unlock()
		return m, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*resolver.ThriftMapping), nil
	}
}

// Retain evicts the memoized mappings of every other snapshot and the parsed
// imports of content the snapshot no longer has.
func (e *Engine) Retain(snap *snapshot.Snapshot) {
	digest := snap.Digest()

	e.mu.Lock()
	mappings := 0
	for d := range e.mappings {
		if d != digest {
			delete(e.mappings, d)
			mappings++
		}
	}
	e.mu.Unlock()

	keep := make(map[string]bool)
	for _, d := range snap.ContentDigests() {
		keep[d] = true
	}
	files := e.parser.Retain(func(d string) bool {
		return keep[d]
	})

	e.logger.Debug().
		Str("digest", digest).
		Int("mappings", mappings).
		Int("files", files).
		Msg("evicted stale cache entries")
}

// CacheSizes returns the number of memoized mappings and parsed files.
func (e *Engine) CacheSizes() (mappings, files int) {
	e.mu.Lock()
	mappings = len(e.mappings)
	e.mu.Unlock()
	return mappings, e.parser.Len()
}

func (e *Engine) loadOrBuildMapping(snap *snapshot.Snapshot) (*resolver.ThriftMapping, error) {
	cacheFile := e.cacheFilename(snap)
	if cacheFile != "" {
		m, err := protobuf.ReadMappingFile(cacheFile, snap.Digest())
		switch {
		case err == nil:
			e.logger.Debug().Str("cache", cacheFile).Msg("mapping cache hit")
			return m, nil
		case errors.Is(err, os.ErrNotExist), errors.Is(err, protobuf.ErrStaleCache):
			e.logger.Debug().Str("cache", cacheFile).Err(err).Msg("mapping cache miss")
		default:
			e.logger.Warn().Str("cache", cacheFile).Err(err).Msg("ignoring unreadable mapping cache")
		}
	}

	m := resolver.BuildThriftMapping(snap.OwnedFiles())
	e.logger.Debug().
		Str("digest", snap.Digest()).
		Int("paths", m.Len()).
		Int("ambiguous", len(m.AmbiguousModules())).
		Msg("built thrift mapping")

	if cacheFile != "" {
		if err := protobuf.WriteMappingFile(cacheFile, snap.Digest(), m); err != nil {
			return nil, fmt.Errorf("writing mapping cache: %w", err)
		}
	}
	return m, nil
}

func (e *Engine) cacheFilename(snap *snapshot.Snapshot) string {
	if e.cacheFile == "" || filepath.IsAbs(e.cacheFile) {
		return e.cacheFile
	}
	return filepath.Join(snap.Dir(), e.cacheFile)
}

// Imports returns the include paths of the owned file at the
// workspace-relative path.
func (e *Engine) Imports(snap *snapshot.Snapshot, path string) ([]string, error) {
	data, err := snap.Contents(path)
	if err != nil {
		return nil, err
	}
	digest, _ := snap.ContentDigest(path)
	return e.parser.ParseFile(digest, string(data)), nil
}

// Dependencies infers the dependencies of one file target and reports its
// diagnostics to the sink.
func (e *Engine) Dependencies(ctx context.Context, snap *snapshot.Snapshot, addr address.Address) (*resolver.InferResult, error) {
	result, err := e.infer(ctx, snap, addr)
	if err != nil {
		return nil, err
	}
	resolver.Emit(e.sink, result.Diagnostics)
	return result, nil
}

func (e *Engine) infer(ctx context.Context, snap *snapshot.Snapshot, addr address.Address) (*resolver.InferResult, error) {
	mapping, err := e.Mapping(ctx, snap)
	if err != nil {
		return nil, err
	}
	target, ok := snap.Target(addr)
	if !ok {
		return nil, fmt.Errorf("%s: not a thrift file target", addr)
	}
	imports, err := e.Imports(snap, target.File())
	if err != nil {
		return nil, err
	}
	explicit, err := snap.ExplicitDependencies(target)
	if err != nil {
		return nil, err
	}
	return resolver.InferDependencies(mapping, resolver.InferRequest{
		From:     addr,
		Imports:  imports,
		Explicit: explicit,
	}), nil
}

// All infers the dependencies of every file target of the snapshot.  Files
// are resolved concurrently; diagnostics are reported once all are done, in
// sorted order.
func (e *Engine) All(ctx context.Context, snap *snapshot.Snapshot) (map[address.Address]*resolver.InferResult, error) {
	if _, err := e.Mapping(ctx, snap); err != nil {
		return nil, err
	}

	targets := snap.Targets()
	results := make([]*resolver.InferResult, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i, t := range targets {
		i, addr := i, t.Address
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := e.infer(ctx, snap, addr)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byAddress := make(map[address.Address]*resolver.InferResult, len(results))
	var diags []*resolver.AmbiguousImportError
	for _, result := range results {
		byAddress[result.From] = result
		diags = append(diags, result.Diagnostics...)
	}
	resolver.Emit(e.sink, diags)

	e.logger.Debug().
		Int("targets", len(results)).
		Int("diagnostics", len(diags)).
		Int("parsed_files", e.parser.Len()).
		Msg("resolved workspace")

	return byAddress, nil
}
