package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/stackb/thrift-deps/pkg/snapshot"
	"github.com/stackb/thrift-deps/pkg/thriftconfig"
)

const debounceInterval = 300 * time.Millisecond

func newWatchCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-resolve the workspace whenever thrift or BUILD files change",
		Long: `Watch the workspace and resolve every target again after thrift files or
BUILD files change.  Each time the snapshot digest changes a line with the
generation number, the digest and the number of ambiguous includes is
printed; the ambiguities themselves are logged as warnings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.newSession(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			w := &watcher{
				session:  s,
				out:      cmd.OutOrStdout(),
				debounce: debounceInterval,
			}
			return w.run(ctx)
		},
	}
}

// watcher rebuilds the snapshot on file changes.
type watcher struct {
	session  *session
	out      io.Writer
	debounce time.Duration

	// generation counts the distinct snapshots seen.
	generation int
	digest     string
	// ready is closed once the initial generation is reported.
	ready chan struct{}
}

func (w *watcher) run(ctx context.Context) error {
	logger := w.session.logger

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fsw.Close()

	if err := addWatchDirs(fsw, w.session.workspace, w.session.cfg); err != nil {
		return fmt.Errorf("watching %s: %w", w.session.workspace, err)
	}

	if err := w.rebuild(ctx); err != nil {
		return err
	}
	if w.ready != nil {
		close(w.ready)
	}

	changed := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				addIfDirectory(fsw, event.Name, w.session.cfg)
			}
			if !isRelevantChange(event, w.session.cfg) {
				continue
			}
			logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("change")
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})

		case <-changed:
			if err := w.rebuild(ctx); err != nil {
				logger.Error().Err(err).Msg("rebuild failed")
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

// rebuild scans the workspace and, if the digest changed, resolves all
// targets and reports the new generation.
func (w *watcher) rebuild(ctx context.Context) error {
	snap, err := w.session.scan(ctx)
	if err != nil {
		return err
	}
	if snap.Digest() == w.digest {
		return nil
	}
	results, err := w.session.engine.All(ctx, snap)
	if err != nil {
		return err
	}
	w.session.engine.Retain(snap)
	ambiguous := 0
	for _, result := range results {
		ambiguous += len(result.Diagnostics)
	}
	w.generation++
	w.digest = snap.Digest()
	_, err = fmt.Fprintf(w.out, "generation %d: digest %s, %d targets, %d ambiguous includes\n",
		w.generation, shortDigest(w.digest), len(results), ambiguous)
	return err
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}

func isRelevantChange(event fsnotify.Event, cfg *thriftconfig.Config) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	return filepath.Ext(name) == snapshot.ThriftExt ||
		cfg.IsBuildFile(name) ||
		name == thriftconfig.Filename ||
		containsString(cfg.MarkerFilenames, name)
}

func addWatchDirs(fsw *fsnotify.Watcher, root string, cfg *thriftconfig.Config) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && cfg.IsIgnoredDir(d.Name()) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

func addIfDirectory(fsw *fsnotify.Watcher, path string, cfg *thriftconfig.Config) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || cfg.IsIgnoredDir(info.Name()) {
		return
	}
	_ = addWatchDirs(fsw, path, cfg)
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
