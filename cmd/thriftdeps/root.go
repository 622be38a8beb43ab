package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stackb/thrift-deps/pkg/bazel"
	"github.com/stackb/thrift-deps/pkg/infer"
	"github.com/stackb/thrift-deps/pkg/procutil"
	"github.com/stackb/thrift-deps/pkg/resolver"
	"github.com/stackb/thrift-deps/pkg/snapshot"
	"github.com/stackb/thrift-deps/pkg/thriftconfig"
)

// version is set via build-time ldflags
var version = "dev"

type rootOptions struct {
	workspace   string
	configFile  string
	logLevel    string
	cacheFile   string
	parallelism int
	progress    bool
	hints       bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "thriftdeps",
		Short: "Infer thrift target dependencies from include statements",
		Long: `thriftdeps scans the thrift_sources and thrift_source targets of a workspace,
maps every thrift file to its owning target by its path relative to a source
root, and turns the include statements of each file into dependencies.

Includes that more than one target could satisfy are reported as warnings
unless the dependencies field of the importing target disambiguates them
with "!" entries.`,
		Version:      version,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.workspace, "workspace", "w", "", "workspace root (default: BUILD_WORKSPACE_DIRECTORY or the nearest enclosing workspace)")
	flags.StringVar(&opts.configFile, "config", "", "configuration file (default: <workspace>/"+thriftconfig.Filename+")")
	flags.StringVar(&opts.logLevel, "log_level", procutil.LookupEnvOr(procutil.THRIFTDEPS_LOG_LEVEL, "info"), "log level (debug, info, warn, error)")
	flags.StringVar(&opts.cacheFile, "cache_file", procutil.LookupEnvOr(procutil.THRIFTDEPS_CACHE_FILE, ""), "mapping cache file (.json, .pbtext or .pb); overrides the configuration")
	flags.IntVar(&opts.parallelism, "parallelism", 0, "number of files resolved concurrently; overrides the configuration")
	flags.BoolVar(&opts.progress, "progress", procutil.LookupBoolEnv(procutil.THRIFTDEPS_SHOW_PROGRESS, false), "report scan progress")
	flags.BoolVar(&opts.hints, "hints", true, "attach fix-it hints to ambiguity warnings")

	cmd.AddCommand(
		newImportsCommand(opts),
		newMappingCommand(opts),
		newDepsCommand(opts),
		newGraphCommand(opts),
		newWatchCommand(opts),
	)

	return cmd
}

// session holds the state shared by the subcommands that operate on a
// workspace.
type session struct {
	logger    zerolog.Logger
	workspace string
	cfg       *thriftconfig.Config
	engine    *infer.Engine
	progress  *progressLogger
}

func (o *rootOptions) newLogger(out io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(o.logLevel))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("--log_level: %w", err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}).
		Level(level), nil
}

func (o *rootOptions) resolveWorkspace() (string, error) {
	if o.workspace != "" {
		return filepath.Abs(o.workspace)
	}
	ws, err := bazel.FindWorkspace(".")
	if errors.Is(err, bazel.ErrNoWorkspace) {
		return filepath.Abs(".")
	}
	return ws, err
}

func (o *rootOptions) loadConfig(cmd *cobra.Command, workspace string) (*thriftconfig.Config, error) {
	filename := o.configFile
	if filename == "" {
		filename = filepath.Join(workspace, thriftconfig.Filename)
	}
	cfg, err := thriftconfig.Load(filename)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("cache_file") || o.cacheFile != "" {
		cfg.CacheFile = o.cacheFile
	}
	if flags.Changed("parallelism") {
		cfg.Parallelism = o.parallelism
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newSession prepares the logger, configuration and engine of a command.
// Diagnostics are logged as warnings to the command's stderr.
func (o *rootOptions) newSession(cmd *cobra.Command) (*session, error) {
	logger, err := o.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	workspace, err := o.resolveWorkspace()
	if err != nil {
		return nil, err
	}
	cfg, err := o.loadConfig(cmd, workspace)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("workspace", workspace).Msg("loaded configuration")

	s := &session{
		logger:    logger,
		workspace: workspace,
		cfg:       cfg,
		engine: infer.NewEngine(
			infer.WithLogger(logger),
			infer.WithDiagnosticsSink(resolver.NewLoggerSink(logger, o.hints)),
			infer.WithCacheFile(cfg.CacheFile),
			infer.WithParallelism(cfg.Parallelism),
		),
	}
	if o.progress {
		s.progress = newProgressLogger(logger)
	}
	return s, nil
}

func (s *session) scan(ctx context.Context) (*snapshot.Snapshot, error) {
	options := []snapshot.Option{snapshot.WithLogger(s.logger)}
	if s.progress != nil {
		options = append(options, snapshot.WithProgress(s.progress))
	}
	return snapshot.Scan(ctx, s.workspace, s.cfg, options...)
}
