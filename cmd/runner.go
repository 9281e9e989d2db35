package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sinkmuzik/internal/shared"
	"github.com/desertthunder/sinkmuzik/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	profile    *shared.EncoderProfile
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.Engine
	db         *sql.DB
	closers    []io.Closer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A Config or Profile given here is used as is instead of being loaded from disk.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Profile    *shared.EncoderProfile
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		profile:    opts.Profile,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, previewCommand, initCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and any engine it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the history database and any log file opened by the runner.
func (r *Runner) Close() error {
	var errs []error
	if r.db != nil {
		errs = append(errs, r.db.Close())
		r.db = nil
	}
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	r.closers = nil
	return errors.Join(errs...)
}

// loadConfig reads the config named by --config (unless one was injected) and applies flag overrides.
// The [log] file is opened only when fileLog is set; read-only commands keep logging to stderr.
func (r *Runner) loadConfig(cmd *cli.Command, fileLog bool) error {
	if r.config == nil {
		path := r.configPath
		if cmd.IsSet("config") || path == "" {
			path = cmd.String("config")
		}
		cfg, err := shared.LoadConfig(path)
		if err != nil {
			return err
		}
		r.config = cfg
		r.configPath = path
	}

	if dir := cmd.String("encoders-dir"); dir != "" {
		r.config.EncodersDir = dir
	}
	if cmd.IsSet("workers") {
		workers := cmd.Int("workers")
		if workers < 0 {
			return fmt.Errorf("%w: --workers must not be negative", shared.ErrInvalidFlag)
		}
		r.config.Workers = workers
	}
	if cmd.IsSet("timeout") {
		timeout := cmd.Duration("timeout")
		if timeout < 0 {
			return fmt.Errorf("%w: --timeout must not be negative", shared.ErrInvalidFlag)
		}
		r.config.Timeout.Duration = timeout
	}

	return r.configureLogger(cmd.Bool("verbose"), fileLog)
}

// configureLogger applies the [log] level from the config and, when fileLog is set, switches to
// the [log] file. --verbose forces debug.
func (r *Runner) configureLogger(verbose, fileLog bool) error {
	if path := r.config.Log.Path; path != "" && fileLog {
		logger, closer, err := shared.NewFileLogger(path)
		if err != nil {
			return err
		}
		r.closers = append(r.closers, closer)
		r.logger = logger
	}

	level := log.InfoLevel
	if s := strings.TrimSpace(r.config.Log.Level); s != "" {
		parsed, err := log.ParseLevel(s)
		if err != nil {
			return fmt.Errorf("%w: [log] level: %v", shared.ErrInvalidConfig, err)
		}
		level = parsed
	}
	if verbose {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)
	return nil
}

// prepare loads the config and the encoder profile it selects, then builds the engine.
func (r *Runner) prepare(cmd *cli.Command, fileLog bool) error {
	if err := r.loadConfig(cmd, fileLog); err != nil {
		return err
	}

	if r.profile == nil {
		profile, err := shared.LoadEncoderProfile(r.config.EncodersDir, r.config.ConversionFormat)
		if err != nil {
			return err
		}
		r.profile = profile
	}

	r.engine = tasks.NewEngine(r.config, r.profile, r.logger)
	r.logger.Debug("configuration loaded",
		"config", r.configPath,
		"storage", r.config.StoragePath,
		"format", r.config.ConversionFormat,
		"policy", r.config.Convert,
	)
	return nil
}

// sourceDir returns the single directory argument of cmd.
func sourceDir(cmd *cli.Command) (string, error) {
	dir := strings.TrimSpace(cmd.Args().First())
	if dir == "" {
		return "", fmt.Errorf("%w: music directory", shared.ErrMissingArgument)
	}
	if cmd.Args().Len() > 1 {
		return "", fmt.Errorf("%w: unexpected arguments %v", shared.ErrInvalidArgument, cmd.Args().Tail())
	}
	return dir, nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
