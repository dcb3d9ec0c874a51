package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flickx/internal/services"
	"github.com/desertthunder/flickx/internal/session"
	"github.com/desertthunder/flickx/internal/shared"
	"github.com/desertthunder/flickx/internal/storage"
	"github.com/desertthunder/flickx/internal/watchlist"
	"github.com/urfave/cli/v3"
)

// Area is a storage scope the CLI can read, list and clear.
type Area interface {
	storage.Store
	List(ctx context.Context) ([]storage.Entry, error)
	Clear(ctx context.Context) error
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Storage, session and watchlist are opened on first use by [Runner.state] unless injected.
type Runner struct {
	config      *shared.Config
	configPath  string
	logger      *log.Logger
	output      io.Writer
	catalog     services.Catalog
	db          *sql.DB
	short       Area
	long        Area
	session     *session.Manager
	watchlist   *watchlist.Store
	openBrowser func(string) error
	ready       bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Logger      *log.Logger
	Output      io.Writer
	Catalog     services.Catalog
	Short       Area
	Long        Area
	Session     *session.Manager
	Watchlist   *watchlist.Store
	OpenBrowser func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		logger:      opts.Logger,
		output:      opts.Output,
		catalog:     opts.Catalog,
		short:       opts.Short,
		long:        opts.Long,
		session:     opts.Session,
		watchlist:   opts.Watchlist,
		openBrowser: opts.OpenBrowser,
	}
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "flickx",
		Usage:   "Discover movies from TMDB and keep a local watchlist",
		Version: "0.3.0",
		Writer:  r.output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("FLICKX_CONFIG"),
			},
		},
		Before:   r.loadConfig,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, watchlistCommand, adminCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reads the --config file when present and applies environment overrides.
//
// A missing default file keeps the current configuration; a missing explicit one is an error.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else if cmd.IsSet("config") {
		return ctx, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	r.configPath = path
	r.config.ApplyEnv(os.Getenv)
	return ctx, nil
}

// SetLogger replaces the logger used by the runner and everything it opens afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// state opens storage, restores the session and loads the watchlist.
func (r *Runner) state(ctx context.Context) error {
	if r.ready {
		return nil
	}

	if r.short == nil || r.long == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return err
		}
		r.db = db
		r.long = storage.NewSQLiteStore(db, storage.ScopeLocal)
		if r.config.Session.Persist {
			r.short = storage.NewSQLiteStore(db, storage.ScopeSession)
		} else {
			r.short = storage.NewMemoryStore(storage.ScopeSession)
		}
	}

	if r.session == nil {
		delay := r.config.Session.LoginDelay()
		if delay <= 0 {
			delay = -1
		}
		r.session = session.NewManager(r.short, r.long, session.ManagerOpts{
			LoginDelay: delay,
			Logger:     shared.WithLogger(r.logger, "component", "session"),
		})
	}
	if r.watchlist == nil {
		r.watchlist = watchlist.New(r.long, shared.WithLogger(r.logger, "component", "watchlist"))
	}

	if err := r.session.Rehydrate(ctx); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if err := r.watchlist.Hydrate(ctx); err != nil {
		return fmt.Errorf("failed to load watchlist: %w", err)
	}

	r.ready = true
	return nil
}

// catalogService returns the injected catalog or a TMDB client built from the configuration.
func (r *Runner) catalogService() (services.Catalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}

	svc, err := services.NewTMDBServiceFromConfig(r.config.TMDB, shared.WithLogger(r.logger, "service", "tmdb"))
	if err != nil {
		return nil, err
	}
	r.catalog = svc
	return svc, nil
}

// Close releases the database when the runner opened one.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
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

// exitCode maps command errors to process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrAccessDenied):
		return 3
	case errors.Is(err, shared.ErrMissingCredentials), errors.Is(err, shared.ErrMissingConfig):
		return 2
	default:
		return 1
	}
}
