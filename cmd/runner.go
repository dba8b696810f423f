package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cfx/internal/repositories"
	"github.com/desertthunder/cfx/internal/services"
	"github.com/desertthunder/cfx/internal/shared"
	"github.com/desertthunder/cfx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	feed       services.FeedService
	media      services.MediaFetcher
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Feed and Media replace the candfans clients when set.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Feed       services.FeedService
	Media      services.MediaFetcher
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		feed:       opts.Feed,
		media:      opts.Media,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		archiveCommand, setupCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by subsequent commands.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// credentials resolves the session values from flags (and their env sources), falling back to the config file.
func (r *Runner) credentials(cmd *cli.Command) (shared.CredentialsConfig, error) {
	creds := r.config.Credentials
	if v := cmd.String("cookie"); v != "" {
		creds.Cookie = v
	}
	if v := cmd.String("xsrf"); v != "" {
		creds.XSRFToken = v
	}

	if creds.Cookie == "" || creds.XSRFToken == "" {
		return creds, fmt.Errorf("%w: pass --cookie and --xsrf, set CFX_COOKIE and CFX_XSRF_TOKEN, or run 'cfx setup credentials'",
			shared.ErrMissingCredentials)
	}
	return creds, nil
}

// feedClient returns the client for API calls. [remote] timeout_seconds bounds
// API requests only; media downloads use the plain client.
func (r *Runner) feedClient() *http.Client {
	timeout := r.config.Remote.Timeout()
	if timeout <= 0 {
		return r.httpClient
	}
	client := *r.httpClient
	client.Timeout = timeout
	return &client
}

// newEngine wires the archive engine for creds. Its log lines carry the target user code.
func (r *Runner) newEngine(creds shared.CredentialsConfig, userCode string) *tasks.ArchiveEngine {
	feed := r.feed
	if feed == nil {
		feed = services.NewCandfansService(services.CandfansOpts{
			BaseURL:    r.config.Remote.APIURL,
			Referer:    r.config.Remote.Referer,
			Cookie:     creds.Cookie,
			XSRFToken:  creds.XSRFToken,
			HTTPClient: r.feedClient(),
		})
	}

	media := r.media
	if media == nil {
		media = services.NewMediaService(r.config.Remote.MediaURL, r.httpClient)
	}

	return tasks.NewArchiveEngine(feed, media, shared.WithLogger(r.logger, "target", userCode))
}

// openLedger opens the archive ledger when recording is enabled. A nil db means recording is off.
func (r *Runner) openLedger(cmd *cli.Command) (*sql.DB, *repositories.LedgerAdapter) {
	if !r.config.Database.Record || cmd.Bool("no-record") {
		return nil, nil
	}

	db, err := shared.OpenLedger(r.config.Database)
	if err != nil {
		r.logger.Warn("archive ledger unavailable, run will not be recorded", "path", r.config.Database.Path, "error", err)
		return nil, nil
	}
	return db, repositories.NewLedgerAdapter(repositories.NewRunRepository(db), r.logger)
}

// runOpts builds [tasks.RunOpts] from the shared archive flags.
func (r *Runner) runOpts(cmd *cli.Command) (tasks.RunOpts, error) {
	userCode := cmd.StringArg("target")
	if userCode == "" {
		return tasks.RunOpts{}, fmt.Errorf("%w: target user code", shared.ErrMissingArgument)
	}

	opts := tasks.RunOpts{
		UserCode:   userCode,
		Offset:     cmd.Int("offset"),
		OutputDir:  r.config.Archive.Output,
		Extensions: r.config.Archive.Extensions,
	}
	if opts.Offset < 0 {
		return opts, fmt.Errorf("%w: --offset must not be negative", shared.ErrInvalidArgument)
	}

	if cmd.IsSet("pages") {
		pages := cmd.Int("pages")
		if pages < 0 {
			return opts, fmt.Errorf("%w: --pages must not be negative", shared.ErrInvalidArgument)
		}
		opts.PageLimit = &pages
	}
	if out := cmd.String("output"); out != "" {
		opts.OutputDir = out
	}
	if exts := cmd.StringSlice("extensions"); len(exts) > 0 {
		opts.Extensions = exts
	}
	if len(tasks.NewExtensionSet(opts.Extensions...)) == 0 {
		return opts, fmt.Errorf("%w: at least one extension is required", shared.ErrInvalidArgument)
	}

	return opts, nil
}

// applyLogLevel honors --log-level, then [log] level.
func (r *Runner) applyLogLevel(cmd *cli.Command) error {
	name := r.config.Log.Level
	if cmd.IsSet("log-level") {
		name = cmd.String("log-level")
	}

	level, err := shared.ParseLogLevel(name)
	if err != nil {
		return err
	}
	shared.SetLogLevel(r.logger, level)
	return nil
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
