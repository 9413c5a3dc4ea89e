// Package runtime provides application runtime context for babyreminder.
package runtime

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/manav03panchal/babyreminder/internal/config"
	"github.com/manav03panchal/babyreminder/internal/daemon"
	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/journal"
	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/mqtt"
	"github.com/manav03panchal/babyreminder/internal/output"
	"github.com/manav03panchal/babyreminder/internal/service"
	"github.com/manav03panchal/babyreminder/internal/storage"
)

// EnvDatabase overrides the database path. ":memory:" selects an
// in-memory database.
const EnvDatabase = "BABYREMINDER_DATABASE"

// clientTimeout bounds each request a command makes to the daemon API.
const clientTimeout = 10 * time.Second

// Context holds the application runtime context.
//
// The database and the daemon client are opened lazily so commands that
// need neither (version, legal, daemon stop) never touch them. Badger
// allows a single process per directory, so when the daemon is running
// commands talk to it over its API instead of opening the database.
type Context struct {
	Config    *config.RuntimeConfig
	Formatter *output.Formatter

	// Debug mode
	Debug bool

	dbPath   string
	inMemory bool
	apiAddr  string

	db      *storage.DB
	backend service.Backend
	journal *journal.Journal
	broker  mqtt.Client
}

// Options configures the runtime context.
type Options struct {
	DBPath    string
	InMemory  bool
	Format    output.Format
	ColorMode output.ColorMode
	Debug     bool

	// Config is the loaded configuration. Nil uses the defaults.
	Config *config.RuntimeConfig

	// APIAddr forces the daemon API address instead of reading it from
	// the daemon state file.
	APIAddr string
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		DBPath:    storage.DefaultPath(),
		InMemory:  false,
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
		Debug:     false,
	}
}

// New creates a new runtime context.
func New(opts Options) (*Context, error) {
	if envPath := os.Getenv(EnvDatabase); envPath != "" {
		if envPath == ":memory:" {
			opts.InMemory = true
		} else {
			opts.DBPath = envPath
		}
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultRuntimeConfig()
	}
	if opts.DBPath == "" && !opts.InMemory {
		opts.DBPath = cfg.Database.Path
	}

	formatter := output.NewFormatter()
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode

	return &Context{
		Config:    cfg,
		Formatter: formatter,
		Debug:     opts.Debug,
		dbPath:    opts.DBPath,
		inMemory:  opts.InMemory,
		apiAddr:   opts.APIAddr,
	}, nil
}

// DB opens the preference database on first use.
func (c *Context) DB() (*storage.DB, error) {
	if c.db != nil {
		return c.db, nil
	}
	db, err := storage.Open(storage.Options{Path: c.dbPath, InMemory: c.inMemory})
	if err != nil {
		return nil, openError(err, c.dbPath)
	}
	c.db = db
	return db, nil
}

// openError maps badger open failures onto user facing errors.
func openError(err error, path string) error {
	if isLockError(err) {
		return &errors.UserError{
			Message:    "database is in use by another process",
			Suggestion: errors.GetSuggestion(errors.ErrLockHeld),
			Field:      "database",
			Value:      path,
			Cause:      errors.ErrLockHeld,
		}
	}
	if IsDiskFullError(err) {
		return WrapDiskFullError(err, "open", path)
	}
	return errors.NewSystemErrorWithOp("open database", "failed to open database", err)
}

func isLockError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "directory lock") ||
		strings.Contains(msg, "another process is using this badger database")
}

// Backend returns the daemon API client when the daemon is reachable and
// a local service over the database otherwise.
func (c *Context) Backend(ctx context.Context) (service.Backend, error) {
	if c.backend != nil {
		return c.backend, nil
	}

	if client := c.daemonClient(ctx); client != nil {
		c.Debugf("using daemon API at %s", client.Addr())
		c.backend = client
		return client, nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	c.Debugf("daemon not running, using database at %s", c.dbPath)
	c.backend = service.NewLocal(db).WithMaxRepeats(c.Config.Reminder.MaxRepeats)
	return c.backend, nil
}

// DaemonClient returns a client for the running daemon or
// ErrDaemonNotRunning.
func (c *Context) DaemonClient(ctx context.Context) (*service.Client, error) {
	if client := c.daemonClient(ctx); client != nil {
		return client, nil
	}
	return nil, errors.ErrDaemonNotRunning
}

func (c *Context) daemonClient(ctx context.Context) *service.Client {
	if c.inMemory {
		return nil
	}
	addr := c.daemonAddr()
	if addr == "" || addr == "-" {
		return nil
	}
	client := service.NewClient(addr, clientTimeout)
	if err := client.Ping(ctx); err != nil {
		logging.DebugLog("daemon API not reachable", logging.KeyError, err)
		return nil
	}
	return client
}

func (c *Context) daemonAddr() string {
	if c.apiAddr != "" {
		return c.apiAddr
	}
	status := daemon.NewDaemon().GetStatus()
	if !status.Running {
		return ""
	}
	if status.APIAddr != "" {
		return status.APIAddr
	}
	return c.Config.API.Addr
}

// Journal opens the event history. The journal is sqlite in WAL mode, so
// it can be read while the daemon is writing.
func (c *Context) Journal(ctx context.Context) (*journal.Journal, error) {
	if c.journal != nil {
		return c.journal, nil
	}
	path := c.Config.Journal.Path
	if path == "" {
		return nil, errors.NewUserError("event history is disabled",
			"Set journal.path in your config file to record events.")
	}
	j, err := journal.Open(ctx, path)
	if err != nil {
		return nil, WrapDiskFullError(err, "open", path)
	}
	c.journal = j
	return j, nil
}

// Publisher connects to the MQTT broker so commands can hand events to
// the daemon when its API is unreachable.
func (c *Context) Publisher() (mqtt.Client, error) {
	if c.broker != nil {
		return c.broker, nil
	}
	if !c.Config.MQTT.Enabled() {
		return nil, errors.ErrBrokerUnavailable
	}
	client, err := mqtt.DialCLI(c.Config.MQTT)
	if err != nil {
		return nil, err
	}
	c.broker = client
	return client, nil
}

// Close releases everything the context opened.
func (c *Context) Close() error {
	var errs []error
	if c.broker != nil {
		errs = append(errs, c.broker.Close())
		c.broker = nil
	}
	if c.journal != nil {
		errs = append(errs, c.journal.Close())
		c.journal = nil
	}
	if c.db != nil {
		errs = append(errs, c.db.Close())
		c.db = nil
	}
	c.backend = nil
	return errors.Join(errs...)
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// IsCLI returns true if output format is CLI.
func (c *Context) IsCLI() bool {
	return c.Formatter.Format == output.FormatCLI
}

// Debugf prints debug output if debug mode is enabled.
func (c *Context) Debugf(format string, args ...any) {
	if c.Debug {
		c.Formatter.Printf("[DEBUG] "+format+"\n", args...)
	}
}
