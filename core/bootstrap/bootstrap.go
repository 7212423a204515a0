// Package bootstrap assembles the engine from configuration: logger,
// database, migrations, repositories, and the dispatcher with its janitor.
package bootstrap

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/convocore/core/config"
	coredatabase "github.com/m3rciful/convocore/core/database"
	"github.com/m3rciful/convocore/core/engine"
	"github.com/m3rciful/convocore/core/logger"
	"github.com/m3rciful/convocore/core/storage"
	"github.com/m3rciful/convocore/core/storage/postgres"
)

// Options control the bootstrap pipeline. The function fields exist for
// tests; zero values select the production implementations.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coreconfig.DatabaseConfig) (*sqlx.DB, error)
	Migrate    func(coreconfig.DatabaseConfig) error

	// Commands are registered into the dispatcher's table after it is
	// built, in the given order.
	Commands []engine.Command
}

// Result exposes everything the runtime needs after bootstrap.
type Result struct {
	// DB is nil when the database is disabled.
	DB         *sqlx.DB
	Dispatcher *engine.Dispatcher
	Janitor    *engine.Janitor
}

// Close releases bootstrap-owned resources.
func (r *Result) Close() error {
	if r.DB != nil {
		return r.DB.Close()
	}
	return nil
}

// Run initializes the logger, connects and migrates the database unless it
// is disabled, and wires the engine.
func Run(opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	var (
		db       *sqlx.DB
		sessions storage.SessionRepository
		users    storage.UserRepository
	)
	if !cfg.Database.Disabled {
		connect := opts.Connect
		if connect == nil {
			connect = coredatabase.Connect
		}
		var err error
		db, err = connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
		}

		migrate := opts.Migrate
		if migrate == nil {
			migrate = coredatabase.RunMigrations
		}
		if err := migrate(cfg.Database); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}

		sessions = postgres.NewSessionRepo(db)
		users = postgres.NewUserRepo(db)
	}

	table := engine.NewTable(matchMode(cfg.Bot.MatchMode))
	for _, cmd := range opts.Commands {
		table.Register(cmd)
	}

	callbacks := engine.NewCallbackRegistry(cfg.Session.CallbackTTL())
	bridge := engine.NewBridge(cfg.Bot.Name, sessions, users, cfg.Session.Expiration())
	dispatcher := engine.NewDispatcher(table, callbacks, bridge, nil, cfg.Bot.DefaultLocale)

	janitor := &engine.Janitor{
		Bridge:    bridge,
		Callbacks: callbacks,
		Interval:  cfg.Session.SweepInterval(),
	}

	return &Result{
		DB:         db,
		Dispatcher: dispatcher,
		Janitor:    janitor,
	}, nil
}

func matchMode(mode string) engine.Mode {
	if strings.EqualFold(mode, coreconfig.MatchModeExclusive) {
		return engine.ModeExclusive
	}
	return engine.ModeStrict
}
