package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"zenflow/internal/config"
	"zenflow/internal/database"
	"zenflow/internal/demands"
	"zenflow/internal/logging"
	"zenflow/internal/notify"
	"zenflow/internal/remote"
	"zenflow/internal/storage"
	"zenflow/internal/tracker"
	"zenflow/internal/ui"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// App carries the global flags and the lazily loaded configuration shared by
// every command.
type App struct {
	ConfigPath string
	DataDir    string
	Backend    string
	LogLevel   string

	cfg *config.Config
	now func() time.Time
}

func newApp() *App {
	return &App{now: time.Now}
}

func newRootCmd(app *App) *cobra.Command {
	if app.now == nil {
		app.now = time.Now
	}

	cmd := &cobra.Command{
		Use:           "zenflow",
		Short:         "Habits, daily routines and one-off tasks in your terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  zenflow

  # Register a habit for Monday, Wednesday and Friday
  zenflow add "Drink water" --days Seg,Qua,Sex --target 8

  # Mark one repetition for today
  zenflow done <item-id>

  # Weekly report rendered in the terminal
  zenflow report --weekly --render
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), app)
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "config file (default is ~/.config/zenflow/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.DataDir, "data-dir", "", "data directory (overrides data_dir in the config)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "item backend: json, sqlite or remote")
	cmd.PersistentFlags().StringVarP(&app.LogLevel, "loglevel", "l", "", "log level: trace, debug, info, warn, error")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newAgendaCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newRmCmd(app))
	cmd.AddCommand(newReportCmd(app))
	cmd.AddCommand(newRemindCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newBackupCmd(app))
	cmd.AddCommand(newRestoreCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// config loads the configuration once and applies the global flag overrides.
func (a *App) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	var (
		cfg *config.Config
		err error
	)
	if a.ConfigPath != "" {
		cfg, err = config.LoadFile(a.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if a.DataDir != "" {
		cfg.DataDir = a.DataDir
	}
	if a.Backend != "" {
		cfg.Backend = strings.ToLower(a.Backend)
	}
	if a.LogLevel != "" {
		cfg.Log.Level = a.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logging.SetLevel(cfg.Log.Level); err != nil {
		return nil, err
	}

	a.cfg = cfg
	return cfg, nil
}

// backend is the opened item store plus the demand board, when the
// configured store keeps one.
type backend struct {
	cfg   *config.Config
	files *storage.Storage
	items *tracker.Service
	board *demands.Manager
	db    *sql.DB
}

func (b *backend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// open builds the configured backend and loads the items. The JSON file
// store is always opened: it holds the UI state and serves exports.
func (a *App) open(ctx context.Context) (*backend, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}

	files, err := storage.New(cfg.GetDataDir())
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	files.SetOnSaveWithContext(func(sc storage.SaveContext) {
		logging.Log.WithFields(logrus.Fields{
			"file": sc.Filename,
			"op":   sc.Operation,
			"type": sc.ItemType,
			"name": sc.ItemName,
		}).Debug("saved")
	})

	b := &backend{cfg: cfg, files: files}
	var repo tracker.Repository = files

	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := database.Open(cfg.DatabasePath())
		if err != nil {
			return nil, err
		}
		b.db = db
		repo = database.NewItemStore(db)
		b.board = demands.NewManager(database.NewDemandStore(db))
	case config.BackendRemote:
		client, err := remote.NewClient(remote.Config{
			URL:          cfg.Remote.URL,
			APIKey:       cfg.Remote.APIKey,
			ItemsTable:   cfg.Remote.ItemsTable,
			AreasTable:   cfg.Remote.AreasTable,
			DemandsTable: cfg.Remote.DemandsTable,
			RetryMax:     cfg.Remote.RetryMax,
			Timeout:      time.Duration(cfg.Remote.TimeoutSeconds) * time.Second,
			Logger:       logging.Leveled{Logger: logging.Log},
		})
		if err != nil {
			return nil, err
		}
		repo = client.Items()
		b.board = demands.NewManager(client.Demands())
	}

	b.items = tracker.NewService(repo)
	b.items.SetNowFunc(a.now)
	if b.board != nil {
		b.board.SetNowFunc(a.now)
	}
	if err := b.items.Load(ctx); err != nil {
		b.Close()
		return nil, fmt.Errorf("loading items: %w", err)
	}
	logging.Log.WithFields(logrus.Fields{
		"backend": cfg.Backend,
		"items":   len(b.items.Items()),
	}).Debug("backend ready")
	return b, nil
}

// parseDateArg returns the date in args[0], or today when args is empty.
func parseDateArg(args []string, today tracker.Date) (tracker.Date, error) {
	if len(args) == 0 || args[0] == "" {
		return today, nil
	}
	d, err := tracker.ParseDate(args[0])
	if err != nil {
		return "", fmt.Errorf("invalid date %q, use YYYY-MM-DD", args[0])
	}
	return d, nil
}

func runTUI(ctx context.Context, app *App) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := app.config()
	if err != nil {
		return err
	}

	// The terminal belongs to the TUI from here on.
	closer, err := logging.Setup(cfg.Log.Level, cfg.LogFile())
	if err != nil {
		return err
	}
	defer closer.Close()

	b, err := app.open(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	if cfg.Notify.Enabled {
		if _, err := notify.Remind(ctx, notify.New(), b.items.Items(), b.items.Today(), cfg.Notify.Sound); err != nil {
			logging.Log.WithError(err).Warn("startup reminder failed")
		}
	}

	styles := ui.NewStylesFromTheme(&cfg.Theme)
	appCfg := &ui.AppConfig{
		Keys:                  &cfg.Keys,
		CalendarExpanded:      cfg.UX.CalendarExpanded,
		NarrowLayoutThreshold: cfg.UX.NarrowLayoutThreshold,
	}
	if err := ui.Run(b.items, b.board, b.files, styles, appCfg); err != nil {
		return fmt.Errorf("running app: %w", err)
	}
	return nil
}
