// Package cli is the `todo` command tree.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/notify"
	"github.com/Makepad-fr/tada/internal/remote"
	"github.com/Makepad-fr/tada/internal/share"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

// App holds root flags and everything resolved from them before a
// subcommand runs.
type App struct {
	ConfigPath string
	APIURL     string
	Theme      string
	Color      string
	NoColor    bool
	LogLevel   string

	cfg    *config.Config
	log    hclog.Logger
	closer io.Closer

	// share targets; nil means the system clipboard / mail client
	clipboard share.Deliverer
	mailer    share.Deliverer
}

// Execute runs the command tree with os.Args.
func Execute(ctx context.Context) error {
	app := &App{}
	return app.execute(ctx, newRootCmd(app))
}

// execute runs cmd and releases what setup opened, whether or not the
// command succeeded.
func (app *App) execute(ctx context.Context, cmd *cobra.Command) error {
	defer func() {
		if err := app.close(); err != nil && app.log != nil {
			app.log.Warn("close log", "error", err)
		}
	}()
	return cmd.ExecuteContext(ctx)
}

func (app *App) close() error {
	if app.closer == nil {
		return nil
	}
	c := app.closer
	app.closer = nil
	return c.Close()
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "Todo list synced with a remote todo service",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  todo

  # Scriptable commands
  todo add "Buy milk"
  todo list --filter active
  todo done 2
  todo edit 1 "Buy oat milk"
  todo rm 3

  # Local reference server
  todo serve --data ./todos.json
`),
		// No subcommand => interactive TUI.
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{msg: err.Error()}
	})

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Config file (default ~/.tada/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "Base URL of the todo service (overrides api.url)")
	cmd.PersistentFlags().StringVar(&app.Theme, "theme", "", "Output theme (classic|neon|mono)")
	cmd.PersistentFlags().StringVar(&app.Color, "color", "", "Color output (auto|always|never)")
	cmd.PersistentFlags().BoolVar(&app.NoColor, "no-color", false, "Disable color output")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (trace|debug|info|warn|error)")

	cmd.AddCommand(newLsCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newRmCmd(app))
	cmd.AddCommand(newShareCmd(app))
	cmd.AddCommand(newAuthCmd(app))
	cmd.AddCommand(newServeCmd(app))

	return cmd
}

// setup loads config, applies flag overrides and opens the logger.
func (app *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return err
	}
	if app.APIURL != "" {
		cfg.API.URL = app.APIURL
	}
	if app.Theme != "" {
		cfg.UI.Theme = app.Theme
	}
	if app.Color != "" {
		cfg.UI.Color = app.Color
	}
	if app.NoColor {
		cfg.UI.Color = "never"
	}
	if app.LogLevel != "" {
		cfg.Log.Level = app.LogLevel
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		return usageError{msg: errs[0].Error()}
	}
	app.cfg = cfg

	if err := ui.SetTheme(cfg.UI.Theme); err != nil {
		return usageError{msg: err.Error()}
	}
	ui.SetColorMode(cfg.UI.Color)

	dir, _ := config.Dir()
	interactive := cmd == cmd.Root() || cmd.Name() == "ls"
	log, closer, err := logging.Open(cfg.Log.Level, cfg.Log.File, dir, interactive)
	if err != nil {
		return err
	}
	app.log, app.closer = log, closer
	app.log.Debug("configured", "api", cfg.API.URL, "command", cmd.CommandPath())
	return nil
}

// newStore builds a store backed by the configured remote service.
func (app *App) newStore() (*store.Store, error) {
	client, err := remote.NewHTTPClient(remote.Options{
		BaseURL: app.cfg.API.URL,
		Timeout: app.cfg.API.Timeout,
		Token:   auth.Token(),
		Logger:  app.log.Named("remote"),
	})
	if err != nil {
		return nil, usageError{msg: err.Error()}
	}
	return store.New(client, app.log.Named("store")), nil
}

func (app *App) clipboardTarget() share.Deliverer {
	if app.clipboard != nil {
		return app.clipboard
	}
	return share.Clipboard{}
}

func (app *App) mailTarget() share.Deliverer {
	if app.mailer != nil {
		return app.mailer
	}
	return share.Mailer{Subject: app.cfg.Share.Subject}
}

func newLsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "Open the interactive list",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	st, err := app.newStore()
	if err != nil {
		return err
	}
	return tui.Run(cmd.Context(), tui.Options{
		Store:     st,
		Notices:   notify.New(app.cfg.Notify.Duration),
		Mailer:    app.mailTarget(),
		Clipboard: app.clipboardTarget(),
		Logger:    app.log,
	})
}
