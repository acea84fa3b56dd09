package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"pulseboard/internal/dashboard"
	"pulseboard/internal/prefs"
	"pulseboard/internal/tui"
)

// App holds shared state for all commands.
type App struct {
	Dir     string
	Store   string // file | sqlite | http
	Remote  string // base URL for the http store
	Verbose bool

	Logger *log.Logger
	Global GlobalConfig
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "pulseboard",
		Short:        "A personal dashboard for your terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open the interactive dashboard
  pulseboard

  # Use the sqlite store instead of the JSON file
  pulseboard --store sqlite

  # Follow a remote preference service
  pulseboard --store http --remote http://localhost:8750

  # Serve preferences over HTTP for other clients
  pulseboard serve --addr :8750
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := log.InfoLevel
		if app.Verbose {
			level = log.DebugLevel
		}
		app.Logger = newLogger(cmd.ErrOrStderr(), level)

		global, err := loadGlobalConfig()
		if err != nil {
			return fmt.Errorf("reading config.json: %w", err)
		}
		app.Global = global
		// Flags and env take precedence; the config file fills the gaps.
		if app.Store == "" {
			app.Store = global.Store
		}
		if app.Remote == "" {
			app.Remote = global.Remote
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("PULSEBOARD_DIR", ""), "Data directory (default: ~/.pulseboard)")
	cmd.PersistentFlags().StringVar(&app.Store, "store", envOr("PULSEBOARD_STORE", ""), "Preference store backend (file|sqlite|http)")
	cmd.PersistentFlags().StringVar(&app.Remote, "remote", envOr("PULSEBOARD_REMOTE", ""), "Base URL of a remote preference service (with --store http)")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Debug-level logging")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newWidgetsCmd(app))
	cmd.AddCommand(newPrefsCmd(app))

	return cmd
}

func runTUI(app *App) error {
	store, watchPath, err := openStore(app)
	if err != nil {
		return err
	}
	return tui.Run(tui.Options{
		Store:     store,
		WatchPath: watchPath,
		Debounce:  dashboard.DefaultDebounce,
		Logger:    app.Logger,
		Theme:     app.Global.Theme,
	})
}

// openStore resolves the configured preference store. watchPath is non-empty
// only for the file backend, where external edits can be followed.
func openStore(app *App) (store prefs.Store, watchPath string, err error) {
	switch app.Store {
	case "file", "":
		dir, err := resolveDir(app)
		if err != nil {
			return nil, "", err
		}
		fs := prefs.FileStore{Dir: dir}
		return fs, fs.Path(), nil
	case "sqlite":
		dir, err := resolveDir(app)
		if err != nil {
			return nil, "", err
		}
		return prefs.SQLiteStore{Dir: dir}, "", nil
	case "http":
		if strings.TrimSpace(app.Remote) == "" {
			return nil, "", fmt.Errorf("--store http requires --remote (or PULSEBOARD_REMOTE)")
		}
		return prefs.HTTPStore{BaseURL: app.Remote}, "", nil
	default:
		return nil, "", fmt.Errorf("unknown store backend %q (want file, sqlite or http)", app.Store)
	}
}

func resolveDir(app *App) (string, error) {
	dir := app.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, ".pulseboard")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return dir, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
