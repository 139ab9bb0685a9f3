package commands

import (
	"context"
	"encoding/hex"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metroflow/internal/cli/config"
	"github.com/leapstack-labs/metroflow/internal/ui"
)

// ServeOptions holds options for the serve command. --port and --watch have
// no field here: they reach cfg.UI through the flag layer of the config.
type ServeOptions struct {
	NoBrowser bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the passenger-flow dashboard",
		Long: `Start a local web server with the interactive dashboard.

The dashboard provides:
- Line, year and quarter selectors with a reset button
- Total incoming and outgoing passengers for the selection
- A stacked bar chart of passengers per station
- A map of the stations, with each line drawn in its color
- The displayed rows, downloadable as .xlsx or .csv

Data files are reloaded when they change on disk (--watch) and on
data.refresh_schedule, if set.`,
		Example: `  # Start the dashboard on the default port
  metroflow serve

  # Start on a custom port
  metroflow serve --port 3000

  # Start without auto-opening the browser
  metroflow serve --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().Int("port", config.DefaultPort, "Port to serve on")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().Bool("watch", true, "Reload data files when they change")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	port := cfg.UI.Port
	autoOpen := cfg.UI.AutoOpen && !opts.NoBrowser

	// Load once up front so a broken file is reported before the browser opens.
	if _, err := cmdCtx.Engine.Passengers(); err != nil {
		r.Warning(err.Error())
	}
	if _, err := cmdCtx.Engine.Coordinates(); err != nil {
		r.Warning(err.Error())
	}

	server := ui.NewServer(ui.Config{
		Engine:          cmdCtx.Engine,
		Port:            port,
		Watch:           cfg.UI.Watch,
		RefreshSchedule: cfg.Data.RefreshSchedule,
		TableLimit:      cfg.UI.TableLimit,
		SessionSecret:   sessionSecret(cfg, cmdCtx),
		Logger:          cmdCtx.Logger,
	})

	url := fmt.Sprintf("http://localhost:%d", port)
	if autoOpen {
		go openBrowser(url)
	}

	r.Success("Dashboard running on " + url)
	r.Muted("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// sessionSecret returns the configured secret, or a random one. A random
// secret means stored selections do not survive a restart.
func sessionSecret(cfg *config.Config, cmdCtx *CommandContext) string {
	if cfg.UI.SessionSecret != "" {
		return cfg.UI.SessionSecret
	}
	cmdCtx.Logger.Debug("no session secret configured, using a random one", "env", config.SessionSecretEnv)
	return hex.EncodeToString(securecookie.GenerateRandomKey(32))
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
