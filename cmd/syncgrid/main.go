// Package main is the entry point for SyncGrid TUI. The root command runs
// the dashboard; subcommands export charts and manage saved layouts.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j-veylop/syncgrid-tui/internal/app"
	"github.com/j-veylop/syncgrid-tui/internal/config"
	"github.com/j-veylop/syncgrid-tui/internal/logger"
	"github.com/j-veylop/syncgrid-tui/internal/services"
	"github.com/j-veylop/syncgrid-tui/internal/ui/tabs/canvas"
	"github.com/j-veylop/syncgrid-tui/internal/ui/tabs/grid"
	"github.com/j-veylop/syncgrid-tui/internal/ui/tabs/info"
	"github.com/j-veylop/syncgrid-tui/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "syncgrid",
		Short: "Synchronized time-series charts in the terminal",
		Long: `SyncGrid TUI shows a set of daily time-series charts that share one
crosshair and one date range. Hovering or dragging over any chart drives
every other chart. Charts can be arranged in a grid or on a free canvas
where frames are dragged and resized, and their layout is saved.

Configuration is read from .env files and SYNCGRID_* environment variables.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runTUI,
	}

	rootCmd.AddCommand(newExportCmd(), newLayoutsCmd(), newDashboardCmd(), newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}

// setup loads the configuration, opens the log file and starts the
// services. The returned cleanup closes both.
func setup() (*config.Config, *services.Manager, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Init(cfg.LogPath, cfg.LogLevel); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	mgr, err := services.NewManager(cfg)
	if err != nil {
		_ = logger.Close()
		return nil, nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	cleanup := func() {
		if err := mgr.Close(); err != nil {
			logger.Error("closing services", "error", err)
		}
		_ = logger.Close()
	}
	return cfg, mgr, cleanup, nil
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, mgr, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("starting", "version", version.GetVersion(), "source", mgr.Data().Source())

	model := app.NewModel(mgr,
		app.WithDateRange(cfg.DefaultRange),
		app.WithResponsive(cfg.Responsive),
		app.WithHoverClearDelay(cfg.HoverClearDelay),
	)
	defer model.Close()

	state := model.GetState()
	model.SetTabs([]app.Tab{
		grid.New(state, mgr.Bus(), cfg.ExportDir),
		canvas.New(state, mgr.Bus(), mgr.Layouts(), cfg.ExportDir),
		info.New(state, cfg, mgr.Layouts()),
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(), // hover needs motion without a held button
	)
	model.SetSender(p.Send)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		if _, ok := <-sigChan; ok {
			p.Send(tea.Quit())
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
