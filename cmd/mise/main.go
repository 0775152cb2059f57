// Package main is the entry point for mise. With no arguments it runs the
// kitchen TUI; otherwise it runs a one-shot subcommand.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/mise/internal/app"
	"github.com/j-veylop/mise/internal/config"
	"github.com/j-veylop/mise/internal/logger"
	"github.com/j-veylop/mise/internal/services"
	"github.com/j-veylop/mise/internal/ui/tabs/info"
	"github.com/j-veylop/mise/internal/ui/tabs/kitchen"
	"github.com/j-veylop/mise/internal/ui/tabs/stats"
	"github.com/j-veylop/mise/internal/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var uerr usageError
		if errors.As(err, &uerr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run dispatches on the first argument.
func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return runTUI()
	}

	switch args[0] {
	case "-v", "--version", "version":
		fmt.Fprintln(out, version.Info())
		return nil
	case "-h", "--help", "help":
		printUsage(out)
		return nil
	}

	cmd, ok := lookupCommand(args[0])
	if !ok {
		return usageError{fmt.Sprintf("unknown command %q (see mise --help)", args[0])}
	}
	rest := args[1:]
	if len(rest) < cmd.minArgs {
		return usageError{"usage: mise " + cmd.usage}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr, closeFn, err := openManager()
	if err != nil {
		return err
	}
	defer closeFn()

	return cmd.run(ctx, &env{mgr: mgr, out: out}, rest)
}

// openManager loads configuration, points the logger at the log file and
// starts the services.
func openManager() (*services.Manager, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var logFile *os.File
	if cfg.LogPath != "" {
		logFile, err = logger.OpenFile(cfg.LogPath, cfg.LogLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		}
	}

	mgr, err := services.NewManager(cfg)
	if err != nil {
		if logFile != nil {
			_ = logFile.Close()
		}
		return nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	closeFn := func() {
		if closeErr := mgr.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
		if logFile != nil {
			_ = logFile.Close()
		}
	}
	return mgr, closeFn, nil
}

func runTUI() error {
	mgr, closeFn, err := openManager()
	if err != nil {
		return err
	}
	defer closeFn()

	model := app.NewModel(mgr)
	state := model.GetState()
	commands := model.GetCommands()
	model.SetTabs([]app.Tab{
		kitchen.New(state, commands),
		stats.New(state, commands),
		info.New(state, mgr.Config()),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	logger.Info("tui started", "provider", mgr.Config().Provider, "models", len(mgr.Config().Models))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// usageError marks bad invocations so main can exit with status 2.
type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `mise - AI kitchen assistant with cooking stats

Usage:
  mise                          Run the interactive TUI
  mise <command> [args]

Commands:`)
	for _, c := range subcommands {
		fmt.Fprintf(w, "  %-30s %s\n", c.usage, c.summary)
	}
	fmt.Fprintln(w, `
Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts (TUI):
  1-3             Switch between tabs (Kitchen, Stats, Info)
  Tab/Shift+Tab   Navigate between tabs
  i               Type ingredients or a dish (Kitchen)
  m               Toggle ingredients/dish mode (Kitchen)
  t               Cycle week/month/all (Stats)
  r               Refresh data
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  GEMINI_API_KEYS       Comma-separated API keys, tried in order
  GEMINI_API_KEYS_FILE  File with one API key per line
  GEMINI_MODELS         Comma-separated models, tried in order
  AI_PROVIDER           gemini (default) or openai
  AI_BASE_URL           Override the provider endpoint
  AI_REQUEST_TIMEOUT    Per-attempt timeout (default: 60s)
  IMAGE_API_URL         Image generation endpoint (optional)
  IMAGE_API_KEY         Image generation key
  DATABASE_PATH         SQLite database path
  HISTORY_LIMIT         Cooked log entries kept (default: 50)
  LOG_PATH, LOG_LEVEL   Log file and level (default: info)
  NOTIFICATIONS         Desktop notifications (default: true)

Configuration:
  mise looks for a .env file in the current directory, then
  ~/.config/mise/.env and ~/.mise/.env.`)
}
