package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dy-sh/asana-tracker/internal/app"
	"github.com/dy-sh/asana-tracker/internal/asana"
	"github.com/dy-sh/asana-tracker/internal/history"
	"github.com/dy-sh/asana-tracker/internal/model"
	"github.com/dy-sh/asana-tracker/internal/refresh"
	"github.com/dy-sh/asana-tracker/internal/session"
)

var version = "0.1.0"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("asana-tracker v%s\n", version)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		}
	}

	configPath := flag.String(
		"config", model.DefaultConfigPath(), "Path to the config file",
	)
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	help := `asana-tracker - Terminal dashboard for Asana project progress

Usage:
  asana-tracker                 Start the dashboard
  asana-tracker version         Show version
  asana-tracker help            Show this help

Options:
  --config <path>   Config file (default ~/.config/asanatracker/config.yaml)

Keybindings:
  r        Refresh project data
  w        Cycle workspace filter
  A        Toggle archived projects
  s        Settings (API token)
  h        Refresh history
  ?        Help
  q        Quit

The Asana personal access token is stored in the system keyring.
Create one at https://app.asana.com/0/developer-console`

	fmt.Println(help)
}

func run(configPath string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if os.Getenv("ASANA_TRACKER_DEBUG") != "" {
		f, err := tea.LogToFile("asana-tracker-debug.log", "debug")
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		defer f.Close()
	}

	var historyStore *history.Store
	if cfg.History.Enabled {
		historyStore, err = history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("opening refresh history: %w", err)
		}
		defer historyStore.Close()
	}

	gate := session.NewGate(
		session.WithClientFactory(func(token string) *asana.Client {
			return asana.NewClient(
				token,
				asana.WithBaseURL(cfg.API.BaseURL),
				asana.WithTimeout(
					time.Duration(cfg.API.TimeoutSec)*time.Second,
				),
			)
		}),
	)

	runner := refresh.New(historyStore)
	root := app.New(cfg, configPath, gate, runner, historyStore)

	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	return nil
}
