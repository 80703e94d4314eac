package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skilltracker/skt/internal/api"
	"github.com/skilltracker/skt/internal/config"
	"github.com/skilltracker/skt/internal/logger"
	"github.com/skilltracker/skt/internal/session"
	"github.com/skilltracker/skt/internal/store"
	"github.com/skilltracker/skt/internal/ui"
	"github.com/skilltracker/skt/internal/ui/views"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("skt %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	kv, err := store.Open(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing local store: %v\n", err)
		os.Exit(1)
	}
	defer kv.Close()

	client := api.New(cfg.APIURL, cfg.HTTPTimeout, log)
	sessions := session.NewStore(kv, client, log)
	sessions.Load()

	app := ui.NewApp(views.Context{API: client, Sessions: sessions, Log: log})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}
