package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/npc-engine/internal/bootstrap"
	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// the TUI owns stdout; logs go to a file or nowhere
	var logOut io.Writer = io.Discard
	if path := os.Getenv("CONSOLE_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		logOut = f
	}
	log := logger.SetupWriter(cfg, logOut)

	var be backend
	if baseURL := os.Getenv("API_BASE_URL"); baseURL != "" {
		client := &http.Client{Timeout: cfg.CompletionTimeout + 15*time.Second}
		if !testConnection(client, baseURL) {
			fmt.Fprintf(os.Stderr, "Could not connect to API at %s. Please ensure the API is running.\n", baseURL)
			os.Exit(1)
		}
		be = &remoteBackend{client: client, baseURL: baseURL}
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		engine, err := bootstrap.Build(ctx, cfg, log)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start engine: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = engine.Close() }()
		be = &localBackend{ctrl: engine.Controller}
	}

	p := tea.NewProgram(NewConsoleUI(be),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
