package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/illarion/billcycle/internal/config"
	"github.com/illarion/billcycle/internal/core"
	"github.com/illarion/billcycle/internal/logging"
)

// App carries the configuration and logger shared by all commands
type App struct {
	Config *config.Config
	Log    *zap.Logger
}

// NewApp reads the environment configuration and builds the logger
func NewApp() *App {
	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	return &App{Config: cfg, Log: log}
}

// Close flushes the logger
func (a *App) Close() {
	_ = a.Log.Sync()
}

// OpenTracker opens the history store, or returns an ephemeral tracker when
// history is disabled
func (a *App) OpenTracker(history bool) *core.Tracker {
	if !history || a.Config.NoHistory {
		return core.NewEphemeral(a.Log)
	}

	tracker, err := core.New(a.Config.StorePath, a.Log)
	if err != nil {
		HandleError(err)
	}
	return tracker
}

// OpenExistingTracker opens the history store only if it already exists, so
// commands that merely read records never create one
func (a *App) OpenExistingTracker() *core.Tracker {
	if _, err := os.Stat(a.Config.StorePath); err != nil {
		return core.NewEphemeral(a.Log)
	}
	return a.OpenTracker(true)
}

// StoreID returns the history store ID for keyring lookups, or "" when the
// tracker has no store
func StoreID(tracker *core.Tracker) string {
	if !tracker.HasHistory() {
		return ""
	}
	id, err := tracker.StoreID()
	if err != nil {
		return ""
	}
	return id
}
