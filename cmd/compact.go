package cmd

import (
	"fmt"
	"os"
)

// Compact compacts the history store to reclaim disk space
func Compact(app *App) {
	before, err := os.Stat(app.Config.StorePath)
	if err != nil {
		HandleError(err)
	}

	tracker := app.OpenTracker(true)
	defer tracker.Close()

	if err := tracker.Compact(); err != nil {
		HandleError(err)
	}

	after, err := os.Stat(app.Config.StorePath)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Compacted %s: %d -> %d bytes\n", app.Config.StorePath, before.Size(), after.Size())
}
