package cmd

import (
	"context"
	"fmt"
	"os"
)

// Remove deletes stored computations from history
func Remove(ctx context.Context, app *App, dates []string) {
	if len(dates) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: billcycle rm <MM/DD/YYYY> [MM/DD/YYYY...]")
		os.Exit(1)
	}
	starts := ParseDates(dates)

	tracker := app.OpenTracker(true)
	defer tracker.Close()

	removed, err := tracker.Remove(ctx, starts)
	if err != nil {
		HandleError(err)
	}

	for _, d := range removed {
		fmt.Printf("removed: %s\n", d)
	}
	if skipped := len(starts) - len(removed); skipped > 0 {
		fmt.Printf("not stored: %d date(s)\n", skipped)
	}
}
