package cmd

import (
	"fmt"
	"os"
	"time"
)

// History lists stored computations without requiring a password
func History(app *App) {
	if _, err := os.Stat(app.Config.StorePath); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No history store found")
			fmt.Println("Run 'billcycle compute <MM/DD/YYYY>' to create one")
			return
		}
		HandleError(err)
	}

	tracker := app.OpenTracker(true)
	defer tracker.Close()

	entries, err := tracker.History()
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("History: %s\n", app.Config.StorePath)
	if modified, err := tracker.Modified(); err == nil {
		fmt.Printf("Last modified: %s\n", modified.Local().Format(time.RFC3339))
	}
	if len(entries) == 0 {
		fmt.Println("  (none)")
	}

	encrypted := 0
	for _, e := range entries {
		marker := "plain"
		if e.Encrypted {
			marker = "encrypted"
			encrypted++
		}
		fmt.Printf("  %s  %-9s  %s\n", e.Start, marker, e.Created.Local().Format(time.RFC3339))
	}
	if len(entries) > 0 {
		fmt.Printf("\n%d cycles, %d encrypted\n", len(entries), encrypted)
	}

	exp, err := tracker.StoreExposure(".")
	if err == nil && encrypted < len(entries) {
		if warning := exp.Warning(); warning != "" {
			fmt.Println(warning)
		}
	}
}
