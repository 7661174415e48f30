package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/billcycle/internal/core"
	"github.com/illarion/billcycle/internal/crypto"
	"github.com/illarion/billcycle/internal/milestone"
)

// Diff compares the milestones of two records or payloads
func Diff(ctx context.Context, app *App, pathA, pathB, passwordFlag string) {
	dataA, err := ReadInput(pathA)
	if err != nil {
		HandleError(err)
	}
	dataB, err := ReadInput(pathB)
	if err != nil {
		HandleError(err)
	}

	tracker := app.OpenExistingTracker()
	defer tracker.Close()

	open := func(data []byte) func([]byte) (milestone.Set, error) {
		return func(pw []byte) (milestone.Set, error) {
			return tracker.Open(ctx, data, pw)
		}
	}

	setA, password, _ := app.OpenWithRetry(tracker, open(dataA), dataA, passwordFlag)
	defer crypto.ClearBytes(password)

	setB, passwordB, _ := app.OpenReusing(tracker, open(dataB), dataB, password, passwordFlag)
	crypto.ClearBytes(passwordB)

	out, changed := core.Diff(setA, setB)
	if !changed {
		fmt.Println("No differences")
		return
	}
	fmt.Printf("--- %s\n+++ %s\n", pathA, pathB)
	fmt.Print(out)
}
