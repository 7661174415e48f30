package cmd

import (
	"context"

	"github.com/illarion/billcycle/internal/crypto"
	"github.com/illarion/billcycle/internal/milestone"
)

// Show prints a stored computation, decrypting it when needed
func Show(ctx context.Context, app *App, date, passwordFlag string, table bool) {
	start := ParseDates([]string{date})[0]

	tracker := app.OpenTracker(true)
	defer tracker.Close()

	_, data, err := tracker.Stored(start)
	if err != nil {
		HandleError(err)
	}

	set, password, source := app.OpenWithRetry(tracker, func(pw []byte) (milestone.Set, error) {
		return tracker.Open(ctx, data, pw)
	}, data, passwordFlag)
	defer crypto.ClearBytes(password)

	PrintSet(set, table)

	if source == SourcePrompt {
		OfferToSavePassword(app, tracker, password)
	}
}
