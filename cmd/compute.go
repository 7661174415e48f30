package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/billcycle/internal/core"
	"github.com/illarion/billcycle/internal/crypto"
	"github.com/illarion/billcycle/internal/milestone"
)

// ComputeOptions are the flags of the compute command
type ComputeOptions struct {
	Date     string
	Encrypt  bool
	Password string
	Output   string
	Force    bool
	NoSave   bool
	Table    bool
}

// Compute derives the milestones for a start date and prints or writes them
func Compute(ctx context.Context, app *App, opts ComputeOptions) {
	start, err := milestone.ParseDate(opts.Date)
	if err != nil {
		HandleError(err)
	}

	tracker := app.OpenTracker(!opts.NoSave)
	defer tracker.Close()

	var password []byte
	source := SourceNone
	if opts.Encrypt {
		password, source = app.GetPasswordOrExit(opts.Password, StoreID(tracker), true)
		defer crypto.ClearBytes(password)
	}

	res, err := tracker.Compute(ctx, start, password, opts.Encrypt)
	if err != nil {
		HandleError(err)
	}

	switch {
	case opts.Output != "":
		writeOutput(tracker, opts.Output, res.Output, opts.Force, !res.Encrypted)
	case opts.Table:
		PrintSet(res.Set, true)
	default:
		fmt.Println(string(res.Output))
	}

	if source == SourcePrompt {
		OfferToSavePassword(app, tracker, password)
	}
}

func writeOutput(tracker *core.Tracker, path string, data []byte, force, plaintext bool) {
	data = append(data, '\n')
	warning, err := tracker.WriteOutput(".", path, data, core.OutputOptions{
		Overwrite: force,
		Plaintext: plaintext,
	})
	if err != nil {
		HandleError(err)
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	if warning != "" {
		fmt.Fprintln(os.Stderr, warning)
	}
}
