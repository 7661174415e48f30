package cmd

import (
	"context"

	"github.com/illarion/billcycle/internal/crypto"
	"github.com/illarion/billcycle/internal/milestone"
)

// DecryptOptions are the flags of the decrypt command
type DecryptOptions struct {
	Input    string
	Password string
	Output   string
	Force    bool
	Table    bool
}

// Decrypt opens an encrypted record (or validates a plaintext payload) and
// prints or writes the milestones
func Decrypt(ctx context.Context, app *App, opts DecryptOptions) {
	data, err := ReadInput(opts.Input)
	if err != nil {
		HandleError(err)
	}

	tracker := app.OpenExistingTracker()
	defer tracker.Close()

	set, password, _ := app.OpenWithRetry(tracker, func(pw []byte) (milestone.Set, error) {
		return tracker.Open(ctx, data, pw)
	}, data, opts.Password)
	crypto.ClearBytes(password)

	if opts.Output != "" {
		payload, err := set.Encode()
		if err != nil {
			HandleError(err)
		}
		writeOutput(tracker, opts.Output, payload, opts.Force, true)
		return
	}
	PrintSet(set, opts.Table)
}
