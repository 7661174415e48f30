package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/illarion/billcycle/internal/core"
	"github.com/illarion/billcycle/internal/crypto"
	"github.com/illarion/billcycle/internal/keyring"
)

// KeyringSave saves the password for the history store to the OS keyring
func KeyringSave(ctx context.Context, app *App) {
	tracker := app.OpenTracker(true)
	defer tracker.Close()

	storeID, err := tracker.StoreID()
	if err != nil {
		HandleError(err)
	}

	password, err := core.ReadPassword("Enter password: ")
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(password)

	// Verify password is correct
	if err := tracker.VerifyPassword(ctx, password); err != nil {
		HandleError(err)
	}

	if err := keyring.SavePassword(storeID, password); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save to keyring: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("Password saved to keyring")
}

// KeyringDelete removes the password from the OS keyring
func KeyringDelete(app *App) {
	tracker := app.OpenExistingTracker()
	defer tracker.Close()

	storeID := StoreID(tracker)
	if storeID == "" {
		fmt.Println("No password stored in keyring")
		return
	}

	if err := keyring.DeletePassword(storeID); err != nil {
		if !errors.Is(err, keyring.ErrNotStored) {
			app.Log.Sugar().Debugw("keyring delete failed", "error", err)
		}
		fmt.Println("No password stored in keyring")
		return
	}

	fmt.Println("Password removed from keyring")
}

// KeyringStatus checks if a password is stored in the keyring
func KeyringStatus(app *App) {
	tracker := app.OpenExistingTracker()
	defer tracker.Close()

	storeID := StoreID(tracker)
	if storeID != "" && keyring.HasPassword(storeID) {
		fmt.Println("Password: stored in keyring")
	} else {
		fmt.Println("Password: not stored")
	}
}

// OfferToSavePassword asks whether a prompted password should be remembered
func OfferToSavePassword(app *App, tracker *core.Tracker, password []byte) {
	if app.Config.NoKeyring || !tracker.HasHistory() || !core.CanPrompt() {
		return
	}
	storeID, err := tracker.StoreID()
	if err != nil || keyring.HasPassword(storeID) {
		return
	}

	fmt.Fprint(os.Stderr, "Save password to keyring? [y/N]: ")
	var response string
	fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))
	if response != "y" && response != "yes" {
		return
	}

	if err := keyring.SavePassword(storeID, password); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to save to keyring: %s\n", err)
		return
	}
	fmt.Fprintln(os.Stderr, "Password saved to keyring")
}
