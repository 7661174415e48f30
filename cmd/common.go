package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/illarion/billcycle/internal/core"
	"github.com/illarion/billcycle/internal/crypto"
	"github.com/illarion/billcycle/internal/errs"
	"github.com/illarion/billcycle/internal/keyring"
	"github.com/illarion/billcycle/internal/milestone"
	"github.com/illarion/billcycle/internal/security"
	"github.com/illarion/billcycle/internal/storage"
)

// PasswordSource records where a password came from
type PasswordSource int

const (
	SourceNone PasswordSource = iota
	SourceFlag
	SourceEnv
	SourceKeyring
	SourcePrompt
	// SourceReused is a password that already opened another record
	SourceReused
)

// canRetry reports whether a password from source may be wrong for this
// record without the user having typed it for this record
func canRetry(source PasswordSource) bool {
	return source == SourceKeyring || source == SourceReused
}

// GetPassword resolves a password from, in order, the --password flag, the
// BILLCYCLE_PASSWORD variable, the keyring entry for storeID and an
// interactive prompt. confirm asks twice when prompting.
// The caller is responsible for calling crypto.ClearBytes on the returned password
func (a *App) GetPassword(flagValue, storeID string, confirm bool) ([]byte, PasswordSource, error) {
	if flagValue != "" {
		return []byte(flagValue), SourceFlag, nil
	}

	if password := a.Config.TakePassword(); password != nil {
		return password, SourceEnv, nil
	}

	if storeID != "" && !a.Config.NoKeyring {
		if password, err := keyring.GetPassword(storeID); err == nil && len(password) > 0 {
			return password, SourceKeyring, nil
		}
	}

	var password []byte
	var err error
	if confirm {
		password, err = core.ReadPasswordConfirm()
	} else {
		password, err = core.ReadPassword("Enter password: ")
	}
	if err != nil {
		return nil, SourceNone, err
	}
	if len(password) == 0 {
		return nil, SourceNone, errs.ErrMissingCredential
	}
	return password, SourcePrompt, nil
}

// GetPasswordOrExit is like GetPassword but exits on error
func (a *App) GetPasswordOrExit(flagValue, storeID string, confirm bool) ([]byte, PasswordSource) {
	password, source, err := a.GetPassword(flagValue, storeID, confirm)
	if err != nil {
		HandleError(err)
	}
	return password, source
}

// OpenWithRetry opens data, asking for a password only when data is an
// encrypted record. A stale keyring password falls back to the prompt once.
// The returned password (nil for plaintext) must be cleared by the caller.
func (a *App) OpenWithRetry(tracker *core.Tracker, open func([]byte) (milestone.Set, error), data []byte, flagValue string) (milestone.Set, []byte, PasswordSource) {
	if set, ok := openWithoutPassword(open, data); ok {
		return set, nil, SourceNone
	}

	password, source := a.GetPasswordOrExit(flagValue, StoreID(tracker), false)
	return openRetrying(open, password, source)
}

// OpenReusing is like OpenWithRetry but first tries a password that opened an
// earlier record. If it does not fit, the user is prompted once.
func (a *App) OpenReusing(tracker *core.Tracker, open func([]byte) (milestone.Set, error), data, password []byte, flagValue string) (milestone.Set, []byte, PasswordSource) {
	if len(password) == 0 {
		return a.OpenWithRetry(tracker, open, data, flagValue)
	}
	if set, ok := openWithoutPassword(open, data); ok {
		return set, nil, SourceNone
	}
	return openRetrying(open, append([]byte(nil), password...), SourceReused)
}

// openWithoutPassword opens plaintext payloads and rejects malformed records
// before any password is requested. ok is false for a well-formed record.
func openWithoutPassword(open func([]byte) (milestone.Set, error), data []byte) (milestone.Set, bool) {
	set, err := open(nil)
	if !core.IsEncrypted(data) {
		if err != nil {
			HandleError(err)
		}
		return set, true
	}
	if err != nil && !errors.Is(err, errs.ErrMissingCredential) {
		HandleError(err)
	}
	return milestone.Set{}, false
}

func openRetrying(open func([]byte) (milestone.Set, error), password []byte, source PasswordSource) (milestone.Set, []byte, PasswordSource) {
	set, err := open(password)
	if errors.Is(err, errs.ErrAuthentication) && canRetry(source) && core.CanPrompt() {
		if source == SourceKeyring {
			fmt.Fprintln(os.Stderr, "Stored keyring password did not work")
		} else {
			fmt.Fprintln(os.Stderr, "Previous password did not open this record")
		}
		crypto.ClearBytes(password)
		password, err = core.ReadPassword("Enter password: ")
		if err != nil {
			HandleError(err)
		}
		source = SourcePrompt
		set, err = open(password)
	}
	if err != nil {
		crypto.ClearBytes(password)
		HandleError(err)
	}
	return set, password, source
}

// ReadInput reads a record or payload from path, or stdin for "-"
func ReadInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// ParseDates parses MM/DD/YYYY arguments, exiting on the first bad one
func ParseDates(args []string) []milestone.CalendarDate {
	dates := make([]milestone.CalendarDate, 0, len(args))
	for _, arg := range args {
		d, err := milestone.ParseDate(arg)
		if err != nil {
			HandleError(err)
		}
		dates = append(dates, d)
	}
	return dates
}

// PrintSet writes a milestone set as an aligned table or as its JSON payload
func PrintSet(set milestone.Set, table bool) {
	if table {
		fmt.Print(set.Table())
		return
	}
	data, err := set.Encode()
	if err != nil {
		HandleError(err)
	}
	fmt.Println(string(data))
}

// HandleError handles common errors consistently
func HandleError(err error) {
	var fe *errs.FormatError
	switch {
	case errors.As(err, &fe):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		if fe.Field == "date" {
			fmt.Fprintf(os.Stderr, "Dates must be written MM/DD/YYYY, e.g. 01/15/2025\n")
		}
	case errors.Is(err, errs.ErrAuthentication):
		fmt.Fprintf(os.Stderr, "Error: wrong password or corrupted record\n")
	case errors.Is(err, errs.ErrMissingCredential):
		fmt.Fprintf(os.Stderr, "Error: password required\n")
		fmt.Fprintf(os.Stderr, "Use --password, set BILLCYCLE_PASSWORD or run in a terminal\n")
	case errors.Is(err, core.ErrNotInHistory):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'billcycle history' to list stored cycles\n")
	case errors.Is(err, core.ErrNoHistory):
		fmt.Fprintf(os.Stderr, "Error: history is disabled (BILLCYCLE_NO_HISTORY)\n")
	case errors.Is(err, security.ErrFileExists):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use --force to overwrite\n")
	case errors.Is(err, storage.ErrNotInitialized):
		fmt.Fprintf(os.Stderr, "Error: history store is not initialized\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", strings.TrimSpace(err.Error()))
	}
	os.Exit(1)
}
