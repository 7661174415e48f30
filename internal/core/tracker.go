package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/illarion/billcycle/internal/envelope"
	"github.com/illarion/billcycle/internal/errs"
	"github.com/illarion/billcycle/internal/milestone"
	"github.com/illarion/billcycle/internal/storage"
)

var (
	ErrNoHistory    = errors.New("history store disabled")
	ErrNotInHistory = errors.New("no stored computation for that date")
)

// Tracker computes, seals and remembers billing cycles.
type Tracker struct {
	db  *storage.Storage
	log *zap.Logger
	now func() time.Time
}

// Result is the outcome of one Compute call.
type Result struct {
	Set       milestone.Set
	Encrypted bool
	// Output is the indented JSON document handed to the user: the payload,
	// or the encrypted record when Encrypted is set.
	Output []byte
}

// New opens (creating if needed) the history store at storePath.
func New(storePath string, log *zap.Logger) (*Tracker, error) {
	db, err := storage.Open(storePath)
	if err != nil {
		return nil, err
	}
	initialized, err := db.IsInitialized()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read store: %w", err)
	}
	if !initialized {
		if err := db.Initialize(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize store: %w", err)
		}
		log.Info("created history store", zap.String("path", storePath))
	}

	log.Debug("opened history store", zap.String("path", storePath))
	return &Tracker{db: db, log: log, now: time.Now}, nil
}

// NewEphemeral returns a tracker without a history store.
func NewEphemeral(log *zap.Logger) *Tracker {
	return &Tracker{log: log, now: time.Now}
}

// Close releases the history store
func (t *Tracker) Close() error {
	if t.db != nil {
		return t.db.Close()
	}
	return nil
}

// HasHistory reports whether the tracker records computations
func (t *Tracker) HasHistory() bool {
	return t.db != nil
}

// Compute derives the milestones for start. With encrypt set the payload is
// sealed under password; an empty password is then rejected with
// errs.ErrMissingCredential. The result is recorded in history when a store
// is open.
func (t *Tracker) Compute(ctx context.Context, start milestone.CalendarDate, password []byte, encrypt bool) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if encrypt && len(password) == 0 {
		return nil, errs.ErrMissingCredential
	}

	set := milestone.Compute(start)
	payload, err := set.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode milestones: %w", err)
	}

	res := &Result{Set: set, Encrypted: encrypt}
	if encrypt {
		rec, err := envelope.Encrypt(payload, string(password))
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt milestones: %w", err)
		}
		if res.Output, err = rec.Marshal(); err != nil {
			return nil, err
		}
	} else {
		if res.Output, err = indent(payload); err != nil {
			return nil, err
		}
	}

	t.log.Info("computed billing cycle",
		zap.String("start", start.String()),
		zap.Bool("encrypted", encrypt),
	)

	if t.db != nil {
		entry := storage.Entry{
			Key:       start.Key(),
			Start:     start.String(),
			Encrypted: encrypt,
			Created:   t.now(),
		}
		if err := t.db.Put(entry, res.Output); err != nil {
			return nil, fmt.Errorf("failed to record history: %w", err)
		}
		t.log.Debug("recorded history entry", zap.String("key", entry.Key), zap.Int("size", len(res.Output)))
	}

	return res, nil
}

// IsEncrypted reports whether data is an encrypted record
func IsEncrypted(data []byte) bool {
	return envelope.IsRecord(data)
}

// Open decodes a payload or decrypts an encrypted record into a milestone set.
// A record with no password fails with errs.ErrMissingCredential.
func (t *Tracker) Open(ctx context.Context, data []byte, password []byte) (milestone.Set, error) {
	if err := ctx.Err(); err != nil {
		return milestone.Set{}, err
	}

	if !IsEncrypted(data) {
		set, err := milestone.Decode(data)
		if err != nil {
			return milestone.Set{}, err
		}
		return set, nil
	}

	rec, err := envelope.Parse(data)
	if err != nil {
		return milestone.Set{}, err
	}
	// Reject malformed records before asking for a password
	if err := rec.Validate(); err != nil {
		return milestone.Set{}, err
	}
	if len(password) == 0 {
		return milestone.Set{}, errs.ErrMissingCredential
	}

	payload, err := envelope.Decrypt(rec, string(password))
	if err != nil {
		if errors.Is(err, errs.ErrAuthentication) {
			t.log.Warn("record failed authentication")
		}
		return milestone.Set{}, err
	}

	set, err := milestone.Decode(payload)
	if err != nil {
		return milestone.Set{}, fmt.Errorf("decrypted payload: %w", err)
	}

	t.log.Info("opened encrypted record", zap.String("start", set.Start().String()))
	return set, nil
}

// History lists stored computations; no password is needed
func (t *Tracker) History() ([]storage.Entry, error) {
	if t.db == nil {
		return nil, ErrNoHistory
	}
	return t.db.List()
}

// Stored returns the index entry and stored document for start
func (t *Tracker) Stored(start milestone.CalendarDate) (*storage.Entry, []byte, error) {
	if t.db == nil {
		return nil, nil, ErrNoHistory
	}
	entry, data, err := t.db.Get(start.Key())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotInHistory, start)
	}
	return entry, data, err
}

// Show opens the stored computation for start
func (t *Tracker) Show(ctx context.Context, start milestone.CalendarDate, password []byte) (milestone.Set, error) {
	_, data, err := t.Stored(start)
	if err != nil {
		return milestone.Set{}, err
	}
	return t.Open(ctx, data, password)
}

// Remove deletes stored computations and compacts the store afterwards.
// It returns the dates that were removed; unknown dates are skipped.
func (t *Tracker) Remove(ctx context.Context, starts []milestone.CalendarDate) ([]milestone.CalendarDate, error) {
	if t.db == nil {
		return nil, ErrNoHistory
	}

	var removed []milestone.CalendarDate
	for _, start := range starts {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		err := t.db.Delete(start.Key())
		if errors.Is(err, storage.ErrNotFound) {
			t.log.Debug("nothing stored for date", zap.String("start", start.String()))
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", start, err)
		}
		removed = append(removed, start)
	}

	if len(removed) > 0 {
		if err := t.Compact(); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// Compact reclaims unused space in the store
func (t *Tracker) Compact() error {
	if t.db == nil {
		return ErrNoHistory
	}
	if err := t.db.Compact(); err != nil {
		return err
	}
	t.log.Debug("compacted history store", zap.String("path", t.db.Path()))
	return nil
}

// StoreID returns the store's ID, creating it on first use
func (t *Tracker) StoreID() (string, error) {
	if t.db == nil {
		return "", ErrNoHistory
	}
	return t.db.GetOrCreateStoreID()
}

// VerifyPassword checks password against the encrypted history entry with
// the latest start date. With no encrypted entries there is nothing to check
// against and any password is accepted.
func (t *Tracker) VerifyPassword(ctx context.Context, password []byte) error {
	if t.db == nil {
		return ErrNoHistory
	}
	latest, err := t.db.LatestEncrypted()
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	_, data, err := t.db.Get(latest.Key)
	if err != nil {
		return err
	}
	_, err = t.Open(ctx, data, password)
	return err
}

// Modified returns when the history store last changed
func (t *Tracker) Modified() (time.Time, error) {
	if t.db == nil {
		return time.Time{}, ErrNoHistory
	}
	return t.db.GetModified()
}

func indent(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to format payload: %w", err)
	}
	return buf.Bytes(), nil
}
