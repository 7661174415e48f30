// Package envelope seals an arbitrary payload under a password into a
// self-contained Record of salt, nonce and ciphertext.
package envelope

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/illarion/billcycle/internal/crypto"
	"github.com/illarion/billcycle/internal/errs"
)

// Record is the persisted form of an encrypted payload. Each field is
// standard base64.
type Record struct {
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// Encrypt seals payload under a key derived from password and a fresh salt.
// An empty password is accepted.
func Encrypt(payload []byte, password string) (*Record, error) {
	salt, err := crypto.NewSalt()
	if err != nil {
		return nil, err
	}

	pw := []byte(password)
	defer crypto.ClearBytes(pw)

	key := crypto.DeriveKey(pw, salt)
	defer crypto.ClearBytes(key)

	nonce, ciphertext, err := crypto.Seal(key, payload)
	if err != nil {
		return nil, err
	}

	return &Record{
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

// Decrypt recovers the payload sealed in rec.
//
// Malformed fields fail with errs.ErrInputFormat before any key derivation.
// A tag that does not verify fails with errs.ErrAuthentication.
func Decrypt(rec *Record, password string) ([]byte, error) {
	salt, nonce, ciphertext, err := rec.decode()
	if err != nil {
		return nil, err
	}

	pw := []byte(password)
	defer crypto.ClearBytes(pw)

	key := crypto.DeriveKey(pw, salt)
	defer crypto.ClearBytes(key)

	payload, err := crypto.Open(key, nonce, ciphertext)
	if err != nil {
		if errors.Is(err, crypto.ErrAuthFailed) {
			return nil, errs.ErrAuthentication
		}
		return nil, err
	}
	return payload, nil
}

func (r *Record) decode() (salt, nonce, ciphertext []byte, err error) {
	if r == nil {
		return nil, nil, nil, errs.Format("record", "missing")
	}
	if salt, err = decodeField("salt", r.Salt, crypto.SaltSize); err != nil {
		return nil, nil, nil, err
	}
	if nonce, err = decodeField("nonce", r.Nonce, crypto.NonceSize); err != nil {
		return nil, nil, nil, err
	}
	if ciphertext, err = decodeField("ciphertext", r.Ciphertext, 0); err != nil {
		return nil, nil, nil, err
	}
	if len(ciphertext) < crypto.TagSize {
		return nil, nil, nil, errs.Format("ciphertext", "shorter than the %d-byte authentication tag", crypto.TagSize)
	}
	return salt, nonce, ciphertext, nil
}

// decodeField decodes a base64 field; size 0 accepts any length.
func decodeField(name, value string, size int) ([]byte, error) {
	if value == "" {
		return nil, errs.Format(name, "missing")
	}
	b, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, errs.Format(name, "not valid base64")
	}
	if size > 0 && len(b) != size {
		return nil, errs.Format(name, "expected %d bytes, got %d", size, len(b))
	}
	return b, nil
}

// Validate checks the record's encoding and field sizes without decrypting it.
func (r *Record) Validate() error {
	_, _, _, err := r.decode()
	return err
}

// Marshal returns the indented JSON form of the record.
func (r *Record) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return data, nil
}

// Parse reads a record from its JSON form. All three fields are mandatory.
// Parse does not decrypt; field encodings are checked by Decrypt or Validate.
func Parse(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errs.Format("record", "not a JSON object: %v", err)
	}
	switch {
	case rec.Salt == "":
		return nil, errs.Format("salt", "missing")
	case rec.Nonce == "":
		return nil, errs.Format("nonce", "missing")
	case rec.Ciphertext == "":
		return nil, errs.Format("ciphertext", "missing")
	}
	return &rec, nil
}

// IsRecord reports whether data looks like an encrypted record rather than
// a plaintext payload. Any one record field is enough, so that Parse can
// name the fields that are missing.
func IsRecord(data []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return false
	}
	for _, name := range []string{"salt", "nonce", "ciphertext"} {
		if _, ok := fields[name]; ok {
			return true
		}
	}
	return false
}
