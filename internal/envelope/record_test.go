package envelope

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illarion/billcycle/internal/crypto"
	"github.com/illarion/billcycle/internal/errs"
)

var payload = []byte(`{"billing_cycle_start":"01/15/2025","number_loss_risk":"04/15/2025"}`)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		password string
	}{
		{"json payload", payload, "correct horse"},
		{"empty payload", []byte{}, "pw"},
		{"binary payload", []byte{0x00, 0xff, 0x10, 0x80}, "pw"},
		{"unicode password", payload, "пароль-密码"},
		{"empty password", payload, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Encrypt(tt.payload, tt.password)
			require.NoError(t, err)

			got, err := Decrypt(rec, tt.password)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(tt.payload, got))
		})
	}
}

func TestEncrypt_FieldSizes(t *testing.T) {
	rec, err := Encrypt(payload, "pw")
	require.NoError(t, err)

	salt, err := base64.StdEncoding.DecodeString(rec.Salt)
	require.NoError(t, err)
	nonce, err := base64.StdEncoding.DecodeString(rec.Nonce)
	require.NoError(t, err)
	ct, err := base64.StdEncoding.DecodeString(rec.Ciphertext)
	require.NoError(t, err)

	assert.Len(t, salt, crypto.SaltSize)
	assert.Len(t, nonce, crypto.NonceSize)
	assert.Len(t, ct, len(payload)+crypto.TagSize)
}

func TestEncrypt_Fresh(t *testing.T) {
	a, err := Encrypt(payload, "pw")
	require.NoError(t, err)
	b, err := Encrypt(payload, "pw")
	require.NoError(t, err)

	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.Nonce, b.Nonce)
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestDecrypt_WrongPassword(t *testing.T) {
	rec, err := Encrypt(payload, "right")
	require.NoError(t, err)

	got, err := Decrypt(rec, "wrong")
	assert.ErrorIs(t, err, errs.ErrAuthentication)
	assert.Nil(t, got)
}

// flipBit returns a copy of the base64 field with one bit flipped in byte i.
func flipBit(t *testing.T, field string, i int) string {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(field)
	require.NoError(t, err)
	b[i] ^= 1 << (i % 8)
	return base64.StdEncoding.EncodeToString(b)
}

func TestDecrypt_TamperDetected(t *testing.T) {
	if testing.Short() {
		t.Skip("derives a key per tampered byte")
	}

	rec, err := Encrypt(payload, "pw")
	require.NoError(t, err)

	check := func(tampered Record) {
		t.Helper()
		got, err := Decrypt(&tampered, "pw")
		require.ErrorIs(t, err, errs.ErrAuthentication)
		require.Nil(t, got)
	}

	for i := 0; i < crypto.SaltSize; i++ {
		r := *rec
		r.Salt = flipBit(t, rec.Salt, i)
		check(r)
	}
	for i := 0; i < crypto.NonceSize; i++ {
		r := *rec
		r.Nonce = flipBit(t, rec.Nonce, i)
		check(r)
	}
	for i := 0; i < len(payload)+crypto.TagSize; i++ {
		r := *rec
		r.Ciphertext = flipBit(t, rec.Ciphertext, i)
		check(r)
	}
}

func TestDecrypt_FormatErrors(t *testing.T) {
	rec, err := Encrypt(payload, "pw")
	require.NoError(t, err)

	b64 := func(n int) string { return base64.StdEncoding.EncodeToString(make([]byte, n)) }

	tests := []struct {
		name   string
		mutate func(r *Record)
		field  string
	}{
		{"salt not base64", func(r *Record) { r.Salt = "!!not-base64!!" }, "salt"},
		{"salt too short", func(r *Record) { r.Salt = b64(15) }, "salt"},
		{"salt too long", func(r *Record) { r.Salt = b64(32) }, "salt"},
		{"nonce not base64", func(r *Record) { r.Nonce = "%%%%" }, "nonce"},
		{"nonce wrong size", func(r *Record) { r.Nonce = b64(24) }, "nonce"},
		{"ciphertext not base64", func(r *Record) { r.Ciphertext = "abc" }, "ciphertext"},
		{"ciphertext shorter than tag", func(r *Record) { r.Ciphertext = b64(crypto.TagSize - 1) }, "ciphertext"},
		{"salt missing", func(r *Record) { r.Salt = "" }, "salt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := *rec
			tt.mutate(&r)

			_, err := Decrypt(&r, "pw")
			require.ErrorIs(t, err, errs.ErrInputFormat)
			assert.NotErrorIs(t, err, errs.ErrAuthentication)

			var fe *errs.FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
			assert.ErrorIs(t, r.Validate(), errs.ErrInputFormat)
		})
	}
}

func TestDecrypt_NilRecord(t *testing.T) {
	_, err := Decrypt(nil, "pw")
	assert.ErrorIs(t, err, errs.ErrInputFormat)
}

func TestMarshalParse(t *testing.T) {
	rec, err := Encrypt(payload, "pw")
	require.NoError(t, err)

	data, err := rec.Marshal()
	require.NoError(t, err)

	var shape map[string]string
	require.NoError(t, json.Unmarshal(data, &shape))
	assert.Len(t, shape, 3)
	assert.Equal(t, rec.Salt, shape["salt"])

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, rec, parsed)
	assert.True(t, IsRecord(data))

	got, err := Decrypt(parsed, "pw")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "salt=abc"},
		{"array", `["a","b","c"]`},
		{"missing nonce", `{"salt":"AAAAAAAAAAAAAAAAAAAAAA==","ciphertext":"AAAA"}`},
		{"missing ciphertext", `{"salt":"AAAAAAAAAAAAAAAAAAAAAA==","nonce":"AAAAAAAAAAAAAAAA"}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, errs.ErrInputFormat)
		})
	}
}

func TestIsRecord(t *testing.T) {
	assert.False(t, IsRecord(payload))
	assert.False(t, IsRecord([]byte("not json")))
	assert.True(t, IsRecord([]byte(`{"salt":"","nonce":"","ciphertext":""}`)))
	assert.True(t, IsRecord([]byte(`{"salt":"AAAAAAAAAAAAAAAAAAAAAA==","ciphertext":"AAAA"}`)))
	assert.True(t, IsRecord([]byte(`{"nonce":"AAAAAAAAAAAAAAAA"}`)))
	assert.False(t, IsRecord([]byte(`{}`)))
}
