package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_DeterministicAndInputDependent(t *testing.T) {
	salt := bytes.Repeat([]byte{0x01}, SaltSize)
	k1 := DeriveKey([]byte("secret-pass"), salt)
	k2 := DeriveKey([]byte("secret-pass"), salt)

	require.Len(t, k1, KeySize)
	assert.True(t, ConstantTimeCompare(k1, k2), "DeriveKey not deterministic")
	assert.False(t, ConstantTimeCompare(k1, DeriveKey([]byte("other"), salt)), "key must change with password")
	assert.False(t, ConstantTimeCompare(k1, DeriveKey([]byte("secret-pass"), bytes.Repeat([]byte{0x02}, SaltSize))), "key must change with salt")
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestDeriveKey_KnownVector(t *testing.T) {
	require.Equal(t, 100000, Iterations)
	require.Equal(t, 32, KeySize)

	salt := mustHex(t, "000102030405060708090a0b0c0d0e0f")
	key := DeriveKey([]byte("correct horse battery staple"), salt)
	assert.Equal(t, "49d49c25f597846209f0d92e7770ab64e1c75e94b4ce6c509265ee67175d2a1e", hex.EncodeToString(key))
}

func TestSealOpen_KnownVectors(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		nonce      string
		plaintext  string
		ciphertext string
	}{
		{
			// NIST GCM test case 13
			name:       "empty plaintext",
			key:        "0000000000000000000000000000000000000000000000000000000000000000",
			nonce:      "000000000000000000000000",
			plaintext:  "",
			ciphertext: "530f8afbc74536b9a963b4f1c4cb738b",
		},
		{
			// NIST GCM test case 14
			name:       "one zero block",
			key:        "0000000000000000000000000000000000000000000000000000000000000000",
			nonce:      "000000000000000000000000",
			plaintext:  "00000000000000000000000000000000",
			ciphertext: "cea7403d4d606b6e074ec5d3baf39d18d0d1c8a799996bf0265b98b5d48ab919",
		},
		{
			name:       "payload",
			key:        "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
			nonce:      "6465666768696a6b6c6d6e6f",
			plaintext:  hex.EncodeToString([]byte(`{"billing_cycle_start":"01/15/2025"}`)),
			ciphertext: "3339bc0f15853ff0593d3c91b9090fa231b66778ff4ec95097e08379ce8c9778a6dc62bd1a841b881576d9bb095b05f1285cfc4c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := mustHex(t, tt.key)
			nonce := mustHex(t, tt.nonce)
			plaintext := mustHex(t, tt.plaintext)

			gcm, err := newGCM(key)
			require.NoError(t, err)
			assert.Equal(t, tt.ciphertext, hex.EncodeToString(sealWithNonce(gcm, nonce, plaintext)))

			got, err := Open(key, nonce, mustHex(t, tt.ciphertext))
			require.NoError(t, err)
			assert.Equal(t, plaintext, got)
		})
	}
}

func TestDeriveKey_EmptyPassword(t *testing.T) {
	salt := make([]byte, SaltSize)
	key := DeriveKey(nil, salt)
	assert.Len(t, key, KeySize)
	assert.Equal(t, key, DeriveKey([]byte{}, salt))
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key, err := GenerateRandom(KeySize)
	require.NoError(t, err)

	for _, pt := range [][]byte{nil, []byte("x"), []byte(`{"billing_cycle_start":"01/15/2025"}`), bytes.Repeat([]byte{0xAB}, 4096)} {
		nonce, ct, err := Seal(key, pt)
		require.NoError(t, err)
		assert.Len(t, nonce, NonceSize)
		assert.Len(t, ct, len(pt)+TagSize)

		got, err := Open(key, nonce, ct)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(pt, got))
	}
}

func TestSeal_FreshNonce(t *testing.T) {
	key, _ := GenerateRandom(KeySize)
	n1, c1, err := Seal(key, []byte("payload"))
	require.NoError(t, err)
	n2, c2, err := Seal(key, []byte("payload"))
	require.NoError(t, err)

	assert.NotEqual(t, n1, n2)
	assert.NotEqual(t, c1, c2)
}

func TestOpen_Failures(t *testing.T) {
	key, _ := GenerateRandom(KeySize)
	nonce, ct, err := Seal(key, []byte("payload"))
	require.NoError(t, err)

	otherKey, _ := GenerateRandom(KeySize)
	_, err = Open(otherKey, nonce, ct)
	assert.ErrorIs(t, err, ErrAuthFailed)

	tampered := append([]byte(nil), ct...)
	tampered[0] ^= 0x01
	_, err = Open(key, nonce, tampered)
	assert.ErrorIs(t, err, ErrAuthFailed)

	badNonce := append([]byte(nil), nonce...)
	badNonce[NonceSize-1] ^= 0x80
	_, err = Open(key, badNonce, ct)
	assert.ErrorIs(t, err, ErrAuthFailed)

	_, err = Open(key, nonce[:8], ct)
	assert.ErrorIs(t, err, ErrInvalidNonce)

	_, err = Open(key, nonce, ct[:TagSize-1])
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	_, err = Open(key[:16], nonce, ct)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestSeal_RejectsShortKey(t *testing.T) {
	_, _, err := Seal(make([]byte, 16), []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestClearBytes(t *testing.T) {
	b := []byte("secret")
	ClearBytes(b)
	assert.Equal(t, make([]byte, 6), b)
}

func TestGenerateRandom(t *testing.T) {
	a, err := GenerateRandom(SaltSize)
	require.NoError(t, err)
	b, err := GenerateRandom(SaltSize)
	require.NoError(t, err)
	assert.Len(t, a, SaltSize)
	assert.NotEqual(t, a, b)
}
