package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	key := bytes.Repeat([]byte{7}, 32)

	sealed, err := Seal([]byte(`{"uid":"abc"}`), key)
	require.NoError(t, err)
	assert.NotContains(t, sealed, "+")
	assert.NotContains(t, sealed, "/")

	plain, err := Open(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, `{"uid":"abc"}`, string(plain))
}

func TestOpen_Rejects(t *testing.T) {
	key := bytes.Repeat([]byte{7}, 32)
	other := bytes.Repeat([]byte{8}, 32)
	sealed, err := Seal([]byte("payload"), key)
	require.NoError(t, err)

	_, err = Open(sealed, other)
	assert.ErrorIs(t, err, ErrInvalidSeal)

	tampered := []byte(sealed)
	if tampered[5] == 'A' {
		tampered[5] = 'B'
	} else {
		tampered[5] = 'A'
	}
	_, err = Open(string(tampered), key)
	assert.ErrorIs(t, err, ErrInvalidSeal)

	_, err = Open("not base64!", key)
	assert.ErrorIs(t, err, ErrInvalidSeal)

	_, err = Open("abc", key)
	assert.ErrorIs(t, err, ErrInvalidSeal)
}

func TestSeal_KeyLength(t *testing.T) {
	_, err := Seal([]byte("x"), []byte("short"))
	assert.Error(t, err)
}
