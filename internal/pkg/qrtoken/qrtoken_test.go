package qrtoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-signing-key"

func TestEncodeDecode(t *testing.T) {
	code := NewCode()

	token, err := Encode(testKey, 42, code)
	require.NoError(t, err)

	payload, err := Decode(testKey, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), payload.RegistrationID)
	assert.Equal(t, code, payload.Code)
}

func TestDecodeRejectsWrongKey(t *testing.T) {
	token, err := Encode(testKey, 42, NewCode())
	require.NoError(t, err)

	_, err = Decode("another-key", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(testKey, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeRejectsEmptyPayload(t *testing.T) {
	token, err := Encode(testKey, 0, "")
	require.NoError(t, err)

	_, err = Decode(testKey, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewCodeIsUnique(t *testing.T) {
	assert.NotEqual(t, NewCode(), NewCode())
}
