package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptState_NoKeyPassesThrough(t *testing.T) {
	t.Setenv(EncryptionKeyEnvVar, "")

	content := []byte("version: 1\nserial: 0\n")
	encrypted, err := EncryptState(content)
	require.NoError(t, err)
	assert.Equal(t, content, encrypted)

	decrypted, err := DecryptState(content)
	require.NoError(t, err)
	assert.Equal(t, content, decrypted)
}

func TestEncryptState_RoundTrip(t *testing.T) {
	t.Setenv(EncryptionKeyEnvVar, "correct horse battery staple")

	content := []byte("version: 1\nserial: 42\nlineage: test\n")
	encrypted, err := EncryptState(content)
	require.NoError(t, err)
	assert.True(t, IsEncrypted(encrypted))
	assert.NotContains(t, string(encrypted), "lineage")

	decrypted, err := DecryptState(encrypted)
	require.NoError(t, err)
	assert.Equal(t, content, decrypted)
}

func TestEncryptState_FreshNonce(t *testing.T) {
	t.Setenv(EncryptionKeyEnvVar, "k")

	a, err := EncryptState([]byte("same"))
	require.NoError(t, err)
	b, err := EncryptState([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestIsEncrypted(t *testing.T) {
	assert.True(t, IsEncrypted([]byte("# STAGEHAND_ENCRYPTED_STATE\nbase64data")))
	assert.False(t, IsEncrypted([]byte("version: 1\n")))
	assert.False(t, IsEncrypted(nil))
}

func TestDecryptState_WrongKey(t *testing.T) {
	t.Setenv(EncryptionKeyEnvVar, "the right key")
	encrypted, err := EncryptState([]byte("test data"))
	require.NoError(t, err)

	t.Setenv(EncryptionKeyEnvVar, "the wrong key")
	_, err = DecryptState(encrypted)
	assert.ErrorContains(t, err, "wrong key")
}

func TestDecryptState_MissingKey(t *testing.T) {
	t.Setenv(EncryptionKeyEnvVar, "some key")
	encrypted, err := EncryptState([]byte("test data"))
	require.NoError(t, err)

	t.Setenv(EncryptionKeyEnvVar, "")
	_, err = DecryptState(encrypted)
	assert.ErrorContains(t, err, "not set")
}

func TestDecryptState_Truncated(t *testing.T) {
	t.Setenv(EncryptionKeyEnvVar, "some key")

	_, err := DecryptState([]byte(encryptedHeader + "AAAA\n"))
	assert.ErrorIs(t, err, errCiphertextTooShort)
}
