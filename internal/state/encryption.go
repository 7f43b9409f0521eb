package state

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// EncryptionKeyEnvVar holds the passphrase state files are encrypted with.
	EncryptionKeyEnvVar = "STAGEHAND_STATE_ENCRYPTION_KEY"

	encryptedHeader = "# STAGEHAND_ENCRYPTED_STATE\n"
)

var errCiphertextTooShort = errors.New("ciphertext too short")

// EncryptState seals content with AES-256-GCM when a key is configured and
// returns it unchanged otherwise.
func EncryptState(content []byte) ([]byte, error) {
	key := encryptionKey()
	if key == nil {
		return content, nil
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, content, nil)

	var buf bytes.Buffer
	buf.WriteString(encryptedHeader)
	buf.WriteString(base64.StdEncoding.EncodeToString(sealed))
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// DecryptState opens content sealed by EncryptState. Plain content passes
// through untouched.
func DecryptState(content []byte) ([]byte, error) {
	if !IsEncrypted(content) {
		return content, nil
	}

	key := encryptionKey()
	if key == nil {
		return nil, fmt.Errorf("state is encrypted but %s is not set", EncryptionKeyEnvVar)
	}

	encoded := bytes.TrimSpace(bytes.TrimPrefix(content, []byte(encryptedHeader)))
	sealed := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(sealed, encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encrypted state: %w", err)
	}
	sealed = sealed[:n]

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errCiphertextTooShort
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt state (wrong key?): %w", err)
	}
	return plaintext, nil
}

// IsEncrypted reports whether content carries the encrypted state header.
func IsEncrypted(content []byte) bool {
	return bytes.HasPrefix(content, []byte(encryptedHeader))
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// encryptionKey stretches the configured passphrase to a 32-byte key.
func encryptionKey() []byte {
	passphrase := os.Getenv(EncryptionKeyEnvVar)
	if passphrase == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:]
}
