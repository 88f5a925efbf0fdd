package crypto

import (
	"context"
	"strings"
)

// MockEncryptor implements Encryptor for local development and tests where
// no KMS is available. It prefixes the plaintext so tests can tell the
// value went through the encryption path.
type MockEncryptor struct{}

func NewMockEncryptor() *MockEncryptor {
	return &MockEncryptor{}
}

func (m *MockEncryptor) Encrypt(ctx context.Context, plaintext string) (string, error) {
	return "mock:" + plaintext, nil
}

func (m *MockEncryptor) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	return strings.TrimPrefix(ciphertext, "mock:"), nil
}
