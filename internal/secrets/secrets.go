// Package secrets encrypts stored API credentials with fernet so that key
// material is never persisted in plaintext.
package secrets

import (
	"fmt"

	"github.com/fernet/fernet-go"
)

// Codec encrypts and decrypts short secrets with a single fernet key.
type Codec struct {
	keys []*fernet.Key
}

// NewCodec creates a Codec from a base64-encoded fernet key, typically taken
// from the FERNET_KEY environment variable.
func NewCodec(encodedKey string) (*Codec, error) {
	if encodedKey == "" {
		return nil, fmt.Errorf("fernet key is not configured")
	}
	keys, err := fernet.DecodeKeys(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fernet key: %w", err)
	}
	return &Codec{keys: keys}, nil
}

// GenerateKey returns a new base64-encoded fernet key, for operator setup.
func GenerateKey() (string, error) {
	var key fernet.Key
	if err := key.Generate(); err != nil {
		return "", fmt.Errorf("failed to generate fernet key: %w", err)
	}
	return key.Encode(), nil
}

// Encrypt returns the fernet token for a plaintext secret.
func (c *Codec) Encrypt(plain string) (string, error) {
	token, err := fernet.EncryptAndSign([]byte(plain), c.keys[0])
	if err != nil {
		return "", fmt.Errorf("failed to encrypt secret: %w", err)
	}
	return string(token), nil
}

// Decrypt verifies and decrypts a fernet token. Tokens do not expire; the
// TTL check is disabled because stored credentials have no natural lifetime.
func (c *Codec) Decrypt(token string) (string, error) {
	plain := fernet.VerifyAndDecrypt([]byte(token), 0, c.keys)
	if plain == nil {
		return "", fmt.Errorf("failed to decrypt secret: invalid token")
	}
	return string(plain), nil
}
