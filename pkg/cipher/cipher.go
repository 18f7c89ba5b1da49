// Package cipher encrypts small secrets, such as attachment keys, with the
// user's key.
package cipher

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

// Algorithm names the scheme recorded in core.Encrypted.Alg.
const Algorithm = "xcha-argon2i13-b64"

// Key is the user's encryption key, either raw or as a password plus salt.
type Key struct {
	Password string
	Salt     string
	Raw      []byte
}

// KeyProvider hands out the current user's key.
type KeyProvider interface {
	EncryptionKey(ctx context.Context) (Key, error)
}

// KeyProviderFunc adapts a function to KeyProvider.
type KeyProviderFunc func(ctx context.Context) (Key, error)

func (f KeyProviderFunc) EncryptionKey(ctx context.Context) (Key, error) { return f(ctx) }

// StaticKey always returns k.
func StaticKey(k Key) KeyProvider {
	return KeyProviderFunc(func(context.Context) (Key, error) { return k, nil })
}

// Cipher encrypts and decrypts with a Key.
type Cipher interface {
	Encrypt(key Key, plaintext []byte) (core.Encrypted, error)
	Decrypt(key Key, enc core.Encrypted) ([]byte, error)
}

// XChaCha is the default Cipher: XChaCha20-Poly1305 with an Argon2i derived key.
type XChaCha struct{}

var _ Cipher = XChaCha{}

func (XChaCha) Encrypt(key Key, plaintext []byte) (core.Encrypted, error) {
	salt := key.Salt
	if salt == "" && key.Raw == nil {
		b := make([]byte, 16)
		if _, err := rand.Read(b); err != nil {
			return core.Encrypted{}, err
		}
		salt = base64.RawURLEncoding.EncodeToString(b)
	}
	k, err := derive(key, salt)
	if err != nil {
		return core.Encrypted{}, err
	}
	aead, err := chacha20poly1305.NewX(k)
	if err != nil {
		return core.Encrypted{}, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return core.Encrypted{}, err
	}
	sealed := aead.Seal(nil, nonce, plaintext, nil)
	return core.Encrypted{
		Alg:    Algorithm,
		Cipher: base64.RawURLEncoding.EncodeToString(sealed),
		IV:     base64.RawURLEncoding.EncodeToString(nonce),
		Salt:   salt,
		Length: len(plaintext),
	}, nil
}

func (XChaCha) Decrypt(key Key, enc core.Encrypted) ([]byte, error) {
	if enc.Alg != Algorithm {
		return nil, fmt.Errorf("unsupported algorithm %q", enc.Alg)
	}
	k, err := derive(key, enc.Salt)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(k)
	if err != nil {
		return nil, err
	}
	nonce, err := base64.RawURLEncoding.DecodeString(enc.IV)
	if err != nil {
		return nil, fmt.Errorf("invalid iv: %w", err)
	}
	sealed, err := base64.RawURLEncoding.DecodeString(enc.Cipher)
	if err != nil {
		return nil, fmt.Errorf("invalid cipher text: %w", err)
	}
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plain, nil
}

func derive(key Key, salt string) ([]byte, error) {
	if key.Raw != nil {
		if len(key.Raw) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("raw key must be %d bytes", chacha20poly1305.KeySize)
		}
		return key.Raw, nil
	}
	if key.Password == "" {
		return nil, errors.New("key has neither a password nor raw bytes")
	}
	return argon2.Key([]byte(key.Password), []byte(salt), 3, 64*1024, 1, chacha20poly1305.KeySize), nil
}
