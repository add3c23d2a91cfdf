// Package cryptox holds the two cryptographic concerns of the server:
// salted password stretching for the credential store, and the per-session
// RSA key pair used for one-way encryption of client input. Session key
// material lives only in memory and is never persisted.
package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the salt length for credential hashing.
	SaltSize = 16

	// hashIterations and hashSize fix the PBKDF2 work factor and the
	// 128-bit output. Changing either invalidates every stored record.
	hashIterations = 65536
	hashSize       = 16

	sessionKeyBits = 2048
)

// NewSalt returns a fresh random salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	return salt, nil
}

// HashPassword stretches password with PBKDF2-HMAC-SHA512 under the given
// salt.
func HashPassword(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, hashIterations, hashSize, sha512.New)
}

// SessionKey is a session-scoped RSA key pair. The public half travels to
// the client Base64-encoded; the private half decrypts inbound lines.
type SessionKey struct {
	priv *rsa.PrivateKey
}

// NewSessionKey generates a fresh 2048-bit key pair.
func NewSessionKey() (*SessionKey, error) {
	priv, err := rsa.GenerateKey(rand.Reader, sessionKeyBits)
	if err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}
	return &SessionKey{priv: priv}, nil
}

// PublicBase64 returns the Base64 of the PKIX-encoded public key, the form
// the client parses after the start-encryption tag.
func (k *SessionKey) PublicBase64() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(&k.priv.PublicKey)
	if err != nil {
		return "", fmt.Errorf("encode public key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// DecryptLine decodes one Base64 ciphertext line and decrypts it with the
// private key. Any malformed input yields an error, never a panic.
func (k *SessionKey) DecryptLine(line string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(strings.TrimSpace(line))
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	pt, err := rsa.DecryptPKCS1v15(nil, k.priv, ct)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(pt), nil
}

// ParsePublicKey reverses PublicBase64 on the client side.
func ParsePublicKey(encoded string) (*rsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA public key")
	}
	return pub, nil
}

// EncryptLine encrypts one plaintext line for the server and returns it
// Base64-encoded. Used by the client and by tests.
func EncryptLine(pub *rsa.PublicKey, line string) (string, error) {
	ct, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(line))
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}
