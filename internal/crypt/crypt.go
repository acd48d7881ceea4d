package crypt

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrCipher covers every cipher failure: RNG exhaustion on encrypt, malformed
// key/nonce or failed authentication on decrypt. Callers never learn which.
var ErrCipher = errors.New("cipher failure")

// Encrypted carries one object's ciphertext together with its key material.
// Key and Nonce are base64 so they can live in text columns.
type Encrypted struct {
	Key    string
	Nonce  string
	Result []byte
}

// Encrypt seals plaintext under a fresh 256-bit key and 96-bit nonce. Each
// call generates new material; a key/nonce pair is used for exactly one
// object over its whole lifetime.
func Encrypt(plaintext []byte) (*Encrypted, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipher, err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipher, err)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipher, err)
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	return &Encrypted{
		Key:    base64.StdEncoding.EncodeToString(key),
		Nonce:  base64.StdEncoding.EncodeToString(nonce),
		Result: ciphertext,
	}, nil
}

// Decrypt opens ciphertext with stored key material. Malformed material and
// tampered ciphertext produce the same error.
func Decrypt(key, nonce string, ciphertext []byte) ([]byte, error) {
	rawKey, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("%w: bad key encoding", ErrCipher)
	}
	rawNonce, err := base64.StdEncoding.DecodeString(nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: bad nonce encoding", ErrCipher)
	}
	if len(rawNonce) != chacha20poly1305.NonceSize {
		return nil, fmt.Errorf("%w: bad nonce length", ErrCipher)
	}

	aead, err := chacha20poly1305.New(rawKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipher, err)
	}
	plaintext, err := aead.Open(nil, rawNonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", ErrCipher)
	}
	return plaintext, nil
}
