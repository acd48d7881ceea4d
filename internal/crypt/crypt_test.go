package crypt

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		{},
		[]byte("a"),
		[]byte("hello world"),
		bytes.Repeat([]byte{0xAB}, 1<<16),
	}
	for _, payload := range payloads {
		enc, err := Encrypt(payload)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		plain, err := Decrypt(enc.Key, enc.Nonce, enc.Result)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if !bytes.Equal(plain, payload) {
			t.Fatalf("round trip mismatch: expect %d bytes, got %d", len(payload), len(plain))
		}
	}
}

func TestEncryptUniqueKeyNonce(t *testing.T) {
	payload := []byte("same plaintext")
	first, err := Encrypt(payload)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Encrypt(payload)
	if err != nil {
		t.Fatal(err)
	}
	if first.Key == second.Key && first.Nonce == second.Nonce {
		t.Fatal("two encryptions reused the same key/nonce pair")
	}
	if bytes.Equal(first.Result, second.Result) {
		t.Fatal("two encryptions produced identical ciphertext")
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	enc, err := Encrypt([]byte("integrity matters"))
	if err != nil {
		t.Fatal(err)
	}
	for i := range enc.Result {
		tampered := append([]byte(nil), enc.Result...)
		tampered[i] ^= 0x01
		if _, err := Decrypt(enc.Key, enc.Nonce, tampered); err == nil {
			t.Fatalf("tampered byte %d decrypted without error", i)
		} else if !errors.Is(err, ErrCipher) {
			t.Fatalf("expect ErrCipher, got %v", err)
		}
	}
}

func TestDecryptTamperedKeyMaterial(t *testing.T) {
	enc, err := Encrypt([]byte("integrity matters"))
	if err != nil {
		t.Fatal(err)
	}

	rawKey, _ := base64.StdEncoding.DecodeString(enc.Key)
	rawKey[0] ^= 0x01
	if _, err := Decrypt(base64.StdEncoding.EncodeToString(rawKey), enc.Nonce, enc.Result); err == nil {
		t.Fatal("flipped key bit decrypted without error")
	}

	rawNonce, _ := base64.StdEncoding.DecodeString(enc.Nonce)
	rawNonce[0] ^= 0x01
	if _, err := Decrypt(enc.Key, base64.StdEncoding.EncodeToString(rawNonce), enc.Result); err == nil {
		t.Fatal("flipped nonce bit decrypted without error")
	}
}

func TestDecryptMalformedMaterial(t *testing.T) {
	enc, err := Encrypt([]byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name  string
		key   string
		nonce string
	}{
		{"bad key base64", "not base64!!", enc.Nonce},
		{"bad nonce base64", enc.Key, "not base64!!"},
		{"short key", base64.StdEncoding.EncodeToString([]byte("short")), enc.Nonce},
		{"short nonce", enc.Key, base64.StdEncoding.EncodeToString([]byte("short"))},
	}
	for _, tc := range cases {
		if _, err := Decrypt(tc.key, tc.nonce, enc.Result); !errors.Is(err, ErrCipher) {
			t.Fatalf("%s: expect ErrCipher, got %v", tc.name, err)
		}
	}
}
