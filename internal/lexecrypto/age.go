package lexecrypto

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
)

// maxPlaintext bounds what PasswordDecrypt reads back. Seed backups are a
// few dozen bytes.
const maxPlaintext = 1 << 16

var errPlaintextTooLarge = errors.New("lexecrypto: decrypted payload too large")

// PasswordEncrypt seals plaintext for an age scrypt passphrase recipient.
func PasswordEncrypt(plaintext []byte, password string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(password)
	if err != nil {
		return nil, fmt.Errorf("lexecrypto: passphrase recipient: %w", err)
	}

	var sealed bytes.Buffer
	w, err := age.Encrypt(&sealed, recipient)
	if err == nil {
		_, err = w.Write(plaintext)
	}
	if err == nil {
		err = w.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("lexecrypto: sealing: %w", err)
	}
	return sealed.Bytes(), nil
}

// PasswordDecrypt opens a PasswordEncrypt payload into locked memory.
func PasswordDecrypt(ciphertext []byte, password string) (*SecureBytes, error) {
	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return nil, fmt.Errorf("lexecrypto: passphrase identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("lexecrypto: opening: %w", err)
	}

	plaintext, err := io.ReadAll(io.LimitReader(r, maxPlaintext+1))
	defer Zero(plaintext)
	switch {
	case err != nil:
		return nil, fmt.Errorf("lexecrypto: reading plaintext: %w", err)
	case len(plaintext) > maxPlaintext:
		return nil, errPlaintextTooLarge
	}
	return SecureBytesFromSlice(plaintext), nil
}
