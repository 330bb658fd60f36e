// Package credentials holds the secret material a wallet authenticates with:
// either a RootSeed or a revocable ClientCredentials bundle.
package credentials

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"

	"github.com/mrz1836/lexe/internal/lexecrypto"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/types"
)

// RootSeedLen is the size of a root seed in bytes.
const RootSeedLen = 32

// MinBackupPasswordLen is the shortest accepted seed backup password.
const MinBackupPasswordLen = 12

// HKDF parameters for the user key pair.
const (
	hkdfSalt        = "LEXE-REALM::RootSeed"
	hkdfInfoUserKey = "user key pair"
)

// RootSeed is the master secret every other wallet key derives from.
// It lives in locked memory; call Destroy when done with it.
type RootSeed struct {
	secret *lexecrypto.SecureBytes
}

// GenerateRootSeed draws a new seed from rng.
func GenerateRootSeed(rng io.Reader) (*RootSeed, error) {
	b, err := lexecrypto.RandomBytes(rng, RootSeedLen)
	if err != nil {
		return nil, lexeerr.WithCause(lexeerr.ErrInvalidRootSeed, err)
	}
	defer lexecrypto.Zero(b)
	return RootSeedFromBytes(b)
}

// RootSeedFromBytes copies b into a new seed.
func RootSeedFromBytes(b []byte) (*RootSeed, error) {
	if len(b) != RootSeedLen {
		return nil, lexeerr.WithDetails(lexeerr.ErrInvalidRootSeed, map[string]string{
			"want": "32 bytes",
		})
	}
	return &RootSeed{secret: lexecrypto.SecureBytesFromSlice(b)}, nil
}

// ParseRootSeedHex parses the 64-character hex form of a seed.
func ParseRootSeedHex(s string) (*RootSeed, error) {
	s = strings.TrimSpace(s)
	if len(s) != 2*RootSeedLen {
		return nil, lexeerr.WithSuggestion(
			lexeerr.WithDetails(lexeerr.ErrInvalidRootSeed, map[string]string{"want": "64 hex chars"}),
			"ROOT_SEED must be exactly 64 hex characters",
		)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, lexeerr.WithCause(lexeerr.ErrInvalidRootSeed, err)
	}
	defer lexecrypto.Zero(b)
	return RootSeedFromBytes(b)
}

// DecryptRootSeed recovers a seed from a PasswordEncrypt backup.
func DecryptRootSeed(ciphertext []byte, password string) (*RootSeed, error) {
	sb, err := lexecrypto.PasswordDecrypt(ciphertext, password)
	if err != nil {
		return nil, lexeerr.WithCause(lexeerr.ErrDecryptionFailed, err)
	}
	if sb.Len() != RootSeedLen {
		sb.Destroy()
		return nil, lexeerr.WithDetails(lexeerr.ErrDecryptionFailed, map[string]string{
			"reason": "backup does not hold a root seed",
		})
	}
	return &RootSeed{secret: sb}, nil
}

// expose returns the seed bytes or an error once destroyed.
func (s *RootSeed) expose() ([]byte, error) {
	if s == nil || s.secret == nil {
		return nil, lexeerr.ErrInvalidRootSeed
	}
	b := s.secret.Bytes()
	if b == nil {
		return nil, lexeerr.WithDetails(lexeerr.ErrInvalidRootSeed, map[string]string{
			"reason": "destroyed",
		})
	}
	return b, nil
}

// Bytes returns a copy of the seed. The caller should zero it after use.
func (s *RootSeed) Bytes() ([]byte, error) {
	if _, err := s.expose(); err != nil {
		return nil, err
	}
	return s.secret.Copy(), nil
}

// Hex returns the 64-character hex encoding.
func (s *RootSeed) Hex() (string, error) {
	b, err := s.expose()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// UserKey derives the user's ed25519 key pair.
func (s *RootSeed) UserKey() (ed25519.PrivateKey, error) {
	b, err := s.expose()
	if err != nil {
		return nil, err
	}

	keySeed := make([]byte, ed25519.SeedSize)
	defer lexecrypto.Zero(keySeed)

	r := hkdf.New(sha256.New, b, []byte(hkdfSalt), []byte(hkdfInfoUserKey))
	if _, err := io.ReadFull(r, keySeed); err != nil {
		return nil, lexeerr.WithCause(lexeerr.ErrInvalidRootSeed, err)
	}
	return ed25519.NewKeyFromSeed(keySeed), nil
}

// UserPk derives the user's public key.
func (s *RootSeed) UserPk() (types.UserPk, error) {
	key, err := s.UserKey()
	if err != nil {
		return types.UserPk{}, err
	}
	defer lexecrypto.Zero(key)

	var pk types.UserPk
	copy(pk[:], key.Public().(ed25519.PublicKey))
	return pk, nil
}

// PasswordEncrypt produces the encrypted seed backup used during provisioning.
func (s *RootSeed) PasswordEncrypt(password string) ([]byte, error) {
	if len(password) < MinBackupPasswordLen {
		return nil, lexeerr.WithSuggestion(lexeerr.ErrWeakPassword,
			"use a backup password of at least 12 characters")
	}
	b, err := s.expose()
	if err != nil {
		return nil, err
	}
	return lexecrypto.PasswordEncrypt(b, password)
}

// Destroy zeros the seed. Further use fails with ErrInvalidRootSeed.
func (s *RootSeed) Destroy() {
	if s != nil && s.secret != nil {
		s.secret.Destroy()
	}
}

// String never prints the secret.
func (s *RootSeed) String() string {
	return "RootSeed(..)"
}

// GoString never prints the secret.
func (s *RootSeed) GoString() string {
	return s.String()
}
