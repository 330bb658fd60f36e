// Package keyring keeps client credentials in the OS keychain.
package keyring

import (
	"errors"

	"github.com/zalando/go-keyring"

	"github.com/mrz1836/lexe/pkg/credentials"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
)

// Service is the keychain service name entries are stored under.
const Service = "lexe"

// Keyring is the subset of a secret store the CLI needs.
type Keyring interface {
	Set(service, user, secret string) error
	Get(service, user string) (string, error)
	Delete(service, user string) error
}

// OSKeyring implements Keyring using the OS keychain.
type OSKeyring struct{}

// NewOSKeyring creates a new OS keyring wrapper.
func NewOSKeyring() *OSKeyring {
	return &OSKeyring{}
}

// Set stores a secret in the OS keyring.
func (k *OSKeyring) Set(service, user, secret string) error {
	return keyring.Set(service, user, secret)
}

// Get retrieves a secret from the OS keyring.
func (k *OSKeyring) Get(service, user string) (string, error) {
	return keyring.Get(service, user)
}

// Delete removes a secret from the OS keyring.
func (k *OSKeyring) Delete(service, user string) error {
	return keyring.Delete(service, user)
}

// CredentialStore saves one client credential bundle per environment.
type CredentialStore struct {
	kr Keyring
}

// NewCredentialStore wraps kr. A nil kr uses the OS keychain.
func NewCredentialStore(kr Keyring) *CredentialStore {
	if kr == nil {
		kr = NewOSKeyring()
	}
	return &CredentialStore{kr: kr}
}

func account(envID string) string {
	return "client-credentials/" + envID
}

// Save stores cc for the environment, replacing any previous bundle.
func (s *CredentialStore) Save(envID string, cc *credentials.ClientCredentials) error {
	if err := cc.Validate(); err != nil {
		return err
	}
	blob, err := cc.ToBase64Blob()
	if err != nil {
		return err
	}
	if err := s.kr.Set(Service, account(envID), blob); err != nil {
		return lexeerr.WithCause(lexeerr.ErrStoreIO, err)
	}
	return nil
}

// Load returns the stored bundle, or nil if there is none.
func (s *CredentialStore) Load(envID string) (*credentials.ClientCredentials, error) {
	blob, err := s.kr.Get(Service, account(envID))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, lexeerr.WithCause(lexeerr.ErrStoreIO, err)
	}
	return credentials.ParseClientCredentials(blob)
}

// Clear removes the stored bundle. Clearing an empty slot is not an error.
func (s *CredentialStore) Clear(envID string) error {
	err := s.kr.Delete(Service, account(envID))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return lexeerr.WithCause(lexeerr.ErrStoreIO, err)
	}
	return nil
}

// Probe tests if the OS keyring is available.
// It attempts to set, get, and delete a test value.
func Probe() bool {
	const (
		testService = "lexe-probe"
		testUser    = "probe"
		testValue   = "test"
	)

	if err := keyring.Set(testService, testUser, testValue); err != nil {
		return false
	}

	val, err := keyring.Get(testService, testUser)
	if err != nil || val != testValue {
		_ = keyring.Delete(testService, testUser)
		return false
	}

	return keyring.Delete(testService, testUser) == nil
}
