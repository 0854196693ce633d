// Package credential keeps the Jira API token in the OS keyring so the
// settings record does not have to hold it in plain text.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/nhle/timetracker/internal/model"
)

const serviceName = "timetracker"

// TokenKey is the keyring entry holding the Jira API token.
const TokenKey = "jira-api-token"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/timetracker/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("timetracker-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Store reads and writes credentials in a keyring.
type Store struct {
	ring keyring.Keyring
}

// Open opens the system keyring.
func Open() (*Store, error) {
	ring, err := openKeyring()
	if err != nil {
		return nil, err
	}
	return &Store{ring: ring}, nil
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Get retrieves a credential value by key. A missing key yields an empty
// string and no error.
func (s *Store) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key.
func (s *Store) Set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "timetracker Jira API token",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key. Deleting a missing key is not an
// error.
func (s *Store) Delete(key string) error {
	err := s.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// ApplyToken fills in the API token from the keyring when the settings
// record carries none.
func (s *Store) ApplyToken(settings model.Settings) (model.Settings, error) {
	if settings.JiraToken != "" {
		return settings, nil
	}
	token, err := s.Get(TokenKey)
	if err != nil {
		return settings, err
	}
	settings.JiraToken = token
	return settings, nil
}

// StashToken moves the API token into the keyring and returns the
// settings with the token cleared, ready to persist.
func (s *Store) StashToken(settings model.Settings) (model.Settings, error) {
	if settings.JiraToken == "" {
		return settings, nil
	}
	if err := s.Set(TokenKey, settings.JiraToken); err != nil {
		return settings, err
	}
	settings.JiraToken = ""
	return settings, nil
}
