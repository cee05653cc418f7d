// internal/settings/store.go
package settings

import (
	"context"
	"encoding/json"
	"errors"
)

// Persisted keys.
const (
	KeyGeneral    = "general"
	KeyHacks      = "hacks"
	KeySaveStates = "saveStates"
	KeyShortcuts  = "shortcuts"
)

var (
	// ErrNotFound is returned by Get for keys that were never saved.
	ErrNotFound = errors.New("setting not found")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("settings store closed")
)

// Store is a key-value settings store. Set stages a value; Save commits
// everything staged. Get sees staged values.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(key string, value json.RawMessage) error
	Save(ctx context.Context) error
	Close() error
}

// Decode reads key into v. Missing keys leave v untouched and report false.
func Decode(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, err
	}
	return true, nil
}
