// internal/settings/general.go
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
)

// RememberedHacks selects which hacks are re-applied on connect.
type RememberedHacks struct {
	Speed         bool `json:"speed"`
	RandomBattles bool `json:"randomBattles"`
	SwirlSkip     bool `json:"swirlSkip"`
	InstantATB    bool `json:"instantATB"`
	UnfocusPatch  bool `json:"unfocusPatch"`
}

// General holds user preferences.
type General struct {
	RememberedHacks RememberedHacks `json:"rememberedHacks"`
	BattleLog       bool            `json:"battleLog"`
	ConfirmRestore  bool            `json:"confirmRestore"`
}

func DefaultGeneral() General {
	return General{
		RememberedHacks: RememberedHacks{
			Speed:         true,
			RandomBattles: true,
			SwirlSkip:     true,
			InstantATB:    true,
			UnfocusPatch:  true,
		},
		BattleLog: true,
	}
}

// LoadGeneral merges the stored value over the defaults, so fields added
// after the value was saved keep their default.
func LoadGeneral(ctx context.Context, s Store) (General, error) {
	g := DefaultGeneral()
	if _, err := Decode(ctx, s, KeyGeneral, &g); err != nil {
		return DefaultGeneral(), fmt.Errorf("settings: load general: %w", err)
	}
	return g, nil
}

// LoadSaveStates reads the snapshot document, falling back to the flat-file
// backup when the store has nothing usable. Each source decodes into a fresh
// value so a failed decode never leaks into the other. When neither source
// yields a document the failures are logged and found is false: the session
// continues with in-memory state only.
func LoadSaveStates[T any](ctx context.Context, s Store, backup *Backup) (doc T, found bool) {
	var fromStore T
	ok, err := Decode(ctx, s, KeySaveStates, &fromStore)
	if err != nil {
		log.Printf("settings: save states unreadable from store, trying backup (err=%v)", err)
	}
	if ok && err == nil {
		return fromStore, true
	}

	data, err := backup.Read()
	if errors.Is(err, os.ErrNotExist) {
		return doc, false
	}
	if err != nil {
		log.Printf("settings: save state backup unreadable, starting empty (err=%v)", err)
		return doc, false
	}
	var fromBackup T
	if err := json.Unmarshal(data, &fromBackup); err != nil {
		log.Printf("settings: save state backup undecodable, starting empty (err=%v)", err)
		return doc, false
	}
	log.Printf("settings: save states restored from backup")
	return fromBackup, true
}

// Open returns the SQLite store at path, or a session-only memory store when
// it cannot be opened.
func Open(path string) Store {
	s, err := OpenSQLite(path)
	if err != nil {
		log.Printf("settings: falling back to memory store (path=%s err=%v)", path, err)
		return NewMemoryStore()
	}
	return s
}
