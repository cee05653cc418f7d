// cmd/replicator/app.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tamzrod/ff7-replicator/internal/config"
	"github.com/tamzrod/ff7-replicator/internal/hacks"
	"github.com/tamzrod/ff7-replicator/internal/memory"
	"github.com/tamzrod/ff7-replicator/internal/savestate"
	"github.com/tamzrod/ff7-replicator/internal/settings"
)

// app owns the persisted side: settings store, debounced writes and the
// save state library.
type app struct {
	cfg       *config.Config
	store     settings.Store
	persister *settings.Persister
	lib       *savestate.Library
	general   settings.General
	hacks     hacks.Values
}

func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	sc := cfg.Replicator.Settings

	store := settings.Open(sc.Path)
	backup := settings.NewBackup(sc.BackupPath)
	persister := settings.NewPersister(store, backup, time.Duration(sc.DebounceMs)*time.Millisecond)

	a := &app{cfg: cfg, store: store, persister: persister}
	a.lib = savestate.NewLibrary(func(doc savestate.Document) error {
		return persister.Schedule(settings.KeySaveStates, doc)
	})

	if doc, found := settings.LoadSaveStates[savestate.Document](ctx, store, backup); found {
		a.lib.Load(doc)
	}

	var err error
	a.general, err = settings.LoadGeneral(ctx, store)
	if err != nil {
		log.Printf("settings: using default preferences (err=%v)", err)
	}

	if _, err := settings.Decode(ctx, store, settings.KeyHacks, &a.hacks); err != nil {
		log.Printf("settings: stored hack values unreadable (err=%v)", err)
		a.hacks = hacks.Values{}
	}
	return a, nil
}

// saveHacks merges v over the stored values and schedules the write.
func (a *app) saveHacks(v hacks.Values) error {
	if v.Speed != nil {
		a.hacks.Speed = v.Speed
	}
	if v.Encounters != nil {
		a.hacks.Encounters = v.Encounters
	}
	if v.SwirlSkip != nil {
		a.hacks.SwirlSkip = v.SwirlSkip
	}
	if v.InstantATB != nil {
		a.hacks.InstantATB = v.InstantATB
	}
	if v.UnfocusPatch != nil {
		a.hacks.UnfocusPatch = v.UnfocusPatch
	}
	return a.persister.Schedule(settings.KeyHacks, a.hacks)
}

// open attaches to the target for a one-shot command.
func (a *app) open() (memory.Accessor, error) {
	acc, err := memory.ProcessOpener(a.cfg.Replicator.Process.Name)()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", a.cfg.Replicator.Process.Name, err)
	}
	return acc, nil
}

func (a *app) Close() error {
	return errors.Join(a.persister.Close(), a.store.Close())
}
