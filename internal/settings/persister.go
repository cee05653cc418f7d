// internal/settings/persister.go
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Persister debounces writes per key. A burst of Schedule calls for one key
// results in a single write of the last value. Writes to the same key never
// overlap. Writes of KeySaveStates are mirrored to the backup after every
// successful save.
type Persister struct {
	store  Store
	backup *Backup
	delay  time.Duration

	mu     sync.Mutex
	keys   map[string]*pendingKey
	closed bool
}

type pendingKey struct {
	timer *time.Timer
	value json.RawMessage
	dirty bool

	writeMu sync.Mutex
}

func NewPersister(store Store, backup *Backup, delay time.Duration) *Persister {
	return &Persister{
		store:  store,
		backup: backup,
		delay:  delay,
		keys:   make(map[string]*pendingKey),
	}
}

// Schedule marshals v now and writes it after the debounce delay. The caller
// never waits for I/O.
func (p *Persister) Schedule(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("settings: marshal %q: %w", key, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	pk, ok := p.keys[key]
	if !ok {
		pk = &pendingKey{}
		p.keys[key] = pk
	}
	pk.value = raw
	pk.dirty = true

	if pk.timer == nil {
		pk.timer = time.AfterFunc(p.delay, func() {
			if err := p.flushKey(key, pk); err != nil {
				log.Printf("settings: persist failed (key=%s err=%v)", key, err)
			}
		})
	} else {
		pk.timer.Reset(p.delay)
	}
	return nil
}

// Flush writes every dirty key now.
func (p *Persister) Flush() error {
	p.mu.Lock()
	pending := make(map[string]*pendingKey, len(p.keys))
	for k, pk := range p.keys {
		pending[k] = pk
	}
	p.mu.Unlock()

	var errs []error
	for k, pk := range pending {
		if err := p.flushKey(k, pk); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops the timers and flushes what is left. Later Schedule calls fail.
func (p *Persister) Close() error {
	p.mu.Lock()
	p.closed = true
	for _, pk := range p.keys {
		if pk.timer != nil {
			pk.timer.Stop()
		}
	}
	p.mu.Unlock()

	return p.Flush()
}

func (p *Persister) flushKey(key string, pk *pendingKey) error {
	pk.writeMu.Lock()
	defer pk.writeMu.Unlock()

	p.mu.Lock()
	if !pk.dirty {
		p.mu.Unlock()
		return nil
	}
	value := pk.value
	pk.dirty = false
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.store.Set(key, value); err != nil {
		p.markDirty(pk, value)
		return err
	}
	if err := p.store.Save(ctx); err != nil {
		p.markDirty(pk, value)
		return err
	}

	if key == KeySaveStates {
		if err := p.backup.Write(value); err != nil {
			log.Printf("settings: backup write failed (err=%v)", err)
		}
	}
	return nil
}

// markDirty restores a failed value unless a newer one arrived meanwhile,
// and re-arms the timer so the value is retried without another Schedule.
func (p *Persister) markDirty(pk *pendingKey, value json.RawMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !pk.dirty {
		pk.value = value
		pk.dirty = true
	}
	if pk.timer != nil && !p.closed {
		pk.timer.Reset(p.delay)
	}
}
