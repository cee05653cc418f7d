// cmd/replicator/orchestrator.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/tamzrod/ff7-replicator/internal/decoder"
	"github.com/tamzrod/ff7-replicator/internal/ff7"
	"github.com/tamzrod/ff7-replicator/internal/poller"
	"github.com/tamzrod/ff7-replicator/internal/refdata"
	"github.com/tamzrod/ff7-replicator/internal/status"
	"github.com/tamzrod/ff7-replicator/internal/writer"
)

// tableSource is the part of refdata.Loader the orchestrator drives.
type tableSource interface {
	Observe(ctx context.Context, connected bool, module ff7.Module)
	Tables() *refdata.Tables
}

// published is the document rewritten at the publish path.
type published struct {
	UpdatedAt int64           `json:"updatedAt"` // unix ms
	Connected bool            `json:"connected"`
	Error     string          `json:"error,omitempty"`
	State     *decoder.State  `json:"state,omitempty"`
	Tables    *refdata.Tables `json:"tables,omitempty"`
}

// orchestrator is the only consumer of poll updates. It owns the status
// snapshot and runs the 1 Hz seconds ticker.
type orchestrator struct {
	status  writer.StatusWriter // nil => no status block
	tables  tableSource
	publish string
	reapply func(ctx context.Context)

	snap      status.Snapshot
	last      poller.Update
	connected bool
}

func (o *orchestrator) run(ctx context.Context, in <-chan poller.Update) error {
	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	// Full block write on start (identity re-assert).
	o.snap.Health = status.HealthUnknown
	o.writeStatus("start")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case u := <-in:
			o.handle(ctx, u)

		case <-secTicker.C:
			o.second()
		}
	}
}

func (o *orchestrator) handle(ctx context.Context, u poller.Update) {
	module := ff7.ModuleNone
	if u.State != nil {
		module = u.State.Module
	}
	o.tables.Observe(ctx, u.Connected, module)

	if u.Connected && !o.connected {
		log.Printf("replicator: connected")
		if o.reapply != nil {
			o.reapply(ctx)
		}
	}
	if !u.Connected && o.connected {
		log.Printf("replicator: disconnected (err=%v)", u.Err)
	}
	o.connected = u.Connected
	o.last = u

	if o.snap.Observe(u) {
		o.writeStatus("update")
	}
}

// second runs on the 1 Hz ticker.
func (o *orchestrator) second() {
	if o.snap.Tick() {
		o.writeStatus("seconds tick")
	}
	if o.publish != "" {
		if err := writeFileAtomic(o.publish, o.document()); err != nil {
			log.Printf("publish failed (path=%s): %v", o.publish, err)
		}
	}
}

func (o *orchestrator) writeStatus(what string) {
	if o.status == nil {
		return
	}
	if err := o.status.WriteStatus(o.snap); err != nil {
		log.Printf("status write failed on %s: %v", what, err)
	}
}

func (o *orchestrator) document() published {
	doc := published{
		UpdatedAt: o.last.At.UnixMilli(),
		Connected: o.last.Connected,
		State:     o.last.State,
		Tables:    o.tables.Tables(),
	}
	if o.last.Err != nil {
		doc.Error = o.last.Err.Error()
	}
	return doc
}

// writeFileAtomic replaces path with the JSON encoding of v. Readers see
// either the old or the new file, never a partial one.
func writeFileAtomic(path string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
