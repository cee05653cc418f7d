// cmd/replicator/orchestrator_test.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tamzrod/ff7-replicator/internal/decoder"
	"github.com/tamzrod/ff7-replicator/internal/ff7"
	"github.com/tamzrod/ff7-replicator/internal/memory"
	"github.com/tamzrod/ff7-replicator/internal/poller"
	"github.com/tamzrod/ff7-replicator/internal/refdata"
	"github.com/tamzrod/ff7-replicator/internal/status"
)

type fakeStatusWriter struct {
	writes []status.Snapshot
}

func (f *fakeStatusWriter) WriteStatus(s status.Snapshot) error {
	f.writes = append(f.writes, s)
	return nil
}

type observeCall struct {
	connected bool
	module    ff7.Module
}

type fakeTables struct {
	calls  []observeCall
	tables *refdata.Tables
}

func (f *fakeTables) Observe(_ context.Context, connected bool, module ff7.Module) {
	f.calls = append(f.calls, observeCall{connected, module})
}

func (f *fakeTables) Tables() *refdata.Tables { return f.tables }

func connectedUpdate(module ff7.Module) poller.Update {
	return poller.Update{
		At:        time.UnixMilli(1000),
		Connected: true,
		State:     &decoder.State{Module: module, FieldID: 116, Gil: 0x12345},
	}
}

func TestOrchestrator_ReapplyOnConnectOnly(t *testing.T) {
	tables := &fakeTables{}
	reapplied := 0
	o := &orchestrator{
		tables:  tables,
		reapply: func(context.Context) { reapplied++ },
	}
	ctx := context.Background()

	o.handle(ctx, connectedUpdate(ff7.ModuleField))
	o.handle(ctx, connectedUpdate(ff7.ModuleField))
	if reapplied != 1 {
		t.Fatalf("reapplied=%d after steady connection, want 1", reapplied)
	}

	o.handle(ctx, poller.Update{Err: memory.ErrProcessNotFound})
	o.handle(ctx, connectedUpdate(ff7.ModuleBattle))
	if reapplied != 2 {
		t.Fatalf("reapplied=%d after reconnect, want 2", reapplied)
	}

	want := []observeCall{
		{true, ff7.ModuleField},
		{true, ff7.ModuleField},
		{false, ff7.ModuleNone},
		{true, ff7.ModuleBattle},
	}
	if diff := cmp.Diff(want, tables.calls, cmp.AllowUnexported(observeCall{})); diff != "" {
		t.Fatalf("loader calls mismatch (-want +got):\n%s", diff)
	}
}

func TestOrchestrator_StatusWrittenOnChangeOnly(t *testing.T) {
	sw := &fakeStatusWriter{}
	o := &orchestrator{status: sw, tables: &fakeTables{}}
	ctx := context.Background()

	o.handle(ctx, connectedUpdate(ff7.ModuleField))
	o.handle(ctx, connectedUpdate(ff7.ModuleField))
	if len(sw.writes) != 1 {
		t.Fatalf("writes=%d, want 1", len(sw.writes))
	}
	if got := sw.writes[0]; got.Health != status.HealthOK || got.FieldID != 116 {
		t.Fatalf("unexpected snapshot %+v", got)
	}

	// Healthy: the seconds ticker writes nothing.
	o.second()
	if len(sw.writes) != 1 {
		t.Fatalf("tick while healthy wrote (writes=%d)", len(sw.writes))
	}

	o.handle(ctx, poller.Update{Err: errors.New("boom")})
	o.second()
	o.second()
	if len(sw.writes) != 4 {
		t.Fatalf("writes=%d, want 4", len(sw.writes))
	}
	last := sw.writes[3]
	if last.Health != status.HealthError || last.SecondsInError != 2 || last.FieldID != 0 {
		t.Fatalf("unexpected snapshot %+v", last)
	}
}

func TestOrchestrator_Publish(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	tables := &fakeTables{tables: &refdata.Tables{Commands: []string{"Attack"}}}
	o := &orchestrator{tables: tables, publish: path}

	o.handle(context.Background(), connectedUpdate(ff7.ModuleField))
	o.second()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read published: %v", err)
	}
	var got published
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("decode published: %v", err)
	}
	if !got.Connected || got.UpdatedAt != 1000 || got.State == nil || got.State.FieldID != 116 {
		t.Fatalf("unexpected document %+v", got)
	}
	if diff := cmp.Diff(tables.tables, got.Tables); diff != "" {
		t.Fatalf("tables mismatch (-want +got):\n%s", diff)
	}

	o.handle(context.Background(), poller.Update{At: time.UnixMilli(2000), Err: decoder.ErrNoModule})
	o.second()

	b, _ = os.ReadFile(path)
	got = published{}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("decode published: %v", err)
	}
	if got.Connected || got.State != nil || got.Error == "" {
		t.Fatalf("unexpected disconnected document %+v", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
}

func TestOrchestrator_RunWritesOnStartAndStops(t *testing.T) {
	sw := &fakeStatusWriter{}
	o := &orchestrator{status: sw, tables: &fakeTables{}}

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan poller.Update)
	done := make(chan error, 1)
	go func() { done <- o.run(ctx, in) }()

	in <- connectedUpdate(ff7.ModuleField)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop")
	}

	if len(sw.writes) != 2 {
		t.Fatalf("writes=%d, want start + update", len(sw.writes))
	}
	if sw.writes[0].Health != status.HealthUnknown {
		t.Fatalf("start health=%d", sw.writes[0].Health)
	}
}
