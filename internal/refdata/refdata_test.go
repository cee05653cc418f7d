// internal/refdata/refdata_test.go
package refdata

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tamzrod/ff7-replicator/internal/decoder/decodertest"
	"github.com/tamzrod/ff7-replicator/internal/ff7"
	"github.com/tamzrod/ff7-replicator/internal/memory"
)

// encodeTable lays out names behind a u16 offset header.
func encodeTable(count int, names ...string) []byte {
	out := make([]byte, count*2)
	for i := 0; i < count; i++ {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(len(out)))
		out = append(out, ff7.EncodeText(name, len(name)+1)...)
	}
	return out
}

func loadTables(tg *decodertest.Target) {
	tg.Put(ff7.AddrCommandNames, encodeTable(ff7.CommandCount, "Attack", "Magic", "Summon", "Item")...)
	tg.Put(ff7.AddrItemNames, encodeTable(ff7.ItemCount, "Potion", "Hi-Potion")...)
	tg.Put(ff7.AddrMateriaNames, encodeTable(ff7.MateriaCount, "MP Plus", "HP Plus")...)
}

func TestParseNameTable(t *testing.T) {
	b := encodeTable(3, "Attack", "Magic  ", "")
	got, err := parseNameTable(b, 3)
	if err != nil {
		t.Fatalf("parseNameTable: %v", err)
	}
	if diff := cmp.Diff([]string{"Attack", "Magic", ""}, got); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestParseNameTable_Bounds(t *testing.T) {
	if _, err := parseNameTable([]byte{0x01}, 1); !errors.Is(err, errTableBounds) {
		t.Fatalf("short header: err=%v", err)
	}
	b := []byte{0x10, 0x00}
	if _, err := parseNameTable(b, 1); !errors.Is(err, errTableBounds) {
		t.Fatalf("offset past end: err=%v", err)
	}
}

func TestReadTables(t *testing.T) {
	tg := decodertest.NewTarget()
	loadTables(tg)

	tables, err := ReadTables(tg)
	if err != nil {
		t.Fatalf("ReadTables: %v", err)
	}
	if len(tables.Commands) != ff7.CommandCount || len(tables.Items) != ff7.ItemCount || len(tables.Materia) != ff7.MateriaCount {
		t.Fatalf("lengths: %d %d %d", len(tables.Commands), len(tables.Items), len(tables.Materia))
	}
	if tables.Commands[3] != "Item" || tables.Items[1] != "Hi-Potion" || tables.Materia[0] != "MP Plus" {
		t.Fatalf("unexpected names: %q %q %q", tables.Commands[3], tables.Items[1], tables.Materia[0])
	}
}

func TestReadTables_Unmapped(t *testing.T) {
	if _, err := ReadTables(memory.NewSpace()); !errors.Is(err, memory.ErrAddressNotMapped) {
		t.Fatalf("expected ErrAddressNotMapped, got %v", err)
	}
}

type flakyOpener struct {
	mu    sync.Mutex
	acc   memory.Accessor
	fail  int
	calls int
}

func (f *flakyOpener) open() (memory.Accessor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.fail {
		return nil, memory.ErrProcessNotFound
	}
	return f.acc, nil
}

func (f *flakyOpener) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLoader_RetriesUntilLoaded(t *testing.T) {
	tg := decodertest.NewTarget()
	loadTables(tg)
	op := &flakyOpener{acc: tg, fail: 2}

	l := NewLoader(op.open, 2*time.Millisecond)
	defer l.Close()

	l.Observe(context.Background(), true, ff7.ModuleField)
	waitFor(t, func() bool { return l.Tables() != nil })

	if got := l.Attempts(); got != 3 {
		t.Fatalf("attempts=%d, want 3", got)
	}
	if err := l.LastError(); err != nil {
		t.Fatalf("LastError=%v after success", err)
	}

	// loaded tables are not fetched again
	l.Observe(context.Background(), true, ff7.ModuleBattle)
	l.wg.Wait()
	if op.count() != 3 {
		t.Fatalf("opener calls=%d, want 3", op.count())
	}
}

func TestLoader_WaitsForModule(t *testing.T) {
	op := &flakyOpener{acc: decodertest.NewTarget()}
	l := NewLoader(op.open, time.Millisecond)
	defer l.Close()

	l.Observe(context.Background(), true, ff7.ModuleNone)
	l.Observe(context.Background(), false, ff7.ModuleField)
	l.wg.Wait()

	if op.count() != 0 {
		t.Fatalf("opener calls=%d, want 0", op.count())
	}
}

func TestLoader_DisconnectResets(t *testing.T) {
	op := &flakyOpener{acc: decodertest.NewTarget(), fail: 1 << 30}
	l := NewLoader(op.open, time.Millisecond)
	defer l.Close()

	l.Observe(context.Background(), true, ff7.ModuleField)
	waitFor(t, func() bool { return l.Attempts() >= 2 })
	if !errors.Is(l.LastError(), memory.ErrProcessNotFound) {
		t.Fatalf("LastError=%v", l.LastError())
	}

	l.Observe(context.Background(), false, ff7.ModuleNone)
	l.wg.Wait()

	if l.Attempts() != 0 || l.LastError() != nil || l.Tables() != nil {
		t.Fatalf("state not reset: attempts=%d err=%v", l.Attempts(), l.LastError())
	}
}

func TestLoader_DisconnectDropsTables(t *testing.T) {
	tg := decodertest.NewTarget()
	loadTables(tg)
	l := NewLoader(memory.StaticOpener(tg), time.Millisecond)
	defer l.Close()

	l.Observe(context.Background(), true, ff7.ModuleField)
	waitFor(t, func() bool { return l.Tables() != nil })

	l.Observe(context.Background(), false, ff7.ModuleNone)
	if l.Tables() != nil {
		t.Fatal("tables survived disconnect")
	}

	l.Observe(context.Background(), true, ff7.ModuleField)
	waitFor(t, func() bool { return l.Tables() != nil })
}

func TestAttackCache(t *testing.T) {
	tg := decodertest.NewTarget()
	tg.Put(ff7.AddrEnemyAttackName, ff7.EncodeText("Sonic Punch", ff7.EnemyAttackNameSize)...)
	tg.Put(ff7.AddrEnemyAttackName+ff7.EnemyAttackNameSize, ff7.EncodeText("Scorpion Tail", ff7.EnemyAttackNameSize)...)

	c, err := NewAttackCache(2)
	if err != nil {
		t.Fatalf("NewAttackCache: %v", err)
	}

	names, err := c.AttackNames(tg, 324)
	if err != nil {
		t.Fatalf("AttackNames: %v", err)
	}
	if len(names) != ff7.EnemyAttackCount || names[0] != "Sonic Punch" || names[1] != "Scorpion Tail" {
		t.Fatalf("unexpected names: %q", names[:2])
	}

	// cached: mutating memory or the returned slice does not leak through
	names[0] = "changed"
	tg.Put(ff7.AddrEnemyAttackName, ff7.EncodeText("Other", ff7.EnemyAttackNameSize)...)
	reads := tg.Reads()

	again, err := c.AttackNames(tg, 324)
	if err != nil {
		t.Fatalf("AttackNames: %v", err)
	}
	if again[0] != "Sonic Punch" {
		t.Fatalf("cache returned %q", again[0])
	}
	if tg.Reads() != reads {
		t.Fatal("cached lookup read memory")
	}

	if _, err := c.AttackNames(tg, 325); err != nil {
		t.Fatalf("AttackNames: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len=%d, want 2", c.Len())
	}
}

func TestAttackCache_ReadError(t *testing.T) {
	c, err := NewAttackCache(0)
	if err != nil {
		t.Fatalf("NewAttackCache: %v", err)
	}
	if _, err := c.AttackNames(memory.NewSpace(), 1); !errors.Is(err, memory.ErrAddressNotMapped) {
		t.Fatalf("expected ErrAddressNotMapped, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatal("failed read was cached")
	}
}
