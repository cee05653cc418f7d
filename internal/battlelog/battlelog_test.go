// internal/battlelog/battlelog_test.go
package battlelog

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tamzrod/ff7-replicator/internal/decoder"
	"github.com/tamzrod/ff7-replicator/internal/ff7"
)

func battleState(statuses map[int]uint32) *decoder.State {
	st := &decoder.State{
		Module:  ff7.ModuleBattle,
		Allies:  make([]decoder.Actor, ff7.BattleAllySlots),
		Enemies: make([]decoder.Actor, ff7.BattleEnemySlots),
	}
	for i, s := range statuses {
		a := decoder.Actor{Present: true, MaxHP: 100, Status: ff7.StatusWord(s)}
		if i < ff7.BattleAllySlots {
			st.Allies[i] = a
		} else {
			st.Enemies[i-ff7.BattleAllySlots] = a
		}
	}
	return st
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestDiffMatchesSymmetricDifference(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for n := 0; n < 500; n++ {
		prev := ff7.StatusWord(r.Uint32())
		cur := ff7.StatusWord(r.Uint32())
		if n%10 == 0 {
			cur = prev
		}

		changes := Diff(prev, cur)
		if (len(changes) == 0) != (prev == cur) {
			t.Fatalf("prev=%#x cur=%#x: empty=%v", uint32(prev), uint32(cur), len(changes) == 0)
		}

		var flipped uint32
		for _, c := range changes {
			flipped |= c.Status.Bit()
			if c.Inflicted != cur.Has(c.Status) {
				t.Fatalf("status %v: inflicted=%v", c.Status, c.Inflicted)
			}
		}
		if flipped != uint32(prev^cur) {
			t.Fatalf("prev=%#x cur=%#x: flipped=%#x", uint32(prev), uint32(cur), flipped)
		}
	}
}

func TestDiffOrder(t *testing.T) {
	prev := ff7.StatusWord(ff7.StatusSilence.Bit())
	cur := ff7.StatusWord(ff7.StatusPoison.Bit() | ff7.StatusImprisoned.Bit())

	want := []Change{
		{Status: ff7.StatusPoison, Inflicted: true},
		{Status: ff7.StatusSilence, Inflicted: false},
		{Status: ff7.StatusImprisoned, Inflicted: true},
	}
	if diff := cmp.Diff(want, Diff(prev, cur)); diff != "" {
		t.Fatalf("changes (-want +got):\n%s", diff)
	}
}

func TestDetectorEmitsOnChange(t *testing.T) {
	sink := &Memory{}
	d := NewDetector(sink)
	d.now = fixedClock(1000)

	d.Observe(battleState(map[int]uint32{0: 0, 5: 0}))
	if got := sink.Events(); len(got) != 0 {
		t.Fatalf("seeding pass emitted %v", got)
	}

	d.now = fixedClock(2000)
	d.Observe(battleState(map[int]uint32{0: uint32(ff7.StatusSleep.Bit()), 5: 0}))

	want := []Event{{
		TargetIndex: 0,
		Changes:     []Change{{Status: ff7.StatusSleep, Inflicted: true}},
		Timestamp:   2000,
	}}
	if diff := cmp.Diff(want, sink.Events()); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}

	d.Observe(battleState(map[int]uint32{0: uint32(ff7.StatusSleep.Bit()), 5: uint32(ff7.StatusStop.Bit())}))
	evs := sink.Events()
	if len(evs) != 2 || evs[1].TargetIndex != 5 {
		t.Fatalf("expected enemy event at index 5, got %+v", evs)
	}
}

func TestDetectorClearsOutsideBattle(t *testing.T) {
	sink := &Memory{}
	d := NewDetector(sink)

	d.Observe(battleState(map[int]uint32{1: uint32(ff7.StatusHaste.Bit())}))
	if len(d.Previous()) != 1 {
		t.Fatalf("expected seeded table")
	}

	d.Observe(&decoder.State{Module: ff7.ModuleField})
	if len(d.Previous()) != 0 {
		t.Fatalf("expected cleared table, got %v", d.Previous())
	}

	// next battle starts fresh: no stale cleared event for Haste
	d.Observe(battleState(map[int]uint32{1: 0}))
	if got := sink.Events(); len(got) != 0 {
		t.Fatalf("stale events leaked: %+v", got)
	}
}

func TestDetectorResetBeforePass(t *testing.T) {
	sink := &Memory{}
	d := NewDetector(sink)

	d.Observe(battleState(map[int]uint32{4: uint32(ff7.StatusPoison.Bit())}))
	d.Reset()
	d.Observe(battleState(map[int]uint32{4: 0}))

	if got := sink.Events(); len(got) != 0 {
		t.Fatalf("events after reset: %+v", got)
	}
}

type failingSink struct{ calls int }

func (f *failingSink) Append(Event) error {
	f.calls++
	return errors.New("disk full")
}

func TestDetectorToleratesSinkFailure(t *testing.T) {
	sink := &failingSink{}
	d := NewDetector(sink)

	d.Observe(battleState(map[int]uint32{0: 0}))
	d.Observe(battleState(map[int]uint32{0: uint32(ff7.StatusFury.Bit())}))

	if sink.calls != 1 {
		t.Fatalf("expected one append attempt, got %d", sink.calls)
	}
	if got := d.Previous()[0]; !got.Has(ff7.StatusFury) {
		t.Fatalf("table not updated after sink failure: %#x", uint32(got))
	}
}

func TestJournalWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	j := NewJournal(&buf)

	ev := Event{TargetIndex: 2, Changes: []Change{{Status: ff7.StatusDeath, Inflicted: true}}, Timestamp: 42}
	if err := j.Append(ev); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := j.Append(ev); err != nil {
		t.Fatalf("append: %v", err)
	}

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var back Event
	if err := json.Unmarshal(lines[0], &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(ev, back); diff != "" {
		t.Fatalf("event (-want +got):\n%s", diff)
	}
	if !bytes.Contains(lines[0], []byte(`"statusId":"Death"`)) {
		t.Fatalf("expected status name on the wire, got %s", lines[0])
	}
}

func TestMultiAttemptsEverySink(t *testing.T) {
	bad := &failingSink{}
	good := &Memory{}
	err := Multi{bad, good}.Append(Event{TargetIndex: 1})
	if err == nil {
		t.Fatalf("expected error from failing sink")
	}
	if len(good.Events()) != 1 {
		t.Fatalf("second sink not reached")
	}
}
