// internal/savestate/engine_test.go
package savestate

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tamzrod/ff7-replicator/internal/ff7"
	"github.com/tamzrod/ff7-replicator/internal/memory"
)

func newTarget(t *testing.T) *memory.Space {
	t.Helper()
	s := memory.NewSpace()
	for i, r := range CurrentRegions() {
		b := make([]byte, r.Len())
		for j := range b {
			b[j] = byte(i*7 + j)
		}
		s.Load(r.Start, b)
	}
	s.Map(ff7.AddrSavemap, ff7.SavemapSize)
	s.Map(ff7.AddrSnowboardGlobalObj, ff7.SnowboardGlobalObjSize)
	s.Map(ff7.AddrSnowboardEntities, ff7.SnowboardEntitiesSize)
	return s
}

func newTestEngine(s *memory.Space) *Engine {
	e := NewEngine(s)
	n := 0
	e.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	e.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return e
}

func TestCurrentRegions(t *testing.T) {
	regions := CurrentRegions()
	if len(regions) != len(staticRegions)+entityCount {
		t.Fatalf("got %d regions", len(regions))
	}
	last := regions[len(regions)-1]
	wantStart := entityBase + (entityCount-1)*entityStride
	if last.Start != wantStart || last.Len() != int(entitySize) {
		t.Fatalf("last generated region %+v", last)
	}

	// callers get their own copy
	regions[0].Start = 0
	if CurrentRegions()[0].Start == 0 {
		t.Fatalf("CurrentRegions shares backing storage")
	}
}

func TestRegionJSON(t *testing.T) {
	b, err := json.Marshal(Region{Start: 0x10, End: 0x20})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "[16,32]" {
		t.Fatalf("got %s", b)
	}
	var r Region
	if err := json.Unmarshal([]byte("[32,16]"), &r); err == nil {
		t.Fatalf("expected inverted region error")
	}
}

func TestCaptureRestoreIdempotent(t *testing.T) {
	s := newTarget(t)
	e := newTestEngine(s)

	first, err := e.Capture(Metadata{Title: "before boss", FieldID: 116, FieldName: "md1stin"})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if first.ID != "id-1" || first.Timestamp != 1_700_000_000_000 || first.FieldID != 116 {
		t.Fatalf("unexpected record header %+v", first)
	}
	if len(first.Savemap) != ff7.SavemapSize {
		t.Fatalf("savemap length %d", len(first.Savemap))
	}

	if err := e.Restore(first); err != nil {
		t.Fatalf("restore: %v", err)
	}
	second, err := e.Capture(Metadata{})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if diff := cmp.Diff(first.Regions, second.Regions); diff != "" {
		t.Fatalf("regions changed across restore (-first +second):\n%s", diff)
	}
}

func TestRestoreWritesCapturedBytes(t *testing.T) {
	s := newTarget(t)
	e := newTestEngine(s)

	rec, err := e.Capture(Metadata{})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	// scribble over every region
	for _, r := range CurrentRegions() {
		if err := s.WriteBuffer(r.Start, make([]byte, r.Len())); err != nil {
			t.Fatalf("scribble: %v", err)
		}
	}

	if err := e.Restore(rec); err != nil {
		t.Fatalf("restore: %v", err)
	}
	for i, r := range CurrentRegions() {
		got, err := s.ReadBuffer(r.Start, r.Len())
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if diff := cmp.Diff(rec.Regions[i], got); diff != "" {
			t.Fatalf("region %d not restored (-want +got):\n%s", i, diff)
		}
	}
}

func TestRestoreRejectsMismatchBeforeWriting(t *testing.T) {
	s := newTarget(t)
	e := newTestEngine(s)

	rec, err := e.Capture(Metadata{})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(FieldState) FieldState
	}{
		{"short offsets", func(r FieldState) FieldState {
			r.RegionOffsets = r.RegionOffsets[:len(r.RegionOffsets)-1]
			return r
		}},
		{"legacy record with wrong block count", func(r FieldState) FieldState {
			r.RegionOffsets = nil
			r.Regions = r.Regions[:3]
			return r
		}},
		{"block length", func(r FieldState) FieldState {
			blocks := append([][]byte(nil), r.Regions...)
			blocks[len(blocks)-1] = blocks[len(blocks)-1][:1]
			r.Regions = blocks
			return r
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := s.Writes()
			err := e.Restore(tt.mutate(rec))
			if !errors.Is(err, ErrRegionMismatch) {
				t.Fatalf("expected ErrRegionMismatch, got %v", err)
			}
			if s.Writes() != before {
				t.Fatalf("restore wrote %d blocks before failing", s.Writes()-before)
			}
		})
	}
}

func TestRestoreLegacyRecordUsesCurrentLayout(t *testing.T) {
	s := newTarget(t)
	e := newTestEngine(s)

	rec, err := e.Capture(Metadata{})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	rec.RegionOffsets = nil

	before := s.Writes()
	if err := e.Restore(rec); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := s.Writes() - before; got != len(CurrentRegions()) {
		t.Fatalf("expected one write per region, got %d", got)
	}
}

func TestRestoreOlderLayout(t *testing.T) {
	s := newTarget(t)
	e := newTestEngine(s)

	// a record captured under a smaller, older layout
	old := Region{Start: staticRegions[0].Start, End: staticRegions[0].Start + 4}
	rec := FieldState{
		ID:            "old",
		Regions:       [][]byte{{1, 2, 3, 4}},
		RegionOffsets: []Region{old},
	}
	if err := e.Restore(rec); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got, _ := s.ReadBuffer(old.Start, 4)
	if diff := cmp.Diff([]byte{1, 2, 3, 4}, got); diff != "" {
		t.Fatalf("bytes (-want +got):\n%s", diff)
	}
}

func TestCaptureFailure(t *testing.T) {
	s := newTarget(t)
	s.FailReads = true
	e := newTestEngine(s)
	if _, err := e.Capture(Metadata{}); !errors.Is(err, memory.ErrProcessNotOpen) {
		t.Fatalf("expected ErrProcessNotOpen, got %v", err)
	}
}

func TestSnowboardRoundTrip(t *testing.T) {
	s := newTarget(t)
	e := newTestEngine(s)

	if err := s.WriteBuffer(ff7.AddrSnowboardGlobalObj, []byte{9, 8, 7}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	rec, err := e.CaptureSnowboard("jump")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if err := s.WriteBuffer(ff7.AddrSnowboardGlobalObj, []byte{0, 0, 0}); err != nil {
		t.Fatalf("scribble: %v", err)
	}
	if err := e.RestoreSnowboard(rec); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got, _ := s.ReadBuffer(ff7.AddrSnowboardGlobalObj, 3)
	if diff := cmp.Diff([]byte{9, 8, 7}, got); diff != "" {
		t.Fatalf("globals (-want +got):\n%s", diff)
	}

	rec.EntitiesData = rec.EntitiesData[:10]
	if err := e.RestoreSnowboard(rec); !errors.Is(err, ErrRegionMismatch) {
		t.Fatalf("expected ErrRegionMismatch, got %v", err)
	}
}
