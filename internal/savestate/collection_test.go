// internal/savestate/collection_test.go
package savestate

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type persistRecorder struct {
	mu    sync.Mutex
	calls [][]FieldState
	err   error
}

func (p *persistRecorder) persist(items []FieldState) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, items)
	return p.err
}

func (p *persistRecorder) last() []FieldState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return nil
	}
	return p.calls[len(p.calls)-1]
}

func ids(items []FieldState) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func seeded(rec *persistRecorder, keys ...string) *Collection[FieldState] {
	var persist PersistFunc[FieldState]
	if rec != nil {
		persist = rec.persist
	}
	c := NewCollection("field states", persist)
	for _, k := range keys {
		c.Add(FieldState{ID: k})
	}
	return c
}

func TestCollectionAddRemove(t *testing.T) {
	rec := &persistRecorder{}
	c := seeded(rec, "a", "b", "c")

	if err := c.Remove("b"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "c"}, ids(c.All())); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "c"}, ids(rec.last())); diff != "" {
		t.Fatalf("persisted (-want +got):\n%s", diff)
	}
	if err := c.Remove("zzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCollectionMoveByID(t *testing.T) {
	c := seeded(nil, "a", "b", "c", "d", "e")

	// removing an unrelated record shifts indices but not ids
	if err := c.Remove("b"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := c.Move("e", "c", false); err != nil {
		t.Fatalf("move before: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "e", "c", "d"}, ids(c.All())); diff != "" {
		t.Fatalf("move before (-want +got):\n%s", diff)
	}

	if err := c.Move("a", "d", true); err != nil {
		t.Fatalf("move after: %v", err)
	}
	if diff := cmp.Diff([]string{"e", "c", "d", "a"}, ids(c.All())); diff != "" {
		t.Fatalf("move after (-want +got):\n%s", diff)
	}

	if err := c.Move("b", "a", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for removed id, got %v", err)
	}
}

func TestCollectionRenameCopiesOnWrite(t *testing.T) {
	rec := &persistRecorder{}
	c := seeded(rec, "a")
	before := c.All()

	if err := c.Rename("a", "Sector 7"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if got, _ := c.Get("a"); got.Title != "Sector 7" {
		t.Fatalf("title: got %q", got.Title)
	}
	if before[0].Title != "" {
		t.Fatalf("earlier snapshot mutated")
	}
}

func TestCollectionLatestSticky(t *testing.T) {
	c := seeded(nil, "a", "b", "c")

	if got, _ := c.Latest(); got.ID != "c" {
		t.Fatalf("default latest: got %q", got.ID)
	}

	if err := c.MarkLoaded("a"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	c.Add(FieldState{ID: "d"})
	if got, _ := c.Latest(); got.ID != "a" {
		t.Fatalf("sticky latest: got %q", got.ID)
	}

	// explicit positional access resets the pointer
	if got, ok := c.At(1); !ok || got.ID != "b" {
		t.Fatalf("At(1): %q %v", got.ID, ok)
	}
	if got, _ := c.Latest(); got.ID != "d" {
		t.Fatalf("after At: got %q", got.ID)
	}

	// removing the sticky id resets it too
	_ = c.MarkLoaded("b")
	_ = c.Remove("b")
	if got, _ := c.Latest(); got.ID != "d" {
		t.Fatalf("after removal: got %q", got.ID)
	}

	c.Clear()
	if _, ok := c.Latest(); ok {
		t.Fatalf("latest on empty collection")
	}
}

func TestCollectionPersistFailureKeepsMutation(t *testing.T) {
	rec := &persistRecorder{err: errors.New("store unreachable")}
	c := seeded(rec, "a", "b")
	if c.Len() != 2 {
		t.Fatalf("mutations lost on persist failure: %d", c.Len())
	}
}

func TestCollectionRemoveManyAndCategories(t *testing.T) {
	c := seeded(nil, "a", "b", "c", "d")
	_ = SetCategory(c, "a", "bosses")
	_ = SetCategory(c, "c", " bosses ")
	_ = SetCategory(c, "d", "shops")

	if diff := cmp.Diff([]string{"a", "c"}, ids(ByCategory(c, "bosses"))); diff != "" {
		t.Fatalf("bosses (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, ids(ByCategory(c, CategoryUncategorized))); diff != "" {
		t.Fatalf("uncategorized (-want +got):\n%s", diff)
	}
	if got := len(ByCategory(c, CategoryAll)); got != 4 {
		t.Fatalf("all: got %d", got)
	}
	if diff := cmp.Diff([]string{"bosses", "shops"}, Categories(c)); diff != "" {
		t.Fatalf("categories (-want +got):\n%s", diff)
	}

	_ = c.MarkLoaded("c")
	if n := c.RemoveMany([]string{"a", "c", "missing"}); n != 2 {
		t.Fatalf("removed %d", n)
	}
	if diff := cmp.Diff([]string{"b", "d"}, ids(c.All())); diff != "" {
		t.Fatalf("after bulk remove (-want +got):\n%s", diff)
	}
	if got, _ := c.Latest(); got.ID != "d" {
		t.Fatalf("sticky pointer survived bulk removal: %q", got.ID)
	}
}

func TestLibraryPersistsBothCollections(t *testing.T) {
	var saved []Document
	l := NewLibrary(func(d Document) error {
		saved = append(saved, d)
		return nil
	})
	l.Load(Document{FieldStates: []FieldState{{ID: "f1"}}})
	if len(saved) != 0 {
		t.Fatalf("Load must not persist")
	}

	l.Snowboards.Add(SnowboardState{ID: "s1"})
	l.Fields.Add(FieldState{ID: "f2"})

	last := saved[len(saved)-1]
	if diff := cmp.Diff([]string{"f1", "f2"}, ids(last.FieldStates)); diff != "" {
		t.Fatalf("field states (-want +got):\n%s", diff)
	}
	if len(last.SnowboardStates) != 1 || last.SnowboardStates[0].ID != "s1" {
		t.Fatalf("snowboard states: %+v", last.SnowboardStates)
	}
}
