// internal/savestate/library.go
package savestate

import "sync"

// Document is the persisted form of both collections.
type Document struct {
	FieldStates     []FieldState     `json:"fieldStates"`
	SnowboardStates []SnowboardState `json:"snowboardStates"`
}

// Library pairs the field and snowboard collections that share one
// persisted document.
type Library struct {
	Fields     *Collection[FieldState]
	Snowboards *Collection[SnowboardState]

	mu   sync.Mutex
	doc  Document
	save func(Document) error
}

// NewLibrary wires both collections to save. save may be nil.
func NewLibrary(save func(Document) error) *Library {
	l := &Library{save: save}
	l.Fields = NewCollection("field states", func(items []FieldState) error {
		return l.persist(func(d *Document) { d.FieldStates = items })
	})
	l.Snowboards = NewCollection("snowboard states", func(items []SnowboardState) error {
		return l.persist(func(d *Document) { d.SnowboardStates = items })
	})
	return l
}

// Load seeds both collections without persisting.
func (l *Library) Load(doc Document) {
	l.mu.Lock()
	l.doc = Document{
		FieldStates:     append([]FieldState(nil), doc.FieldStates...),
		SnowboardStates: append([]SnowboardState(nil), doc.SnowboardStates...),
	}
	l.mu.Unlock()

	l.Fields.Load(doc.FieldStates)
	l.Snowboards.Load(doc.SnowboardStates)
}

// Document returns the current persisted shape.
func (l *Library) Document() Document {
	return Document{FieldStates: l.Fields.All(), SnowboardStates: l.Snowboards.All()}
}

func (l *Library) persist(update func(*Document)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	update(&l.doc)
	if l.save == nil {
		return nil
	}
	return l.save(Document{
		FieldStates:     nonNil(l.doc.FieldStates),
		SnowboardStates: nonNil(l.doc.SnowboardStates),
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
