// internal/battlelog/sink.go
package battlelog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// Journal appends events as JSON lines.
type Journal struct {
	mu  sync.Mutex
	w   io.Writer
	enc *json.Encoder
	c   io.Closer
}

func NewJournal(w io.Writer) *Journal {
	return &Journal{w: w, enc: json.NewEncoder(w)}
}

// OpenJournal opens path for appending, creating it if needed.
func OpenJournal(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("battlelog: open journal: %w", err)
	}
	j := NewJournal(f)
	j.c = f
	return j, nil
}

func (j *Journal) Append(ev Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enc.Encode(ev)
}

func (j *Journal) Close() error {
	if j.c == nil {
		return nil
	}
	return j.c.Close()
}

// Memory keeps events in order, for tests and in-process consumers.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Append(ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Multi fans one event out to several sinks. Every sink is attempted.
type Multi []Sink

func (ms Multi) Append(ev Event) error {
	var first error
	for _, s := range ms {
		if err := s.Append(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
