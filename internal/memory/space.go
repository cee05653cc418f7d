// internal/memory/space.go
package memory

import (
	"fmt"
	"sort"
	"sync"
)

// Space is an in-process address space made of mapped segments.
// It implements Accessor and Protector and counts calls, which makes it the
// stand-in target for tests and offline tooling.
type Space struct {
	mu       sync.Mutex
	segments []segment

	reads  int
	writes int

	// FailReads, when set, makes every read fail as if the target exited.
	FailReads bool
}

type segment struct {
	start uint32
	data  []byte
}

func NewSpace() *Space {
	return &Space{}
}

// Map adds a zero-filled segment. Overlapping segments are not merged; the
// first segment containing an address wins.
func (s *Space) Map(addr uint32, size int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.segments = append(s.segments, segment{start: addr, data: make([]byte, size)})
	sort.SliceStable(s.segments, func(i, j int) bool {
		return s.segments[i].start < s.segments[j].start
	})
}

// Load maps a segment holding a copy of b.
func (s *Space) Load(addr uint32, b []byte) {
	s.Map(addr, len(b))
	_ = s.poke(addr, b)
}

func (s *Space) ReadBuffer(addr uint32, n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	if s.FailReads {
		return nil, ErrProcessNotOpen
	}
	seg, off, err := s.find(addr, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, seg.data[off:off+n])
	return out, nil
}

func (s *Space) WriteBuffer(addr uint32, b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes++
	seg, off, err := s.find(addr, len(b))
	if err != nil {
		return err
	}
	copy(seg.data[off:], b)
	return nil
}

// Unprotect is a no-op: every mapped segment is writable.
func (s *Space) Unprotect(addr uint32, size int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _, err := s.find(addr, size)
	return err
}

// Reads returns the number of ReadBuffer calls observed.
func (s *Space) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Writes returns the number of WriteBuffer calls observed.
func (s *Space) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Space) poke(addr uint32, b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seg, off, err := s.find(addr, len(b))
	if err != nil {
		return err
	}
	copy(seg.data[off:], b)
	return nil
}

// find must be called with mu held.
func (s *Space) find(addr uint32, n int) (*segment, int, error) {
	end := uint64(addr) + uint64(n)
	for i := range s.segments {
		seg := &s.segments[i]
		segEnd := uint64(seg.start) + uint64(len(seg.data))
		if addr >= seg.start && end <= segEnd {
			return seg, int(addr - seg.start), nil
		}
	}
	return nil, 0, fmt.Errorf("memory: 0x%x+%d: %w", addr, n, ErrAddressNotMapped)
}
