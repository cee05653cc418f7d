// internal/memory/accessor.go
package memory

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrProcessNotFound is returned when no running process matches the configured name.
	ErrProcessNotFound = errors.New("process not found")

	// ErrProcessNotOpen is returned when an operation is attempted on a closed handle.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrAddressNotMapped is returned when a read or write touches memory the target does not map.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrShortRead is returned when fewer bytes than requested were transferred.
	ErrShortRead = errors.New("short read")
)

// Accessor is the raw memory capability the core depends on.
// Geometry only: addresses and byte blocks, no semantics.
type Accessor interface {
	ReadBuffer(addr uint32, n int) ([]byte, error)
	WriteBuffer(addr uint32, b []byte) error
}

// Protector is implemented by accessors that can make a page range writable.
// Not every backend supports it.
type Protector interface {
	Unprotect(addr uint32, size int) error
}

// Opener returns a fresh accessor. ONE attempt per call.
type Opener func() (Accessor, error)

// Close releases the accessor if it holds OS resources.
func Close(acc Accessor) error {
	if c, ok := acc.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// ---- typed reads (little-endian, target is x86) ----

func ReadByte(acc Accessor, addr uint32) (uint8, error) {
	b, err := readExact(acc, addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func ReadShort(acc Accessor, addr uint32) (uint16, error) {
	b, err := readExact(acc, addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func ReadInt(acc Accessor, addr uint32) (uint32, error) {
	b, err := readExact(acc, addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadFloat reads an IEEE-754 double. The target keeps its frame timers as doubles.
func ReadFloat(acc Accessor, addr uint32) (float64, error) {
	b, err := readExact(acc, addr, 8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// ---- typed writes ----

func WriteByte(acc Accessor, addr uint32, v uint8) error {
	return acc.WriteBuffer(addr, []byte{v})
}

func WriteShort(acc Accessor, addr uint32, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return acc.WriteBuffer(addr, b[:])
}

func WriteInt(acc Accessor, addr uint32, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return acc.WriteBuffer(addr, b[:])
}

func WriteFloat(acc Accessor, addr uint32, v float64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	return acc.WriteBuffer(addr, b[:])
}

func readExact(acc Accessor, addr uint32, n int) ([]byte, error) {
	if acc == nil {
		return nil, ErrProcessNotOpen
	}
	b, err := acc.ReadBuffer(addr, n)
	if err != nil {
		return nil, err
	}
	if len(b) != n {
		return nil, fmt.Errorf("memory: read 0x%x: %w (got=%d want=%d)", addr, ErrShortRead, len(b), n)
	}
	return b, nil
}
