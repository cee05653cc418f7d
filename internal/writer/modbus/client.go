// internal/writer/modbus/client.go
package modbus

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// MaxRegistersPerWrite is the FC16 quantity limit.
const MaxRegistersPerWrite = 123

var (
	ErrNoEndpoint = errors.New("writer modbus: endpoint required")
	ErrTooMany    = errors.New("writer modbus: too many registers for one write")
)

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Link carries status block writes to one Modbus TCP endpoint.
// Writes are serialized because the unit id lives on the shared handler.
// A failed write drops the connection; the next write dials again.
type Link struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

// Dial connects eagerly so a wrong endpoint fails at startup.
func Dial(cfg Config) (*Link, error) {
	if cfg.Endpoint == "" {
		return nil, ErrNoEndpoint
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("writer modbus: dial %s: %w", cfg.Endpoint, err)
	}
	return &Link{handler: h, client: modbus.NewClient(h)}, nil
}

func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handler.Close()
}

// WriteRegisters writes a run of holding registers at addr.
func (l *Link) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	switch {
	case len(regs) == 0:
		return nil
	case len(regs) > MaxRegistersPerWrite:
		return fmt.Errorf("%w: %d", ErrTooMany, len(regs))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.handler.SlaveId = unitID
	if _, err := l.client.WriteMultipleRegisters(addr, uint16(len(regs)), registerBytes(regs)); err != nil {
		_ = l.handler.Close()
		return fmt.Errorf("writer modbus: write %d@%d unit=%d: %w", len(regs), addr, unitID, err)
	}
	return nil
}

// registerBytes lays registers out big-endian, as they travel on the wire.
func registerBytes(regs []uint16) []byte {
	b := make([]byte, 2*len(regs))
	for i, r := range regs {
		binary.BigEndian.PutUint16(b[2*i:], r)
	}
	return b
}
