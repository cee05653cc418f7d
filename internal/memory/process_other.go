// internal/memory/process_other.go
//go:build !linux && !windows

package memory

import "errors"

// Process is unavailable on this platform.
type Process struct{}

func OpenProcess(name string) (*Process, error) {
	return nil, errors.New("memory: process backend not supported on this platform")
}

func (p *Process) PID() int { return 0 }

func (p *Process) Close() error { return nil }

func (p *Process) ReadBuffer(addr uint32, n int) ([]byte, error) {
	return nil, ErrProcessNotOpen
}

func (p *Process) WriteBuffer(addr uint32, b []byte) error {
	return ErrProcessNotOpen
}
