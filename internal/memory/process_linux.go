// internal/memory/process_linux.go
//go:build linux

package memory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Process reads and writes another process's memory through
// process_vm_readv/process_vm_writev. Targets running under Wine or Proton
// show up as ordinary Linux processes.
type Process struct {
	pid  int
	name string
}

// OpenProcess finds the first process whose executable name matches name.
func OpenProcess(name string) (*Process, error) {
	if name == "" {
		return nil, errors.New("memory: process name required")
	}
	pid, err := findPID(name)
	if err != nil {
		return nil, err
	}
	return &Process{pid: pid, name: name}, nil
}

// PID returns the process id of the opened target.
func (p *Process) PID() int {
	if p == nil {
		return 0
	}
	return p.pid
}

func (p *Process) Close() error {
	if p != nil {
		p.pid = 0
	}
	return nil
}

func (p *Process) ReadBuffer(addr uint32, n int) ([]byte, error) {
	if p == nil || p.pid == 0 {
		return nil, ErrProcessNotOpen
	}
	out := make([]byte, n)
	if n == 0 {
		return out, nil
	}

	local := []unix.Iovec{{Base: &out[0]}}
	local[0].SetLen(n)
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: n}}

	got, err := unix.ProcessVMReadv(p.pid, local, remote, 0)
	if err != nil {
		return nil, p.wrap("read", addr, n, err)
	}
	if got != n {
		return nil, fmt.Errorf("memory: read 0x%x: %w (got=%d want=%d)", addr, ErrShortRead, got, n)
	}
	return out, nil
}

func (p *Process) WriteBuffer(addr uint32, b []byte) error {
	if p == nil || p.pid == 0 {
		return ErrProcessNotOpen
	}
	if len(b) == 0 {
		return nil
	}

	local := []unix.Iovec{{Base: &b[0]}}
	local[0].SetLen(len(b))
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: len(b)}}

	got, err := unix.ProcessVMWritev(p.pid, local, remote, 0)
	if err != nil {
		return p.wrap("write", addr, len(b), err)
	}
	if got != len(b) {
		return fmt.Errorf("memory: write 0x%x: %w (got=%d want=%d)", addr, ErrShortRead, got, len(b))
	}
	return nil
}

func (p *Process) wrap(op string, addr uint32, n int, err error) error {
	switch {
	case errors.Is(err, unix.EFAULT):
		return fmt.Errorf("memory: %s 0x%x+%d: %w", op, addr, n, ErrAddressNotMapped)
	case errors.Is(err, unix.ESRCH):
		return fmt.Errorf("memory: %s pid=%d: %w", op, p.pid, ErrProcessNotOpen)
	default:
		return fmt.Errorf("memory: %s 0x%x+%d: %w", op, addr, n, err)
	}
}

// findPID scans /proc. comm is truncated to 15 bytes by the kernel, so the
// argv[0] basename is checked as well (Wine reports a Windows path there).
func findPID(name string) (int, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return 0, fmt.Errorf("memory: scan /proc: %w", err)
	}

	want := strings.ToLower(name)
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil || !e.IsDir() {
			continue
		}
		if matchesComm(pid, want) || matchesCmdline(pid, want) {
			return pid, nil
		}
	}
	return 0, fmt.Errorf("memory: %q: %w", name, ErrProcessNotFound)
}

func matchesComm(pid int, want string) bool {
	b, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "comm"))
	if err != nil {
		return false
	}
	comm := strings.ToLower(strings.TrimSpace(string(b)))
	if len(want) > 15 {
		return comm == want[:15]
	}
	return comm == want
}

func matchesCmdline(pid int, want string) bool {
	b, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "cmdline"))
	if err != nil || len(b) == 0 {
		return false
	}
	argv0 := string(b)
	if i := strings.IndexByte(argv0, 0); i >= 0 {
		argv0 = argv0[:i]
	}
	argv0 = strings.ReplaceAll(argv0, "\\", "/")
	return strings.ToLower(filepath.Base(argv0)) == want
}
