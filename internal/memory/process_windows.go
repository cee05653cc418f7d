// internal/memory/process_windows.go
//go:build windows

package memory

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

const processAccess = windows.PROCESS_VM_READ |
	windows.PROCESS_VM_WRITE |
	windows.PROCESS_VM_OPERATION |
	windows.PROCESS_QUERY_INFORMATION

// Process reads and writes another process's memory through
// ReadProcessMemory/WriteProcessMemory.
type Process struct {
	pid    uint32
	handle windows.Handle
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
	h, err := windows.OpenProcess(processAccess, false, pid)
	if err != nil {
		return nil, fmt.Errorf("memory: open pid=%d: %w", pid, err)
	}
	return &Process{pid: pid, handle: h}, nil
}

// PID returns the process id of the opened target.
func (p *Process) PID() int {
	if p == nil {
		return 0
	}
	return int(p.pid)
}

func (p *Process) Close() error {
	if p == nil || p.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(p.handle)
	p.handle = 0
	return err
}

func (p *Process) ReadBuffer(addr uint32, n int) ([]byte, error) {
	if p == nil || p.handle == 0 {
		return nil, ErrProcessNotOpen
	}
	out := make([]byte, n)
	if n == 0 {
		return out, nil
	}
	var got uintptr
	if err := windows.ReadProcessMemory(p.handle, uintptr(addr), &out[0], uintptr(n), &got); err != nil {
		return nil, p.wrap("read", addr, n, err)
	}
	if int(got) != n {
		return nil, fmt.Errorf("memory: read 0x%x: %w (got=%d want=%d)", addr, ErrShortRead, got, n)
	}
	return out, nil
}

func (p *Process) WriteBuffer(addr uint32, b []byte) error {
	if p == nil || p.handle == 0 {
		return ErrProcessNotOpen
	}
	if len(b) == 0 {
		return nil
	}
	var got uintptr
	if err := windows.WriteProcessMemory(p.handle, uintptr(addr), &b[0], uintptr(len(b)), &got); err != nil {
		return p.wrap("write", addr, len(b), err)
	}
	if int(got) != len(b) {
		return fmt.Errorf("memory: write 0x%x: %w (got=%d want=%d)", addr, ErrShortRead, got, len(b))
	}
	return nil
}

// Unprotect marks the range PAGE_EXECUTE_READWRITE.
func (p *Process) Unprotect(addr uint32, size int) error {
	if p == nil || p.handle == 0 {
		return ErrProcessNotOpen
	}
	var old uint32
	if err := windows.VirtualProtectEx(p.handle, uintptr(addr), uintptr(size), windows.PAGE_EXECUTE_READWRITE, &old); err != nil {
		return fmt.Errorf("memory: protect 0x%x+%d: %w", addr, size, err)
	}
	return nil
}

func (p *Process) wrap(op string, addr uint32, n int, err error) error {
	if errors.Is(err, windows.ERROR_PARTIAL_COPY) || errors.Is(err, windows.ERROR_NOACCESS) {
		return fmt.Errorf("memory: %s 0x%x+%d: %w", op, addr, n, ErrAddressNotMapped)
	}
	return fmt.Errorf("memory: %s 0x%x+%d: %w", op, addr, n, err)
}

func findPID(name string) (uint32, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return 0, fmt.Errorf("memory: process snapshot: %w", err)
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	if err := windows.Process32First(snap, &entry); err != nil {
		return 0, fmt.Errorf("memory: process snapshot: %w", err)
	}
	for {
		if strings.EqualFold(windows.UTF16ToString(entry.ExeFile[:]), name) {
			return entry.ProcessID, nil
		}
		if err := windows.Process32Next(snap, &entry); err != nil {
			break
		}
	}
	return 0, fmt.Errorf("memory: %q: %w", name, ErrProcessNotFound)
}
