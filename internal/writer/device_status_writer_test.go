// internal/writer/device_status_writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/tamzrod/ff7-replicator/internal/status"
)

// ---- fake endpoint client ----

type writeCall struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

type fakeEndpointClient struct {
	writes []writeCall
	fail   error

	lastRegsAddr uint16
	lastRegs     []uint16
}

func (f *fakeEndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if f.fail != nil {
		return f.fail
	}
	f.writes = append(f.writes, writeCall{unitID: unitID, addr: addr, regs: append([]uint16(nil), regs...)})
	f.lastRegsAddr = addr
	f.lastRegs = append([]uint16(nil), regs...)
	return nil
}

func testPlan() StatusPlan {
	return StatusPlan{
		Endpoint:   "status-endpoint",
		UnitID:     1,
		BaseSlot:   2,
		DeviceName: "FF7-01",
	}
}

// ---- tests ----

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := testPlan()
	sw := NewDeviceStatusWriter(plan, cli)

	// ---- first write: FULL ASSERT ----
	first := status.Snapshot{Health: status.HealthOK, Module: 1, FieldID: 117}

	if err := sw.WriteStatus(first); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	// Expect full block
	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf(
			"expected full block write (%d regs), got %d",
			status.SlotsPerDevice,
			len(cli.lastRegs),
		)
	}
	if cli.lastRegsAddr != plan.BaseSlot*status.SlotsPerDevice {
		t.Fatalf("full block addr=%d, want %d", cli.lastRegsAddr, plan.BaseSlot*status.SlotsPerDevice)
	}
	if cli.lastRegs[status.SlotFieldID] != 117 {
		t.Fatalf("field id slot=%d, want 117", cli.lastRegs[status.SlotFieldID])
	}

	// Verify device name encoding EXACTLY
	expectedNameRegs := encodeDeviceNameRegs(plan.DeviceName)

	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if cli.lastRegs[slot] != expectedNameRegs[i] {
			t.Fatalf(
				"device name slot %d mismatch: got=%d want=%d",
				slot,
				cli.lastRegs[slot],
				expectedNameRegs[i],
			)
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	second := first
	second.FieldID = 118

	if err := sw.WriteStatus(second); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	if len(cli.writes) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(cli.writes))
	}
	if len(cli.lastRegs) != 1 || cli.lastRegsAddr != plan.BaseSlot*status.SlotsPerDevice+status.SlotFieldID {
		t.Fatalf("unexpected incremental write: addr=%d regs=%v", cli.lastRegsAddr, cli.lastRegs)
	}
}

func TestUnchangedSnapshotWritesNothing(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewDeviceStatusWriter(testPlan(), cli)

	s := status.Snapshot{Health: status.HealthOK}
	_ = sw.WriteStatus(s)
	_ = sw.WriteStatus(s)

	if len(cli.writes) != 1 {
		t.Fatalf("expected only the full assert, got %d writes", len(cli.writes))
	}
}

func TestSecondsInErrorResetOnRecovery(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := testPlan()
	sw := NewDeviceStatusWriter(plan, cli)

	// simulate ERROR
	errSnap := status.Snapshot{
		Health:         status.HealthError,
		LastErrorCode:  status.CodeProcessMissing,
		SecondsInError: 3,
	}

	if err := sw.WriteStatus(errSnap); err != nil {
		t.Fatalf("error snapshot write failed: %v", err)
	}

	// simulate recovery: health, error code and seconds all change
	okSnap := status.Snapshot{Health: status.HealthOK}

	if err := sw.WriteStatus(okSnap); err != nil {
		t.Fatalf("recovery snapshot write failed: %v", err)
	}

	expectedAddr := plan.BaseSlot*status.SlotsPerDevice + status.SlotSecondsInError

	if cli.lastRegsAddr != expectedAddr {
		t.Fatalf("unexpected write addr: got=%d want=%d", cli.lastRegsAddr, expectedAddr)
	}

	if len(cli.lastRegs) != 1 {
		t.Fatalf("expected 1 register write, got %d", len(cli.lastRegs))
	}

	if cli.lastRegs[0] != 0 {
		t.Fatalf("seconds_in_error not reset: got=%d want=0", cli.lastRegs[0])
	}
}

func TestFailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewDeviceStatusWriter(testPlan(), cli)

	_ = sw.WriteStatus(status.Snapshot{Health: status.HealthOK})

	cli.fail = errors.New("connection reset")
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError}); err == nil {
		t.Fatal("expected error")
	}

	cli.fail = nil
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, SecondsInError: 1}); err != nil {
		t.Fatalf("recovery write failed: %v", err)
	}
	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full block after failure, got %d regs", len(cli.lastRegs))
	}
}

func TestMissingClient(t *testing.T) {
	sw := NewDeviceStatusWriter(testPlan(), nil)
	if err := sw.WriteStatus(status.Snapshot{}); err == nil {
		t.Fatal("expected error for missing client")
	}
}

func TestEncodeDeviceNameRegs(t *testing.T) {
	regs := encodeDeviceNameRegs("AB\x01CDEFGHIJKLMNOPQRS")
	if regs[0] != uint16('A')<<8|uint16('B') {
		t.Fatalf("reg0=0x%x", regs[0])
	}
	if regs[1] != uint16('?')<<8|uint16('C') {
		t.Fatalf("control char not sanitized: 0x%x", regs[1])
	}
	if regs[7] != uint16('N')<<8|uint16('O') {
		t.Fatalf("not truncated at 16 chars: 0x%x", regs[7])
	}
}
