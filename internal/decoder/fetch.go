// internal/decoder/fetch.go
package decoder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/tamzrod/ff7-replicator/internal/ff7"
	"github.com/tamzrod/ff7-replicator/internal/memory"
)

// Block bounds. Each block is one accessor call.
const (
	fieldBlockStart uint32 = ff7.AddrFieldMovementDisabled
	fieldBlockEnd   uint32 = ff7.AddrFieldName + ff7.FieldNameSize
	fieldBlockSize         = int(fieldBlockEnd - fieldBlockStart)

	battleBlockStart uint32 = ff7.AddrBattleID
	battleBlockEnd   uint32 = ff7.AddrBattleChars + ff7.BattleSlots*ff7.BattleCharStride
	battleBlockSize         = int(battleBlockEnd - battleBlockStart)

	battleAuxStart uint32 = ff7.AddrBattleATB
	battleAuxEnd   uint32 = ff7.AddrAllyLimit + ff7.BattleAllySlots*ff7.AllyLimitStride
	battleAuxSize         = int(battleAuxEnd - battleAuxStart)

	fieldModelsHeaderSize = 8
)

// Fetch is the bulk endpoint: it pulls everything Decode needs with a small,
// bounded number of accessor calls. Any failure on a primary block is
// returned; secondary reads degrade to nil.
func Fetch(acc memory.Accessor, sigs Signatures) (*Raw, error) {
	module, err := memory.ReadShort(acc, ff7.AddrCurrentModule)
	if err != nil {
		return nil, fmt.Errorf("decoder: read module: %w", err)
	}
	if ff7.Module(module) == ff7.ModuleNone {
		return nil, ErrNoModule
	}

	raw := &Raw{Module: module}

	var errs []error
	read := func(name string, addr uint32, n int) []byte {
		b, err := acc.ReadBuffer(addr, n)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return nil
		}
		return b
	}

	raw.FieldBlock = read("field", fieldBlockStart, fieldBlockSize)
	raw.BattleBlock = read("battle", battleBlockStart, battleBlockSize)
	raw.BattleAuxBlock = read("battle aux", battleAuxStart, battleAuxSize)
	raw.Savemap = read("savemap", ff7.AddrSavemap, ff7.SavemapSize)

	scalars := read("game object", ff7.AddrGameObjPtr, 4)
	fieldTimer := read("field fps", ff7.AddrFieldFPS, 8)
	worldTimer := read("world fps", ff7.AddrWorldFPS, 8)
	modelsHeader := read("field models", ff7.AddrFieldModelsPtr, fieldModelsHeaderSize)
	worldPtr := read("world object", ff7.AddrWorldCurrentObjPtr, 4)

	probes := sigs.Probes()
	raw.Probes = make(map[uint32][]byte, len(probes))
	for _, addr := range sortedAddrs(probes) {
		if b := read("signature", addr, probes[addr]); b != nil {
			raw.Probes[addr] = b
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("decoder: fetch: %w", errors.Join(errs...))
	}

	raw.GameObjPtr = binary.LittleEndian.Uint32(scalars)
	raw.FieldTimer = float64le(fieldTimer)
	raw.WorldTimer = float64le(worldTimer)

	// Field models hang off a pointer; the count is clamped, not trusted.
	modelsPtr := binary.LittleEndian.Uint32(modelsHeader[0:4])
	count := binary.LittleEndian.Uint16(modelsHeader[ff7.AddrFieldNumModels-ff7.AddrFieldModelsPtr:])
	if count > ff7.MaxFieldModels {
		count = ff7.MaxFieldModels
	}
	if modelsPtr != 0 && count > 0 {
		b, err := acc.ReadBuffer(modelsPtr, int(count)*ff7.FieldModelStride)
		if err != nil {
			return nil, fmt.Errorf("decoder: fetch field models: %w", err)
		}
		raw.FieldModelCount = count
		raw.FieldModels = b
	}

	if p := binary.LittleEndian.Uint32(worldPtr); p != 0 {
		b, err := acc.ReadBuffer(p, ff7.WorldModelSize)
		if err != nil {
			return nil, fmt.Errorf("decoder: fetch world model: %w", err)
		}
		raw.WorldModel = b
	}

	raw.Chocobos = fetchChocobos(acc)

	if probe := raw.Probes[ff7.AddrFFnxCheck]; len(probe) > 0 && probe[0] == ff7.FFnxJumpOpcode {
		raw.FFnx = fetchFFnx(acc)
	}

	return raw, nil
}

func fetchChocobos(acc memory.Accessor) *RawChocobos {
	stables, err := acc.ReadBuffer(ff7.AddrChocoboStablesOwned, 3)
	if err != nil {
		log.Printf("decoder: chocobo read failed (err=%v)", err)
		return nil
	}
	low, err := acc.ReadBuffer(ff7.AddrChocoboSlotsLow, 4*ff7.ChocoboSlotSize)
	if err != nil {
		log.Printf("decoder: chocobo read failed (err=%v)", err)
		return nil
	}
	high, err := acc.ReadBuffer(ff7.AddrChocoboSlotsHigh, 2*ff7.ChocoboSlotSize)
	if err != nil {
		log.Printf("decoder: chocobo read failed (err=%v)", err)
		return nil
	}
	names, err := acc.ReadBuffer(ff7.AddrChocoboNames, ff7.ChocoboStableSlots*ff7.ChocoboNameSize)
	if err != nil {
		log.Printf("decoder: chocobo read failed (err=%v)", err)
		return nil
	}
	return &RawChocobos{
		Stables: stables,
		Slots:   append(append([]byte{}, low...), high...),
		Names:   names,
	}
}

// FFnxLimiter resolves the addresses of the FFnx frame limiter targets.
func FFnxLimiter(acc memory.Accessor) (fps30, fps15 uint32, err error) {
	rel, err := memory.ReadInt(acc, ff7.AddrFFnxCheck+1)
	if err != nil {
		return 0, 0, err
	}
	base := rel + ff7.FFnxJumpBase
	if fps30, err = memory.ReadInt(acc, base+ff7.FFnxFPS30Offset); err != nil {
		return 0, 0, err
	}
	if fps15, err = memory.ReadInt(acc, base+ff7.FFnxFPS15Offset); err != nil {
		return 0, 0, err
	}
	return fps30, fps15, nil
}

func fetchFFnx(acc memory.Accessor) *RawFFnx {
	p30, p15, err := FFnxLimiter(acc)
	if err != nil {
		log.Printf("decoder: ffnx limiter lookup failed (err=%v)", err)
		return nil
	}
	fps30, err := memory.ReadFloat(acc, p30)
	if err != nil {
		log.Printf("decoder: ffnx fps read failed (addr=0x%x err=%v)", p30, err)
		return nil
	}
	fps15, err := memory.ReadFloat(acc, p15)
	if err != nil {
		log.Printf("decoder: ffnx fps read failed (addr=0x%x err=%v)", p15, err)
		return nil
	}
	return &RawFFnx{FPS30: fps30, FPS15: fps15}
}

func sortedAddrs(probes map[uint32]int) []uint32 {
	out := make([]uint32, 0, len(probes))
	for addr := range probes {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
