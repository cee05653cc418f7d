// internal/decoder/decodertest/target.go
package decodertest

import (
	"encoding/binary"
	"math"

	"github.com/tamzrod/ff7-replicator/internal/ff7"
	"github.com/tamzrod/ff7-replicator/internal/memory"
)

// Pointer targets used by NewTarget.
const (
	FieldModelsAddr uint32 = 0x02000000
	WorldModelAddr  uint32 = 0x02100000
	FFnxBase        uint32 = 0x03000000
	FFnxFPS30Addr   uint32 = 0x03100000
	FFnxFPS15Addr   uint32 = 0x03100010
)

// Target is a memory.Space laid out like the game executable, with helpers
// to poke the scalars tests care about. It starts in the field module at
// normal speed with no patches applied.
type Target struct {
	*memory.Space
}

func NewTarget() *Target {
	s := memory.NewSpace()

	s.Map(ff7.AddrCurrentModule, 2)
	s.Map(ff7.AddrFieldMovementDisabled, int(ff7.AddrFieldName+ff7.FieldNameSize-ff7.AddrFieldMovementDisabled))
	s.Map(ff7.AddrBattleATB, int(ff7.AddrAllyLimit+ff7.BattleAllySlots*ff7.AllyLimitStride-ff7.AddrBattleATB))
	s.Map(ff7.AddrEnemyAttackName, ff7.EnemyAttackCount*ff7.EnemyAttackNameSize)
	s.Map(ff7.AddrBattleID, int(ff7.AddrBattleChars+ff7.BattleSlots*ff7.BattleCharStride-ff7.AddrBattleID))
	s.Map(ff7.AddrSavemap, ff7.SavemapSize)
	s.Map(ff7.AddrGameObjPtr, 4)
	s.Map(ff7.AddrFieldFPS, 8)
	s.Map(ff7.AddrWorldFPS, 8)
	s.Map(ff7.AddrFieldModelsPtr, 8)
	s.Map(ff7.AddrWorldCurrentObjPtr, 4)
	s.Map(FieldModelsAddr, ff7.MaxFieldModels*ff7.FieldModelStride)
	s.Map(WorldModelAddr, ff7.WorldModelSize)
	s.Map(ff7.AddrCommandNames, ff7.CommandNamesSize)
	s.Map(ff7.AddrItemNames, ff7.ItemNamesSize)
	s.Map(ff7.AddrMateriaNames, ff7.MateriaNamesSize)
	s.Map(ff7.AddrSnowboardGlobalObj, ff7.SnowboardGlobalObjSize)
	s.Map(ff7.AddrSnowboardEntities, ff7.SnowboardEntitiesSize)

	// code pages holding signature and patch sites
	s.Map(ff7.AddrBattleSwirlOther, 0x200)
	s.Map(ff7.AddrFFnxCheck-5, 0x10)
	s.Map(ff7.AddrBattleFPSInit, 8)
	s.Map(ff7.AddrInstantATBCheck, 0x10)
	s.Map(ff7.AddrFieldBattleCheck, 8)
	s.Map(ff7.AddrFieldFPSInit, 8)
	s.Map(ff7.AddrUnfocusPatchCheck, 1)
	s.Map(ff7.AddrWorldFPSInit, 8)
	s.Map(ff7.AddrWorldBattleFlag, 1)
	s.Map(ff7.AddrWorldBattleEnable, 1)

	s.Map(FFnxBase, 0x100)
	s.Map(FFnxFPS30Addr, 0x20)

	t := &Target{Space: s}
	t.SetModule(ff7.ModuleField)
	t.SetTimers(30, 15, 30)
	t.Put(ff7.AddrFieldBattleCheck, 0x0F, 0x83, 0xDF, 0x02, 0x00, 0x00)
	t.Put(ff7.AddrBattleSwirlCheck, 0x4E)
	t.Put(ff7.AddrBattleSwirlOther, 0x2E)
	t.Put(ff7.AddrInstantATBCheck, 0x66, 0x8B, 0x0D, 0x00, 0xAD, 0x9A, 0x00, 0x99, 0xF7, 0xF9)
	t.Put(ff7.AddrFFnxCheck, 0x8B)

	// empty party slots
	t.Put(ff7.AddrPartyMemberIDs, 0xFF, 0xFF, 0xFF)
	return t
}

// Put writes raw bytes, panicking on unmapped addresses.
func (t *Target) Put(addr uint32, b ...byte) {
	if err := t.WriteBuffer(addr, b); err != nil {
		panic(err)
	}
}

func (t *Target) Put16(addr uint32, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	t.Put(addr, b[:]...)
}

func (t *Target) Put32(addr uint32, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	t.Put(addr, b[:]...)
}

func (t *Target) PutFloat(addr uint32, v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	t.Put(addr, b[:]...)
}

func (t *Target) SetModule(m ff7.Module) { t.Put16(ff7.AddrCurrentModule, uint16(m)) }
func (t *Target) SetBattleID(id uint16)  { t.Put16(ff7.AddrBattleID, id) }
func (t *Target) SetFieldID(id uint16)   { t.Put16(ff7.AddrFieldID, id) }

// SetTimers sets the built-in frame timers to run at the given rates.
func (t *Target) SetTimers(field, battle, world float64) {
	t.PutFloat(ff7.AddrFieldFPS, 10_000_000/field)
	t.PutFloat(ff7.AddrBattleFPS, 10_000_000/battle)
	t.PutFloat(ff7.AddrWorldFPS, 10_000_000/world)
}

// SetActor populates battle slot i (0-3 allies, 4-9 enemies).
func (t *Target) SetActor(i int, maxHP uint32, status uint32) {
	base := ff7.AddrBattleChars + uint32(i*ff7.BattleCharStride)
	t.Put32(base+ff7.BattleCharMaxHP, maxHP)
	t.Put32(base+ff7.BattleCharHP, maxHP)
	t.Put32(base+ff7.BattleCharStatus, status)
}

// SetStatus changes only the status word of slot i.
func (t *Target) SetStatus(i int, status uint32) {
	t.Put32(ff7.AddrBattleChars+uint32(i*ff7.BattleCharStride)+ff7.BattleCharStatus, status)
}

// SetFieldModels points the model table at FieldModelsAddr with n entries.
func (t *Target) SetFieldModels(n uint16) {
	t.Put32(ff7.AddrFieldModelsPtr, FieldModelsAddr)
	t.Put16(ff7.AddrFieldNumModels, n)
}

// SetWorldModel points the current world object at WorldModelAddr.
func (t *Target) SetWorldModel(packed byte) {
	t.Put32(ff7.AddrWorldCurrentObjPtr, WorldModelAddr)
	t.Put(WorldModelAddr+ff7.WorldModelWalkmesh, packed)
}

// EnableFFnx installs the FFnx jump and limiter pointers with the given
// frame rate targets.
func (t *Target) EnableFFnx(fps30, fps15 float64) {
	t.Put(ff7.AddrFFnxCheck, ff7.FFnxJumpOpcode)
	t.Put32(ff7.AddrFFnxCheck+1, FFnxBase-ff7.FFnxJumpBase)
	t.Put32(FFnxBase+ff7.FFnxFPS30Offset, FFnxFPS30Addr)
	t.Put32(FFnxBase+ff7.FFnxFPS15Offset, FFnxFPS15Addr)
	t.PutFloat(FFnxFPS30Addr, fps30)
	t.PutFloat(FFnxFPS15Addr, fps15)
}
