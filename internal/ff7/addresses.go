// internal/ff7/addresses.go
package ff7

// Addresses of the English PC release (ff7_en.exe, 1.02).
// Protocol-locked: these MUST NOT be configurable.

// ---- basic scalars ----
const (
	AddrCurrentModule          uint32 = 0xCBF9DC
	AddrFieldID                uint32 = 0xCC15D0
	AddrFieldFPS               uint32 = 0xCFF890
	AddrBattleFPS              uint32 = 0x9AB090
	AddrWorldFPS               uint32 = 0xDE6938
	AddrFieldMovementDisabled  uint32 = 0xCC0DBA
	AddrFieldMenuAccessEnabled uint32 = 0xCC0DBC
	AddrGameObjPtr             uint32 = 0xDB2BB8
	AddrStepID                 uint32 = 0xCC165C
	AddrStepFraction           uint32 = 0xCC1664
	AddrDangerValue            uint32 = 0xCC1668
	AddrBattleID               uint32 = 0x9AAD3C
	AddrFieldName              uint32 = 0xCC1EF0
	FieldNameSize                     = 16
)

// ---- savemap ----
// The savemap is read in one block; everything below lives inside it.
const (
	AddrSavemap uint32 = 0xDBFD38
	SavemapSize        = 0x10F4

	AddrCharacterRecords uint32 = 0xDBFD9C
	CharacterRecordSize         = 0x84
	CharacterRecordCount        = 9

	AddrPartyMemberIDs uint32 = 0xDC0230
	PartySize                 = 3

	AddrKeyItems uint32 = 0xDC089C
	KeyItemsSize        = 8

	AddrGil         uint32 = 0xDC08B4
	AddrInGameTime  uint32 = 0xDC08B8
	AddrGameMoment  uint32 = 0xDC08DC
	AddrLovePoints  uint32 = 0xDC08DF
	LovePointsSize         = 4
	AddrBattleCount uint32 = 0xDC08F4
	AddrEscapeCount uint32 = 0xDC08F6
	AddrMenuVisible uint32 = 0xDC08F8
	AddrMenuLocks   uint32 = 0xDC08FA
	AddrGP          uint32 = 0xDC0A26
	AddrDiscID      uint32 = 0xDC0BDC

	AddrPartyLockingMask    uint32 = 0xDC0DDC
	AddrPartyVisibilityMask uint32 = 0xDC0DDE
)

// SavemapOffset converts an absolute savemap address to an offset into the block.
func SavemapOffset(addr uint32) int {
	return int(addr - AddrSavemap)
}

// ---- character record layout (offsets into one record) ----
const (
	RecID        = 0x00
	RecLevel     = 0x01
	RecLimitBar  = 0x0F
	RecName      = 0x10
	RecNameSize  = 12
	RecStatus    = 0x1F
	RecHP        = 0x2C
	RecMP        = 0x30
	RecMaxHP     = 0x38
	RecMaxMP     = 0x3A
	RecExp       = 0x3C
	RecordIDNone = 0xFF
)

// ---- battle actors ----
// Slots 0-3 are allies, 4-9 enemies; one contiguous array.
const (
	AddrBattleChars     uint32 = 0x9AB0DC
	BattleCharStride           = 0x68
	BattleSlots                = 10
	BattleAllySlots            = 4
	BattleEnemySlots           = 6
	BattleCharStatus           = 0x00
	BattleCharFlags            = 0x05
	BattleCharSceneID          = 0x08
	BattleCharMP               = 0x28
	BattleCharMaxMP            = 0x2A
	BattleCharHP               = 0x2C
	BattleCharMaxHP            = 0x30
	AddrBattleATB       uint32 = 0x9A8B12
	BattleATBStride            = 0x44
	AddrAllyLimit       uint32 = 0x9A8DC2
	AllyLimitStride            = 0x34
	AddrEnemyAttackName uint32 = 0x9A90C4
	EnemyAttackNameSize        = 0x20
	EnemyAttackCount           = 32
)

// ---- field models ----
const (
	AddrFieldModelsPtr  uint32 = 0xCFF738
	AddrFieldNumModels  uint32 = 0xCFF73E
	FieldModelStride           = 400
	FieldModelX                = 0x04
	FieldModelY                = 0x08
	FieldModelZ                = 0x0C
	FieldModelDirection        = 0x1C
	MaxFieldModels             = 32
)

// ---- world ----
const (
	AddrWorldCurrentObjPtr uint32 = 0xE3A7D0
	WorldModelSize                = 0x58
	WorldModelX                   = 0x00
	WorldModelY                   = 0x04
	WorldModelZ                   = 0x08
	WorldModelDirection           = 0x40
	WorldModelID                  = 0x50
	WorldModelWalkmesh            = 0x51
	WorldModelLocation            = 0x52
)

// ---- chocobos (secondary, tolerant fetch) ----
const (
	AddrChocoboStablesOwned uint32 = 0xDC0C2F
	AddrChocoboOccupiedMask uint32 = 0xDC0C30
	AddrChocoboCantMateMask uint32 = 0xDC0C31
	AddrChocoboSlotsLow     uint32 = 0xDC0AFC
	AddrChocoboSlotsHigh    uint32 = 0xDC0DBC
	ChocoboSlotSize                = 0x10
	ChocoboStableSlots             = 6
	AddrChocoboNames        uint32 = 0xDC0D24
	ChocoboNameSize                = 6
)

// ---- FFnx detection ----
const (
	AddrFFnxCheck    uint32 = 0x41B965
	FFnxJumpOpcode   byte   = 0xE9
	FFnxJumpBase     uint32 = 0x41B96A
	FFnxFPS30Offset  uint32 = 0x0A
	FFnxFPS15Offset  uint32 = 0xA6
	FFnxProtectRange        = 16
)

// ---- patch sites ----
const (
	AddrFieldBattleCheck  uint32 = 0x60B40A
	AddrWorldBattleEnable uint32 = 0x767758
	AddrWorldBattleFlag   uint32 = 0x7675F6
	AddrBattleSwirlCheck  uint32 = 0x4027E5
	AddrBattleSwirlOther  uint32 = 0x402712
	AddrInstantATBCheck   uint32 = 0x433ABD
	AddrUnfocusPatchCheck uint32 = 0x74A561
	AddrGfxFunctionsOff   uint32 = 0x934
	AddrGfxFlipSlot       uint32 = 0x4
	AddrGfxFlipRetOff     uint32 = 0x260
	AddrGameTickFnOff     uint32 = 0xA00
	GameTickFnCodeLimit   uint32 = 0xFFFFFF
	AddrFieldFPSInit      uint32 = 0x60E434
	AddrWorldFPSInit      uint32 = 0x74BD02
	AddrBattleFPSInit     uint32 = 0x41B6D8
)

// ---- reference tables ----
const (
	AddrCommandNames uint32 = 0x9A5A5C
	AddrItemNames    uint32 = 0x9A5E54
	AddrMateriaNames uint32 = 0x9A7A14
	CommandCount            = 32
	ItemCount               = 128
	MateriaCount            = 91
	CommandNamesSize        = 0x3F8
	ItemNamesSize           = 0x1000
	MateriaNamesSize        = 0x1000
)

// ---- minigame (snowboard) ----
const (
	AddrSnowboardGlobalObj uint32 = 0xDDD2C8
	SnowboardGlobalObjSize        = 0x88
	AddrSnowboardEntities  uint32 = 0xDDD5F0
	SnowboardEntitiesSize         = 0x1200
)
