// internal/decoder/raw.go
package decoder

// Raw is the structured blob returned by one bulk fetch. Each block is a
// verbatim copy of target memory; Decode validates every length.
type Raw struct {
	Module uint16

	// 0xCC0DBA..0xCC1F00: field flags, field id, step counters, field name.
	FieldBlock []byte

	// 0x9AAD3C..end of the battle actor array: battle id, battle fps timer, actors.
	BattleBlock []byte

	// 0x9A8B12..end of ally limit array: ATB gauges and limit bars.
	BattleAuxBlock []byte

	Savemap []byte

	GameObjPtr uint32
	FieldTimer float64
	WorldTimer float64

	FieldModelCount uint16
	FieldModels     []byte

	// WorldModel is nil when the target has no current world object.
	WorldModel []byte

	Probes map[uint32][]byte

	// Secondary reads. Nil when the read failed or does not apply.
	Chocobos *RawChocobos
	FFnx     *RawFFnx
}

// RawChocobos holds the stable bytes, fetched separately each tick.
type RawChocobos struct {
	Stables []byte // owned, occupied mask, cant-mate mask
	Slots   []byte // ChocoboStableSlots * ChocoboSlotSize
	Names   []byte // ChocoboStableSlots * ChocoboNameSize
}

// RawFFnx holds the frame limiter targets FFnx installs in place of the
// built-in timers.
type RawFFnx struct {
	FPS30 float64
	FPS15 float64
}
