// internal/status/encode.go
package status

// Encode converts a Snapshot into the live slots of a status block.
// The device name slots are left zero; the writer owns them.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotSecondsInError] = s.SecondsInError

	regs[SlotModule] = s.Module
	regs[SlotFieldID] = s.FieldID
	regs[SlotGameMoment] = s.GameMoment
	regs[SlotSpeed] = s.Speed
	regs[SlotGilLow] = uint16(s.Gil)
	regs[SlotGilHigh] = uint16(s.Gil >> 16)
	regs[SlotBattleID] = s.BattleID

	return regs
}
