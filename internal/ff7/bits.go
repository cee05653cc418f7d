// internal/ff7/bits.go
package ff7

// WorldModelByte is the packed script/walkmesh byte of a world model.
type WorldModelByte uint8

// Script is the upper three bits.
func (b WorldModelByte) Script() uint8 {
	return uint8(b) >> 5
}

// Walkmesh is the lower five bits.
func (b WorldModelByte) Walkmesh() uint8 {
	return uint8(b) & 0x1F
}

// KeyItems returns the set bit positions of the key-item bitmask, ascending.
// Only the first KeyItemsSize bytes are considered.
func KeyItems(mask []byte) []int {
	out := []int{}
	for i := 0; i < KeyItemsSize*8; i++ {
		byteIdx := i / 8
		if byteIdx >= len(mask) {
			break
		}
		if mask[byteIdx]&(1<<(i%8)) != 0 {
			out = append(out, i)
		}
	}
	return out
}

// PartyMask is a 16-bit per-character mask (visibility or locking).
type PartyMask uint16

// Has reports whether character id is set. Out-of-range ids are never set.
func (m PartyMask) Has(id uint8) bool {
	if id >= 16 {
		return false
	}
	return uint16(m)&(1<<id) != 0
}

// MenuMask is a 16-bit mask over the main menu entries.
type MenuMask uint16

// Menu entries in mask order.
var MenuEntries = []string{
	"Item", "Magic", "Materia", "Equip", "Status", "Order", "Limit", "Config", "PHS", "Save",
}

// Set lists the menu entries whose bit is set.
func (m MenuMask) Set() []string {
	var out []string
	for i, name := range MenuEntries {
		if uint16(m)&(1<<i) != 0 {
			out = append(out, name)
		}
	}
	return out
}
