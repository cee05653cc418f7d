// internal/savestate/regions.go
package savestate

import (
	"encoding/json"
	"fmt"
)

// Region is a [Start, End) address range captured as one block.
type Region struct {
	Start uint32
	End   uint32
}

func (r Region) Len() int { return int(r.End - r.Start) }

// MarshalJSON encodes a region as a two-element array.
func (r Region) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]uint32{r.Start, r.End})
}

func (r *Region) UnmarshalJSON(b []byte) error {
	var pair [2]uint32
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("savestate: region: %w", err)
	}
	if pair[1] < pair[0] {
		return fmt.Errorf("savestate: region [0x%x, 0x%x) is inverted", pair[0], pair[1])
	}
	*r = Region{Start: pair[0], End: pair[1]}
	return nil
}

// RegionLayoutVersion changes whenever the list below changes. Records keep
// their own region list, so older captures stay restorable.
const RegionLayoutVersion = 1

var staticRegions = []Region{
	{0xC0B5A0, 0xC0B600}, // background layer state
	{0xCC0800, 0xCC0880}, // field triggers
	{0xCC0D80, 0xCC0DC0}, // field control flags
	{0xCC0DC0, 0xCC0E40}, // party leader state
	{0xCC15C0, 0xCC15E0}, // field id and entry point
	{0xCC1640, 0xCC1670}, // step counters and danger value
	{0xCC1700, 0xCC1740}, // field music
	{0xCC1EF0, 0xCC1F00}, // field name
	{0xCC2C00, 0xCC2D00}, // script execution state
	{0xCFF594, 0xCFF5A0}, // camera
	{0xCFF738, 0xCFF740}, // model table header
	{0xDB2B80, 0xDB2BC0}, // game object
	{0xDC0E2C, 0xDC0F2C}, // temporary variable bank
}

// Per-entity script blocks, one per field entity slot.
const (
	entityBase   uint32 = 0xCC0960
	entityStride uint32 = 0x40
	entitySize   uint32 = 0x30
	entityCount         = 16
)

// CurrentRegions returns a fresh copy of the active layout: the static list
// followed by the stride-generated entity blocks.
func CurrentRegions() []Region {
	out := make([]Region, 0, len(staticRegions)+entityCount)
	out = append(out, staticRegions...)
	for i := uint32(0); i < entityCount; i++ {
		start := entityBase + i*entityStride
		out = append(out, Region{Start: start, End: start + entitySize})
	}
	return out
}
