// internal/refdata/tables.go
package refdata

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/ff7-replicator/internal/ff7"
	"github.com/tamzrod/ff7-replicator/internal/memory"
)

// maxNameLen bounds a single entry; longer runs are truncated.
const maxNameLen = 24

// Tables holds the static name lists the game loads once at startup.
type Tables struct {
	Commands []string `json:"commandNames"`
	Items    []string `json:"itemNames"`
	Materia  []string `json:"materiaNames"`
}

type nameTable struct {
	part  string
	addr  uint32
	size  int
	count int
}

var nameTables = []nameTable{
	{part: "commands", addr: ff7.AddrCommandNames, size: ff7.CommandNamesSize, count: ff7.CommandCount},
	{part: "items", addr: ff7.AddrItemNames, size: ff7.ItemNamesSize, count: ff7.ItemCount},
	{part: "materia", addr: ff7.AddrMateriaNames, size: ff7.MateriaNamesSize, count: ff7.MateriaCount},
}

// ReadTables reads every name table. All or nothing: a single failing table
// fails the whole load.
func ReadTables(acc memory.Accessor) (*Tables, error) {
	out := make([][]string, len(nameTables))
	for i, nt := range nameTables {
		b, err := acc.ReadBuffer(nt.addr, nt.size)
		if err != nil {
			return nil, fmt.Errorf("refdata: read %s: %w", nt.part, err)
		}
		names, err := parseNameTable(b, nt.count)
		if err != nil {
			return nil, fmt.Errorf("refdata: parse %s: %w", nt.part, err)
		}
		out[i] = names
	}
	return &Tables{Commands: out[0], Items: out[1], Materia: out[2]}, nil
}

var errTableBounds = errors.New("offset out of range")

// parseNameTable decodes a block made of count little-endian u16 offsets
// (relative to the block start) followed by 0xFF terminated strings.
func parseNameTable(b []byte, count int) ([]string, error) {
	if len(b) < count*2 {
		return nil, fmt.Errorf("%w: header needs %d bytes, have %d", errTableBounds, count*2, len(b))
	}
	names := make([]string, count)
	for i := 0; i < count; i++ {
		off := int(binary.LittleEndian.Uint16(b[i*2:]))
		if off >= len(b) {
			return nil, fmt.Errorf("%w: entry %d at 0x%x", errTableBounds, i, off)
		}
		end := off + maxNameLen
		if end > len(b) {
			end = len(b)
		}
		names[i] = strings.TrimSpace(ff7.DecodeText(b[off:end]))
	}
	return names, nil
}
