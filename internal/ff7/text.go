// internal/ff7/text.go
package ff7

import "strings"

// EmptyName is returned for names that decode to nothing.
const EmptyName = "???"

const textTerminator = 0xFF

// 0x00-0xDF of the in-game character table.
var textTable = []rune(" !\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~ " +
	"ÄÅÇÉÑÖÜáàâäãåçéèêëíìîïñóòôöõúùûü♥°¢£↔→♪ßα  ´¨≠ÆØ∞±≤≥¥µ∂ΣΠπ⌡ªºΩæø¿¡¬√ƒ≈∆«»… ÀÃÕŒœ–—“”‘’÷◊ÿŸ⁄ ‹›ﬁﬂ■‧‚„‰ÂÊÁËÈÍÎÏÌÓÔ ÒÚÛÙıˆ˜¯˘˙˚¸˝˛ˇ       ")

var textSpecial = map[byte]string{
	0xE1: "\t",
	0xE2: ", ",
	0xE3: ".",
	0xE4: "…",
	0xE7: "\n",
}

// DecodeText converts in-game encoded bytes to a string, stopping at 0xFF.
// Codes with no printable meaning are dropped.
func DecodeText(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c == textTerminator {
			break
		}
		if s, ok := textSpecial[c]; ok {
			sb.WriteString(s)
			continue
		}
		if int(c) < len(textTable) && c < 0xE0 {
			sb.WriteRune(textTable[c])
		}
	}
	return sb.String()
}

// DecodeName decodes a fixed-length name field, truncating at the first
// backslash and falling back to EmptyName.
func DecodeName(b []byte) string {
	return cleanName(DecodeText(b))
}

// DecodeASCIIName decodes a NUL-terminated ASCII name (field names).
func DecodeASCIIName(b []byte) string {
	if i := indexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return cleanName(string(b))
}

// EncodeText is the inverse of DecodeText for characters in the base table.
// Unknown runes are encoded as spaces; the result is 0xFF terminated and
// padded or truncated to size.
func EncodeText(s string, size int) []byte {
	out := make([]byte, size)
	for i := range out {
		out[i] = textTerminator
	}
	i := 0
	for _, r := range s {
		if i >= size-1 {
			break
		}
		out[i] = encodeRune(r)
		i++
	}
	return out
}

func encodeRune(r rune) byte {
	if r >= ' ' && r <= '~' {
		return byte(r - ' ')
	}
	for i, t := range textTable {
		if t == r && i < 0xE0 {
			return byte(i)
		}
	}
	return 0
}

func cleanName(s string) string {
	if i := strings.IndexByte(s, '\\'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, " ")
	if s == "" {
		return EmptyName
	}
	return s
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
