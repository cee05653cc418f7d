// internal/ff7/ff7_test.go
package ff7

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKeyItems(t *testing.T) {
	mask := make([]byte, KeyItemsSize)
	mask[0] = 0b00000101
	if diff := cmp.Diff([]int{0, 2}, KeyItems(mask)); diff != "" {
		t.Fatalf("key items mismatch (-want +got):\n%s", diff)
	}

	if got := KeyItems(make([]byte, KeyItemsSize)); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}

	mask = make([]byte, KeyItemsSize)
	mask[7] = 0x80
	mask[1] = 0x01
	if diff := cmp.Diff([]int{8, 63}, KeyItems(mask)); diff != "" {
		t.Fatalf("key items mismatch (-want +got):\n%s", diff)
	}
}

func TestKeyItemsShortMask(t *testing.T) {
	if diff := cmp.Diff([]int{1}, KeyItems([]byte{0x02})); diff != "" {
		t.Fatalf("short mask mismatch (-want +got):\n%s", diff)
	}
}

func TestWorldModelByte(t *testing.T) {
	b := WorldModelByte(0b101_10011)
	if b.Script() != 5 {
		t.Fatalf("script: got %d want 5", b.Script())
	}
	if b.Walkmesh() != 0x13 {
		t.Fatalf("walkmesh: got %d want 19", b.Walkmesh())
	}
}

func TestDecodeName(t *testing.T) {
	// "Cloud" then terminator and garbage
	raw := []byte{0x23, 0x4C, 0x4F, 0x55, 0x44, 0xFF, 0x21, 0x21}
	if got := DecodeName(raw); got != "Cloud" {
		t.Fatalf("got %q want Cloud", got)
	}

	withSlash := append(EncodeText("Tifa", 6)[:4:4], 0x3C, 0x21) // '\' is 0x3C
	if got := DecodeName(withSlash); got != "Tifa" {
		t.Fatalf("got %q want Tifa", got)
	}

	if got := DecodeName([]byte{0xFF, 0x00}); got != EmptyName {
		t.Fatalf("got %q want %q", got, EmptyName)
	}
}

func TestEncodeTextRoundTrip(t *testing.T) {
	enc := EncodeText("Barret", 12)
	if len(enc) != 12 {
		t.Fatalf("len: got %d", len(enc))
	}
	if got := DecodeText(enc); got != "Barret" {
		t.Fatalf("got %q", got)
	}
}

func TestDecodeASCIIName(t *testing.T) {
	raw := make([]byte, FieldNameSize)
	copy(raw, "md1stin")
	if got := DecodeASCIIName(raw); got != "md1stin" {
		t.Fatalf("got %q", got)
	}
	if got := DecodeASCIIName(make([]byte, FieldNameSize)); got != EmptyName {
		t.Fatalf("got %q", got)
	}
}

func TestStatusWord(t *testing.T) {
	w := StatusWord(StatusPoison.Bit() | StatusHaste.Bit() | StatusImprisoned.Bit())
	want := []Status{StatusPoison, StatusHaste, StatusImprisoned}
	if diff := cmp.Diff(want, w.Statuses()); diff != "" {
		t.Fatalf("statuses mismatch (-want +got):\n%s", diff)
	}

	eff := w.Effective(StatusWord(StatusPoison.Bit()))
	if eff.Has(StatusPoison) || !eff.Has(StatusHaste) {
		t.Fatalf("unexpected effective word %#x", uint32(eff))
	}
}

func TestStatusJSON(t *testing.T) {
	b, err := json.Marshal([]Status{StatusSleep, StatusLuckyGirl})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `["Sleep","LuckyGirl"]` {
		t.Fatalf("got %s", b)
	}
	var back []Status
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff([]Status{StatusSleep, StatusLuckyGirl}, back); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestModule(t *testing.T) {
	if ModuleBattle.NormalFPS() != 15 || ModuleField.NormalFPS() != 30 || ModuleWorld.NormalFPS() != 30 {
		t.Fatalf("unexpected normal fps")
	}
	if ModuleField.String() != "field" || Module(99).String() != "module(99)" {
		t.Fatalf("unexpected names")
	}
	if RealBattle(0) || RealBattle(0xFFFF) || !RealBattle(0x1A) {
		t.Fatalf("unexpected real battle classification")
	}
}
