// internal/decoder/signatures.go
package decoder

import (
	"bytes"

	"github.com/tamzrod/ff7-replicator/internal/ff7"
)

// Feature names a runtime patch whose presence is detected from live bytes.
type Feature string

const (
	FeatureBattlesDisabled Feature = "battlesDisabled"
	FeatureMaxBattles      Feature = "maxBattles"
	FeatureSwirlDisabled   Feature = "swirlDisabled"
	FeatureInstantATB      Feature = "instantATB"
	FeatureUnfocusPatch    Feature = "unfocusPatch"
	FeatureFFnx            Feature = "ffnx"
)

// Signature is a byte sequence at a fixed address that marks a feature as
// installed. Descriptors are read-only.
type Signature struct {
	Address  uint32
	Expected []byte
	Feature  Feature
}

type Signatures []Signature

// DefaultSignatures is the table for the supported executable.
// BattlesDisabled and MaxBattles share an address and are mutually exclusive.
var DefaultSignatures = Signatures{
	{Address: ff7.AddrFieldBattleCheck, Expected: []byte{0xE9, 0xE0, 0x02, 0x00}, Feature: FeatureBattlesDisabled},
	{Address: ff7.AddrFieldBattleCheck, Expected: []byte{0x90, 0x90, 0x90, 0x90}, Feature: FeatureMaxBattles},
	{Address: ff7.AddrBattleSwirlCheck, Expected: []byte{0x00}, Feature: FeatureSwirlDisabled},
	{Address: ff7.AddrInstantATBCheck, Expected: []byte{0xC7, 0x45}, Feature: FeatureInstantATB},
	{Address: ff7.AddrUnfocusPatchCheck, Expected: []byte{0x80}, Feature: FeatureUnfocusPatch},
	{Address: ff7.AddrFFnxCheck, Expected: []byte{ff7.FFnxJumpOpcode}, Feature: FeatureFFnx},
}

// Probes returns every address the table needs and the number of bytes to
// read there (the longest expected sequence).
func (s Signatures) Probes() map[uint32]int {
	out := make(map[uint32]int, len(s))
	for _, sig := range s {
		if n := len(sig.Expected); n > out[sig.Address] {
			out[sig.Address] = n
		}
	}
	return out
}

// Features is the set of detected patches.
type Features struct {
	BattlesDisabled bool `json:"battlesDisabled"`
	MaxBattles      bool `json:"maxBattles"`
	SwirlDisabled   bool `json:"swirlDisabled"`
	InstantATB      bool `json:"instantATB"`
	UnfocusPatch    bool `json:"unfocusPatch"`
	FFnx            bool `json:"ffnx"`
}

func (f *Features) set(name Feature, v bool) {
	switch name {
	case FeatureBattlesDisabled:
		f.BattlesDisabled = v
	case FeatureMaxBattles:
		f.MaxBattles = v
	case FeatureSwirlDisabled:
		f.SwirlDisabled = v
	case FeatureInstantATB:
		f.InstantATB = v
	case FeatureUnfocusPatch:
		f.UnfocusPatch = v
	case FeatureFFnx:
		f.FFnx = v
	}
}

// Match compares probed bytes against the table. A missing or short probe is
// a structural error.
func (s Signatures) Match(probes map[uint32][]byte) (Features, error) {
	var f Features
	for _, sig := range s {
		live, ok := probes[sig.Address]
		if !ok || len(live) < len(sig.Expected) {
			return Features{}, decodeErrorf("signature", "probe 0x%x missing or short", sig.Address)
		}
		f.set(sig.Feature, bytes.Equal(live[:len(sig.Expected)], sig.Expected))
	}
	return f, nil
}

// EncounterMode is the three-way random encounter state.
type EncounterMode string

const (
	EncountersNormal EncounterMode = "normal"
	EncountersOff    EncounterMode = "off"
	EncountersMax    EncounterMode = "max"
)

// Encounters folds the two mutually exclusive flags into one mode; normal is
// the fall-through.
func (f Features) Encounters() EncounterMode {
	switch {
	case f.BattlesDisabled:
		return EncountersOff
	case f.MaxBattles:
		return EncountersMax
	default:
		return EncountersNormal
	}
}
