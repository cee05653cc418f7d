// internal/decoder/decode.go
package decoder

import (
	"encoding/binary"
	"log"
	"math"

	"github.com/tamzrod/ff7-replicator/internal/ff7"
)

// Decode turns one raw blob into a State. It is pure: the same input always
// yields the same output. Any structural mismatch fails the whole decode.
func Decode(raw *Raw, sigs Signatures) (*State, error) {
	if raw == nil {
		return nil, decodeErrorf("raw", "nil blob")
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	features, err := sigs.Match(raw.Probes)
	if err != nil {
		return nil, err
	}

	st := &State{
		Module:     ff7.Module(raw.Module),
		GameObjPtr: raw.GameObjPtr,
		Features:   features,
		Encounters: features.Encounters(),
	}

	decodeField(raw.FieldBlock, st)
	battleTimer := decodeBattle(raw.BattleBlock, raw.BattleAuxBlock, st)
	decodeSavemap(raw.Savemap, st)
	st.FieldModels = decodeFieldModels(raw.FieldModels, int(raw.FieldModelCount))
	if raw.WorldModel != nil {
		st.WorldModel = decodeWorldModel(raw.WorldModel)
	}
	if raw.Chocobos != nil {
		st.Chocobos = decodeChocobos(raw.Chocobos)
	}

	st.Speed = speed(raw, battleTimer, features.FFnx)

	return st, nil
}

func validate(raw *Raw) error {
	checks := []struct {
		part string
		got  int
		want int
	}{
		{"field block", len(raw.FieldBlock), fieldBlockSize},
		{"battle block", len(raw.BattleBlock), battleBlockSize},
		{"battle aux block", len(raw.BattleAuxBlock), battleAuxSize},
		{"savemap", len(raw.Savemap), ff7.SavemapSize},
		{"field models", len(raw.FieldModels), int(raw.FieldModelCount) * ff7.FieldModelStride},
	}
	for _, c := range checks {
		if c.got != c.want {
			return decodeErrorf(c.part, "length %d, want %d", c.got, c.want)
		}
	}
	if raw.FieldModelCount > ff7.MaxFieldModels {
		return decodeErrorf("field models", "count %d exceeds %d", raw.FieldModelCount, ff7.MaxFieldModels)
	}
	if raw.WorldModel != nil && len(raw.WorldModel) != ff7.WorldModelSize {
		return decodeErrorf("world model", "length %d, want %d", len(raw.WorldModel), ff7.WorldModelSize)
	}
	if c := raw.Chocobos; c != nil {
		if len(c.Stables) != 3 ||
			len(c.Slots) != ff7.ChocoboStableSlots*ff7.ChocoboSlotSize ||
			len(c.Names) != ff7.ChocoboStableSlots*ff7.ChocoboNameSize {
			return decodeErrorf("chocobos", "unexpected block lengths")
		}
	}
	return nil
}

// speed prefers the FFnx limiter target when FFnx is detected and its read
// succeeded; otherwise, or when that value is unusable, the built-in timer wins.
func speed(raw *Raw, battleTimer float64, ffnx bool) float64 {
	module := ff7.Module(raw.Module)
	primary := SpeedFromTimer(moduleTimer(raw, battleTimer), module.NormalFPS())
	if !ffnx || raw.FFnx == nil {
		return primary
	}
	fps := raw.FFnx.FPS30
	if module == ff7.ModuleBattle {
		fps = raw.FFnx.FPS15
	}
	s, ok := SpeedFromFPS(fps, module.NormalFPS())
	if !ok {
		log.Printf("decoder: ffnx fps unusable, using frame timer (fps=%v)", fps)
		return primary
	}
	return s
}

func decodeField(b []byte, st *State) {
	off := func(addr uint32) int { return int(addr - fieldBlockStart) }

	st.FieldMovementDisabled = b[off(ff7.AddrFieldMovementDisabled)] != 0
	st.FieldMenuAccessEnabled = b[off(ff7.AddrFieldMenuAccessEnabled)] != 0
	st.FieldID = le16(b, off(ff7.AddrFieldID))
	st.StepID = le16(b, off(ff7.AddrStepID))
	st.StepFraction = le16(b, off(ff7.AddrStepFraction))
	st.DangerValue = le16(b, off(ff7.AddrDangerValue))
	name := off(ff7.AddrFieldName)
	st.FieldName = ff7.DecodeASCIIName(b[name : name+ff7.FieldNameSize])
}

func decodeBattle(b, aux []byte, st *State) (battleTimer float64) {
	off := func(addr uint32) int { return int(addr - battleBlockStart) }

	st.BattleID = le16(b, off(ff7.AddrBattleID))
	battleTimer = float64le(b[off(ff7.AddrBattleFPS):])

	st.Allies = make([]Actor, ff7.BattleAllySlots)
	st.Enemies = make([]Actor, ff7.BattleEnemySlots)
	base := off(ff7.AddrBattleChars)
	for i := 0; i < ff7.BattleSlots; i++ {
		rec := b[base+i*ff7.BattleCharStride : base+(i+1)*ff7.BattleCharStride]
		a := Actor{MaxHP: le32(rec, ff7.BattleCharMaxHP)}
		if a.MaxHP > 0 {
			a.Present = true
			a.Status = ff7.StatusWord(le32(rec, ff7.BattleCharStatus))
			a.Flags = rec[ff7.BattleCharFlags]
			a.SceneID = rec[ff7.BattleCharSceneID]
			a.HP = le32(rec, ff7.BattleCharHP)
			a.MP = le16(rec, ff7.BattleCharMP)
			a.MaxMP = le16(rec, ff7.BattleCharMaxMP)
			a.ATB = le16(aux, i*ff7.BattleATBStride)
		}
		if i < ff7.BattleAllySlots {
			if a.Present {
				limit := int(ff7.AddrAllyLimit-battleAuxStart) + i*ff7.AllyLimitStride
				a.Limit = le16(aux, limit)
			}
			st.Allies[i] = a
		} else {
			st.Enemies[i-ff7.BattleAllySlots] = a
		}
	}
	return battleTimer
}

func decodeSavemap(b []byte, st *State) {
	off := ff7.SavemapOffset

	st.GameMoment = le16(b, off(ff7.AddrGameMoment))
	st.Gil = le32(b, off(ff7.AddrGil))
	st.InGameTime = le32(b, off(ff7.AddrInGameTime))
	st.Disc = b[off(ff7.AddrDiscID)]
	st.GP = le16(b, off(ff7.AddrGP))
	st.BattleCount = le16(b, off(ff7.AddrBattleCount))
	st.EscapeCount = le16(b, off(ff7.AddrEscapeCount))
	st.MenuVisible = ff7.MenuMask(le16(b, off(ff7.AddrMenuVisible)))
	st.MenuLocks = ff7.MenuMask(le16(b, off(ff7.AddrMenuLocks)))

	lp := b[off(ff7.AddrLovePoints) : off(ff7.AddrLovePoints)+ff7.LovePointsSize]
	st.LovePoints = LovePoints{Aeris: lp[0], Tifa: lp[1], Yuffie: lp[2], Barret: lp[3]}

	ki := off(ff7.AddrKeyItems)
	st.KeyItems = ff7.KeyItems(b[ki : ki+ff7.KeyItemsSize])

	st.Characters = make([]Character, 0, ff7.CharacterRecordCount)
	recs := off(ff7.AddrCharacterRecords)
	for i := 0; i < ff7.CharacterRecordCount; i++ {
		rec := b[recs+i*ff7.CharacterRecordSize : recs+(i+1)*ff7.CharacterRecordSize]
		st.Characters = append(st.Characters, Character{
			ID:     rec[ff7.RecID],
			Name:   ff7.DecodeName(rec[ff7.RecName : ff7.RecName+ff7.RecNameSize]),
			Level:  rec[ff7.RecLevel],
			HP:     le16(rec, ff7.RecHP),
			MaxHP:  le16(rec, ff7.RecMaxHP),
			MP:     le16(rec, ff7.RecMP),
			MaxMP:  le16(rec, ff7.RecMaxMP),
			Exp:    le32(rec, ff7.RecExp),
			Limit:  rec[ff7.RecLimitBar],
			Status: rec[ff7.RecStatus],
		})
	}

	visible := ff7.PartyMask(le16(b, off(ff7.AddrPartyVisibilityMask)))
	locked := ff7.PartyMask(le16(b, off(ff7.AddrPartyLockingMask)))
	ids := b[off(ff7.AddrPartyMemberIDs) : off(ff7.AddrPartyMemberIDs)+ff7.PartySize]
	st.Party = make([]PartyMember, 0, ff7.PartySize)
	for _, id := range ids {
		// 0xFF is an empty slot; anything past the roster is garbage.
		if id == ff7.RecordIDNone || int(id) >= len(st.Characters) {
			continue
		}
		st.Party = append(st.Party, PartyMember{
			ID:      id,
			Name:    st.Characters[id].Name,
			Visible: visible.Has(id),
			Locked:  locked.Has(id),
		})
	}
}

func decodeFieldModels(b []byte, count int) []FieldModel {
	out := make([]FieldModel, 0, count)
	for i := 0; i < count; i++ {
		m := b[i*ff7.FieldModelStride : (i+1)*ff7.FieldModelStride]
		out = append(out, FieldModel{
			X:         int32(le32(m, ff7.FieldModelX)),
			Y:         int32(le32(m, ff7.FieldModelY)),
			Z:         int32(le32(m, ff7.FieldModelZ)),
			Direction: m[ff7.FieldModelDirection],
		})
	}
	return out
}

func decodeWorldModel(b []byte) *WorldModel {
	packed := ff7.WorldModelByte(b[ff7.WorldModelWalkmesh])
	return &WorldModel{
		X:         int32(le32(b, ff7.WorldModelX)),
		Y:         int32(le32(b, ff7.WorldModelY)),
		Z:         int32(le32(b, ff7.WorldModelZ)),
		Direction: le16(b, ff7.WorldModelDirection),
		ModelID:   b[ff7.WorldModelID],
		Script:    packed.Script(),
		Walkmesh:  packed.Walkmesh(),
		Location:  b[ff7.WorldModelLocation],
	}
}

func decodeChocobos(raw *RawChocobos) *Chocobos {
	owned := raw.Stables[0]
	occupied := raw.Stables[1]
	cantMate := raw.Stables[2]

	out := &Chocobos{StablesOwned: owned, Slots: make([]Chocobo, 0, ff7.ChocoboStableSlots)}
	for i := 0; i < ff7.ChocoboStableSlots; i++ {
		s := raw.Slots[i*ff7.ChocoboSlotSize : (i+1)*ff7.ChocoboSlotSize]
		n := raw.Names[i*ff7.ChocoboNameSize : (i+1)*ff7.ChocoboNameSize]
		out.Slots = append(out.Slots, Chocobo{
			Occupied:       occupied&(1<<i) != 0,
			CantMate:       cantMate&(1<<i) != 0,
			Name:           ff7.DecodeName(n),
			SprintSpeed:    le16(s, 0x00),
			MaxSprintSpeed: le16(s, 0x02),
			Speed:          le16(s, 0x04),
			MaxSpeed:       le16(s, 0x06),
			Acceleration:   s[0x08],
			Cooperation:    s[0x09],
			Intelligence:   s[0x0A],
			Personality:    s[0x0B],
			RacesWon:       s[0x0D],
			Sex:            s[0x0E],
			Type:           s[0x0F],
		})
	}
	return out
}

func le16(b []byte, off int) uint16 { return binary.LittleEndian.Uint16(b[off:]) }
func le32(b []byte, off int) uint32 { return binary.LittleEndian.Uint32(b[off:]) }

func float64le(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}
