// internal/decoder/state.go
package decoder

import "github.com/tamzrod/ff7-replicator/internal/ff7"

// State is the decoded view of the target at one tick. A State is never
// mutated after Decode returns; the next tick supersedes it.
type State struct {
	Module     ff7.Module `json:"module"`
	FieldID    uint16     `json:"fieldId"`
	FieldName  string     `json:"fieldName"`
	BattleID   uint16     `json:"battleId"`
	GameObjPtr uint32     `json:"gameObjPtr"`
	Speed      float64    `json:"speed"`

	FieldMovementDisabled  bool `json:"fieldMovementDisabled"`
	FieldMenuAccessEnabled bool `json:"fieldMenuAccessEnabled"`

	StepID       uint16 `json:"stepId"`
	StepFraction uint16 `json:"stepFraction"`
	DangerValue  uint16 `json:"dangerValue"`

	GameMoment  uint16       `json:"gameMoment"`
	Gil         uint32       `json:"gil"`
	InGameTime  uint32       `json:"inGameTime"`
	Disc        uint8        `json:"disc"`
	GP          uint16       `json:"gp"`
	BattleCount uint16       `json:"battleCount"`
	EscapeCount uint16       `json:"escapeCount"`
	MenuVisible ff7.MenuMask `json:"menuVisibility"`
	MenuLocks   ff7.MenuMask `json:"menuLocks"`

	Party      []PartyMember `json:"party"`
	Characters []Character   `json:"characters"`
	KeyItems   []int         `json:"keyItems"`
	LovePoints LovePoints    `json:"lovePoints"`

	Allies  []Actor `json:"allies"`
	Enemies []Actor `json:"enemies"`

	FieldModels []FieldModel `json:"fieldModels"`
	WorldModel  *WorldModel  `json:"worldModel,omitempty"`

	Features   Features      `json:"features"`
	Encounters EncounterMode `json:"encounters"`

	// Nil when the secondary chocobo read failed this tick.
	Chocobos *Chocobos `json:"chocobos,omitempty"`

	// Filled by the poller on entry to a real battle.
	EnemyAttackNames []string `json:"enemyAttackNames,omitempty"`
}

// PartyMember is one occupied party slot.
type PartyMember struct {
	ID      uint8  `json:"id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Locked  bool   `json:"locked"`
}

// Character is one savemap character record.
type Character struct {
	ID     uint8  `json:"id"`
	Name   string `json:"name"`
	Level  uint8  `json:"level"`
	HP     uint16 `json:"hp"`
	MaxHP  uint16 `json:"maxHp"`
	MP     uint16 `json:"mp"`
	MaxMP  uint16 `json:"maxMp"`
	Exp    uint32 `json:"exp"`
	Limit  uint8  `json:"limitBar"`
	Status uint8  `json:"status"`
}

type LovePoints struct {
	Aeris  uint8 `json:"aeris"`
	Tifa   uint8 `json:"tifa"`
	Yuffie uint8 `json:"yuffie"`
	Barret uint8 `json:"barret"`
}

// Actor is one battle slot. Present is false for empty slots; the remaining
// fields are then zero.
type Actor struct {
	Present bool           `json:"present"`
	Status  ff7.StatusWord `json:"status"`
	Flags   uint8          `json:"flags"`
	SceneID uint8          `json:"sceneId"`
	HP      uint32         `json:"hp"`
	MaxHP   uint32         `json:"maxHp"`
	MP      uint16         `json:"mp"`
	MaxMP   uint16         `json:"maxMp"`
	ATB     uint16         `json:"atb"`
	Limit   uint16         `json:"limit"`
}

type FieldModel struct {
	X         int32 `json:"x"`
	Y         int32 `json:"y"`
	Z         int32 `json:"z"`
	Direction uint8 `json:"direction"`
}

type WorldModel struct {
	X         int32  `json:"x"`
	Y         int32  `json:"y"`
	Z         int32  `json:"z"`
	Direction uint16 `json:"direction"`
	ModelID   uint8  `json:"modelId"`
	Script    uint8  `json:"script"`
	Walkmesh  uint8  `json:"walkmeshType"`
	Location  uint8  `json:"locationId"`
}

type Chocobos struct {
	StablesOwned uint8     `json:"stablesOwned"`
	Slots        []Chocobo `json:"slots"`
}

type Chocobo struct {
	Occupied       bool   `json:"occupied"`
	CantMate       bool   `json:"cantMate"`
	Name           string `json:"name"`
	SprintSpeed    uint16 `json:"sprintSpeed"`
	MaxSprintSpeed uint16 `json:"maxSprintSpeed"`
	Speed          uint16 `json:"speed"`
	MaxSpeed       uint16 `json:"maxSpeed"`
	Acceleration   uint8  `json:"acceleration"`
	Cooperation    uint8  `json:"cooperation"`
	Intelligence   uint8  `json:"intelligence"`
	Personality    uint8  `json:"personality"`
	RacesWon       uint8  `json:"racesWon"`
	Sex            uint8  `json:"sex"`
	Type           uint8  `json:"type"`
}

// ActorStatus returns the status word of actor index i (0-3 allies, 4-9
// enemies) and whether that slot holds an actor.
func (s *State) ActorStatus(i int) (ff7.StatusWord, bool) {
	var a []Actor
	switch {
	case i >= 0 && i < ff7.BattleAllySlots:
		a = s.Allies
	case i >= ff7.BattleAllySlots && i < ff7.BattleSlots:
		a = s.Enemies
		i -= ff7.BattleAllySlots
	default:
		return 0, false
	}
	if i >= len(a) || !a[i].Present {
		return 0, false
	}
	return a[i].Status, true
}
