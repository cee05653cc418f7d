// internal/ff7/module.go
package ff7

import "fmt"

// Module is the target's current high-level mode.
type Module uint16

const (
	ModuleNone        Module = 0
	ModuleField       Module = 1
	ModuleBattle      Module = 2
	ModuleWorld       Module = 3
	ModuleMenu        Module = 5
	ModuleHighway     Module = 6
	ModuleChocobo     Module = 7
	ModuleSnowBoard   Module = 8
	ModuleCondor      Module = 9
	ModuleSubmarine   Module = 10
	ModuleJet         Module = 11
	ModuleChangeDisc  Module = 12
	ModuleQuit        Module = 19
	ModuleStart       Module = 20
	ModuleBattleSwirl Module = 23
	ModuleEnding      Module = 25
	ModuleGameOver    Module = 26
	ModuleIntro       Module = 27
	ModuleCredits     Module = 28
)

var moduleNames = map[Module]string{
	ModuleNone:        "none",
	ModuleField:       "field",
	ModuleBattle:      "battle",
	ModuleWorld:       "world",
	ModuleMenu:        "menu",
	ModuleHighway:     "highway",
	ModuleChocobo:     "chocobo",
	ModuleSnowBoard:   "snowboard",
	ModuleCondor:      "condor",
	ModuleSubmarine:   "submarine",
	ModuleJet:         "jet",
	ModuleChangeDisc:  "change-disc",
	ModuleQuit:        "quit",
	ModuleStart:       "start",
	ModuleBattleSwirl: "battle-swirl",
	ModuleEnding:      "ending",
	ModuleGameOver:    "game-over",
	ModuleIntro:       "intro",
	ModuleCredits:     "credits",
}

func (m Module) String() string {
	if s, ok := moduleNames[m]; ok {
		return s
	}
	return fmt.Sprintf("module(%d)", uint16(m))
}

// NormalFPS is the frame rate the module runs at when no speed hack is active.
// Battle runs at 15, everything else follows the field/world limiter at 30.
func (m Module) NormalFPS() float64 {
	if m == ModuleBattle {
		return 15
	}
	return 30
}

// RealBattle reports whether id names an actual encounter.
func RealBattle(id uint16) bool {
	return id != 0 && id != 0xFFFF
}
