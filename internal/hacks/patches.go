// internal/hacks/patches.go
package hacks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/ff7-replicator/internal/decoder"
	"github.com/tamzrod/ff7-replicator/internal/ff7"
	"github.com/tamzrod/ff7-replicator/internal/memory"
)

var (
	// ErrUnknownMode is returned for an encounter mode outside normal/off/max.
	ErrUnknownMode = errors.New("unknown encounter mode")

	// ErrGameNotReady is returned when a patch needs game objects that are
	// not allocated yet.
	ErrGameNotReady = errors.New("game not ready")
)

// patch is one contiguous write.
type patch struct {
	addr uint32
	b    []byte
}

func apply(acc memory.Accessor, what string, ps ...patch) error {
	var errs []error
	for _, p := range ps {
		if err := acc.WriteBuffer(p.addr, p.b); err != nil {
			errs = append(errs, fmt.Errorf("0x%x: %w", p.addr, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("hacks: %s: %w", what, errors.Join(errs...))
	}
	return nil
}

var (
	fieldBattleCheckOrig = []byte{0x0F, 0x83, 0xDF, 0x02, 0x00, 0x00}
	fieldBattleCheckOff  = []byte{0xE9, 0xE0, 0x02, 0x00, 0x00, 0x90}
	fieldBattleCheckMax  = []byte{0x90, 0x90, 0x90, 0x90, 0x90, 0x90}

	instantATBOrig  = []byte{0x66, 0x8B, 0x0D, 0x00, 0xAD, 0x9A, 0x00, 0x99, 0xF7, 0xF9}
	instantATBPatch = []byte{0xC7, 0x45, 0xFC, 0xFF, 0xFF, 0x00, 0x00, 0x90, 0x90, 0x90}

	nop6 = []byte{0x90, 0x90, 0x90, 0x90, 0x90, 0x90}
)

const (
	swirlCheckOrig byte = 0x4E
	swirlOtherOrig byte = 0x2E

	worldEncounterNormal byte = 0x0A
	worldEncounterMax    byte = 0x0F

	gfxFlipRet  byte = 0xC3
	gfxFlipOrig byte = 0x51

	unfocusFlag byte = 0x80
)

// SetEncounters switches random encounters on both the field and the world map.
func SetEncounters(acc memory.Accessor, mode decoder.EncounterMode) error {
	switch mode {
	case decoder.EncountersOff:
		return apply(acc, "encounters off",
			patch{ff7.AddrFieldBattleCheck, fieldBattleCheckOff},
			patch{ff7.AddrWorldBattleFlag, []byte{0x00}},
		)
	case decoder.EncountersNormal:
		return apply(acc, "encounters normal",
			patch{ff7.AddrFieldBattleCheck, fieldBattleCheckOrig},
			patch{ff7.AddrWorldBattleEnable, []byte{worldEncounterNormal}},
			patch{ff7.AddrWorldBattleFlag, []byte{0x01}},
		)
	case decoder.EncountersMax:
		return apply(acc, "encounters max",
			patch{ff7.AddrFieldBattleCheck, fieldBattleCheckMax},
			patch{ff7.AddrWorldBattleEnable, []byte{worldEncounterMax}},
			patch{ff7.AddrWorldBattleFlag, []byte{0x10}},
		)
	default:
		return fmt.Errorf("hacks: %w: %q", ErrUnknownMode, mode)
	}
}

// SetSwirlSkip removes (or restores) the pre-battle swirl animation.
func SetSwirlSkip(acc memory.Accessor, skip bool) error {
	if skip {
		return apply(acc, "swirl skip",
			patch{ff7.AddrBattleSwirlOther, []byte{0x00}},
			patch{ff7.AddrBattleSwirlCheck, []byte{0x00}},
		)
	}
	return apply(acc, "swirl restore",
		patch{ff7.AddrBattleSwirlOther, []byte{swirlOtherOrig}},
		patch{ff7.AddrBattleSwirlCheck, []byte{swirlCheckOrig}},
	)
}

// SetInstantATB makes every ATB gauge fill immediately. Installing it also
// fills the gauges of the current party.
func SetInstantATB(acc memory.Accessor, on bool) error {
	if !on {
		return apply(acc, "instant atb restore", patch{ff7.AddrInstantATBCheck, instantATBOrig})
	}
	ps := []patch{{ff7.AddrInstantATBCheck, instantATBPatch}}
	for i := 0; i < ff7.PartySize; i++ {
		ps = append(ps, patch{ff7.AddrBattleATB + uint32(i*ff7.BattleATBStride), []byte{0xFF, 0xFF}})
	}
	return apply(acc, "instant atb", ps...)
}

// UnfocusPoll is how often SetUnfocusPatch checks that the game tick
// function has settled.
var UnfocusPoll = 250 * time.Millisecond

// SetUnfocusPatch keeps the game (and its sound) running while the window
// is not focused. Installing waits until the tick function pointer is back
// inside program memory, which is not the case while the window is already
// unfocused.
func SetUnfocusPatch(ctx context.Context, acc memory.Accessor, on bool) error {
	obj, err := memory.ReadInt(acc, ff7.AddrGameObjPtr)
	if err != nil {
		return fmt.Errorf("hacks: unfocus: %w", err)
	}
	if obj == 0 {
		return fmt.Errorf("hacks: unfocus: %w", ErrGameNotReady)
	}

	if !on {
		flip, err := gfxFlip(acc, obj)
		if err != nil {
			return err
		}
		return apply(acc, "unfocus restore",
			patch{flip + ff7.AddrGfxFlipRetOff, []byte{gfxFlipOrig}},
			patch{ff7.AddrUnfocusPatchCheck, []byte{0x00}},
		)
	}

	if err := memory.WriteByte(acc, ff7.AddrUnfocusPatchCheck, unfocusFlag); err != nil {
		return fmt.Errorf("hacks: unfocus: %w", err)
	}
	if err := waitTickInProgram(ctx, acc, obj); err != nil {
		return err
	}
	flip, err := gfxFlip(acc, obj)
	if err != nil {
		return err
	}
	return apply(acc, "unfocus", patch{flip + ff7.AddrGfxFlipRetOff, []byte{gfxFlipRet}})
}

func waitTickInProgram(ctx context.Context, acc memory.Accessor, obj uint32) error {
	t := time.NewTicker(UnfocusPoll)
	defer t.Stop()
	for {
		tick, err := memory.ReadInt(acc, obj+ff7.AddrGameTickFnOff)
		if err != nil {
			return fmt.Errorf("hacks: unfocus: tick: %w", err)
		}
		if tick <= ff7.GameTickFnCodeLimit {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("hacks: unfocus: %w", ctx.Err())
		case <-t.C:
		}
	}
}

func gfxFlip(acc memory.Accessor, obj uint32) (uint32, error) {
	table, err := memory.ReadInt(acc, obj+ff7.AddrGfxFunctionsOff)
	if err != nil {
		return 0, fmt.Errorf("hacks: unfocus: gfx table: %w", err)
	}
	flip, err := memory.ReadInt(acc, table+ff7.AddrGfxFlipSlot)
	if err != nil {
		return 0, fmt.Errorf("hacks: unfocus: gfx flip: %w", err)
	}
	return flip, nil
}
