// internal/hacks/speed.go
package hacks

import (
	"errors"
	"fmt"
	"math"

	"github.com/tamzrod/ff7-replicator/internal/decoder"
	"github.com/tamzrod/ff7-replicator/internal/ff7"
	"github.com/tamzrod/ff7-replicator/internal/memory"
)

var (
	// ErrSpeedHackUnsupported is returned when the target runs the FFnx frame
	// limiter and the accessor cannot make its page writable.
	ErrSpeedHackUnsupported = errors.New("speed hack unsupported on this target")

	ErrInvalidSpeed = errors.New("invalid speed")
)

// MaxSpeed bounds the multiplier; the frame timers misbehave far beyond it.
const MaxSpeed = 16

// SetSpeed sets the game speed multiplier (1 is normal).
//
// With FFnx the absolute frame rate targets are rewritten. Otherwise the
// built-in frame timers are set and the code that resets them on module
// init is removed.
func SetSpeed(acc memory.Accessor, speed float64) error {
	if speed <= 0 || speed > MaxSpeed || math.IsNaN(speed) {
		return fmt.Errorf("hacks: %w: %v", ErrInvalidSpeed, speed)
	}

	op, err := memory.ReadByte(acc, ff7.AddrFFnxCheck)
	if err != nil {
		return fmt.Errorf("hacks: speed: ffnx check: %w", err)
	}
	if op == ff7.FFnxJumpOpcode {
		return setFFnxSpeed(acc, speed)
	}

	var errs []error
	timers := []struct {
		addr   uint32
		normal float64
	}{
		{ff7.AddrFieldFPS, ff7.ModuleField.NormalFPS()},
		{ff7.AddrBattleFPS, ff7.ModuleBattle.NormalFPS()},
		{ff7.AddrWorldFPS, ff7.ModuleWorld.NormalFPS()},
	}
	for _, t := range timers {
		if err := memory.WriteFloat(acc, t.addr, decoder.TimerForSpeed(speed, t.normal)); err != nil {
			errs = append(errs, fmt.Errorf("timer 0x%x: %w", t.addr, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("hacks: speed: %w", errors.Join(errs...))
	}

	return apply(acc, "speed init sites",
		patch{ff7.AddrFieldFPSInit, nop6},
		patch{ff7.AddrWorldFPSInit, nop6},
		patch{ff7.AddrBattleFPSInit, nop6},
	)
}

func setFFnxSpeed(acc memory.Accessor, speed float64) error {
	p, ok := acc.(memory.Protector)
	if !ok {
		return ErrSpeedHackUnsupported
	}

	fps30, fps15, err := decoder.FFnxLimiter(acc)
	if err != nil {
		return fmt.Errorf("hacks: speed: ffnx limiter: %w", err)
	}
	if err := p.Unprotect(fps15, ff7.FFnxProtectRange); err != nil {
		return fmt.Errorf("hacks: speed: unprotect 0x%x: %w", fps15, err)
	}
	if err := memory.WriteFloat(acc, fps30, 30*speed); err != nil {
		return fmt.Errorf("hacks: speed: fps30: %w", err)
	}
	if err := memory.WriteFloat(acc, fps15, 15*speed); err != nil {
		return fmt.Errorf("hacks: speed: fps15: %w", err)
	}
	return nil
}
