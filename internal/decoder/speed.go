// internal/decoder/speed.go
package decoder

import (
	"math"

	"github.com/tamzrod/ff7-replicator/internal/ff7"
)

// timerScale converts between a frame timer value and frames per second.
const timerScale = 10_000_000

// SpeedFromTimer derives the speed multiplier from a built-in frame timer.
// A zero or invalid timer reads as normal speed.
func SpeedFromTimer(timer, normalFPS float64) float64 {
	if timer <= 0 || math.IsNaN(timer) || math.IsInf(timer, 0) {
		return 1
	}
	return snapSpeed(((timerScale / timer) / normalFPS))
}

// SpeedFromFPS derives the multiplier from an absolute frame rate target.
func SpeedFromFPS(fps, normalFPS float64) (float64, bool) {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return 0, false
	}
	return snapSpeed(fps / normalFPS), true
}

// TimerForSpeed is the inverse of SpeedFromTimer.
func TimerForSpeed(speed, normalFPS float64) float64 {
	return timerScale / (normalFPS * speed)
}

// snapSpeed rounds to two decimals and snaps anything that rounds to 1.0 at
// one decimal to exactly 1.
func snapSpeed(s float64) float64 {
	s = math.Round(s*100) / 100
	if math.Round(s*10)/10 == 1 {
		return 1
	}
	return s
}

func moduleTimer(raw *Raw, battleTimer float64) float64 {
	switch ff7.Module(raw.Module) {
	case ff7.ModuleBattle:
		return battleTimer
	case ff7.ModuleWorld:
		return raw.WorldTimer
	default:
		return raw.FieldTimer
	}
}
