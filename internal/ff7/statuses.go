// internal/ff7/statuses.go
package ff7

import (
	"encoding/json"
	"fmt"
)

// Status is one bit of the 32-bit battle status word.
type Status uint8

const (
	StatusDeath Status = iota
	StatusNearDeath
	StatusSleep
	StatusPoison
	StatusSadness
	StatusFury
	StatusConfusion
	StatusSilence
	StatusHaste
	StatusSlow
	StatusStop
	StatusFrog
	StatusSmall
	StatusSlowNumb
	StatusPetrify
	StatusRegen
	StatusBarrier
	StatusMBarrier
	StatusReflect
	StatusDual
	StatusShield
	StatusDeathSentence
	StatusManipulate
	StatusBerserk
	StatusPeerless
	StatusParalysis
	StatusDarkness
	StatusDualDrain
	StatusDeathForce
	StatusResist
	StatusLuckyGirl
	StatusImprisoned

	statusCount
)

var statusNames = [statusCount]string{
	"Death", "NearDeath", "Sleep", "Poison", "Sadness", "Fury", "Confusion", "Silence",
	"Haste", "Slow", "Stop", "Frog", "Small", "SlowNumb", "Petrify", "Regen",
	"Barrier", "MBarrier", "Reflect", "Dual", "Shield", "DeathSentence", "Manipulate", "Berserk",
	"Peerless", "Paralysis", "Darkness", "DualDrain", "DeathForce", "Resist", "LuckyGirl", "Imprisoned",
}

// AllStatuses is the fixed enumeration in output order.
var AllStatuses = func() []Status {
	out := make([]Status, statusCount)
	for i := range out {
		out[i] = Status(i)
	}
	return out
}()

// Bit returns the mask for s inside a status word.
func (s Status) Bit() uint32 {
	return 1 << uint32(s)
}

func (s Status) String() string {
	if s < statusCount {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	st, ok := ParseStatus(name)
	if !ok {
		return fmt.Errorf("ff7: unknown status %q", name)
	}
	*s = st
	return nil
}

// ParseStatus looks a status up by name.
func ParseStatus(name string) (Status, bool) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), true
		}
	}
	return 0, false
}

// StatusWord is the raw status word of a battle actor. Enemy records reuse the
// same layout for their immunity word.
type StatusWord uint32

func (w StatusWord) Has(s Status) bool {
	return uint32(w)&s.Bit() != 0
}

// Statuses lists the set bits in enumeration order.
func (w StatusWord) Statuses() []Status {
	var out []Status
	for _, s := range AllStatuses {
		if w.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

// Effective returns the statuses an actor carries that its immunity word does
// not block.
func (w StatusWord) Effective(immunities StatusWord) StatusWord {
	return w &^ immunities
}
