// internal/status/snapshot.go
package status

import (
	"errors"
	"math"

	"github.com/tamzrod/ff7-replicator/internal/decoder"
	"github.com/tamzrod/ff7-replicator/internal/poller"
)

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16

	Module     uint16
	FieldID    uint16
	GameMoment uint16
	Speed      uint16 // x100
	Gil        uint32
	BattleID   uint16
}

// Observe folds one poll update into the snapshot and reports whether
// anything changed. SecondsInError is reset on recovery but only ever
// incremented by Tick.
func (s *Snapshot) Observe(u poller.Update) bool {
	next := *s

	switch {
	case u.Connected && u.State != nil:
		next.Health = HealthOK
		next.LastErrorCode = 0
		next.SecondsInError = 0
		next.setState(u.State)
	case errors.Is(u.Err, decoder.ErrNoModule):
		next.Health = HealthStale
		next.LastErrorCode = ErrorCode(u.Err)
		next.setState(nil)
	default:
		next.Health = HealthError
		next.LastErrorCode = ErrorCode(u.Err)
		next.setState(nil)
	}

	changed := next != *s
	*s = next
	return changed
}

// Tick advances SecondsInError once per second while not healthy.
// It never wraps.
func (s *Snapshot) Tick() bool {
	if s.Health == HealthOK || s.SecondsInError == math.MaxUint16 {
		return false
	}
	s.SecondsInError++
	return true
}

func (s *Snapshot) setState(st *decoder.State) {
	if st == nil {
		s.Module, s.FieldID, s.GameMoment, s.Speed, s.Gil, s.BattleID = 0, 0, 0, 0, 0, 0
		return
	}
	s.Module = uint16(st.Module)
	s.FieldID = st.FieldID
	s.GameMoment = st.GameMoment
	s.Speed = speedSlot(st.Speed)
	s.Gil = st.Gil
	s.BattleID = st.BattleID
}

func speedSlot(v float64) uint16 {
	x := math.Round(v * 100)
	switch {
	case x <= 0 || math.IsNaN(x):
		return 0
	case x > math.MaxUint16:
		return math.MaxUint16
	default:
		return uint16(x)
	}
}
