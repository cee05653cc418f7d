// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/ff7-replicator/internal/decoder"
	"github.com/tamzrod/ff7-replicator/internal/memory"
)

// Update is what one poll cycle publishes.
// Connected is binary: either State is a complete snapshot or it is nil.
type Update struct {
	At        time.Time
	Connected bool
	State     *decoder.State

	Err error // reason for a disconnected update; nil when connected
}

// Detector is the deferred continuation run after each connected publish.
type Detector interface {
	Observe(st *decoder.State)
	Reset()
}

// AttackSource resolves enemy attack names on entry to a real battle.
type AttackSource interface {
	AttackNames(acc memory.Accessor, battleID uint16) ([]string, error)
}
