// internal/battlelog/detector.go
package battlelog

import (
	"log"
	"sync"
	"time"

	"github.com/tamzrod/ff7-replicator/internal/decoder"
	"github.com/tamzrod/ff7-replicator/internal/ff7"
)

// Sink accepts detected events. Append-only.
type Sink interface {
	Append(ev Event) error
}

// Detector owns the previous-status table. All access goes through its
// mutex; the poll loop is the only writer in practice.
type Detector struct {
	mu   sync.Mutex
	prev map[int]ff7.StatusWord
	sink Sink
	now  func() time.Time
}

func NewDetector(sink Sink) *Detector {
	return &Detector{
		prev: make(map[int]ff7.StatusWord),
		sink: sink,
		now:  time.Now,
	}
}

// Reset clears the previous-status table.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	clear(d.prev)
}

// Observe runs one detection pass against st.
//
// Outside battle the table is cleared. Inside battle, an actor with no
// previous entry is seeded without emitting; afterwards the table holds
// exactly the statuses of the actors present in st.
func (d *Detector) Observe(st *decoder.State) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if st == nil || st.Module != ff7.ModuleBattle {
		clear(d.prev)
		return
	}

	ts := d.now().UnixMilli()
	cur := make(map[int]ff7.StatusWord, ff7.BattleSlots)

	for i := 0; i < ff7.BattleSlots; i++ {
		status, ok := st.ActorStatus(i)
		if !ok {
			continue
		}
		cur[i] = status

		prev, seen := d.prev[i]
		if !seen || prev == status {
			continue
		}
		changes := Diff(prev, status)
		if len(changes) == 0 {
			continue
		}
		if d.sink == nil {
			continue
		}
		if err := d.sink.Append(Event{TargetIndex: i, Changes: changes, Timestamp: ts}); err != nil {
			log.Printf("battlelog: append failed (target=%d err=%v)", i, err)
		}
	}

	d.prev = cur
}

// Previous returns a copy of the previous-status table.
func (d *Detector) Previous() map[int]ff7.StatusWord {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[int]ff7.StatusWord, len(d.prev))
	for k, v := range d.prev {
		out[k] = v
	}
	return out
}
