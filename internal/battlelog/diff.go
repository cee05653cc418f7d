// internal/battlelog/diff.go
package battlelog

import "github.com/tamzrod/ff7-replicator/internal/ff7"

// Change is one status bit that flipped between two observations.
type Change struct {
	Status    ff7.Status `json:"statusId"`
	Inflicted bool       `json:"inflicted"`
}

// Event groups the changes of one actor at one tick.
type Event struct {
	TargetIndex int      `json:"targetIndex"`
	Changes     []Change `json:"changes"`
	Timestamp   int64    `json:"timestamp"`
}

// Diff lists every status whose membership differs between prev and cur, in
// enumeration order. It is empty iff prev == cur.
func Diff(prev, cur ff7.StatusWord) []Change {
	if prev == cur {
		return nil
	}
	var out []Change
	for _, s := range ff7.AllStatuses {
		had := prev.Has(s)
		has := cur.Has(s)
		if had != has {
			out = append(out, Change{Status: s, Inflicted: has})
		}
	}
	return out
}
