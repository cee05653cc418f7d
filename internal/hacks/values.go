// internal/hacks/values.go
package hacks

import (
	"context"
	"errors"
	"log"

	"github.com/tamzrod/ff7-replicator/internal/decoder"
	"github.com/tamzrod/ff7-replicator/internal/memory"
	"github.com/tamzrod/ff7-replicator/internal/settings"
)

// Values are the last applied hack settings, stored under the "hacks"
// settings key. Nil means never set.
type Values struct {
	Speed        *float64               `json:"speed,omitempty"`
	Encounters   *decoder.EncounterMode `json:"encounters,omitempty"`
	SwirlSkip    *bool                  `json:"swirlSkip,omitempty"`
	InstantATB   *bool                  `json:"instantATB,omitempty"`
	UnfocusPatch *bool                  `json:"unfocusPatch,omitempty"`
}

// Remembered keeps only the values the user asked to re-apply on connect.
func (v Values) Remembered(r settings.RememberedHacks) Values {
	var out Values
	if r.Speed {
		out.Speed = v.Speed
	}
	if r.RandomBattles {
		out.Encounters = v.Encounters
	}
	if r.SwirlSkip {
		out.SwirlSkip = v.SwirlSkip
	}
	if r.InstantATB {
		out.InstantATB = v.InstantATB
	}
	if r.UnfocusPatch {
		out.UnfocusPatch = v.UnfocusPatch
	}
	return out
}

// Empty reports whether no value is set.
func (v Values) Empty() bool {
	return v == Values{}
}

// Apply installs every set value. Failures do not stop the remaining hacks;
// they are joined into the returned error. ErrSpeedHackUnsupported stays
// detectable with errors.Is.
func Apply(ctx context.Context, acc memory.Accessor, v Values) error {
	var errs []error
	add := func(name string, err error) {
		if err != nil {
			log.Printf("hacks: apply %s failed (err=%v)", name, err)
			errs = append(errs, err)
		}
	}

	if v.Speed != nil {
		add("speed", SetSpeed(acc, *v.Speed))
	}
	if v.Encounters != nil {
		add("encounters", SetEncounters(acc, *v.Encounters))
	}
	if v.SwirlSkip != nil {
		add("swirl", SetSwirlSkip(acc, *v.SwirlSkip))
	}
	if v.InstantATB != nil {
		add("instant atb", SetInstantATB(acc, *v.InstantATB))
	}
	if v.UnfocusPatch != nil {
		add("unfocus", SetUnfocusPatch(ctx, acc, *v.UnfocusPatch))
	}
	return errors.Join(errs...)
}
