// internal/savestate/engine.go
package savestate

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/ff7-replicator/internal/ff7"
	"github.com/tamzrod/ff7-replicator/internal/memory"
)

var (
	// ErrRegionMismatch rejects a record whose region list and byte blocks
	// disagree. Nothing has been written when it is returned.
	ErrRegionMismatch = errors.New("region mismatch")

	// ErrNotFound is returned for unknown ids.
	ErrNotFound = errors.New("save state not found")
)

// Engine captures and restores snapshots through the accessor. It does not
// touch the poll loop.
type Engine struct {
	acc     memory.Accessor
	regions []Region
	now     func() time.Time
	newID   func() string
}

func NewEngine(acc memory.Accessor) *Engine {
	return &Engine{
		acc:     acc,
		regions: CurrentRegions(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Capture reads every region of the current layout, in order, one read per
// region, plus the savemap.
func (e *Engine) Capture(meta Metadata) (FieldState, error) {
	blocks := make([][]byte, 0, len(e.regions))
	for _, r := range e.regions {
		b, err := e.acc.ReadBuffer(r.Start, r.Len())
		if err != nil {
			return FieldState{}, fmt.Errorf("savestate: capture region 0x%x: %w", r.Start, err)
		}
		if len(b) != r.Len() {
			return FieldState{}, fmt.Errorf("savestate: capture region 0x%x: %w", r.Start, memory.ErrShortRead)
		}
		blocks = append(blocks, b)
	}

	savemap, err := e.acc.ReadBuffer(ff7.AddrSavemap, ff7.SavemapSize)
	if err != nil {
		return FieldState{}, fmt.Errorf("savestate: capture savemap: %w", err)
	}

	offsets := make([]Region, len(e.regions))
	copy(offsets, e.regions)

	return FieldState{
		ID:            e.newID(),
		Timestamp:     e.now().UnixMilli(),
		Title:         meta.Title,
		Category:      meta.Category,
		Regions:       blocks,
		RegionOffsets: offsets,
		Savemap:       savemap,
		FieldID:       meta.FieldID,
		FieldName:     meta.FieldName,
		Destination:   meta.Destination,
	}, nil
}

// Restore writes the region blocks back in capture order. Records without a
// region list use the current layout. The savemap copy is informational and
// is not written.
func (e *Engine) Restore(s FieldState) error {
	regions, err := e.plan(s)
	if err != nil {
		return err
	}
	for i, r := range regions {
		if err := e.acc.WriteBuffer(r.Start, s.Regions[i]); err != nil {
			return fmt.Errorf("savestate: restore region %d (0x%x): %w", i, r.Start, err)
		}
	}
	return nil
}

// plan validates the whole record before any write.
func (e *Engine) plan(s FieldState) ([]Region, error) {
	regions := s.RegionOffsets
	if regions == nil {
		regions = e.regions
	}
	if len(regions) != len(s.Regions) {
		return nil, fmt.Errorf("savestate: %w: %d regions, %d blocks", ErrRegionMismatch, len(regions), len(s.Regions))
	}
	for i, r := range regions {
		if r.End < r.Start || len(s.Regions[i]) != r.Len() {
			return nil, fmt.Errorf("savestate: %w: block %d is %d bytes, region 0x%x-0x%x",
				ErrRegionMismatch, i, len(s.Regions[i]), r.Start, r.End)
		}
	}
	return regions, nil
}

// CaptureSnowboard snapshots the minigame object blocks.
func (e *Engine) CaptureSnowboard(title string) (SnowboardState, error) {
	global, err := e.acc.ReadBuffer(ff7.AddrSnowboardGlobalObj, ff7.SnowboardGlobalObjSize)
	if err != nil {
		return SnowboardState{}, fmt.Errorf("savestate: capture snowboard globals: %w", err)
	}
	entities, err := e.acc.ReadBuffer(ff7.AddrSnowboardEntities, ff7.SnowboardEntitiesSize)
	if err != nil {
		return SnowboardState{}, fmt.Errorf("savestate: capture snowboard entities: %w", err)
	}
	return SnowboardState{
		ID:            e.newID(),
		Timestamp:     e.now().UnixMilli(),
		Title:         title,
		GlobalObjData: global,
		EntitiesData:  entities,
	}, nil
}

func (e *Engine) RestoreSnowboard(s SnowboardState) error {
	if len(s.GlobalObjData) != ff7.SnowboardGlobalObjSize || len(s.EntitiesData) != ff7.SnowboardEntitiesSize {
		return fmt.Errorf("savestate: %w: snowboard blocks %d/%d bytes", ErrRegionMismatch, len(s.GlobalObjData), len(s.EntitiesData))
	}
	if err := e.acc.WriteBuffer(ff7.AddrSnowboardGlobalObj, s.GlobalObjData); err != nil {
		return fmt.Errorf("savestate: restore snowboard globals: %w", err)
	}
	if err := e.acc.WriteBuffer(ff7.AddrSnowboardEntities, s.EntitiesData); err != nil {
		return fmt.Errorf("savestate: restore snowboard entities: %w", err)
	}
	return nil
}
