// internal/refdata/attacks.go
package refdata

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"github.com/tamzrod/ff7-replicator/internal/ff7"
	"github.com/tamzrod/ff7-replicator/internal/memory"
)

// DefaultAttackCacheSize is the number of battle formations kept.
const DefaultAttackCacheSize = 64

// AttackCache reads the enemy attack name block on entry to a battle and
// remembers it per battle id. The block is only valid once the battle has
// loaded its enemy data, which is when the poller asks.
type AttackCache struct {
	cache *lru.Cache
}

func NewAttackCache(size int) (*AttackCache, error) {
	if size <= 0 {
		size = DefaultAttackCacheSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("refdata: attack cache: %w", err)
	}
	return &AttackCache{cache: c}, nil
}

func (a *AttackCache) AttackNames(acc memory.Accessor, battleID uint16) ([]string, error) {
	if v, ok := a.cache.Get(battleID); ok {
		return append([]string(nil), v.([]string)...), nil
	}

	b, err := acc.ReadBuffer(ff7.AddrEnemyAttackName, ff7.EnemyAttackCount*ff7.EnemyAttackNameSize)
	if err != nil {
		return nil, fmt.Errorf("refdata: enemy attacks (battle=%d): %w", battleID, err)
	}
	names := make([]string, ff7.EnemyAttackCount)
	for i := range names {
		off := i * ff7.EnemyAttackNameSize
		names[i] = strings.TrimSpace(ff7.DecodeText(b[off : off+ff7.EnemyAttackNameSize]))
	}

	a.cache.Add(battleID, names)
	return append([]string(nil), names...), nil
}

// Len reports the number of cached battles.
func (a *AttackCache) Len() int {
	return a.cache.Len()
}
