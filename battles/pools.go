package battles

import (
	"fmt"

	"github.com/battled-crew/battled-system/models"
)

// AllocatePools deals the seeded qualifier list into poolCount pools with a
// snake draft: seeds flow 1..N across the pools, then N..1, alternating
// direction every pass. This balances pool sizes (never differing by more
// than one) and spreads strong seeds evenly regardless of remainder.
func AllocatePools(poolCount int, seeded []*models.Performer) ([][]*models.Performer, error) {
	if poolCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPoolCount, poolCount)
	}
	if len(seeded) < poolCount {
		return nil, fmt.Errorf("%w: %d qualified performers cannot fill %d pools",
			ErrNotEnoughPerformers, len(seeded), poolCount)
	}

	pools := make([][]*models.Performer, poolCount)
	idx, dir := 0, 1
	for _, p := range seeded {
		pools[idx] = append(pools[idx], p)
		next := idx + dir
		if next == poolCount || next < 0 {
			dir = -dir
		} else {
			idx = next
		}
	}
	return pools, nil
}
