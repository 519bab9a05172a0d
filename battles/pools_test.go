package battles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battled-crew/battled-system/models"
)

func TestAllocatePoolsInvalidCount(t *testing.T) {
	_, err := AllocatePools(0, makePerformers(4, 0))
	assert.ErrorIs(t, err, ErrInvalidPoolCount)
}

func TestAllocatePoolsNotEnoughPerformers(t *testing.T) {
	_, err := AllocatePools(3, makePerformers(2, 0))
	assert.ErrorIs(t, err, ErrNotEnoughPerformers)
}

func TestAllocatePoolsSnakeDraft(t *testing.T) {
	pools, err := AllocatePools(2, makePerformers(4, 0))
	require.NoError(t, err)
	require.Len(t, pools, 2)

	// Seeds 1..4 snake as 1/4 and 2/3.
	assert.Equal(t, []int{1, 4}, poolIDs(pools[0]))
	assert.Equal(t, []int{2, 3}, poolIDs(pools[1]))
}

func TestAllocatePoolsSizesDifferByAtMostOne(t *testing.T) {
	for n := 3; n <= 13; n++ {
		for poolCount := 1; poolCount <= 3; poolCount++ {
			if n < poolCount {
				continue
			}
			pools, err := AllocatePools(poolCount, makePerformers(n, 0))
			require.NoError(t, err)

			minSize, maxSize := len(pools[0]), len(pools[0])
			total := 0
			for _, pool := range pools {
				total += len(pool)
				if len(pool) < minSize {
					minSize = len(pool)
				}
				if len(pool) > maxSize {
					maxSize = len(pool)
				}
			}
			assert.Equal(t, n, total)
			assert.LessOrEqual(t, maxSize-minSize, 1, "n=%d pools=%d", n, poolCount)
		}
	}
}

func poolIDs(pool []*models.Performer) []int {
	ids := make([]int, 0, len(pool))
	for _, p := range pool {
		ids = append(ids, p.ID)
	}
	return ids
}
