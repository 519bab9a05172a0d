package battles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battled-crew/battled-system/models"
)

func TestGenerateRoundRobinAllPairsOnce(t *testing.T) {
	category := models.Category{ID: 10, TournamentID: 1}
	members := makePerformers(4, 0)

	generated := GenerateRoundRobin(category, 77, members)
	require.Len(t, generated, 6, "4 members yield C(4,2) battles")

	seen := make(map[[2]int]bool)
	for _, b := range generated {
		assert.Equal(t, models.BattlePool, b.Phase)
		assert.Equal(t, models.BattlePending, b.Status)
		require.NotNil(t, b.PoolID)
		assert.Equal(t, 77, *b.PoolID)

		require.True(t, b.BothSidesSet())
		key := [2]int{*b.P1ID, *b.P2ID}
		assert.False(t, seen[key], "pair %v scheduled twice", key)
		seen[key] = true
	}
}

func TestGenerateRoundRobinTwoMembers(t *testing.T) {
	generated := GenerateRoundRobin(models.Category{ID: 10}, 1, makePerformers(2, 0))
	assert.Len(t, generated, 1)
}
