package battles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battled-crew/battled-system/models"
)

func makePerformers(n int, guests int) []*models.Performer {
	performers := make([]*models.Performer, 0, n)
	for i := 1; i <= n; i++ {
		performers = append(performers, &models.Performer{
			ID:           i,
			TournamentID: 1,
			CategoryID:   10,
			DancerID:     100 + i,
			IsGuest:      i <= guests,
		})
	}
	return performers
}

func TestGeneratePreselectionEmptyCategory(t *testing.T) {
	_, _, err := GeneratePreselection(models.Category{ID: 10}, nil, 1)
	assert.ErrorIs(t, err, ErrEmptyCategory)
}

func TestGeneratePreselectionAllGuests(t *testing.T) {
	generated, bye, err := GeneratePreselection(models.Category{ID: 10}, makePerformers(4, 4), 1)
	require.NoError(t, err)
	assert.Empty(t, generated)
	assert.Nil(t, bye)
}

func TestGeneratePreselectionEvenCount(t *testing.T) {
	performers := makePerformers(6, 0)
	generated, bye, err := GeneratePreselection(models.Category{ID: 10}, performers, 42)
	require.NoError(t, err)

	assert.Nil(t, bye)
	require.Len(t, generated, 3)

	seen := make(map[int]int)
	for _, b := range generated {
		assert.Equal(t, models.BattlePreselection, b.Phase)
		assert.Equal(t, models.BattlePending, b.Status)
		require.True(t, b.BothSidesSet())
		seen[*b.P1ID]++
		seen[*b.P2ID]++
	}
	for _, p := range performers {
		assert.Equal(t, 1, seen[p.ID], "performer %d should battle exactly once", p.ID)
	}
}

func TestGeneratePreselectionOddCountGivesByeToLastRegistered(t *testing.T) {
	performers := makePerformers(5, 0)
	generated, bye, err := GeneratePreselection(models.Category{ID: 10}, performers, 42)
	require.NoError(t, err)

	require.NotNil(t, bye)
	assert.Equal(t, 5, *bye, "the last registered performer gets the bye")
	require.Len(t, generated, 2)
	for _, b := range generated {
		assert.NotEqual(t, 5, *b.P1ID)
		assert.NotEqual(t, 5, *b.P2ID)
	}
}

func TestGeneratePreselectionGuestsExcluded(t *testing.T) {
	performers := makePerformers(6, 2)
	generated, bye, err := GeneratePreselection(models.Category{ID: 10}, performers, 7)
	require.NoError(t, err)

	assert.Nil(t, bye)
	require.Len(t, generated, 2)
	for _, b := range generated {
		assert.Greater(t, *b.P1ID, 2, "guests never appear in preselection battles")
		assert.Greater(t, *b.P2ID, 2)
	}
}

func TestGeneratePreselectionDeterministicForSameSeed(t *testing.T) {
	first, _, err := GeneratePreselection(models.Category{ID: 10}, makePerformers(8, 0), 99)
	require.NoError(t, err)
	second, _, err := GeneratePreselection(models.Category{ID: 10}, makePerformers(8, 0), 99)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, *first[i].P1ID, *second[i].P1ID)
		assert.Equal(t, *first[i].P2ID, *second[i].P2ID)
	}
}
