package battles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFinalsNoWinners(t *testing.T) {
	_, err := GenerateFinals(nil)
	assert.ErrorIs(t, err, ErrEmptyCategory)
}

func TestGenerateFinalsSingleWinnerIsChampion(t *testing.T) {
	matches, err := GenerateFinals(makePerformers(1, 0))
	require.NoError(t, err)
	assert.Nil(t, matches)
}

func TestGenerateFinalsTwoWinners(t *testing.T) {
	matches, err := GenerateFinals(makePerformers(2, 0))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	final := matches[0]
	assert.Equal(t, 1, final.Round)
	require.NotNil(t, final.Performer1ID)
	require.NotNil(t, final.Performer2ID)
	assert.Equal(t, 1, *final.Performer1ID)
	assert.Equal(t, 2, *final.Performer2ID)
	assert.Nil(t, final.SourceMatch1UID)
	assert.Nil(t, final.SourceMatch2UID)
}

func TestGenerateFinalsThreeWinnersTopSeedGetsBye(t *testing.T) {
	matches, err := GenerateFinals(makePerformers(3, 0))
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Round 1: seeds 1 and 2 battle, seed 3 is paired with the bye.
	semi := matches[0]
	assert.Equal(t, 1, semi.Round)
	assert.Equal(t, 1, *semi.Performer1ID)
	assert.Equal(t, 2, *semi.Performer2ID)

	// Round 2: the semi winner meets seed 3 directly.
	final := matches[1]
	assert.Equal(t, 2, final.Round)
	require.NotNil(t, final.SourceMatch1UID)
	assert.Equal(t, semi.UID, *final.SourceMatch1UID)
	require.NotNil(t, final.Performer2ID)
	assert.Equal(t, 3, *final.Performer2ID)
	assert.Nil(t, final.SourceMatch2UID)
}

func TestGenerateFinalsFourWinners(t *testing.T) {
	matches, err := GenerateFinals(makePerformers(4, 0))
	require.NoError(t, err)
	require.Len(t, matches, 3)

	rounds := map[int]int{}
	for _, m := range matches {
		rounds[m.Round]++
	}
	assert.Equal(t, 2, rounds[1])
	assert.Equal(t, 1, rounds[2])
}

func TestGenerateFinalsFiveWinners(t *testing.T) {
	matches, err := GenerateFinals(makePerformers(5, 0))
	require.NoError(t, err)

	// Bracket of 8 with 3 byes: two quarterfinals, one semi, one final.
	require.Len(t, matches, 4)

	byRound := map[int][]*FinalsMatch{}
	for _, m := range matches {
		byRound[m.Round] = append(byRound[m.Round], m)
	}
	assert.Len(t, byRound[1], 2)
	assert.Len(t, byRound[2], 1)
	assert.Len(t, byRound[3], 1)

	// Every non-final match feeds exactly one later match.
	sources := map[string]int{}
	for _, m := range matches {
		for _, src := range []*string{m.SourceMatch1UID, m.SourceMatch2UID} {
			if src != nil {
				sources[*src]++
			}
		}
	}
	final := byRound[3][0]
	for _, m := range matches {
		if m.UID == final.UID {
			continue
		}
		assert.Equal(t, 1, sources[m.UID], "match %s must feed one successor", m.UID)
	}
}
