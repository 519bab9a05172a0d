package battles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battled-crew/battled-system/models"
)

func scored(id int, score float64) *models.Performer {
	return &models.Performer{ID: id, PreselectionScore: &score}
}

func guest(id int) *models.Performer {
	return &models.Performer{ID: id, IsGuest: true}
}

func completedTiebreak(id, p1, p2, winner int) *models.Battle {
	return &models.Battle{
		ID:       id,
		Phase:    models.BattleTiebreak,
		Status:   models.BattleCompleted,
		P1ID:     &p1,
		P2ID:     &p2,
		WinnerID: &winner,
	}
}

func TestQualifyGuestsSeedFirst(t *testing.T) {
	// 2 groups of 2 => 4 slots
	category := models.Category{GroupsIdeal: 2, PerformersIdeal: 2}
	performers := []*models.Performer{
		scored(1, 9.5),
		scored(2, 8.0),
		scored(3, 7.0),
		guest(4),
	}

	qualified := Qualify(category, performers, nil)
	require.Len(t, qualified, 4)
	assert.Equal(t, 4, qualified[0].ID, "guest seeds first")
	assert.Equal(t, 1, qualified[1].ID)
	assert.Equal(t, 2, qualified[2].ID)
	assert.Equal(t, 3, qualified[3].ID)
}

func TestQualifyByeAdvancesButSeedsLast(t *testing.T) {
	category := models.Category{GroupsIdeal: 2, PerformersIdeal: 2}
	performers := []*models.Performer{
		scored(1, 9.5),
		scored(2, 8.0),
		scored(3, 7.0),
		{ID: 4, PreselectionBye: true},
	}

	qualified := Qualify(category, performers, nil)
	require.Len(t, qualified, 4)
	assert.Equal(t, 4, qualified[3].ID, "bye performer seeds last")
}

func TestQualifyCutsAtSlotCount(t *testing.T) {
	category := models.Category{GroupsIdeal: 1, PerformersIdeal: 4}
	performers := []*models.Performer{
		scored(1, 9.0),
		scored(2, 8.0),
		scored(3, 7.0),
		scored(4, 6.0),
		scored(5, 5.0),
	}

	qualified := Qualify(category, performers, nil)
	require.Len(t, qualified, 4)
	for _, p := range qualified {
		assert.NotEqual(t, 5, p.ID, "lowest score is eliminated")
	}
}

func TestPreselectionBoundaryTiesDetected(t *testing.T) {
	// 4 slots, performers 4 and 5 tied at the cut line.
	category := models.Category{GroupsIdeal: 2, PerformersIdeal: 2}
	performers := []*models.Performer{
		scored(1, 9.0),
		scored(2, 8.5),
		scored(3, 8.0),
		scored(4, 7.0),
		scored(5, 7.0),
	}

	pairs := PreselectionBoundaryTies(category, performers, nil)
	require.Len(t, pairs, 1)
	assert.Equal(t, 4, pairs[0][0].ID)
	assert.Equal(t, 5, pairs[0][1].ID)
}

func TestPreselectionBoundaryTiesNoTie(t *testing.T) {
	category := models.Category{GroupsIdeal: 2, PerformersIdeal: 2}
	performers := []*models.Performer{
		scored(1, 9.0),
		scored(2, 8.5),
		scored(3, 8.0),
		scored(4, 7.5),
		scored(5, 7.0),
	}
	assert.Empty(t, PreselectionBoundaryTies(category, performers, nil))
}

func TestPreselectionBoundaryTiesResolvedByTiebreak(t *testing.T) {
	category := models.Category{GroupsIdeal: 2, PerformersIdeal: 2}
	performers := []*models.Performer{
		scored(1, 9.0),
		scored(2, 8.5),
		scored(3, 8.0),
		scored(4, 7.0),
		scored(5, 7.0),
	}
	tiebreaks := []*models.Battle{completedTiebreak(1, 4, 5, 5)}

	assert.Empty(t, PreselectionBoundaryTies(category, performers, tiebreaks))

	qualified := Qualify(category, performers, tiebreaks)
	require.Len(t, qualified, 4)
	assert.Equal(t, 5, qualified[3].ID, "tiebreak winner takes the last slot")
}

func TestQualifyGuestWinsExactScoreTie(t *testing.T) {
	// One slot left after the guest; a non-guest with the guest score of
	// 10.0 still ranks below the guest.
	category := models.Category{GroupsIdeal: 1, PerformersIdeal: 2}
	performers := []*models.Performer{
		guest(1),
		scored(2, 10.0),
		scored(3, 6.0),
	}

	qualified := Qualify(category, performers, nil)
	require.Len(t, qualified, 2)
	assert.Equal(t, 1, qualified[0].ID)
	assert.Equal(t, 2, qualified[1].ID)
}

func poolMember(id, wins, draws, losses int) *models.Performer {
	return &models.Performer{ID: id, PoolWins: wins, PoolDraws: draws, PoolLosses: losses}
}

func TestPoolWinnerClearLeader(t *testing.T) {
	members := []*models.Performer{
		poolMember(1, 2, 0, 0),
		poolMember(2, 1, 0, 1),
		poolMember(3, 0, 0, 2),
	}
	winner, ok := PoolWinner(members, nil)
	require.True(t, ok)
	assert.Equal(t, 1, winner.ID)
}

func TestPoolWinnerBlockedByUnresolvedTie(t *testing.T) {
	members := []*models.Performer{
		poolMember(1, 1, 1, 0),
		poolMember(2, 1, 1, 0),
		poolMember(3, 0, 0, 2),
	}
	_, ok := PoolWinner(members, nil)
	assert.False(t, ok)

	pairs := PoolWinnerTies(members, nil)
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0][0].ID)
	assert.Equal(t, 2, pairs[0][1].ID)
}

func TestPoolWinnerResolvedByTiebreak(t *testing.T) {
	members := []*models.Performer{
		poolMember(1, 1, 1, 0),
		poolMember(2, 1, 1, 0),
		poolMember(3, 0, 0, 2),
	}
	tiebreaks := []*models.Battle{completedTiebreak(1, 1, 2, 2)}

	assert.Empty(t, PoolWinnerTies(members, tiebreaks))

	winner, ok := PoolWinner(members, tiebreaks)
	require.True(t, ok)
	assert.Equal(t, 2, winner.ID)
}

func TestTiebreakResultsIgnoreIncompleteBattles(t *testing.T) {
	p1, p2 := 1, 2
	pending := &models.Battle{Phase: models.BattleTiebreak, Status: models.BattlePending, P1ID: &p1, P2ID: &p2}
	beat := NewTiebreakResults([]*models.Battle{pending})
	assert.False(t, beat.Resolved(1, 2))
}
