package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battled-crew/battled-system/models"
)

func tournamentIn(phase models.TournamentPhase) *models.Tournament {
	return &models.Tournament{
		ID:      1,
		Name:    "Battle-D Finals Night",
		Status:  models.StatusForPhase(phase),
		Phase:   phase,
		Version: 3,
	}
}

func snapshotCategory(groupsIdeal, performersIdeal int) models.Category {
	return models.Category{
		ID:              10,
		TournamentID:    1,
		Name:            "breaking 1v1",
		GroupsIdeal:     groupsIdeal,
		PerformersIdeal: performersIdeal,
	}
}

func scoredPerformer(id int, score float64) *models.Performer {
	return &models.Performer{ID: id, TournamentID: 1, CategoryID: 10, DancerID: 100 + id, PreselectionScore: &score}
}

func completedPreselection(id, p1, p2 int) *models.Battle {
	return &models.Battle{
		ID: id, TournamentID: 1, CategoryID: 10,
		Phase: models.BattlePreselection, Status: models.BattleCompleted,
		P1ID: &p1, P2ID: &p2,
	}
}

func TestPlanAdvanceFromCompletedFails(t *testing.T) {
	_, _, err := planAdvance(tournamentIn(models.PhaseCompleted), nil, 1)
	assert.ErrorIs(t, err, ErrTournamentCompleted)
}

func TestPlanAdvanceRegistrationBlockedByShortfall(t *testing.T) {
	cat := snapshotCategory(2, 2)
	snaps := []categorySnapshot{{
		category:   cat,
		performers: []*models.Performer{scoredPerformer(1, 0), scoredPerformer(2, 0)},
	}}

	plan, validation, err := planAdvance(tournamentIn(models.PhaseRegistration), snaps, 1)
	require.NoError(t, err)
	assert.False(t, validation.OK())
	assert.Nil(t, plan)
}

func TestPlanAdvanceRegistrationToPreselection(t *testing.T) {
	cat := snapshotCategory(2, 2)
	performers := []*models.Performer{}
	for i := 1; i <= 5; i++ {
		performers = append(performers, &models.Performer{ID: i, TournamentID: 1, CategoryID: 10, DancerID: 100 + i})
	}
	snaps := []categorySnapshot{{category: cat, performers: performers}}

	plan, validation, err := planAdvance(tournamentIn(models.PhaseRegistration), snaps, 1)
	require.NoError(t, err)
	require.True(t, validation.OK())
	require.NotNil(t, plan)

	assert.Equal(t, models.PhasePreselection, plan.toPhase)
	assert.Equal(t, models.StatusActive, plan.toStatus)

	// 5 performers: one bye (the last registered), two battles.
	assert.Equal(t, 5, plan.byes[cat.ID])
	require.Len(t, plan.preselection, 1)
	assert.Len(t, plan.preselection[0], 2)
}

func TestPlanAdvancePreselectionBlockedByPendingBattles(t *testing.T) {
	cat := snapshotCategory(2, 2)
	p1, p2 := 1, 2
	snaps := []categorySnapshot{{
		category:   cat,
		performers: []*models.Performer{scoredPerformer(1, 8), scoredPerformer(2, 7)},
		battles: []*models.Battle{{
			ID: 1, CategoryID: 10, Phase: models.BattlePreselection,
			Status: models.BattleActive, P1ID: &p1, P2ID: &p2,
		}},
	}}

	plan, validation, err := planAdvance(tournamentIn(models.PhasePreselection), snaps, 1)
	require.NoError(t, err)
	assert.False(t, validation.OK())
	assert.Nil(t, plan)
	assert.Contains(t, validation.Errors[0], "not completed")
}

func TestPlanAdvancePreselectionBlockedByBoundaryTie(t *testing.T) {
	cat := snapshotCategory(2, 2) // 4 slots
	performers := []*models.Performer{
		scoredPerformer(1, 9), scoredPerformer(2, 8.5), scoredPerformer(3, 8),
		scoredPerformer(4, 7), scoredPerformer(5, 7),
	}
	snaps := []categorySnapshot{{category: cat, performers: performers}}

	plan, validation, err := planAdvance(tournamentIn(models.PhasePreselection), snaps, 1)
	require.NoError(t, err)
	assert.False(t, validation.OK())
	assert.Nil(t, plan)
	assert.Contains(t, validation.Errors[0], "unresolved ties")
}

func TestPlanAdvancePreselectionToPools(t *testing.T) {
	cat := snapshotCategory(2, 2) // 2 pools, 4 slots
	performers := []*models.Performer{
		scoredPerformer(1, 9), scoredPerformer(2, 8.5), scoredPerformer(3, 8),
		scoredPerformer(4, 7.5), scoredPerformer(5, 7),
	}
	snaps := []categorySnapshot{{
		category:   cat,
		performers: performers,
		battles: []*models.Battle{
			completedPreselection(1, 1, 2),
			completedPreselection(2, 3, 4),
		},
	}}

	plan, validation, err := planAdvance(tournamentIn(models.PhasePreselection), snaps, 1)
	require.NoError(t, err)
	require.True(t, validation.OK())
	require.NotNil(t, plan)

	assert.Equal(t, models.PhasePools, plan.toPhase)
	require.Len(t, plan.pools, 2)

	total := 0
	for _, pp := range plan.pools {
		assert.Equal(t, cat.ID, pp.categoryID)
		total += len(pp.members)
	}
	assert.Equal(t, 4, total, "only the qualified performers enter pools")
}

func poolSnapshot() categorySnapshot {
	cat := snapshotCategory(2, 2)
	poolA, poolB := 1, 2
	performers := []*models.Performer{
		{ID: 1, CategoryID: 10, PoolID: &poolA, PoolWins: 1},
		{ID: 2, CategoryID: 10, PoolID: &poolA, PoolLosses: 1},
		{ID: 3, CategoryID: 10, PoolID: &poolB, PoolWins: 1},
		{ID: 4, CategoryID: 10, PoolID: &poolB, PoolLosses: 1},
	}
	completedPool := func(id, p1, p2, winner int) *models.Battle {
		return &models.Battle{
			ID: id, CategoryID: 10, Phase: models.BattlePool,
			Status: models.BattleCompleted, P1ID: &p1, P2ID: &p2, WinnerID: &winner,
		}
	}
	return categorySnapshot{
		category:   cat,
		performers: performers,
		pools:      []models.Pool{{ID: poolA, CategoryID: 10, Idx: 0}, {ID: poolB, CategoryID: 10, Idx: 1}},
		battles: []*models.Battle{
			completedPool(1, 1, 2, 1),
			completedPool(2, 3, 4, 3),
		},
	}
}

func TestPlanAdvancePoolsToFinals(t *testing.T) {
	snaps := []categorySnapshot{poolSnapshot()}

	plan, validation, err := planAdvance(tournamentIn(models.PhasePools), snaps, 1)
	require.NoError(t, err)
	require.True(t, validation.OK())
	require.NotNil(t, plan)

	assert.Equal(t, models.PhaseFinals, plan.toPhase)
	require.Len(t, plan.finals, 1)
	require.Len(t, plan.finals[0].matches, 1, "two pool winners meet in one final")

	final := plan.finals[0].matches[0]
	assert.Equal(t, 1, *final.Performer1ID)
	assert.Equal(t, 3, *final.Performer2ID)
}

func TestPlanAdvancePoolsBlockedByWinnerTie(t *testing.T) {
	snap := poolSnapshot()
	// Make pool A a dead heat.
	snap.performers[0].PoolWins, snap.performers[0].PoolDraws = 0, 1
	snap.performers[1].PoolLosses, snap.performers[1].PoolDraws = 0, 1
	snap.battles[0].WinnerID = nil
	snap.battles[0].IsDraw = true

	plan, validation, err := planAdvance(tournamentIn(models.PhasePools), []categorySnapshot{snap}, 1)
	require.NoError(t, err)
	assert.False(t, validation.OK())
	assert.Nil(t, plan)
	assert.Contains(t, validation.Errors[0], "ties are not resolved")
}

func TestPlanAdvanceFinalsToCompleted(t *testing.T) {
	snap := poolSnapshot()
	p1, p3, winner := 1, 3, 3
	snap.battles = append(snap.battles, &models.Battle{
		ID: 10, CategoryID: 10, Phase: models.BattleFinals,
		Status: models.BattleCompleted, P1ID: &p1, P2ID: &p3, WinnerID: &winner,
	})

	plan, validation, err := planAdvance(tournamentIn(models.PhaseFinals), []categorySnapshot{snap}, 1)
	require.NoError(t, err)
	require.True(t, validation.OK())
	require.NotNil(t, plan)

	assert.Equal(t, models.PhaseCompleted, plan.toPhase)
	assert.Equal(t, models.StatusCompleted, plan.toStatus)
	assert.Equal(t, 3, plan.winners[10])
}

func TestPlanAdvanceFinalsBlockedByPendingFinal(t *testing.T) {
	snap := poolSnapshot()
	p1, p3 := 1, 3
	snap.battles = append(snap.battles, &models.Battle{
		ID: 10, CategoryID: 10, Phase: models.BattleFinals,
		Status: models.BattlePending, P1ID: &p1, P2ID: &p3,
	})

	plan, validation, err := planAdvance(tournamentIn(models.PhaseFinals), []categorySnapshot{snap}, 1)
	require.NoError(t, err)
	assert.False(t, validation.OK())
	assert.Nil(t, plan)
}

func TestPlanAdvanceTwiceGeneratesBattlesOnce(t *testing.T) {
	cat := snapshotCategory(2, 2)
	performers := []*models.Performer{}
	for i := 1; i <= 5; i++ {
		performers = append(performers, &models.Performer{ID: i, TournamentID: 1, CategoryID: 10, DancerID: 100 + i})
	}
	snaps := []categorySnapshot{{category: cat, performers: performers}}

	plan, validation, err := planAdvance(tournamentIn(models.PhaseRegistration), snaps, 1)
	require.NoError(t, err)
	require.True(t, validation.OK())
	generated := plan.preselection[0]
	require.Len(t, generated, 2)

	// The advance committed: the tournament sits in preselection and the
	// generated battles are on record, still pending. A second advance
	// must refuse rather than produce a second batch.
	snaps[0].battles = generated
	plan2, validation2, err := planAdvance(tournamentIn(models.PhasePreselection), snaps, 1)
	require.NoError(t, err)
	assert.False(t, validation2.OK())
	assert.Nil(t, plan2, "no second generation pass while the first is unplayed")
	assert.Len(t, snaps[0].battles, 2, "battle count matches exactly one generation pass")
}

func TestAdvanceSeedDistinguishesVersions(t *testing.T) {
	a := tournamentIn(models.PhaseRegistration)
	b := tournamentIn(models.PhaseRegistration)
	b.Version++
	assert.NotEqual(t, advanceSeed(a), advanceSeed(b))
}
