package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPhaseWalksTheFullLifecycle(t *testing.T) {
	order := []TournamentPhase{
		PhaseRegistration, PhasePreselection, PhasePools, PhaseFinals, PhaseCompleted,
	}
	for i := 0; i < len(order)-1; i++ {
		next, ok := NextPhase(order[i])
		require.True(t, ok, "phase %s must have a successor", order[i])
		assert.Equal(t, order[i+1], next)
	}

	_, ok := NextPhase(PhaseCompleted)
	assert.False(t, ok, "completed is terminal")
}

func TestStatusForPhase(t *testing.T) {
	assert.Equal(t, StatusCreated, StatusForPhase(PhaseRegistration))
	assert.Equal(t, StatusActive, StatusForPhase(PhasePreselection))
	assert.Equal(t, StatusActive, StatusForPhase(PhasePools))
	assert.Equal(t, StatusActive, StatusForPhase(PhaseFinals))
	assert.Equal(t, StatusCompleted, StatusForPhase(PhaseCompleted))
}

func TestPoolLabel(t *testing.T) {
	assert.Equal(t, "A", PoolLabel(0))
	assert.Equal(t, "B", PoolLabel(1))
	assert.Equal(t, "Z", PoolLabel(25))
}

func TestHasCapability(t *testing.T) {
	assert.True(t, HasCapability(RoleAdmin, CapManageTournament))
	assert.True(t, HasCapability(RoleStaff, CapAdvancePhase))
	assert.False(t, HasCapability(RoleStaff, CapManageTournament))
	assert.True(t, HasCapability(RoleMC, CapStartBattle))
	assert.False(t, HasCapability(RoleMC, CapEncodeResult))
	assert.True(t, HasCapability(RoleJudge, CapEncodeResult))
	assert.False(t, HasCapability(RoleJudge, CapStartBattle))
	assert.False(t, HasCapability(UserRole("nobody"), CapStartBattle))
}

func TestPerformerScore(t *testing.T) {
	assert.Equal(t, GuestScore, Performer{IsGuest: true}.Score())
	assert.Equal(t, 0.0, Performer{}.Score())

	v := 7.5
	assert.Equal(t, 7.5, Performer{PreselectionScore: &v}.Score())
}

func TestPoolPoints(t *testing.T) {
	p := Performer{PoolWins: 2, PoolDraws: 1, PoolLosses: 3}
	assert.Equal(t, 7, p.PoolPoints())
}

func TestBattleSides(t *testing.T) {
	p1, p2 := 4, 9
	b := Battle{P1ID: &p1, P2ID: &p2}
	assert.True(t, b.BothSidesSet())
	assert.True(t, b.HasPerformer(4))
	assert.True(t, b.HasPerformer(9))
	assert.False(t, b.HasPerformer(5))

	placeholder := Battle{P1ID: &p1}
	assert.False(t, placeholder.BothSidesSet())
}
