package models

import "time"

type BattlePhase string

const (
	BattlePreselection BattlePhase = "preselection"
	BattlePool         BattlePhase = "pool"
	BattleTiebreak     BattlePhase = "tiebreak"
	BattleFinals       BattlePhase = "finals"
)

type BattleStatus string

const (
	BattlePending   BattleStatus = "pending"
	BattleActive    BattleStatus = "active"
	BattleCompleted BattleStatus = "completed"
)

// Battle is a head-to-head between two performers. Battles are append-only:
// they move pending → active → completed and are never deleted.
type Battle struct {
	ID            int          `json:"id" db:"id"`
	TournamentID  int          `json:"tournament_id" db:"tournament_id"`
	CategoryID    int          `json:"category_id" db:"category_id"`
	PoolID        *int         `json:"pool_id,omitempty" db:"pool_id"`
	Phase         BattlePhase  `json:"phase" db:"phase"`
	Status        BattleStatus `json:"status" db:"status"`
	SequenceOrder int          `json:"sequence_order" db:"sequence_order"`

	// Sides are nullable: finals bracket battles are created before their
	// feeding battles complete and receive performers via winner
	// propagation.
	P1ID *int `json:"p1_id,omitempty" db:"p1_id"`
	P2ID *int `json:"p2_id,omitempty" db:"p2_id"`

	// Outcome. Which fields apply depends on Phase: scores for preselection,
	// winner-or-draw for pool, winner-only for finals and tiebreak.
	WinnerID *int     `json:"winner_id,omitempty" db:"winner_id"`
	IsDraw   bool     `json:"is_draw" db:"is_draw"`
	ScoreP1  *float64 `json:"score_p1,omitempty" db:"score_p1"`
	ScoreP2  *float64 `json:"score_p2,omitempty" db:"score_p2"`

	// Single-elimination linkage for finals battles.
	Round        *int `json:"round,omitempty" db:"round"`
	NextBattleID *int `json:"next_battle_id,omitempty" db:"next_battle_id"`
	NextSlot     *int `json:"next_slot,omitempty" db:"next_slot"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HasPerformer reports whether the performer is on either side.
func (b Battle) HasPerformer(performerID int) bool {
	return (b.P1ID != nil && *b.P1ID == performerID) || (b.P2ID != nil && *b.P2ID == performerID)
}

// BothSidesSet reports whether the battle has both performers assigned; a
// battle cannot start until winner propagation has filled both slots.
func (b Battle) BothSidesSet() bool {
	return b.P1ID != nil && b.P2ID != nil
}
