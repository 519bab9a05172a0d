package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/battled-crew/battled-system/models"
)

func battleIn(phase models.BattlePhase) *models.Battle {
	p1, p2 := 1, 2
	return &models.Battle{ID: 7, Phase: phase, Status: models.BattleActive, P1ID: &p1, P2ID: &p2}
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestValidateOutcomePreselectionNeedsBothScores(t *testing.T) {
	b := battleIn(models.BattlePreselection)

	err := validateOutcome(b, EncodeOutcomeInput{ScoreP1: fptr(7.5)})
	assert.ErrorIs(t, err, ErrValidationFailed)

	err = validateOutcome(b, EncodeOutcomeInput{ScoreP1: fptr(7.5), ScoreP2: fptr(6.0)})
	assert.NoError(t, err)
}

func TestValidateOutcomePreselectionScoreRange(t *testing.T) {
	b := battleIn(models.BattlePreselection)

	err := validateOutcome(b, EncodeOutcomeInput{ScoreP1: fptr(10.5), ScoreP2: fptr(6.0)})
	assert.ErrorIs(t, err, ErrValidationFailed)

	err = validateOutcome(b, EncodeOutcomeInput{ScoreP1: fptr(10.0), ScoreP2: fptr(0.0)})
	assert.NoError(t, err)
}

func TestValidateOutcomePoolWinnerOrDraw(t *testing.T) {
	b := battleIn(models.BattlePool)

	assert.NoError(t, validateOutcome(b, EncodeOutcomeInput{WinnerID: iptr(1)}))
	assert.NoError(t, validateOutcome(b, EncodeOutcomeInput{Draw: true}))

	err := validateOutcome(b, EncodeOutcomeInput{})
	assert.ErrorIs(t, err, ErrValidationFailed)

	err = validateOutcome(b, EncodeOutcomeInput{Draw: true, WinnerID: iptr(1)})
	assert.ErrorIs(t, err, ErrValidationFailed)

	err = validateOutcome(b, EncodeOutcomeInput{WinnerID: iptr(99)})
	assert.ErrorIs(t, err, ErrValidationFailed, "winner must be one of the battle's sides")
}

func TestValidateOutcomeFinalsForbidsDraw(t *testing.T) {
	b := battleIn(models.BattleFinals)

	assert.NoError(t, validateOutcome(b, EncodeOutcomeInput{WinnerID: iptr(2)}))

	err := validateOutcome(b, EncodeOutcomeInput{Draw: true})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestValidateOutcomeTiebreakNeedsWinner(t *testing.T) {
	b := battleIn(models.BattleTiebreak)

	err := validateOutcome(b, EncodeOutcomeInput{})
	assert.ErrorIs(t, err, ErrValidationFailed)

	assert.NoError(t, validateOutcome(b, EncodeOutcomeInput{WinnerID: iptr(1)}))
}
