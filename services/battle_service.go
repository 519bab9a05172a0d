package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/battled-crew/battled-system/battles"
	"github.com/battled-crew/battled-system/models"
	"github.com/battled-crew/battled-system/repositories"
)

// EncodeOutcomeInput is the judge-entered result of a battle. Which fields
// are required depends on the battle's phase: scores for preselection,
// winner or draw for pool, winner only for finals and tiebreak.
type EncodeOutcomeInput struct {
	WinnerID *int     `json:"winner_id,omitempty"`
	Draw     bool     `json:"draw"`
	ScoreP1  *float64 `json:"score_p1,omitempty"`
	ScoreP2  *float64 `json:"score_p2,omitempty"`
}

type BattleService interface {
	GetBattle(ctx context.Context, battleID int) (*models.Battle, error)
	// ListQueue returns the tournament's not-yet-completed battles in
	// sequence order, the queue the MC works through.
	ListQueue(ctx context.Context, tournamentID int) ([]*models.Battle, error)
	// StartBattle flips pending → active.
	StartBattle(ctx context.Context, battleID int) (*models.Battle, error)
	// EncodeResult flips active → completed, applies the outcome's side
	// effects (scores, pool standings, finals propagation) and, when it
	// closes out a category's phase, generates any needed tiebreak battles.
	EncodeResult(ctx context.Context, battleID int, outcome EncodeOutcomeInput) (*models.Battle, error)
}

type battleService struct {
	db            *sql.DB
	battleRepo    repositories.BattleRepository
	performerRepo repositories.PerformerRepository
	categoryRepo  repositories.CategoryRepository
	hub           *battles.Hub
	logger        *slog.Logger
}

func NewBattleService(
	db *sql.DB,
	battleRepo repositories.BattleRepository,
	performerRepo repositories.PerformerRepository,
	categoryRepo repositories.CategoryRepository,
	hub *battles.Hub,
	logger *slog.Logger,
) BattleService {
	return &battleService{
		db:            db,
		battleRepo:    battleRepo,
		performerRepo: performerRepo,
		categoryRepo:  categoryRepo,
		hub:           hub,
		logger:        logger,
	}
}

func (s *battleService) GetBattle(ctx context.Context, battleID int) (*models.Battle, error) {
	b, err := s.battleRepo.GetByID(ctx, nil, battleID)
	if err != nil {
		return nil, mapBattleRepoError(err)
	}
	return b, nil
}

func (s *battleService) ListQueue(ctx context.Context, tournamentID int) ([]*models.Battle, error) {
	all, err := s.battleRepo.ListByTournament(ctx, nil, tournamentID, repositories.ListBattlesFilter{})
	if err != nil {
		return nil, err
	}
	queue := make([]*models.Battle, 0, len(all))
	for _, b := range all {
		if b.Status != models.BattleCompleted {
			queue = append(queue, b)
		}
	}
	return queue, nil
}

func (s *battleService) StartBattle(ctx context.Context, battleID int) (*models.Battle, error) {
	b, err := s.battleRepo.GetByID(ctx, nil, battleID)
	if err != nil {
		return nil, mapBattleRepoError(err)
	}
	if !b.BothSidesSet() {
		return nil, fmt.Errorf("%w: battle %d is still waiting for an opponent", ErrInvalidStateTransition, battleID)
	}

	if err := s.battleRepo.MarkActive(ctx, nil, battleID); err != nil {
		return nil, mapBattleRepoError(err)
	}
	b.Status = models.BattleActive

	s.hub.BroadcastToTournament(b.TournamentID, battles.Event{Type: battles.EventBattleStarted, Payload: b})
	return b, nil
}

func (s *battleService) EncodeResult(ctx context.Context, battleID int, outcome EncodeOutcomeInput) (*models.Battle, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	b, err := s.encodeResultInTx(ctx, tx, battleID, outcome)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error("rollback failed", slog.Any("error", rbErr))
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit battle result: %w", err)
	}

	s.hub.BroadcastToTournament(b.TournamentID, battles.Event{Type: battles.EventResultEncoded, Payload: b})
	return b, nil
}

func (s *battleService) encodeResultInTx(ctx context.Context, tx *sql.Tx, battleID int, outcome EncodeOutcomeInput) (*models.Battle, error) {
	b, err := s.battleRepo.GetByID(ctx, tx, battleID)
	if err != nil {
		return nil, mapBattleRepoError(err)
	}
	if err := validateOutcome(b, outcome); err != nil {
		return nil, err
	}

	err = s.battleRepo.CompleteWithOutcome(ctx, tx, battleID, outcome.WinnerID, outcome.Draw, outcome.ScoreP1, outcome.ScoreP2)
	if err != nil {
		return nil, mapBattleRepoError(err)
	}
	b.Status = models.BattleCompleted
	b.WinnerID = outcome.WinnerID
	b.IsDraw = outcome.Draw
	b.ScoreP1 = outcome.ScoreP1
	b.ScoreP2 = outcome.ScoreP2

	switch b.Phase {
	case models.BattlePreselection:
		if err := s.applyPreselectionScores(ctx, tx, b); err != nil {
			return nil, err
		}
		if err := s.resolvePhaseTiebreaks(ctx, tx, b, models.BattlePreselection); err != nil {
			return nil, err
		}
	case models.BattlePool:
		if err := s.applyPoolStandings(ctx, tx, b); err != nil {
			return nil, err
		}
		if err := s.resolvePhaseTiebreaks(ctx, tx, b, models.BattlePool); err != nil {
			return nil, err
		}
	case models.BattleFinals:
		if err := s.propagateFinalsWinner(ctx, tx, b); err != nil {
			return nil, err
		}
	case models.BattleTiebreak:
		// The result itself is the resolution; ranking consults it directly.
	}
	return b, nil
}

// validateOutcome checks the outcome shape against the battle's phase.
func validateOutcome(b *models.Battle, outcome EncodeOutcomeInput) error {
	winnerOnSide := outcome.WinnerID != nil && b.HasPerformer(*outcome.WinnerID)

	switch b.Phase {
	case models.BattlePreselection:
		if outcome.ScoreP1 == nil || outcome.ScoreP2 == nil {
			return fmt.Errorf("%w: preselection results need a score for both sides", ErrValidationFailed)
		}
		if *outcome.ScoreP1 < 0 || *outcome.ScoreP1 > models.GuestScore ||
			*outcome.ScoreP2 < 0 || *outcome.ScoreP2 > models.GuestScore {
			return fmt.Errorf("%w: preselection scores must be between 0 and %.1f", ErrValidationFailed, models.GuestScore)
		}
	case models.BattlePool:
		if outcome.Draw {
			if outcome.WinnerID != nil {
				return fmt.Errorf("%w: a draw cannot also name a winner", ErrValidationFailed)
			}
		} else if !winnerOnSide {
			return fmt.Errorf("%w: pool results need a winner from the battle or a draw", ErrValidationFailed)
		}
	case models.BattleFinals, models.BattleTiebreak:
		if outcome.Draw {
			return fmt.Errorf("%w: draws are not allowed in %s battles", ErrValidationFailed, b.Phase)
		}
		if !winnerOnSide {
			return fmt.Errorf("%w: %s results need a winner from the battle", ErrValidationFailed, b.Phase)
		}
	}
	return nil
}

func (s *battleService) applyPreselectionScores(ctx context.Context, tx *sql.Tx, b *models.Battle) error {
	sides := []struct {
		performerID *int
		score       *float64
	}{
		{b.P1ID, b.ScoreP1},
		{b.P2ID, b.ScoreP2},
	}
	for _, side := range sides {
		if side.performerID == nil || side.score == nil {
			continue
		}
		if err := s.performerRepo.UpdatePreselectionScore(ctx, tx, *side.performerID, *side.score); err != nil {
			return fmt.Errorf("failed to record preselection score: %w", err)
		}
	}
	return nil
}

func (s *battleService) applyPoolStandings(ctx context.Context, tx *sql.Tx, b *models.Battle) error {
	if !b.BothSidesSet() {
		return fmt.Errorf("%w: pool battle %d has a missing side", ErrValidationFailed, b.ID)
	}
	p1, p2 := *b.P1ID, *b.P2ID

	if b.IsDraw {
		if err := s.performerRepo.ApplyPoolOutcome(ctx, tx, p1, 0, 1, 0); err != nil {
			return err
		}
		return s.performerRepo.ApplyPoolOutcome(ctx, tx, p2, 0, 1, 0)
	}

	winner, loser := p1, p2
	if *b.WinnerID == p2 {
		winner, loser = p2, p1
	}
	if err := s.performerRepo.ApplyPoolOutcome(ctx, tx, winner, 1, 0, 0); err != nil {
		return err
	}
	return s.performerRepo.ApplyPoolOutcome(ctx, tx, loser, 0, 0, 1)
}

func (s *battleService) propagateFinalsWinner(ctx context.Context, tx *sql.Tx, b *models.Battle) error {
	if b.NextBattleID == nil || b.NextSlot == nil || b.WinnerID == nil {
		return nil
	}
	if err := s.battleRepo.SetPerformerSlot(ctx, tx, *b.NextBattleID, *b.NextSlot, *b.WinnerID); err != nil {
		return fmt.Errorf("failed to propagate finals winner: %w", err)
	}
	return nil
}

// resolvePhaseTiebreaks runs once the just-encoded battle was the last
// unfinished one of its phase in its category: it detects boundary/points
// ties and appends tiebreak battles to the tournament queue. Created
// tiebreaks are pending battles like any other and block the next phase
// advance until completed.
func (s *battleService) resolvePhaseTiebreaks(ctx context.Context, tx *sql.Tx, b *models.Battle, phase models.BattlePhase) error {
	categoryBattles, err := s.battleRepo.ListByTournament(ctx, tx, b.TournamentID, repositories.ListBattlesFilter{CategoryID: &b.CategoryID})
	if err != nil {
		return err
	}
	for _, other := range categoryBattles {
		if other.Phase == phase && other.Status != models.BattleCompleted {
			return nil // phase not finished yet
		}
	}

	category, err := s.categoryRepo.GetByID(ctx, tx, b.CategoryID)
	if err != nil {
		return err
	}
	performers, err := s.performerRepo.ListByCategory(ctx, tx, b.CategoryID)
	if err != nil {
		return err
	}

	var pairs [][2]*models.Performer
	switch phase {
	case models.BattlePreselection:
		pairs = battles.PreselectionBoundaryTies(*category, performers, categoryBattles)
	case models.BattlePool:
		// Every pool is checked: the category's pool stage just finished.
		byPool := make(map[int][]*models.Performer)
		for _, p := range performers {
			if p.PoolID != nil {
				byPool[*p.PoolID] = append(byPool[*p.PoolID], p)
			}
		}
		for _, members := range byPool {
			pairs = append(pairs, battles.PoolWinnerTies(members, categoryBattles)...)
		}
	}
	if len(pairs) == 0 {
		return nil
	}

	maxSeq, err := s.battleRepo.MaxSequenceOrder(ctx, tx, b.TournamentID)
	if err != nil {
		return err
	}
	for i, pair := range pairs {
		p1, p2 := pair[0].ID, pair[1].ID
		tb := &models.Battle{
			TournamentID:  b.TournamentID,
			CategoryID:    b.CategoryID,
			Phase:         models.BattleTiebreak,
			Status:        models.BattlePending,
			SequenceOrder: maxSeq + 1 + i,
			P1ID:          &p1,
			P2ID:          &p2,
		}
		if phase == models.BattlePool {
			tb.PoolID = pair[0].PoolID
		}
		if err := s.battleRepo.Create(ctx, tx, tb); err != nil {
			return fmt.Errorf("failed to create tiebreak battle: %w", err)
		}
		s.logger.Info("tiebreak battle created",
			slog.Int("category_id", b.CategoryID),
			slog.Int("p1", p1), slog.Int("p2", p2),
			slog.String("after_phase", string(phase)))
	}
	return nil
}

func mapBattleRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrBattleNotFound):
		return ErrBattleNotFound
	case errors.Is(err, repositories.ErrBattleWrongStatus):
		return ErrInvalidStateTransition
	default:
		return err
	}
}
