package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/battled-crew/battled-system/models"
)

var (
	ErrBattleNotFound = errors.New("battle not found")
	// ErrBattleWrongStatus signals that a conditional status update matched
	// no row: the battle exists but is not in the expected state.
	ErrBattleWrongStatus = errors.New("battle is not in the expected status")
)

type ListBattlesFilter struct {
	CategoryID *int
	Phase      *models.BattlePhase
	Status     *models.BattleStatus
}

type BattleRepository interface {
	Create(ctx context.Context, exec SQLExecutor, battle *models.Battle) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Battle, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter ListBattlesFilter) ([]*models.Battle, error)
	// MaxSequenceOrder returns the highest sequence_order assigned in the
	// tournament so far, 0 when no battles exist yet.
	MaxSequenceOrder(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	// MarkActive flips pending → active; ErrBattleWrongStatus when the
	// battle is not pending.
	MarkActive(ctx context.Context, exec SQLExecutor, id int) error
	// CompleteWithOutcome flips active → completed and writes the outcome
	// fields atomically; ErrBattleWrongStatus when the battle is not active,
	// which also serializes concurrent encoders (the second writer matches
	// zero rows).
	CompleteWithOutcome(ctx context.Context, exec SQLExecutor, id int, winnerID *int, isDraw bool, scoreP1, scoreP2 *float64) error
	UpdateNextBattleInfo(ctx context.Context, exec SQLExecutor, id int, nextBattleID *int, nextSlot *int) error
	// SetPerformerSlot places a performer into slot 1 or 2 of a bracket
	// battle (finals winner propagation).
	SetPerformerSlot(ctx context.Context, exec SQLExecutor, id int, slot int, performerID int) error
}

type postgresBattleRepository struct {
	db *sql.DB
}

func NewPostgresBattleRepository(db *sql.DB) BattleRepository {
	return &postgresBattleRepository{db: db}
}

func (r *postgresBattleRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const battleColumns = `id, tournament_id, category_id, pool_id, phase, status, sequence_order,
	p1_id, p2_id, winner_id, is_draw, score_p1, score_p2, round, next_battle_id, next_slot, created_at`

func scanBattle(row interface{ Scan(...interface{}) error }) (*models.Battle, error) {
	b := &models.Battle{}
	err := row.Scan(
		&b.ID, &b.TournamentID, &b.CategoryID, &b.PoolID, &b.Phase, &b.Status, &b.SequenceOrder,
		&b.P1ID, &b.P2ID, &b.WinnerID, &b.IsDraw, &b.ScoreP1, &b.ScoreP2, &b.Round, &b.NextBattleID, &b.NextSlot, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *postgresBattleRepository) Create(ctx context.Context, exec SQLExecutor, b *models.Battle) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO battles (tournament_id, category_id, pool_id, phase, status, sequence_order, p1_id, p2_id, round)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	return executor.QueryRowContext(ctx, query,
		b.TournamentID, b.CategoryID, b.PoolID, b.Phase, b.Status, b.SequenceOrder, b.P1ID, b.P2ID, b.Round,
	).Scan(&b.ID, &b.CreatedAt)
}

func (r *postgresBattleRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Battle, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + battleColumns + ` FROM battles WHERE id = $1`

	b, err := scanBattle(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBattleNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *postgresBattleRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter ListBattlesFilter) ([]*models.Battle, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + battleColumns + ` FROM battles WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	argID := 2

	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND category_id = $%d", argID)
		args = append(args, *filter.CategoryID)
		argID++
	}
	if filter.Phase != nil {
		query += fmt.Sprintf(" AND phase = $%d", argID)
		args = append(args, *filter.Phase)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
	}
	query += " ORDER BY sequence_order"

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	battles := make([]*models.Battle, 0)
	for rows.Next() {
		b, scanErr := scanBattle(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		battles = append(battles, b)
	}
	return battles, rows.Err()
}

func (r *postgresBattleRepository) MaxSequenceOrder(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	var max int
	err := executor.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence_order), 0) FROM battles WHERE tournament_id = $1`, tournamentID,
	).Scan(&max)
	return max, err
}

func (r *postgresBattleRepository) MarkActive(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE battles SET status = $1 WHERE id = $2 AND status = $3`,
		models.BattleActive, id, models.BattlePending,
	)
	if err != nil {
		return err
	}
	return r.checkConditional(ctx, executor, result, id)
}

func (r *postgresBattleRepository) CompleteWithOutcome(ctx context.Context, exec SQLExecutor, id int, winnerID *int, isDraw bool, scoreP1, scoreP2 *float64) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `
		UPDATE battles
		SET status = $1, winner_id = $2, is_draw = $3, score_p1 = $4, score_p2 = $5
		WHERE id = $6 AND status = $7`,
		models.BattleCompleted, winnerID, isDraw, scoreP1, scoreP2, id, models.BattleActive,
	)
	if err != nil {
		return err
	}
	return r.checkConditional(ctx, executor, result, id)
}

func (r *postgresBattleRepository) UpdateNextBattleInfo(ctx context.Context, exec SQLExecutor, id int, nextBattleID *int, nextSlot *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE battles SET next_battle_id = $1, next_slot = $2 WHERE id = $3`,
		nextBattleID, nextSlot, id,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrBattleNotFound)
}

func (r *postgresBattleRepository) SetPerformerSlot(ctx context.Context, exec SQLExecutor, id int, slot int, performerID int) error {
	executor := r.getExecutor(exec)
	column := "p1_id"
	if slot == 2 {
		column = "p2_id"
	} else if slot != 1 {
		return fmt.Errorf("invalid battle slot %d", slot)
	}
	result, err := executor.ExecContext(ctx,
		`UPDATE battles SET `+column+` = $1 WHERE id = $2`, performerID, id,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrBattleNotFound)
}

// checkConditional distinguishes "battle missing" from "battle exists but
// has the wrong status" after a conditional UPDATE matched zero rows.
func (r *postgresBattleRepository) checkConditional(ctx context.Context, executor SQLExecutor, result sql.Result, id int) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}
	if _, getErr := r.GetByID(ctx, executor, id); getErr != nil {
		return getErr
	}
	return ErrBattleWrongStatus
}
