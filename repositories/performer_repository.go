package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/battled-crew/battled-system/models"
	"github.com/lib/pq"
)

var (
	ErrPerformerNotFound       = errors.New("performer not found")
	ErrPerformerDancerConflict = errors.New("dancer is already registered in this tournament")
	ErrPerformerInvalidRef     = errors.New("invalid category or dancer reference")
)

type PerformerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, performer *models.Performer) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Performer, error)
	ListByCategory(ctx context.Context, exec SQLExecutor, categoryID int) ([]*models.Performer, error)
	ListByPool(ctx context.Context, exec SQLExecutor, poolID int) ([]*models.Performer, error)
	// DancerRegistered reports whether the dancer already appears in any
	// performer row of the tournament, as lead or as duo partner.
	DancerRegistered(ctx context.Context, exec SQLExecutor, tournamentID, dancerID int) (bool, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	UpdatePreselectionScore(ctx context.Context, exec SQLExecutor, id int, score float64) error
	MarkPreselectionBye(ctx context.Context, exec SQLExecutor, id int) error
	AssignPool(ctx context.Context, exec SQLExecutor, id int, poolID int) error
	// ApplyPoolOutcome bumps one of the win/draw/loss counters.
	ApplyPoolOutcome(ctx context.Context, exec SQLExecutor, id int, wins, draws, losses int) error
}

type postgresPerformerRepository struct {
	db *sql.DB
}

func NewPostgresPerformerRepository(db *sql.DB) PerformerRepository {
	return &postgresPerformerRepository{db: db}
}

func (r *postgresPerformerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const performerColumns = `id, tournament_id, category_id, dancer_id, partner_dancer_id, is_guest,
	preselection_score, preselection_bye, pool_id, pool_wins, pool_draws, pool_losses, created_at`

func scanPerformer(row interface{ Scan(...interface{}) error }) (*models.Performer, error) {
	p := &models.Performer{}
	err := row.Scan(
		&p.ID, &p.TournamentID, &p.CategoryID, &p.DancerID, &p.PartnerDancerID, &p.IsGuest,
		&p.PreselectionScore, &p.PreselectionBye, &p.PoolID, &p.PoolWins, &p.PoolDraws, &p.PoolLosses, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresPerformerRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Performer) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO performers (tournament_id, category_id, dancer_id, partner_dancer_id, is_guest, preselection_score)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		p.TournamentID, p.CategoryID, p.DancerID, p.PartnerDancerID, p.IsGuest, p.PreselectionScore,
	).Scan(&p.ID, &p.CreatedAt)
	return r.handlePerformerError(err)
}

// DancerRegistered checks both roster columns: the single-column unique
// constraints cannot catch a dancer registered as lead in one row and as
// partner in another.
func (r *postgresPerformerRepository) DancerRegistered(ctx context.Context, exec SQLExecutor, tournamentID, dancerID int) (bool, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT EXISTS (
			SELECT 1 FROM performers
			WHERE tournament_id = $1 AND (dancer_id = $2 OR partner_dancer_id = $2)
		)`

	var registered bool
	if err := executor.QueryRowContext(ctx, query, tournamentID, dancerID).Scan(&registered); err != nil {
		return false, fmt.Errorf("failed to check dancer registration: %w", err)
	}
	return registered, nil
}

func (r *postgresPerformerRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Performer, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + performerColumns + ` FROM performers WHERE id = $1`

	p, err := scanPerformer(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPerformerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPerformerRepository) list(ctx context.Context, exec SQLExecutor, where string, arg interface{}) ([]*models.Performer, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + performerColumns + ` FROM performers WHERE ` + where + ` ORDER BY id`

	rows, err := executor.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	performers := make([]*models.Performer, 0)
	for rows.Next() {
		p, scanErr := scanPerformer(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		performers = append(performers, p)
	}
	return performers, rows.Err()
}

func (r *postgresPerformerRepository) ListByCategory(ctx context.Context, exec SQLExecutor, categoryID int) ([]*models.Performer, error) {
	return r.list(ctx, exec, `category_id = $1`, categoryID)
}

func (r *postgresPerformerRepository) ListByPool(ctx context.Context, exec SQLExecutor, poolID int) ([]*models.Performer, error) {
	return r.list(ctx, exec, `pool_id = $1`, poolID)
}

func (r *postgresPerformerRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM performers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPerformerNotFound)
}

func (r *postgresPerformerRepository) UpdatePreselectionScore(ctx context.Context, exec SQLExecutor, id int, score float64) error {
	executor := r.getExecutor(exec)
	// Guest scores are fixed at registration and never overwritten.
	query := `UPDATE performers SET preselection_score = $1 WHERE id = $2 AND is_guest = FALSE`
	result, err := executor.ExecContext(ctx, query, score, id)
	if err != nil {
		return fmt.Errorf("failed to update preselection score: %w", err)
	}
	return checkAffectedRows(result, ErrPerformerNotFound)
}

func (r *postgresPerformerRepository) MarkPreselectionBye(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE performers SET preselection_bye = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark preselection bye: %w", err)
	}
	return checkAffectedRows(result, ErrPerformerNotFound)
}

func (r *postgresPerformerRepository) AssignPool(ctx context.Context, exec SQLExecutor, id int, poolID int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE performers SET pool_id = $1 WHERE id = $2`, poolID, id)
	if err != nil {
		return fmt.Errorf("failed to assign performer to pool: %w", err)
	}
	return checkAffectedRows(result, ErrPerformerNotFound)
}

func (r *postgresPerformerRepository) ApplyPoolOutcome(ctx context.Context, exec SQLExecutor, id int, wins, draws, losses int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE performers
		SET pool_wins = pool_wins + $1, pool_draws = pool_draws + $2, pool_losses = pool_losses + $3
		WHERE id = $4`
	result, err := executor.ExecContext(ctx, query, wins, draws, losses, id)
	if err != nil {
		return fmt.Errorf("failed to apply pool outcome: %w", err)
	}
	return checkAffectedRows(result, ErrPerformerNotFound)
}

func (r *postgresPerformerRepository) handlePerformerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			// (tournament_id, dancer_id) uniqueness: one registration per
			// dancer per tournament, across all categories.
			if pqErr.Constraint == "performers_tournament_id_dancer_id_key" ||
				pqErr.Constraint == "performers_tournament_id_partner_dancer_id_key" {
				return ErrPerformerDancerConflict
			}
		case "23503":
			return ErrPerformerInvalidRef
		}
	}
	return err
}
