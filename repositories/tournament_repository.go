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
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrTournamentVersionStale = errors.New("tournament row was modified concurrently")
)

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
	Phase  *models.TournamentPhase
	Limit  int
	Offset int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// GetByIDForShare reads the tournament under a shared row lock, so a
	// phase check made inside exec's transaction stays valid until commit.
	// Blocks while an advance holds the exclusive lock.
	GetByIDForShare(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// GetByIDForUpdate reads the tournament under an exclusive row lock,
	// serializing phase advances against in-flight roster mutations.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdateName(ctx context.Context, id int, name string) error
	// UpdatePhaseStatus moves the tournament to a new phase/status pair with
	// an optimistic version check: the update only applies when the stored
	// version still matches expectedVersion, otherwise
	// ErrTournamentVersionStale is returned.
	UpdatePhaseStatus(ctx context.Context, exec SQLExecutor, id int, phase models.TournamentPhase, status models.TournamentStatus, expectedVersion int) error
	UpdatePosterKey(ctx context.Context, id int, posterKey *string) error
	// Delete removes the tournament and, via explicit child traversal inside
	// the given transaction, everything beneath it.
	Delete(ctx context.Context, tx *sql.Tx, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `id, name, status, phase, version, poster_key, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, status, phase, version)
		VALUES ($1, $2, $3, 1)
		RETURNING id, version, created_at`

	err := r.db.QueryRowContext(ctx, query, t.Name, t.Status, t.Phase).
		Scan(&t.ID, &t.Version, &t.CreatedAt)
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.getByID(ctx, exec, id, "")
}

func (r *postgresTournamentRepository) GetByIDForShare(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.getByID(ctx, exec, id, " FOR SHARE")
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.getByID(ctx, exec, id, " FOR UPDATE")
}

func (r *postgresTournamentRepository) getByID(ctx context.Context, exec SQLExecutor, id int, lock string) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1` + lock

	t := &models.Tournament{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Status, &t.Phase, &t.Version, &t.PosterKey, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Phase != nil {
		query += fmt.Sprintf(" AND phase = $%d", argID)
		args = append(args, *filter.Phase)
		argID++
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(&t.ID, &t.Name, &t.Status, &t.Phase, &t.Version, &t.PosterKey, &t.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) UpdateName(ctx context.Context, id int, name string) error {
	query := `UPDATE tournaments SET name = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, name, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdatePhaseStatus(ctx context.Context, exec SQLExecutor, id int, phase models.TournamentPhase, status models.TournamentStatus, expectedVersion int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments
		SET phase = $1, status = $2, version = version + 1
		WHERE id = $3 AND version = $4`

	result, err := executor.ExecContext(ctx, query, phase, status, id, expectedVersion)
	if err != nil {
		return r.handleTournamentError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		// Either the row is gone or another advance won the race; tell the
		// two apart so the caller can report the right error.
		if _, getErr := r.GetByID(ctx, executor, id); getErr != nil {
			return getErr
		}
		return ErrTournamentVersionStale
	}
	return nil
}

func (r *postgresTournamentRepository) UpdatePosterKey(ctx context.Context, id int, posterKey *string) error {
	query := `UPDATE tournaments SET poster_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, posterKey, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament poster key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// Delete traverses the ownership chain explicitly rather than relying on a
// bare single-table DELETE: battles, pool memberships, performers and pools
// go first, then categories, then the tournament row itself.
func (r *postgresTournamentRepository) Delete(ctx context.Context, tx *sql.Tx, id int) error {
	statements := []string{
		`DELETE FROM battles WHERE tournament_id = $1`,
		`UPDATE performers SET pool_id = NULL WHERE tournament_id = $1`,
		`DELETE FROM pools WHERE category_id IN (SELECT id FROM categories WHERE tournament_id = $1)`,
		`DELETE FROM performers WHERE tournament_id = $1`,
		`DELETE FROM categories WHERE tournament_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to cascade tournament delete: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" && pqErr.Constraint == "tournaments_name_key" {
			return ErrTournamentNameConflict
		}
	}
	return err
}
