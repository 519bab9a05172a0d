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
	ErrCategoryNotFound          = errors.New("category not found")
	ErrCategoryNameConflict      = errors.New("category name already exists in this tournament")
	ErrCategoryInvalidTournament = errors.New("invalid tournament reference")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Category, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Category, error)
	SetWinner(ctx context.Context, exec SQLExecutor, categoryID int, performerID int) error
	// DeleteCascade removes the category and every owned child row inside
	// the given transaction. A bare single-row delete would orphan
	// performers and block their dancers from re-registering.
	DeleteCascade(ctx context.Context, tx *sql.Tx, id int) error
}

type postgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

func (r *postgresCategoryRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const categoryColumns = `id, tournament_id, name, is_duo, groups_ideal, performers_ideal, winner_performer_id, created_at`

func (r *postgresCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (tournament_id, name, is_duo, groups_ideal, performers_ideal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		c.TournamentID, c.Name, c.IsDuo, c.GroupsIdeal, c.PerformersIdeal,
	).Scan(&c.ID, &c.CreatedAt)
	return r.handleCategoryError(err)
}

func (r *postgresCategoryRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Category, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	c := &models.Category{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.TournamentID, &c.Name, &c.IsDuo, &c.GroupsIdeal, &c.PerformersIdeal, &c.WinnerPerformerID, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresCategoryRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Category, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE tournament_id = $1 ORDER BY id`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if scanErr := rows.Scan(
			&c.ID, &c.TournamentID, &c.Name, &c.IsDuo, &c.GroupsIdeal, &c.PerformersIdeal, &c.WinnerPerformerID, &c.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *postgresCategoryRepository) SetWinner(ctx context.Context, exec SQLExecutor, categoryID int, performerID int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE categories SET winner_performer_id = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, performerID, categoryID)
	if err != nil {
		return fmt.Errorf("failed to set category winner: %w", err)
	}
	return checkAffectedRows(result, ErrCategoryNotFound)
}

func (r *postgresCategoryRepository) DeleteCascade(ctx context.Context, tx *sql.Tx, id int) error {
	statements := []string{
		`DELETE FROM battles WHERE category_id = $1`,
		`UPDATE performers SET pool_id = NULL WHERE category_id = $1`,
		`DELETE FROM pools WHERE category_id = $1`,
		`DELETE FROM performers WHERE category_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to cascade category delete: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return r.handleCategoryError(err)
	}
	return checkAffectedRows(result, ErrCategoryNotFound)
}

func (r *postgresCategoryRepository) handleCategoryError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "categories_tournament_id_name_key" {
				return ErrCategoryNameConflict
			}
		case "23503":
			if pqErr.Constraint == "categories_tournament_id_fkey" {
				return ErrCategoryInvalidTournament
			}
		}
	}
	return err
}
