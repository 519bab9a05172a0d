package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/battled-crew/battled-system/models"
)

var ErrPoolNotFound = errors.New("pool not found")

type PoolRepository interface {
	Create(ctx context.Context, exec SQLExecutor, pool *models.Pool) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Pool, error)
	ListByCategory(ctx context.Context, exec SQLExecutor, categoryID int) ([]models.Pool, error)
}

type postgresPoolRepository struct {
	db *sql.DB
}

func NewPostgresPoolRepository(db *sql.DB) PoolRepository {
	return &postgresPoolRepository{db: db}
}

func (r *postgresPoolRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPoolRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Pool) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO pools (category_id, idx, label)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	return executor.QueryRowContext(ctx, query, p.CategoryID, p.Idx, p.Label).Scan(&p.ID, &p.CreatedAt)
}

func (r *postgresPoolRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Pool, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, category_id, idx, label, created_at FROM pools WHERE id = $1`

	p := &models.Pool{}
	err := executor.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.CategoryID, &p.Idx, &p.Label, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPoolRepository) ListByCategory(ctx context.Context, exec SQLExecutor, categoryID int) ([]models.Pool, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, category_id, idx, label, created_at FROM pools WHERE category_id = $1 ORDER BY idx`

	rows, err := executor.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pools := make([]models.Pool, 0)
	for rows.Next() {
		var p models.Pool
		if scanErr := rows.Scan(&p.ID, &p.CategoryID, &p.Idx, &p.Label, &p.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		pools = append(pools, p)
	}
	return pools, rows.Err()
}
