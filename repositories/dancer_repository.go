package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/battled-crew/battled-system/models"
)

var ErrDancerNotFound = errors.New("dancer not found")

type DancerRepository interface {
	Create(ctx context.Context, dancer *models.Dancer) error
	GetByID(ctx context.Context, id int) (*models.Dancer, error)
	List(ctx context.Context, limit, offset int) ([]models.Dancer, error)
}

type postgresDancerRepository struct {
	db *sql.DB
}

func NewPostgresDancerRepository(db *sql.DB) DancerRepository {
	return &postgresDancerRepository{db: db}
}

func (r *postgresDancerRepository) Create(ctx context.Context, d *models.Dancer) error {
	query := `INSERT INTO dancers (name) VALUES ($1) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, d.Name).Scan(&d.ID, &d.CreatedAt)
}

func (r *postgresDancerRepository) GetByID(ctx context.Context, id int) (*models.Dancer, error) {
	d := &models.Dancer{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM dancers WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDancerNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *postgresDancerRepository) List(ctx context.Context, limit, offset int) ([]models.Dancer, error) {
	query := `SELECT id, name, created_at FROM dancers ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dancers := make([]models.Dancer, 0)
	for rows.Next() {
		var d models.Dancer
		if scanErr := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		dancers = append(dancers, d)
	}
	return dancers, rows.Err()
}
