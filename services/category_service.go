package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/battled-crew/battled-system/models"
	"github.com/battled-crew/battled-system/repositories"
)

type CreateCategoryInput struct {
	TournamentID    int    `json:"tournament_id"`
	Name            string `json:"name"`
	IsDuo           bool   `json:"is_duo"`
	GroupsIdeal     int    `json:"groups_ideal"`
	PerformersIdeal int    `json:"performers_ideal"`
}

type CategoryService interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error)
	GetCategory(ctx context.Context, id int) (*models.Category, error)
	ListCategories(ctx context.Context, tournamentID int) ([]models.Category, error)
	// DeleteCategory removes the category with all of its performers, pools
	// and battles. Only allowed while registration is open.
	DeleteCategory(ctx context.Context, id int) error
}

type categoryService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	categoryRepo   repositories.CategoryRepository
	logger         *slog.Logger
}

func NewCategoryService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	categoryRepo repositories.CategoryRepository,
	logger *slog.Logger,
) CategoryService {
	return &categoryService{
		db:             db,
		tournamentRepo: tournamentRepo,
		categoryRepo:   categoryRepo,
		logger:         logger,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrCategoryNameRequired
	}
	if input.GroupsIdeal < 1 || input.PerformersIdeal < 2 {
		return nil, fmt.Errorf("%w: a category needs at least 1 group of at least 2 performers", ErrValidationFailed)
	}

	t, err := s.tournamentRepo.GetByID(ctx, nil, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if result := ValidateCategoryCreation(t); !result.OK() {
		return nil, ErrCategoryCreationClosed
	}

	c := &models.Category{
		TournamentID:    t.ID,
		Name:            input.Name,
		IsDuo:           input.IsDuo,
		GroupsIdeal:     input.GroupsIdeal,
		PerformersIdeal: input.PerformersIdeal,
	}
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCategoryNameConflict):
			return nil, fmt.Errorf("%w: category %q already exists", ErrValidationFailed, c.Name)
		case errors.Is(err, repositories.ErrCategoryInvalidTournament):
			return nil, ErrTournamentNotFound
		default:
			return nil, err
		}
	}
	s.logger.Info("category created",
		slog.Int("tournament_id", t.ID),
		slog.Int("category_id", c.ID),
		slog.String("name", c.Name))
	return c, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	c, err := s.categoryRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *categoryService) ListCategories(ctx context.Context, tournamentID int) ([]models.Category, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return s.categoryRepo.ListByTournament(ctx, nil, tournamentID)
}

func (s *categoryService) DeleteCategory(ctx context.Context, id int) error {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	t, err := s.tournamentRepo.GetByID(ctx, nil, c.TournamentID)
	if err != nil {
		return err
	}
	if result := ValidateCategoryDeletion(t); !result.OK() {
		return ErrCategoryDeletionClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := s.categoryRepo.DeleteCascade(ctx, tx, id); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error("rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category delete: %w", err)
	}
	s.logger.Info("category deleted", slog.Int("category_id", id))
	return nil
}
