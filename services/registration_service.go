package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/battled-crew/battled-system/models"
	"github.com/battled-crew/battled-system/repositories"
)

// RegisterPerformerInput registers a dancer (or, in duo categories, a pair)
// into a tournament category. Guests skip preselection and enter with the
// fixed top score.
type RegisterPerformerInput struct {
	TournamentID    int  `json:"tournament_id"`
	CategoryID      int  `json:"category_id"`
	DancerID        int  `json:"dancer_id"`
	PartnerDancerID *int `json:"partner_dancer_id,omitempty"`
	IsGuest         bool `json:"is_guest"`
}

type RegistrationService interface {
	RegisterPerformer(ctx context.Context, input RegisterPerformerInput) (*models.Performer, error)
	UnregisterPerformer(ctx context.Context, performerID int) error
	ListPerformers(ctx context.Context, categoryID int) ([]*models.Performer, error)
}

type registrationService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	categoryRepo   repositories.CategoryRepository
	performerRepo  repositories.PerformerRepository
	dancerRepo     repositories.DancerRepository
	logger         *slog.Logger
}

func NewRegistrationService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	categoryRepo repositories.CategoryRepository,
	performerRepo repositories.PerformerRepository,
	dancerRepo repositories.DancerRepository,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		db:             db,
		tournamentRepo: tournamentRepo,
		categoryRepo:   categoryRepo,
		performerRepo:  performerRepo,
		dancerRepo:     dancerRepo,
		logger:         logger,
	}
}

// RegisterPerformer runs the phase gate and the roster insert in one
// transaction, reading the tournament FOR SHARE so a concurrent advance
// cannot move the phase between the check and the insert.
func (s *registrationService) RegisterPerformer(ctx context.Context, input RegisterPerformerInput) (*models.Performer, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	p, err := s.registerInTx(ctx, tx, input)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	s.logger.Info("performer registered",
		slog.Int("tournament_id", p.TournamentID),
		slog.Int("category_id", p.CategoryID),
		slog.Int("performer_id", p.ID),
		slog.Bool("is_guest", p.IsGuest))
	return p, nil
}

func (s *registrationService) registerInTx(ctx context.Context, exec repositories.SQLExecutor, input RegisterPerformerInput) (*models.Performer, error) {
	t, err := s.tournamentRepo.GetByIDForShare(ctx, exec, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if result := ValidateRegistrationMutation(t); !result.OK() {
		return nil, ErrRegistrationClosed
	}

	category, err := s.categoryRepo.GetByID(ctx, exec, input.CategoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if category.TournamentID != t.ID {
		return nil, fmt.Errorf("%w: category %d does not belong to tournament %d", ErrValidationFailed, category.ID, t.ID)
	}

	if category.IsDuo {
		if input.PartnerDancerID == nil {
			return nil, fmt.Errorf("%w: duo categories require a partner dancer", ErrValidationFailed)
		}
		if *input.PartnerDancerID == input.DancerID {
			return nil, fmt.Errorf("%w: a dancer cannot partner with themselves", ErrValidationFailed)
		}
	} else if input.PartnerDancerID != nil {
		return nil, fmt.Errorf("%w: partner dancer is only valid in duo categories", ErrValidationFailed)
	}

	dancerIDs := []int{input.DancerID}
	if input.PartnerDancerID != nil {
		dancerIDs = append(dancerIDs, *input.PartnerDancerID)
	}
	for _, id := range dancerIDs {
		if _, err := s.dancerRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrDancerNotFound) {
				return nil, fmt.Errorf("%w: dancer %d", ErrDancerNotFound, id)
			}
			return nil, err
		}
		// One registration per dancer per tournament across both roster
		// columns: a lead in one row may not reappear as a partner in
		// another, which the unique constraints alone cannot reject.
		registered, err := s.performerRepo.DancerRegistered(ctx, exec, t.ID, id)
		if err != nil {
			return nil, err
		}
		if registered {
			return nil, fmt.Errorf("%w: dancer %d", ErrDancerAlreadyRegistered, id)
		}
	}

	p := &models.Performer{
		TournamentID:    t.ID,
		CategoryID:      category.ID,
		DancerID:        input.DancerID,
		PartnerDancerID: input.PartnerDancerID,
		IsGuest:         input.IsGuest,
	}
	if input.IsGuest {
		score := models.GuestScore
		p.PreselectionScore = &score
	}

	if err := s.performerRepo.Create(ctx, exec, p); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPerformerDancerConflict):
			return nil, ErrDancerAlreadyRegistered
		case errors.Is(err, repositories.ErrPerformerInvalidRef):
			return nil, ErrValidationFailed
		default:
			return nil, err
		}
	}
	return p, nil
}

// UnregisterPerformer checks the phase and deletes the roster row in one
// transaction, under the same shared tournament lock as registration.
func (s *registrationService) UnregisterPerformer(ctx context.Context, performerID int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.unregisterInTx(ctx, tx, performerID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit unregistration: %w", err)
	}

	s.logger.Info("performer unregistered", slog.Int("performer_id", performerID))
	return nil
}

func (s *registrationService) unregisterInTx(ctx context.Context, exec repositories.SQLExecutor, performerID int) error {
	p, err := s.performerRepo.GetByID(ctx, exec, performerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPerformerNotFound) {
			return ErrPerformerNotFound
		}
		return err
	}

	t, err := s.tournamentRepo.GetByIDForShare(ctx, exec, p.TournamentID)
	if err != nil {
		return err
	}
	if result := ValidateRegistrationMutation(t); !result.OK() {
		return ErrRegistrationClosed
	}

	if err := s.performerRepo.Delete(ctx, exec, performerID); err != nil {
		if errors.Is(err, repositories.ErrPerformerNotFound) {
			return ErrPerformerNotFound
		}
		return err
	}
	return nil
}

func (s *registrationService) ListPerformers(ctx context.Context, categoryID int) ([]*models.Performer, error) {
	if _, err := s.categoryRepo.GetByID(ctx, nil, categoryID); err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return s.performerRepo.ListByCategory(ctx, nil, categoryID)
}
