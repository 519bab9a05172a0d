package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/battled-crew/battled-system/models"
	"github.com/battled-crew/battled-system/repositories"
	"github.com/battled-crew/battled-system/storage"
)

// CategoryStanding is one category's live ranking: preselection scores
// during the early phases, pool points once pools exist.
type CategoryStanding struct {
	Category   models.Category     `json:"category"`
	Performers []*models.Performer `json:"performers"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, name string) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	RenameTournament(ctx context.Context, id int, name string) (*models.Tournament, error)
	// DeleteTournament removes the tournament and all owned rows in one
	// transaction.
	DeleteTournament(ctx context.Context, id int) error
	// UploadPoster stores the poster image in object storage and records
	// its key on the tournament. A previous poster is removed best-effort.
	UploadPoster(ctx context.Context, id int, contentType string, body io.Reader) (*models.Tournament, error)
	// Standings returns each category's current ranking.
	Standings(ctx context.Context, tournamentID int) ([]CategoryStanding, error)
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	categoryRepo   repositories.CategoryRepository
	performerRepo  repositories.PerformerRepository
	battleRepo     repositories.BattleRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	categoryRepo repositories.CategoryRepository,
	performerRepo repositories.PerformerRepository,
	battleRepo repositories.BattleRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		categoryRepo:   categoryRepo,
		performerRepo:  performerRepo,
		battleRepo:     battleRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, name string) (*models.Tournament, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	t := &models.Tournament{
		Name:   name,
		Status: models.StatusCreated,
		Phase:  models.PhaseRegistration,
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, fmt.Errorf("%w: name %q is taken", ErrValidationFailed, name)
		}
		return nil, err
	}
	s.logger.Info("tournament created", slog.Int("tournament_id", t.ID), slog.String("name", t.Name))
	return t, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	s.populatePosterURL(t)
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	list, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range list {
		s.populatePosterURL(&list[i])
	}
	return list, nil
}

func (s *tournamentService) RenameTournament(ctx context.Context, id int, name string) (*models.Tournament, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if err := s.tournamentRepo.UpdateName(ctx, id, name); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return nil, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrTournamentNameConflict):
			return nil, fmt.Errorf("%w: name %q is taken", ErrValidationFailed, name)
		default:
			return nil, err
		}
	}
	return s.GetTournament(ctx, id)
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id int) error {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := s.tournamentRepo.Delete(ctx, tx, id); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error("rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tournament delete: %w", err)
	}

	if t.PosterKey != nil && s.uploader != nil {
		if delErr := s.uploader.Delete(ctx, *t.PosterKey); delErr != nil {
			s.logger.Warn("failed to delete poster object", slog.Int("tournament_id", id), slog.Any("error", delErr))
		}
	}
	s.logger.Info("tournament deleted", slog.Int("tournament_id", id))
	return nil
}

func (s *tournamentService) UploadPoster(ctx context.Context, id int, contentType string, body io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: poster storage is not configured", ErrValidationFailed)
	}
	t, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	ext, err := imageExtension(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("tournaments/%d/poster%s", t.ID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to store poster: %w", err)
	}

	oldKey := t.PosterKey
	if err := s.tournamentRepo.UpdatePosterKey(ctx, t.ID, &key); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != key {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.Warn("failed to delete previous poster", slog.Int("tournament_id", t.ID), slog.Any("error", delErr))
		}
	}

	t.PosterKey = &key
	s.populatePosterURL(t)
	return t, nil
}

func (s *tournamentService) Standings(ctx context.Context, tournamentID int) ([]CategoryStanding, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	categories, err := s.categoryRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}

	standings := make([]CategoryStanding, 0, len(categories))
	for _, category := range categories {
		performers, err := s.performerRepo.ListByCategory(ctx, nil, category.ID)
		if err != nil {
			return nil, err
		}
		sortStanding(t.Phase, performers)
		standings = append(standings, CategoryStanding{Category: category, Performers: performers})
	}
	return standings, nil
}

// sortStanding orders performers for display: pool points once pools run,
// preselection scores before that. Ties keep registration order.
func sortStanding(phase models.TournamentPhase, performers []*models.Performer) {
	byPoints := phase == models.PhasePools || phase == models.PhaseFinals || phase == models.PhaseCompleted
	sort.SliceStable(performers, func(i, j int) bool {
		if byPoints && performers[i].PoolPoints() != performers[j].PoolPoints() {
			return performers[i].PoolPoints() > performers[j].PoolPoints()
		}
		if performers[i].Score() != performers[j].Score() {
			return performers[i].Score() > performers[j].Score()
		}
		return performers[i].ID < performers[j].ID
	})
}

func (s *tournamentService) populatePosterURL(t *models.Tournament) {
	if t.PosterKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*t.PosterKey)
		t.PosterURL = &url
	}
}

func imageExtension(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("unsupported poster content type %q", contentType)
	}
}
