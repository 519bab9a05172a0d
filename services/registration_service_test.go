package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battled-crew/battled-system/models"
	"github.com/battled-crew/battled-system/repositories"
)

// The fakes embed the repository interfaces so only the methods exercised
// by the registration path need implementations.

type stubTournamentRepo struct {
	repositories.TournamentRepository
	tournament *models.Tournament
}

func (s *stubTournamentRepo) GetByIDForShare(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	if s.tournament == nil || s.tournament.ID != id {
		return nil, repositories.ErrTournamentNotFound
	}
	return s.tournament, nil
}

type stubCategoryRepo struct {
	repositories.CategoryRepository
	category *models.Category
}

func (s *stubCategoryRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Category, error) {
	if s.category == nil || s.category.ID != id {
		return nil, repositories.ErrCategoryNotFound
	}
	return s.category, nil
}

type stubDancerRepo struct {
	repositories.DancerRepository
	known map[int]bool
}

func (s *stubDancerRepo) GetByID(_ context.Context, id int) (*models.Dancer, error) {
	if !s.known[id] {
		return nil, repositories.ErrDancerNotFound
	}
	return &models.Dancer{ID: id}, nil
}

type stubPerformerRepo struct {
	repositories.PerformerRepository
	taken   map[int]bool // dancer ids already on the roster, either column
	checked []int
	created []*models.Performer
}

func (s *stubPerformerRepo) DancerRegistered(_ context.Context, _ repositories.SQLExecutor, _ int, dancerID int) (bool, error) {
	s.checked = append(s.checked, dancerID)
	return s.taken[dancerID], nil
}

func (s *stubPerformerRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Performer) error {
	p.ID = len(s.created) + 1
	s.created = append(s.created, p)
	return nil
}

func registrationFixture(phase models.TournamentPhase, isDuo bool, taken map[int]bool) (*registrationService, *stubPerformerRepo) {
	performers := &stubPerformerRepo{taken: taken}
	svc := &registrationService{
		tournamentRepo: &stubTournamentRepo{tournament: &models.Tournament{ID: 1, Phase: phase}},
		categoryRepo:   &stubCategoryRepo{category: &models.Category{ID: 2, TournamentID: 1, IsDuo: isDuo}},
		performerRepo:  performers,
		dancerRepo:     &stubDancerRepo{known: map[int]bool{7: true, 8: true, 9: true}},
		logger:         slog.Default(),
	}
	return svc, performers
}

func TestRegisterPerformerRejectsDancerOnEitherRosterColumn(t *testing.T) {
	// Dancer 7 is already on the roster, no matter which column holds them.
	svc, performers := registrationFixture(models.PhaseRegistration, false, map[int]bool{7: true})

	_, err := svc.registerInTx(context.Background(), nil, RegisterPerformerInput{
		TournamentID: 1, CategoryID: 2, DancerID: 7,
	})
	assert.ErrorIs(t, err, ErrDancerAlreadyRegistered)
	assert.Empty(t, performers.created)
}

func TestRegisterPerformerChecksDuoPartnerAgainstRoster(t *testing.T) {
	// The partner is taken even though the lead is free.
	svc, performers := registrationFixture(models.PhaseRegistration, true, map[int]bool{8: true})

	partner := 8
	_, err := svc.registerInTx(context.Background(), nil, RegisterPerformerInput{
		TournamentID: 1, CategoryID: 2, DancerID: 7, PartnerDancerID: &partner,
	})
	assert.ErrorIs(t, err, ErrDancerAlreadyRegistered)
	assert.Equal(t, []int{7, 8}, performers.checked, "both dancers of the duo are checked")
	assert.Empty(t, performers.created)
}

func TestRegisterPerformerCreatesWhenRosterIsFree(t *testing.T) {
	svc, performers := registrationFixture(models.PhaseRegistration, false, nil)

	p, err := svc.registerInTx(context.Background(), nil, RegisterPerformerInput{
		TournamentID: 1, CategoryID: 2, DancerID: 9, IsGuest: true,
	})
	require.NoError(t, err)
	require.Len(t, performers.created, 1)
	require.NotNil(t, p.PreselectionScore)
	assert.Equal(t, models.GuestScore, *p.PreselectionScore)
}

func TestRegisterPerformerBlockedOutsideRegistrationPhase(t *testing.T) {
	// The phase gate reads the tournament row inside the caller's
	// transaction, so the check holds against a concurrent advance.
	svc, performers := registrationFixture(models.PhasePools, false, nil)

	_, err := svc.registerInTx(context.Background(), nil, RegisterPerformerInput{
		TournamentID: 1, CategoryID: 2, DancerID: 7,
	})
	assert.ErrorIs(t, err, ErrRegistrationClosed)
	assert.Empty(t, performers.created)
}
