package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/battled-crew/battled-system/battles"
	"github.com/battled-crew/battled-system/models"
	"github.com/battled-crew/battled-system/repositories"
	"golang.org/x/sync/errgroup"
)

// AdvanceResult is the outcome of an advance attempt. A failed validation
// is a reportable result, not an error: Success is false and Validation
// carries the full list of problems.
type AdvanceResult struct {
	Success    bool               `json:"success"`
	Tournament *models.Tournament `json:"tournament,omitempty"`
	Validation ValidationResult   `json:"validation"`
}

type PhaseService interface {
	// Advance moves the tournament exactly one phase forward, generating
	// the next phase's battles and pools inside a single transaction.
	Advance(ctx context.Context, tournamentID int) (*AdvanceResult, error)
	// PreviewAdvance is the read-only dry run of Advance's validation step,
	// used by the confirm-before-commit flow.
	PreviewAdvance(ctx context.Context, tournamentID int) (ValidationResult, error)
	// GetFullTournament loads the tournament with categories, performers,
	// pools and battles attached.
	GetFullTournament(ctx context.Context, tournamentID int) (*models.Tournament, error)
}

type phaseService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	categoryRepo   repositories.CategoryRepository
	performerRepo  repositories.PerformerRepository
	poolRepo       repositories.PoolRepository
	battleRepo     repositories.BattleRepository
	hub            *battles.Hub
	logger         *slog.Logger
}

func NewPhaseService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	categoryRepo repositories.CategoryRepository,
	performerRepo repositories.PerformerRepository,
	poolRepo repositories.PoolRepository,
	battleRepo repositories.BattleRepository,
	hub *battles.Hub,
	logger *slog.Logger,
) PhaseService {
	return &phaseService{
		db:             db,
		tournamentRepo: tournamentRepo,
		categoryRepo:   categoryRepo,
		performerRepo:  performerRepo,
		poolRepo:       poolRepo,
		battleRepo:     battleRepo,
		hub:            hub,
		logger:         logger,
	}
}

// categorySnapshot bundles everything planAdvance needs about one category.
type categorySnapshot struct {
	category   models.Category
	performers []*models.Performer
	pools      []models.Pool
	battles    []*models.Battle
}

// poolPlan is one pool to create during a pools transition, with its
// members in seed order.
type poolPlan struct {
	categoryID int
	idx        int
	members    []*models.Performer
}

// finalsPlan is one category's finals bracket in intermediate form.
type finalsPlan struct {
	categoryID int
	matches    []*battles.FinalsMatch
}

// advancePlan is the pure output of planning one phase transition. The
// persistence step applies it verbatim.
type advancePlan struct {
	toPhase  models.TournamentPhase
	toStatus models.TournamentStatus

	byes    map[int]int  // categoryID -> performer receiving a preselection bye
	pools   []poolPlan
	finals  []finalsPlan
	winners map[int]int // categoryID -> category winner performer

	// preselection battles per category, in category order; pool and finals
	// battles are produced at persist time from pools/finals above.
	preselection [][]*models.Battle
}

// planAdvance validates and plans the transition out of the tournament's
// current phase. A non-OK ValidationResult means the transition is blocked;
// the returned plan is only meaningful when the result is OK. The seed
// drives preselection pairing and must be stable within one call.
func planAdvance(t *models.Tournament, snaps []categorySnapshot, seed int64) (*advancePlan, ValidationResult, error) {
	switch t.Phase {
	case models.PhaseRegistration:
		return planPreselection(snaps, seed)
	case models.PhasePreselection:
		return planPools(snaps)
	case models.PhasePools:
		return planFinals(snaps)
	case models.PhaseFinals:
		return planCompletion(snaps)
	case models.PhaseCompleted:
		return nil, ValidationResult{}, ErrTournamentCompleted
	default:
		return nil, ValidationResult{}, fmt.Errorf("%w: unknown phase %q", ErrInvalidStateTransition, t.Phase)
	}
}

func planPreselection(snaps []categorySnapshot, seed int64) (*advancePlan, ValidationResult, error) {
	cats := make([]models.Category, len(snaps))
	for i, s := range snaps {
		cats[i] = s.category
		cats[i].Performers = make([]models.Performer, len(s.performers))
		for j, p := range s.performers {
			cats[i].Performers[j] = *p
		}
	}
	result := ValidateRegistrationToPreselection(cats)
	if !result.OK() {
		return nil, result, nil
	}

	plan := &advancePlan{
		toPhase:      models.PhasePreselection,
		toStatus:     models.StatusActive,
		byes:         make(map[int]int),
		preselection: make([][]*models.Battle, 0, len(snaps)),
	}
	for _, s := range snaps {
		generated, byeID, err := battles.GeneratePreselection(s.category, s.performers, seed)
		if err != nil {
			return nil, result, fmt.Errorf("category %q: %w", s.category.Name, err)
		}
		if byeID != nil {
			plan.byes[s.category.ID] = *byeID
		}
		plan.preselection = append(plan.preselection, generated)
	}
	return plan, result, nil
}

func planPools(snaps []categorySnapshot) (*advancePlan, ValidationResult, error) {
	var result ValidationResult
	plan := &advancePlan{
		toPhase:  models.PhasePools,
		toStatus: models.StatusActive,
	}

	for _, s := range snaps {
		if n := countUnfinished(s.battles, models.BattlePreselection); n > 0 {
			result.addError("category %q: %d preselection battles not completed yet", s.category.Name, n)
			continue
		}
		if n := countUnfinished(s.battles, models.BattleTiebreak); n > 0 {
			result.addError("category %q: %d tiebreak battles still pending", s.category.Name, n)
			continue
		}
		if ties := battles.PreselectionBoundaryTies(s.category, s.performers, s.battles); len(ties) > 0 {
			result.addError("category %q: %d unresolved ties at the qualification boundary", s.category.Name, len(ties))
			continue
		}

		qualified := battles.Qualify(s.category, s.performers, s.battles)
		allocated, err := battles.AllocatePools(s.category.GroupsIdeal, qualified)
		if err != nil {
			result.addError("category %q: %v", s.category.Name, err)
			continue
		}
		for idx, members := range allocated {
			plan.pools = append(plan.pools, poolPlan{
				categoryID: s.category.ID,
				idx:        idx,
				members:    members,
			})
		}
	}
	if !result.OK() {
		return nil, result, nil
	}
	return plan, result, nil
}

func planFinals(snaps []categorySnapshot) (*advancePlan, ValidationResult, error) {
	var result ValidationResult
	plan := &advancePlan{
		toPhase:  models.PhaseFinals,
		toStatus: models.StatusActive,
	}

	for _, s := range snaps {
		if n := countUnfinished(s.battles, models.BattlePool); n > 0 {
			result.addError("category %q: %d pool battles not completed yet", s.category.Name, n)
			continue
		}
		if n := countUnfinished(s.battles, models.BattleTiebreak); n > 0 {
			result.addError("category %q: %d tiebreak battles still pending", s.category.Name, n)
			continue
		}

		winners, ok := poolWinners(s)
		if !ok {
			result.addError("category %q: pool winner ties are not resolved yet", s.category.Name)
			continue
		}
		matches, err := battles.GenerateFinals(winners)
		if err != nil {
			return nil, result, fmt.Errorf("category %q: %w", s.category.Name, err)
		}
		plan.finals = append(plan.finals, finalsPlan{categoryID: s.category.ID, matches: matches})
	}
	if !result.OK() {
		return nil, result, nil
	}
	return plan, result, nil
}

func planCompletion(snaps []categorySnapshot) (*advancePlan, ValidationResult, error) {
	var result ValidationResult
	plan := &advancePlan{
		toPhase:  models.PhaseCompleted,
		toStatus: models.StatusCompleted,
		winners:  make(map[int]int),
	}

	for _, s := range snaps {
		if n := countUnfinished(s.battles, models.BattleFinals); n > 0 {
			result.addError("category %q: %d finals battles not completed yet", s.category.Name, n)
			continue
		}
		winnerID, ok := categoryChampion(s)
		if !ok {
			result.addError("category %q: could not determine a champion", s.category.Name)
			continue
		}
		plan.winners[s.category.ID] = winnerID
	}
	if !result.OK() {
		return nil, result, nil
	}
	return plan, result, nil
}

func countUnfinished(categoryBattles []*models.Battle, phase models.BattlePhase) int {
	n := 0
	for _, b := range categoryBattles {
		if b.Phase == phase && b.Status != models.BattleCompleted {
			n++
		}
	}
	return n
}

// poolWinners resolves each pool's advancing performer, in pool index
// order. False when any pool still has an unresolved points tie.
func poolWinners(s categorySnapshot) ([]*models.Performer, bool) {
	byPool := make(map[int][]*models.Performer)
	for _, p := range s.performers {
		if p.PoolID != nil {
			byPool[*p.PoolID] = append(byPool[*p.PoolID], p)
		}
	}

	winners := make([]*models.Performer, 0, len(s.pools))
	for _, pool := range s.pools {
		winner, ok := battles.PoolWinner(byPool[pool.ID], s.battles)
		if !ok {
			return nil, false
		}
		winners = append(winners, winner)
	}
	return winners, true
}

// categoryChampion picks the category winner after finals: the winner of
// the bracket's root battle, or the lone pool winner when the category had
// a single pool and therefore no finals battles.
func categoryChampion(s categorySnapshot) (int, bool) {
	for _, b := range s.battles {
		if b.Phase == models.BattleFinals && b.NextBattleID == nil {
			if b.WinnerID == nil {
				return 0, false
			}
			return *b.WinnerID, true
		}
	}
	winners, ok := poolWinners(s)
	if !ok || len(winners) != 1 {
		return 0, false
	}
	return winners[0].ID, true
}

func (s *phaseService) PreviewAdvance(ctx context.Context, tournamentID int) (ValidationResult, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return ValidationResult{}, s.mapRepoError(err)
	}
	snaps, err := s.loadSnapshots(ctx, nil, t)
	if err != nil {
		return ValidationResult{}, err
	}
	_, result, err := planAdvance(t, snaps, advanceSeed(t))
	return result, err
}

func (s *phaseService) Advance(ctx context.Context, tournamentID int) (*AdvanceResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	result, err := s.advanceInTx(ctx, tx, tournamentID)
	if err != nil || (result != nil && !result.Success) {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error("rollback failed", slog.Any("error", rbErr))
		}
		return result, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit phase advance: %w", err)
	}

	s.hub.BroadcastToTournament(tournamentID, battles.Event{
		Type:    battles.EventPhaseAdvanced,
		Payload: result.Tournament,
	})
	s.logger.Info("tournament advanced",
		slog.Int("tournament_id", tournamentID),
		slog.String("phase", string(result.Tournament.Phase)))
	return result, nil
}

func (s *phaseService) advanceInTx(ctx context.Context, tx *sql.Tx, tournamentID int) (*AdvanceResult, error) {
	// Exclusive row lock: in-flight registrations hold the row FOR SHARE,
	// so the phase cannot move under a roster mutation that already passed
	// its phase check.
	t, err := s.tournamentRepo.GetByIDForUpdate(ctx, tx, tournamentID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	snaps, err := s.loadSnapshots(ctx, tx, t)
	if err != nil {
		return nil, err
	}

	plan, validation, err := planAdvance(t, snaps, advanceSeed(t))
	if err != nil {
		return nil, err
	}
	if !validation.OK() {
		return &AdvanceResult{Success: false, Validation: validation}, nil
	}

	perCategory, uidIndex, err := s.materializeBattles(ctx, tx, t, snaps, plan)
	if err != nil {
		return nil, err
	}

	maxSeq, err := s.battleRepo.MaxSequenceOrder(ctx, tx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read sequence high-water mark: %w", err)
	}
	queue := battles.Interleave(perCategory, maxSeq+1)
	for _, b := range queue {
		if err := s.battleRepo.Create(ctx, tx, b); err != nil {
			return nil, fmt.Errorf("failed to persist battle: %w", err)
		}
	}
	if err := s.linkFinals(ctx, tx, plan, uidIndex); err != nil {
		return nil, err
	}

	for categoryID, performerID := range plan.byes {
		if err := s.performerRepo.MarkPreselectionBye(ctx, tx, performerID); err != nil {
			return nil, fmt.Errorf("failed to mark bye in category %d: %w", categoryID, err)
		}
	}
	for categoryID, performerID := range plan.winners {
		if err := s.categoryRepo.SetWinner(ctx, tx, categoryID, performerID); err != nil {
			return nil, fmt.Errorf("failed to record winner for category %d: %w", categoryID, err)
		}
	}

	err = s.tournamentRepo.UpdatePhaseStatus(ctx, tx, t.ID, plan.toPhase, plan.toStatus, t.Version)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentVersionStale) {
			return nil, ErrConcurrentModification
		}
		return nil, s.mapRepoError(err)
	}

	t.Phase = plan.toPhase
	t.Status = plan.toStatus
	t.Version++
	return &AdvanceResult{Success: true, Tournament: t, Validation: validation}, nil
}

// materializeBattles turns the plan into unsequenced battle rows grouped
// per category: preselection battles pass through, pool plans become pool
// rows plus round-robin schedules, finals plans become bracket rows indexed
// by UID for the linking pass.
func (s *phaseService) materializeBattles(ctx context.Context, tx *sql.Tx, t *models.Tournament, snaps []categorySnapshot, plan *advancePlan) ([][]*models.Battle, map[int]map[string]*models.Battle, error) {
	catByID := make(map[int]models.Category, len(snaps))
	order := make([]int, 0, len(snaps))
	for _, snap := range snaps {
		catByID[snap.category.ID] = snap.category
		order = append(order, snap.category.ID)
	}
	grouped := make(map[int][]*models.Battle, len(snaps))

	for i, generated := range plan.preselection {
		grouped[snaps[i].category.ID] = generated
	}

	for _, pp := range plan.pools {
		cat := catByID[pp.categoryID]
		pool := &models.Pool{CategoryID: pp.categoryID, Idx: pp.idx, Label: models.PoolLabel(pp.idx)}
		if err := s.poolRepo.Create(ctx, tx, pool); err != nil {
			return nil, nil, fmt.Errorf("failed to create pool %s: %w", pool.Label, err)
		}
		for _, member := range pp.members {
			if err := s.performerRepo.AssignPool(ctx, tx, member.ID, pool.ID); err != nil {
				return nil, nil, fmt.Errorf("failed to assign performer %d to pool %s: %w", member.ID, pool.Label, err)
			}
		}
		grouped[pp.categoryID] = append(grouped[pp.categoryID], battles.GenerateRoundRobin(cat, pool.ID, pp.members)...)
	}

	uidIndex := make(map[int]map[string]*models.Battle)
	for _, fp := range plan.finals {
		cat := catByID[fp.categoryID]
		uidIndex[fp.categoryID] = make(map[string]*models.Battle, len(fp.matches))
		for _, fm := range fp.matches {
			round := fm.Round
			b := &models.Battle{
				TournamentID: cat.TournamentID,
				CategoryID:   cat.ID,
				Phase:        models.BattleFinals,
				Status:       models.BattlePending,
				P1ID:         fm.Performer1ID,
				P2ID:         fm.Performer2ID,
				Round:        &round,
			}
			uidIndex[fp.categoryID][fm.UID] = b
			grouped[fp.categoryID] = append(grouped[fp.categoryID], b)
		}
	}

	perCategory := make([][]*models.Battle, 0, len(order))
	for _, categoryID := range order {
		perCategory = append(perCategory, grouped[categoryID])
	}
	return perCategory, uidIndex, nil
}

// linkFinals is the second bracket pass: now that every battle has a row
// id, wire the winner-propagation links between rounds.
func (s *phaseService) linkFinals(ctx context.Context, tx *sql.Tx, plan *advancePlan, uidIndex map[int]map[string]*models.Battle) error {
	for _, fp := range plan.finals {
		index := uidIndex[fp.categoryID]
		for _, fm := range fp.matches {
			target := index[fm.UID]
			for slot, sourceUID := range map[int]*string{1: fm.SourceMatch1UID, 2: fm.SourceMatch2UID} {
				if sourceUID == nil {
					continue
				}
				source, ok := index[*sourceUID]
				if !ok {
					return fmt.Errorf("finals bracket references unknown match %q", *sourceUID)
				}
				slotCopy := slot
				if err := s.battleRepo.UpdateNextBattleInfo(ctx, tx, source.ID, &target.ID, &slotCopy); err != nil {
					return fmt.Errorf("failed to link finals battles: %w", err)
				}
			}
		}
	}
	return nil
}

func (s *phaseService) loadSnapshots(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) ([]categorySnapshot, error) {
	categories, err := s.categoryRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	allBattles, err := s.battleRepo.ListByTournament(ctx, exec, t.ID, repositories.ListBattlesFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list battles: %w", err)
	}
	battlesByCategory := make(map[int][]*models.Battle)
	for _, b := range allBattles {
		battlesByCategory[b.CategoryID] = append(battlesByCategory[b.CategoryID], b)
	}

	snaps := make([]categorySnapshot, 0, len(categories))
	for _, cat := range categories {
		performers, err := s.performerRepo.ListByCategory(ctx, exec, cat.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list performers for category %d: %w", cat.ID, err)
		}
		pools, err := s.poolRepo.ListByCategory(ctx, exec, cat.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list pools for category %d: %w", cat.ID, err)
		}
		snaps = append(snaps, categorySnapshot{
			category:   cat,
			performers: performers,
			pools:      pools,
			battles:    battlesByCategory[cat.ID],
		})
	}
	return snaps, nil
}

// GetFullTournament assembles the tournament, its categories with
// performers and pools, and its battle queue. Collections load in parallel.
func (s *phaseService) GetFullTournament(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	var snaps []categorySnapshot
	var allBattles []*models.Battle

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var loadErr error
		snaps, loadErr = s.loadSnapshots(gCtx, nil, t)
		return loadErr
	})
	g.Go(func() error {
		var loadErr error
		allBattles, loadErr = s.battleRepo.ListByTournament(gCtx, nil, t.ID, repositories.ListBattlesFilter{})
		return loadErr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t.Categories = make([]models.Category, 0, len(snaps))
	for _, snap := range snaps {
		cat := snap.category
		cat.Performers = make([]models.Performer, 0, len(snap.performers))
		for _, p := range snap.performers {
			cat.Performers = append(cat.Performers, *p)
		}
		cat.Pools = snap.pools
		t.Categories = append(t.Categories, cat)
	}
	t.Battles = make([]models.Battle, 0, len(allBattles))
	for _, b := range allBattles {
		t.Battles = append(t.Battles, *b)
	}
	return t, nil
}

// advanceSeed derives the deterministic pairing seed for one advance call
// from the tournament's identity and version, so re-planning within the
// same state yields the same pairing while a later tournament state does
// not.
func advanceSeed(t *models.Tournament) int64 {
	return int64(t.ID)<<16 | int64(t.Version)
}

func (s *phaseService) mapRepoError(err error) error {
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return ErrTournamentNotFound
	}
	return err
}
