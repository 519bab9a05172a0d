package battles

import (
	"sort"

	"github.com/battled-crew/battled-system/models"
)

// TiebreakResults indexes completed tiebreak battles by (winner, loser) so
// that ranking can order performers who are otherwise exactly tied.
type TiebreakResults map[int]map[int]bool

// NewTiebreakResults builds the lookup from completed tiebreak battles.
// Battles that are not tiebreaks, not completed, or have no winner are
// ignored.
func NewTiebreakResults(tiebreaks []*models.Battle) TiebreakResults {
	beat := make(TiebreakResults)
	for _, b := range tiebreaks {
		if b.Phase != models.BattleTiebreak || b.Status != models.BattleCompleted || b.WinnerID == nil || !b.BothSidesSet() {
			continue
		}
		loser := *b.P1ID
		if loser == *b.WinnerID {
			loser = *b.P2ID
		}
		if beat[*b.WinnerID] == nil {
			beat[*b.WinnerID] = make(map[int]bool)
		}
		beat[*b.WinnerID][loser] = true
	}
	return beat
}

// Beat reports whether a has a completed tiebreak win over b.
func (t TiebreakResults) Beat(a, b int) bool { return t[a][b] }

// Resolved reports whether a completed tiebreak exists between the two
// performers, in either direction.
func (t TiebreakResults) Resolved(a, b int) bool { return t[a][b] || t[b][a] }

// rankScored sorts non-guest, non-bye performers for qualification:
// preselection score descending, then tiebreak winner above loser, then
// registration order.
func rankScored(performers []*models.Performer, beat TiebreakResults) []*models.Performer {
	ranked := make([]*models.Performer, len(performers))
	copy(ranked, performers)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score() != b.Score() {
			return a.Score() > b.Score()
		}
		if beat.Beat(a.ID, b.ID) {
			return true
		}
		if beat.Beat(b.ID, a.ID) {
			return false
		}
		return a.ID < b.ID
	})
	return ranked
}

// Qualify returns the performers advancing from preselection into pools,
// in seeding order. Guests qualify unconditionally and seed first (a guest
// wins any exact-score tie against a non-guest), followed by the top scored
// performers up to the category's slot count, followed by bye performers,
// who advance automatically but seed last.
func Qualify(category models.Category, performers []*models.Performer, tiebreaks []*models.Battle) []*models.Performer {
	beat := NewTiebreakResults(tiebreaks)

	var guests, byes, scored []*models.Performer
	for _, p := range performers {
		switch {
		case p.IsGuest:
			guests = append(guests, p)
		case p.PreselectionBye:
			byes = append(byes, p)
		default:
			scored = append(scored, p)
		}
	}
	guests = sortByRegistration(guests)
	byes = sortByRegistration(byes)
	ranked := rankScored(scored, beat)

	free := category.QualificationSlots() - len(guests) - len(byes)
	if free < 0 {
		free = 0
	}
	if free > len(ranked) {
		free = len(ranked)
	}

	qualified := make([]*models.Performer, 0, len(guests)+free+len(byes))
	qualified = append(qualified, guests...)
	qualified = append(qualified, ranked[:free]...)
	qualified = append(qualified, byes...)
	return qualified
}

// PreselectionBoundaryTies finds exact score ties straddling the
// qualification boundary that no completed tiebreak battle has resolved
// yet. Tied performers are paired off in registration order; each returned
// pair needs a tiebreak battle. Guests are never part of a boundary tie:
// they hold slots unconditionally.
func PreselectionBoundaryTies(category models.Category, performers []*models.Performer, tiebreaks []*models.Battle) [][2]*models.Performer {
	beat := NewTiebreakResults(tiebreaks)

	var guests, byes, scored []*models.Performer
	for _, p := range performers {
		switch {
		case p.IsGuest:
			guests = append(guests, p)
		case p.PreselectionBye:
			byes = append(byes, p)
		default:
			scored = append(scored, p)
		}
	}
	ranked := rankScored(scored, beat)

	free := category.QualificationSlots() - len(guests) - len(byes)
	if free <= 0 || free >= len(ranked) {
		return nil
	}
	if ranked[free-1].Score() != ranked[free].Score() {
		return nil
	}

	tieScore := ranked[free].Score()
	var group []*models.Performer
	for _, p := range ranked {
		if p.Score() == tieScore {
			group = append(group, p)
		}
	}
	return unresolvedPairs(group, beat)
}

// PoolWinnerTies finds unresolved pool-points ties for the pool's winning
// slot among the given pool members.
func PoolWinnerTies(members []*models.Performer, tiebreaks []*models.Battle) [][2]*models.Performer {
	if len(members) < 2 {
		return nil
	}
	beat := NewTiebreakResults(tiebreaks)
	group := topPointsGroup(members)
	if len(group) < 2 {
		return nil
	}
	return unresolvedPairs(group, beat)
}

// PoolWinner resolves the pool's advancing performer. The second return
// value is false while a points tie at the top remains unresolved.
func PoolWinner(members []*models.Performer, tiebreaks []*models.Battle) (*models.Performer, bool) {
	if len(members) == 0 {
		return nil, false
	}
	beat := NewTiebreakResults(tiebreaks)
	group := topPointsGroup(members)
	if len(group) == 1 {
		return group[0], true
	}
	if len(unresolvedPairs(group, beat)) > 0 {
		return nil, false
	}
	// All pairwise ties resolved: the winner is the tied performer with the
	// most tiebreak wins inside the group, registration order breaking any
	// remaining symmetry.
	winner := group[0]
	best := -1
	for _, p := range sortByRegistration(group) {
		wins := 0
		for _, q := range group {
			if q.ID != p.ID && beat.Beat(p.ID, q.ID) {
				wins++
			}
		}
		if wins > best {
			best = wins
			winner = p
		}
	}
	return winner, true
}

func topPointsGroup(members []*models.Performer) []*models.Performer {
	top := members[0].PoolPoints()
	for _, p := range members[1:] {
		if p.PoolPoints() > top {
			top = p.PoolPoints()
		}
	}
	var group []*models.Performer
	for _, p := range members {
		if p.PoolPoints() == top {
			group = append(group, p)
		}
	}
	return group
}

func unresolvedPairs(group []*models.Performer, beat TiebreakResults) [][2]*models.Performer {
	ordered := sortByRegistration(group)
	var pairs [][2]*models.Performer
	for i := 0; i+1 < len(ordered); i += 2 {
		a, b := ordered[i], ordered[i+1]
		if !beat.Resolved(a.ID, b.ID) {
			pairs = append(pairs, [2]*models.Performer{a, b})
		}
	}
	return pairs
}
