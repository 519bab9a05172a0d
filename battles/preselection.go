package battles

import (
	"math/rand"

	"github.com/battled-crew/battled-system/models"
)

// GeneratePreselection pairs the non-guest performers of one category into
// 1v1 preselection battles. Guests are pre-qualified and never appear here.
//
// Pairing is a seeded shuffle so that a run is deterministic and testable:
// the caller derives the seed from the tournament id. When the non-guest
// count is odd, the last-registered performer receives a bye (no battle,
// automatic advancement) before the shuffle, so the bye assignment does not
// depend on the seed.
//
// An entirely empty category is an error. A category whose performers are
// all guests yields no battles and no bye, which is valid.
func GeneratePreselection(category models.Category, performers []*models.Performer, seed int64) ([]*models.Battle, *int, error) {
	if len(performers) == 0 {
		return nil, nil, ErrEmptyCategory
	}

	competitors := make([]*models.Performer, 0, len(performers))
	for _, p := range performers {
		if !p.IsGuest {
			competitors = append(competitors, p)
		}
	}
	if len(competitors) == 0 {
		return nil, nil, nil
	}

	competitors = sortByRegistration(competitors)

	var byeID *int
	if len(competitors)%2 == 1 {
		last := competitors[len(competitors)-1]
		byeID = &last.ID
		competitors = competitors[:len(competitors)-1]
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(competitors), func(i, j int) {
		competitors[i], competitors[j] = competitors[j], competitors[i]
	})

	matches := make([]*models.Battle, 0, len(competitors)/2)
	for i := 0; i+1 < len(competitors); i += 2 {
		p1, p2 := competitors[i].ID, competitors[i+1].ID
		matches = append(matches, &models.Battle{
			TournamentID: category.TournamentID,
			CategoryID:   category.ID,
			Phase:        models.BattlePreselection,
			Status:       models.BattlePending,
			P1ID:         &p1,
			P2ID:         &p2,
		})
	}
	return matches, byeID, nil
}
