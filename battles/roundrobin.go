package battles

import "github.com/battled-crew/battled-system/models"

// GenerateRoundRobin creates the full round-robin schedule for one pool:
// every member meets every other member exactly once. Cross-pool battles
// are never produced; callers invoke this once per pool. Pool battles allow
// a three-way outcome (win / draw / loss).
func GenerateRoundRobin(category models.Category, poolID int, members []*models.Performer) []*models.Battle {
	ordered := sortByRegistration(members)
	pid := poolID

	matches := make([]*models.Battle, 0, len(ordered)*(len(ordered)-1)/2)
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			p1, p2 := ordered[i].ID, ordered[j].ID
			matches = append(matches, &models.Battle{
				TournamentID: category.TournamentID,
				CategoryID:   category.ID,
				PoolID:       &pid,
				Phase:        models.BattlePool,
				Status:       models.BattlePending,
				P1ID:         &p1,
				P2ID:         &p2,
			})
		}
	}
	return matches
}
