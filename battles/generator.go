// Package battles holds the pure battle-generation and seeding algorithms:
// preselection pairing, snake-draft pool allocation, round-robin pool
// schedules and the single-elimination finals bracket. Nothing in this
// package touches storage; the phase service persists what is produced here.
package battles

import (
	"errors"
	"sort"

	"github.com/battled-crew/battled-system/models"
)

var (
	ErrEmptyCategory       = errors.New("category has no performers")
	ErrNotEnoughPerformers = errors.New("not enough performers")
	ErrInvalidPoolCount    = errors.New("pool count must be at least 1")
)

// FinalsMatch is the intermediate representation of one finals bracket
// node. Database IDs do not exist yet at generation time, so matches link
// to each other by UID; the phase service resolves UIDs to row IDs when it
// persists the bracket in two passes.
type FinalsMatch struct {
	UID          string
	Round        int
	OrderInRound int

	Performer1ID *int
	Performer2ID *int

	SourceMatch1UID *string
	SourceMatch2UID *string

	IsBye           bool
	ByePerformerID  *int
}

// sortByRegistration orders performers by creation order (id ascending),
// which is the deterministic base ordering for every generator here.
func sortByRegistration(performers []*models.Performer) []*models.Performer {
	out := make([]*models.Performer, len(performers))
	copy(out, performers)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
