package battles

import (
	"fmt"
	"math"

	"github.com/battled-crew/battled-system/models"
)

type node struct {
	performerID    *int
	sourceMatchUID *string
	isBye          bool
}

// GenerateFinals builds a single-elimination bracket over the pool winners,
// given in seed order (pool A's winner first). Two winners collapse to a
// single direct final; a winner count that is not a power of two is padded
// with byes, whose holders advance straight into the next round. A single
// winner produces no battles: that performer is already the champion.
//
// Finals battles are winner-only; draws are not allowed.
func GenerateFinals(winners []*models.Performer) ([]*FinalsMatch, error) {
	n := len(winners)
	if n == 0 {
		return nil, ErrEmptyCategory
	}
	if n == 1 {
		return nil, nil
	}

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	bracketSize := 1 << uint(numRounds)

	current := make([]*node, bracketSize)
	for i := 0; i < n; i++ {
		id := winners[i].ID
		current[i] = &node{performerID: &id}
	}
	for i := n; i < bracketSize; i++ {
		current[i] = &node{isBye: true}
	}

	var matches []*FinalsMatch
	for r := 1; r <= numRounds; r++ {
		next := make([]*node, 0, len(current)/2)
		order := 0

		for i := 0; i+1 < len(current); i += 2 {
			n1, n2 := current[i], current[i+1]

			if n1.isBye && n2.isBye {
				next = append(next, &node{isBye: true})
				continue
			}
			if n2.isBye || n1.isBye {
				advancing := n1
				if n1.isBye {
					advancing = n2
				}
				// Bye: no battle row, the holder advances as-is. A node that
				// is itself a pending match keeps its source link.
				next = append(next, &node{
					performerID:    advancing.performerID,
					sourceMatchUID: advancing.sourceMatchUID,
				})
				continue
			}

			order++
			uid := fmt.Sprintf("R%dM%d", r, order)
			fm := &FinalsMatch{
				UID:             uid,
				Round:           r,
				OrderInRound:    order,
				Performer1ID:    n1.performerID,
				Performer2ID:    n2.performerID,
				SourceMatch1UID: n1.sourceMatchUID,
				SourceMatch2UID: n2.sourceMatchUID,
			}
			matches = append(matches, fm)
			next = append(next, &node{sourceMatchUID: &uid})
		}
		current = next
	}

	if len(current) != 1 {
		return nil, fmt.Errorf("finals bracket did not converge: %d nodes left", len(current))
	}
	return matches, nil
}
