package battles

import "github.com/battled-crew/battled-system/models"

// Interleave assigns sequence_order values to freshly generated battles so
// the tournament-wide queue alternates categories instead of exhausting one
// category before starting the next. Numbering starts at startSeq and is
// dealt round-robin across the per-category slices, preserving each
// category's internal order. The returned slice is the queue order.
func Interleave(perCategory [][]*models.Battle, startSeq int) []*models.Battle {
	total := 0
	for _, battles := range perCategory {
		total += len(battles)
	}

	queue := make([]*models.Battle, 0, total)
	seq := startSeq
	for round := 0; len(queue) < total; round++ {
		for _, battles := range perCategory {
			if round < len(battles) {
				battles[round].SequenceOrder = seq
				queue = append(queue, battles[round])
				seq++
			}
		}
	}
	return queue
}
