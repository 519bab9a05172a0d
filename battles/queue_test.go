package battles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battled-crew/battled-system/models"
)

func TestInterleaveAlternatesCategories(t *testing.T) {
	catA := []*models.Battle{{CategoryID: 1}, {CategoryID: 1}, {CategoryID: 1}}
	catB := []*models.Battle{{CategoryID: 2}, {CategoryID: 2}}

	queue := Interleave([][]*models.Battle{catA, catB}, 5)
	require.Len(t, queue, 5)

	gotCategories := make([]int, 0, len(queue))
	for i, b := range queue {
		assert.Equal(t, 5+i, b.SequenceOrder, "sequence numbers are dense from startSeq")
		gotCategories = append(gotCategories, b.CategoryID)
	}
	assert.Equal(t, []int{1, 2, 1, 2, 1}, gotCategories)
}

func TestInterleaveEmptyInput(t *testing.T) {
	assert.Empty(t, Interleave(nil, 1))
	assert.Empty(t, Interleave([][]*models.Battle{{}, {}}, 1))
}

func TestInterleaveSingleCategoryKeepsOrder(t *testing.T) {
	battles := []*models.Battle{{ID: 1}, {ID: 2}, {ID: 3}}
	queue := Interleave([][]*models.Battle{battles}, 1)
	require.Len(t, queue, 3)
	for i, b := range queue {
		assert.Equal(t, i+1, b.ID)
		assert.Equal(t, i+1, b.SequenceOrder)
	}
}
