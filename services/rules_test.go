package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battled-crew/battled-system/models"
)

func TestCalculateAdjustedMinimum(t *testing.T) {
	tests := []struct {
		name        string
		groupsIdeal int
		guests      int
		want        int
	}{
		{"two groups no guests", 2, 0, 5},
		{"two groups one guest", 2, 1, 4},
		{"two groups three guests", 2, 3, 2},
		{"guests push below floor", 2, 10, 2},
		{"one group no guests", 1, 0, 3},
		{"four groups two guests", 4, 2, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateAdjustedMinimum(tt.groupsIdeal, tt.guests)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateAdjustedMinimumInvalidInput(t *testing.T) {
	_, err := CalculateAdjustedMinimum(0, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = CalculateAdjustedMinimum(2, -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func categoryWithPerformers(name string, groupsIdeal, total, guests int) models.Category {
	cat := models.Category{Name: name, GroupsIdeal: groupsIdeal, PerformersIdeal: 2}
	for i := 1; i <= total; i++ {
		cat.Performers = append(cat.Performers, models.Performer{ID: i, IsGuest: i <= guests})
	}
	return cat
}

func TestValidateRegistrationToPreselectionNoCategories(t *testing.T) {
	result := ValidateRegistrationToPreselection(nil)
	assert.False(t, result.OK())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "no categories")
}

func TestValidateRegistrationToPreselectionShortfall(t *testing.T) {
	result := ValidateRegistrationToPreselection([]models.Category{
		categoryWithPerformers("breaking 1v1", 2, 3, 0), // needs 5
	})
	assert.False(t, result.OK())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "short by 2")
}

func TestValidateRegistrationToPreselectionGuestsLowerMinimum(t *testing.T) {
	// 5 required, 2 guests lower it to 3.
	result := ValidateRegistrationToPreselection([]models.Category{
		categoryWithPerformers("breaking 1v1", 2, 4, 2),
	})
	assert.True(t, result.OK())
	assert.Empty(t, result.Warnings)
}

func TestValidateRegistrationToPreselectionExactMinimumWarns(t *testing.T) {
	result := ValidateRegistrationToPreselection([]models.Category{
		categoryWithPerformers("popping", 2, 5, 0),
	})
	assert.True(t, result.OK())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "exactly at the minimum")
}

func TestValidateRegistrationToPreselectionAllGuestsWarns(t *testing.T) {
	result := ValidateRegistrationToPreselection([]models.Category{
		categoryWithPerformers("hip hop", 1, 3, 3),
	})
	assert.True(t, result.OK())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "guests")
}

func TestValidateRegistrationToPreselectionAllGuestsBelowMinimumFails(t *testing.T) {
	// 3 groups with 2 guests still need max(2, 3*2+1-2) = 5 performers;
	// an all-guest roster does not exempt the category from the minimum.
	result := ValidateRegistrationToPreselection([]models.Category{
		categoryWithPerformers("breaking 1v1", 3, 2, 2),
	})
	assert.False(t, result.OK())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "short by 3")
	require.Len(t, result.Warnings, 1, "the all-guest warning is still emitted alongside the error")
	assert.Contains(t, result.Warnings[0], "guests")
}

func TestValidateRegistrationToPreselectionCollectsAllCategories(t *testing.T) {
	result := ValidateRegistrationToPreselection([]models.Category{
		categoryWithPerformers("breaking 1v1", 2, 1, 0),
		categoryWithPerformers("popping", 2, 2, 0),
		categoryWithPerformers("house", 1, 6, 0),
	})
	assert.False(t, result.OK())
	assert.Len(t, result.Errors, 2, "both failing categories are reported together")
}

func TestValidateCategoryLifecycleGates(t *testing.T) {
	created := &models.Tournament{Status: models.StatusCreated, Phase: models.PhaseRegistration}
	active := &models.Tournament{Status: models.StatusActive, Phase: models.PhasePools}

	assert.True(t, ValidateCategoryCreation(created).OK())
	assert.False(t, ValidateCategoryCreation(active).OK())

	assert.True(t, ValidateCategoryDeletion(created).OK())
	assert.False(t, ValidateCategoryDeletion(active).OK())

	assert.True(t, ValidateRegistrationMutation(created).OK())
	assert.False(t, ValidateRegistrationMutation(active).OK())
}
