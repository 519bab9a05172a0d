package services

import (
	"fmt"

	"github.com/battled-crew/battled-system/models"
)

// ValidationResult collects every problem found in one validation pass so
// the caller sees the full list at once instead of fixing errors one retry
// at a time. Warnings never block.
type ValidationResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

func (r *ValidationResult) addError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) addWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// CalculateAdjustedMinimum computes how many performers a category needs
// before preselection can start. The standard minimum guarantees enough
// competitors for groupsIdeal pools plus one elimination; each guest is
// pre-qualified and lowers the requirement, floored at 2 so at least one
// competitive preselection battle is structurally possible.
func CalculateAdjustedMinimum(groupsIdeal, guestCount int) (int, error) {
	if groupsIdeal < 1 {
		return 0, fmt.Errorf("%w: groups_ideal must be at least 1, got %d", ErrInvalidArgument, groupsIdeal)
	}
	if guestCount < 0 {
		return 0, fmt.Errorf("%w: guest count cannot be negative, got %d", ErrInvalidArgument, guestCount)
	}
	minimum := groupsIdeal*2 + 1 - guestCount
	if minimum < 2 {
		minimum = 2
	}
	return minimum, nil
}

// ValidateRegistrationToPreselection checks every category of the
// tournament against its adjusted minimum. All categories are evaluated,
// never short-circuited.
func ValidateRegistrationToPreselection(categories []models.Category) ValidationResult {
	var result ValidationResult

	if len(categories) == 0 {
		result.addError("tournament has no categories; nothing to advance")
		return result
	}

	for _, cat := range categories {
		total := len(cat.Performers)
		guests := 0
		for _, p := range cat.Performers {
			if p.IsGuest {
				guests++
			}
		}

		minimum, err := CalculateAdjustedMinimum(cat.GroupsIdeal, guests)
		if err != nil {
			result.addError("category %q: %v", cat.Name, err)
			continue
		}

		if guests == total && total > 0 {
			// Preselection will be a no-op, but the minimum still applies:
			// pools need enough bodies either way.
			result.addWarning("category %q: all %d performers are guests, no preselection battles will be generated", cat.Name, total)
		}

		switch {
		case total < minimum:
			result.addError("category %q: %d performers registered (%d guests), needs at least %d (short by %d)",
				cat.Name, total, guests, minimum, minimum-total)
		case total == minimum && guests < total:
			result.addWarning("category %q: registered exactly at the minimum (%d), only one elimination will occur in preselection", cat.Name, minimum)
		}
	}
	return result
}

// ValidateCategoryCreation gates category creation on the tournament not
// having started yet.
func ValidateCategoryCreation(t *models.Tournament) ValidationResult {
	var result ValidationResult
	if t.Status != models.StatusCreated {
		result.addError("categories can only be created while the tournament status is %q, current status is %q",
			models.StatusCreated, t.Status)
	}
	return result
}

// ValidateCategoryDeletion gates category deletion on registration still
// being open.
func ValidateCategoryDeletion(t *models.Tournament) ValidationResult {
	var result ValidationResult
	if t.Phase != models.PhaseRegistration {
		result.addError("categories can only be deleted during the %q phase, current phase is %q",
			models.PhaseRegistration, t.Phase)
	}
	return result
}

// ValidateRegistrationMutation gates performer registration, unregistration
// and guest conversion on the registration phase.
func ValidateRegistrationMutation(t *models.Tournament) ValidationResult {
	var result ValidationResult
	if t.Phase != models.PhaseRegistration {
		result.addError("performer roster changes are only allowed during the %q phase, current phase is %q",
			models.PhaseRegistration, t.Phase)
	}
	return result
}
