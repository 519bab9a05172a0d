package services

import "errors"

// Shared sentinel errors, mapped to HTTP statuses in the handlers package.
var (
	// Missing resources
	ErrNotFound           = errors.New("requested resource not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrPerformerNotFound  = errors.New("performer not found")
	ErrBattleNotFound     = errors.New("battle not found")
	ErrDancerNotFound     = errors.New("dancer not found")

	// Validation and business rules
	ErrValidationFailed       = errors.New("validation failed")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrCategoryNameRequired   = errors.New("category name is required")
	ErrRegistrationClosed     = errors.New("tournament is no longer in registration phase")
	ErrCategoryCreationClosed = errors.New("categories can only be created before the tournament starts")
	ErrCategoryDeletionClosed = errors.New("categories can only be deleted during registration")

	// State machine violations
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrTournamentCompleted    = errors.New("tournament is already completed")

	// Conflicts
	ErrDancerAlreadyRegistered = errors.New("dancer is already registered in this tournament")
	ErrConcurrentModification  = errors.New("concurrent modification detected, re-fetch and retry")

	// Authentication
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
)
