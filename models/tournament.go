package models

import "time"

// TournamentStatus mirrors the status ENUM in the database.
type TournamentStatus string

const (
	StatusCreated   TournamentStatus = "created"
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
)

// TournamentPhase mirrors the phase ENUM in the database.
type TournamentPhase string

const (
	PhaseRegistration TournamentPhase = "registration"
	PhasePreselection TournamentPhase = "preselection"
	PhasePools        TournamentPhase = "pools"
	PhaseFinals       TournamentPhase = "finals"
	PhaseCompleted    TournamentPhase = "completed"
)

// NextPhase returns the phase that follows p in the fixed
// registration → preselection → pools → finals → completed order.
// The second return value is false when p is terminal or unknown.
func NextPhase(p TournamentPhase) (TournamentPhase, bool) {
	switch p {
	case PhaseRegistration:
		return PhasePreselection, true
	case PhasePreselection:
		return PhasePools, true
	case PhasePools:
		return PhaseFinals, true
	case PhaseFinals:
		return PhaseCompleted, true
	default:
		return "", false
	}
}

// StatusForPhase maps a phase onto the status the tournament must carry in
// that phase: created⇔registration, completed⇔completed, active otherwise.
func StatusForPhase(p TournamentPhase) TournamentStatus {
	switch p {
	case PhaseRegistration:
		return StatusCreated
	case PhaseCompleted:
		return StatusCompleted
	default:
		return StatusActive
	}
}

type Tournament struct {
	ID        int              `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Status    TournamentStatus `json:"status" db:"status"`
	Phase     TournamentPhase  `json:"phase" db:"phase"`
	Version   int              `json:"-" db:"version"`
	PosterKey *string          `json:"-" db:"poster_key"`
	PosterURL *string          `json:"poster_url,omitempty" db:"-"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`

	// Optional loaded relations (not mapped directly).
	Categories []Category `json:"categories,omitempty" db:"-"`
	Battles    []Battle   `json:"battles,omitempty" db:"-"`
}
