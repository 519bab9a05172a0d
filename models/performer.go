package models

import "time"

// GuestScore is the preselection score fixed on guest performers at
// registration time. Guests skip preselection entirely.
const GuestScore = 10.0

// Performer is a dancer's registration record inside one category of one
// tournament. In duo categories a single row covers both members: DancerID
// is the lead and PartnerDancerID the second dancer.
type Performer struct {
	ID               int        `json:"id" db:"id"`
	TournamentID     int        `json:"tournament_id" db:"tournament_id"`
	CategoryID       int        `json:"category_id" db:"category_id"`
	DancerID         int        `json:"dancer_id" db:"dancer_id"`
	PartnerDancerID  *int       `json:"partner_dancer_id,omitempty" db:"partner_dancer_id"`
	IsGuest          bool       `json:"is_guest" db:"is_guest"`
	PreselectionScore *float64  `json:"preselection_score,omitempty" db:"preselection_score"`
	PreselectionBye  bool       `json:"preselection_bye" db:"preselection_bye"`
	PoolID           *int       `json:"pool_id,omitempty" db:"pool_id"`
	PoolWins         int        `json:"pool_wins" db:"pool_wins"`
	PoolDraws        int        `json:"pool_draws" db:"pool_draws"`
	PoolLosses       int        `json:"pool_losses" db:"pool_losses"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`

	Dancer *Dancer `json:"dancer,omitempty" db:"-"`
}

// PoolPoints is the round-robin standing value: 3 per win, 1 per draw.
func (p Performer) PoolPoints() int {
	return p.PoolWins*3 + p.PoolDraws
}

// Score returns the effective preselection score used for ranking.
// Guests always rank at GuestScore; unscored performers rank at zero.
func (p Performer) Score() float64 {
	if p.IsGuest {
		return GuestScore
	}
	if p.PreselectionScore == nil {
		return 0
	}
	return *p.PreselectionScore
}
