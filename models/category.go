package models

import "time"

type Category struct {
	ID                 int       `json:"id" db:"id"`
	TournamentID       int       `json:"tournament_id" db:"tournament_id"`
	Name               string    `json:"name" db:"name"`
	IsDuo              bool      `json:"is_duo" db:"is_duo"`
	GroupsIdeal        int       `json:"groups_ideal" db:"groups_ideal"`
	PerformersIdeal    int       `json:"performers_ideal" db:"performers_ideal"`
	WinnerPerformerID  *int      `json:"winner_performer_id,omitempty" db:"winner_performer_id"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`

	// Optional loaded relations.
	Performers []Performer `json:"performers,omitempty" db:"-"`
	Pools      []Pool      `json:"pools,omitempty" db:"-"`
}

// QualificationSlots is the number of performers that advance from
// preselection into pools.
func (c Category) QualificationSlots() int {
	return c.GroupsIdeal * c.PerformersIdeal
}
