package models

import "time"

type Pool struct {
	ID         int       `json:"id" db:"id"`
	CategoryID int       `json:"category_id" db:"category_id"`
	Idx        int       `json:"idx" db:"idx"`
	Label      string    `json:"label" db:"label"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	Performers []Performer `json:"performers,omitempty" db:"-"`
}

// PoolLabel derives the display label ("A", "B", ...) from a zero-based
// pool index.
func PoolLabel(idx int) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	if idx < len(letters) {
		return string(letters[idx])
	}
	return string(letters[idx/len(letters)-1]) + string(letters[idx%len(letters)])
}
