package models

import "time"

// Dancer is the person behind a performer registration. Profile management
// lives outside this service; only identity is needed here.
type Dancer struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
