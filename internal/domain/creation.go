package domain

import "time"

// Creation is a saved composite image.
type Creation struct {
	ID        string
	ImageURL  string
	CreatedAt time.Time
}
