package domain

import "time"

type Category struct {
	ID              string    `json:"id"`
	EstablishmentID string    `json:"-"`
	Key             string    `json:"key"`
	Name            string    `json:"name"`
	Position        int       `json:"position"`
	CreatedAt       time.Time `json:"createdAt"`
}
