package domain

import "time"

// Establishment is the tenant every other entity is scoped by.
type Establishment struct {
	ID                      string    `json:"id"`
	Key                     string    `json:"key"`
	Name                    string    `json:"name"`
	Currency                string    `json:"currency"`
	DefaultDeliveryFeeCents int64     `json:"defaultDeliveryFeeCents"`
	ServiceFeeCents         int64     `json:"serviceFeeCents"`
	CreatedAt               time.Time `json:"createdAt"`
}
