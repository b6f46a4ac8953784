package domain

import "time"

// Staff roles.
const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleCashier = "cashier"
	RoleKitchen = "kitchen"
)

// Staff is a dashboard user tied to an establishment.
type Staff struct {
	ID              string    `json:"id"`
	EstablishmentID string    `json:"establishmentId"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Name            string    `json:"name,omitempty"`
	Role            string    `json:"role"`
	CreatedAt       time.Time `json:"createdAt"`
}
