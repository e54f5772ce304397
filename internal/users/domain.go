package users

import "time"

// Profile represents the account profile shown and edited by the owner.
type Profile struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	BusinessName    string    `json:"businessName"`
	BusinessAddress string    `json:"businessAddress"`
	Phone           string    `json:"phone"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// UpdateProfileInput carries editable profile fields. Empty strings leave
// the stored value untouched, matching the original form behaviour.
type UpdateProfileInput struct {
	Name            string
	BusinessName    string
	BusinessAddress string
	Phone           string
}
