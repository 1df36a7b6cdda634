package model

import "time"

// Client is a guest.  Phone is mandatory because staff reach guests over
// WhatsApp and it doubles as the lookup key when a reservation request
// arrives with inline contact details.
type Client struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     *string   `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
