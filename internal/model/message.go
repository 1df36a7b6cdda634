package model

import "time"

// Message senders.
const (
	SenderClient = "client"
	SenderSystem = "system"
)

// Message is one entry of the conversation attached to a reservation.
// Messages are never edited; only the Read flag flips.
type Message struct {
	ID            uint64    `json:"id"`
	ReservationID uint64    `json:"reservation_id"`
	Sender        string    `json:"sender"`
	Body          string    `json:"body"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}
