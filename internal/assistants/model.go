package assistants

import (
	"time"

	"github.com/google/uuid"
)

// Assistant is a persona the user talks to: its name, voice, and personality
// shape every reply the conversation engine produces.
type Assistant struct {
	ID          uuid.UUID `json:"id"`
	OwnerUserID uuid.UUID `json:"owner_user_id"`
	Name        string    `json:"name"`
	Voice       string    `json:"voice"`
	Language    string    `json:"language"`
	Personality string    `json:"personality"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
