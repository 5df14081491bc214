package entities

import (
	"github.com/google/uuid"
)

type Profile struct {
	ID                  uuid.UUID `json:"id"`
	FullName            string    `json:"full_name"`
	AvatarURL           *string   `json:"avatar_url,omitempty"`
	Location            *string   `json:"location,omitempty"`
	NotificationEnabled bool      `json:"notification_enabled"`

	Timestamp
}
