package entities

import (
	"time"

	"github.com/google/uuid"
)

const (
	ShareStatusAvailable = "available"
	ShareStatusClaimed   = "claimed"
	ShareStatusCompleted = "completed"
	ShareStatusCancelled = "cancelled"
)

type CommunityShare struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	FoodItemID     *uuid.UUID `json:"food_item_id,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Quantity       float64    `json:"quantity"`
	Unit           string     `json:"unit"`
	PickupLocation string     `json:"pickup_location"`
	AvailableUntil time.Time  `json:"available_until"`
	ImageURL       *string    `json:"image_url,omitempty"`
	Status         string     `json:"status"` // "available", "claimed", "completed", "cancelled"
	ClaimedBy      *uuid.UUID `json:"claimed_by,omitempty"`

	Profile *Profile `json:"profile,omitempty"`
	Timestamp
}
