package entities

import (
	"time"

	"github.com/google/uuid"
)

const (
	WasteReasonExpired = "expired"
	WasteReasonSpoiled = "spoiled"
	WasteReasonExcess  = "excess"
	WasteReasonOther   = "other"
)

// WasteTracking rows are immutable once created except for deletion.
// FoodItemID is a weak reference and may outlive the food item it points at;
// ItemName is the denormalized display copy kept for exactly that case.
type WasteTracking struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	FoodItemID     *uuid.UUID `json:"food_item_id,omitempty"`
	ItemName       string     `json:"item_name"`
	CategoryID     uuid.UUID  `json:"category_id"`
	Quantity       float64    `json:"quantity"`
	Unit           string     `json:"unit"`
	Reason         string     `json:"reason"` // "expired", "spoiled", "excess", "other"
	WastedDate     Date       `json:"wasted_date"`
	EstimatedValue *float64   `json:"estimated_value"`
	CreatedAt      time.Time  `json:"created_at"`

	Category *FoodCategory `json:"category,omitempty"`
}
