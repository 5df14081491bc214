package entities

import (
	"time"

	"github.com/google/uuid"
)

const (
	FoodStatusFresh        = "fresh"
	FoodStatusExpiringSoon = "expiring_soon"
	FoodStatusExpired      = "expired"
	FoodStatusConsumed     = "consumed"
	FoodStatusWasted       = "wasted"
)

type FoodCategory struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

type FoodItem struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	CategoryID      uuid.UUID `json:"category_id"`
	Name            string    `json:"name"`
	Quantity        float64   `json:"quantity"`
	Unit            string    `json:"unit"`
	PurchaseDate    Date      `json:"purchase_date"`
	ExpirationDate  Date      `json:"expiration_date"`
	Barcode         *string   `json:"barcode,omitempty"`
	StorageLocation string    `json:"storage_location"`
	Notes           *string   `json:"notes,omitempty"`
	Status          string    `json:"status"` // "fresh", "expiring_soon", "expired", "consumed", "wasted"

	Category *FoodCategory `json:"category,omitempty"`
	Timestamp
}
