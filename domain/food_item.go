package domain

import (
	"errors"
)

var (
	MessageSuccessAddFoodItem    = "food item added successfully"
	MessageSuccessUpdateFoodItem = "food item updated successfully"
	MessageSuccessDeleteFoodItem = "food item deleted successfully"
	MessageSuccessGetFoodItems   = "food items retrieved successfully"
	MessageSuccessSyncOffline    = "offline food items synced successfully"

	MessageFailedAddFoodItem    = "failed to add food item"
	MessageFailedUpdateFoodItem = "failed to update food item"
	MessageFailedDeleteFoodItem = "failed to delete food item"
	MessageFailedGetFoodItems   = "failed to retrieve food items"
	MessageFailedSyncOffline    = "failed to sync offline food items"

	ErrFoodItemNotFound         = errors.New("food item not found")
	ErrInvalidExpirationDate    = errors.New("invalid expiration date")
	ErrInvalidPurchaseDate      = errors.New("invalid purchase date")
	ErrInvalidQuantity          = errors.New("quantity must be positive")
	ErrUnauthorizedFoodItem     = errors.New("unauthorized access to food item")
	ErrOfflineSyncIncomplete    = errors.New("offline sync left pending food items")
)

type (
	AddFoodItemRequest struct {
		CategoryID      string  `json:"category_id" validate:"required,uuid"`
		Name            string  `json:"name" validate:"required"`
		Quantity        float64 `json:"quantity" validate:"required,gt=0"`
		Unit            string  `json:"unit" validate:"required"`
		PurchaseDate    string  `json:"purchase_date" validate:"required"`
		ExpirationDate  string  `json:"expiration_date" validate:"required"`
		Barcode         string  `json:"barcode,omitempty" validate:"omitempty"`
		StorageLocation string  `json:"storage_location" validate:"required"`
		Notes           string  `json:"notes,omitempty" validate:"omitempty"`
		Status          string  `json:"status,omitempty" validate:"omitempty,oneof=fresh expiring_soon expired consumed wasted"`
	}

	UpdateFoodItemRequest struct {
		CategoryID      *string  `json:"category_id,omitempty" validate:"omitempty,uuid"`
		Name            *string  `json:"name,omitempty" validate:"omitempty,min=1"`
		Quantity        *float64 `json:"quantity,omitempty" validate:"omitempty,gt=0"`
		Unit            *string  `json:"unit,omitempty"`
		PurchaseDate    *string  `json:"purchase_date,omitempty"`
		ExpirationDate  *string  `json:"expiration_date,omitempty"`
		Barcode         *string  `json:"barcode,omitempty"`
		StorageLocation *string  `json:"storage_location,omitempty"`
		Notes           *string  `json:"notes,omitempty"`
		Status          *string  `json:"status,omitempty" validate:"omitempty,oneof=fresh expiring_soon expired consumed wasted"`
	}

	// PendingFoodItem is one entry of the offline write queue: the draft that
	// failed to insert, marked and timestamped for a later drain.
	PendingFoodItem struct {
		AddFoodItemRequest
		Offline  bool  `json:"offline"`
		QueuedAt int64 `json:"queued_at"`
	}
)

// Patch renders the non-nil fields as a column patch sent to the gateway
// verbatim; status transitions are not enforced locally.
func (r UpdateFoodItemRequest) Patch() map[string]any {
	patch := map[string]any{}
	if r.CategoryID != nil {
		patch["category_id"] = *r.CategoryID
	}
	if r.Name != nil {
		patch["name"] = *r.Name
	}
	if r.Quantity != nil {
		patch["quantity"] = *r.Quantity
	}
	if r.Unit != nil {
		patch["unit"] = *r.Unit
	}
	if r.PurchaseDate != nil {
		patch["purchase_date"] = *r.PurchaseDate
	}
	if r.ExpirationDate != nil {
		patch["expiration_date"] = *r.ExpirationDate
	}
	if r.Barcode != nil {
		patch["barcode"] = *r.Barcode
	}
	if r.StorageLocation != nil {
		patch["storage_location"] = *r.StorageLocation
	}
	if r.Notes != nil {
		patch["notes"] = *r.Notes
	}
	if r.Status != nil {
		patch["status"] = *r.Status
	}
	return patch
}
