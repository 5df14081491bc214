package domain

import (
	"errors"
)

var (
	MessageSuccessAddWasteItem    = "waste item recorded successfully"
	MessageSuccessDeleteWasteItem = "waste item deleted successfully"
	MessageSuccessGetWasteItems   = "waste items retrieved successfully"
	MessageSuccessGetWasteStats   = "waste statistics retrieved successfully"

	MessageFailedAddWasteItem    = "failed to record waste item"
	MessageFailedDeleteWasteItem = "failed to delete waste item"
	MessageFailedGetWasteItems   = "failed to retrieve waste items"
	MessageFailedGetWasteStats   = "failed to retrieve waste statistics"

	ErrWasteItemNotFound  = errors.New("waste item not found")
	ErrInvalidWastedDate  = errors.New("invalid wasted date")
	ErrInvalidWasteReason = errors.New("invalid waste reason")
)

type (
	AddWasteItemRequest struct {
		FoodItemID     string  `json:"food_item_id,omitempty" validate:"omitempty,uuid"`
		ItemName       string  `json:"item_name" validate:"required"`
		CategoryID     string  `json:"category_id" validate:"required,uuid"`
		Quantity       float64 `json:"quantity" validate:"required,gt=0"`
		Unit           string  `json:"unit" validate:"required"`
		Reason         string  `json:"reason" validate:"required,oneof=expired spoiled excess other"`
		WastedDate     string  `json:"wasted_date" validate:"required"`
		EstimatedValue float64 `json:"estimated_value" validate:"omitempty,gte=0"`
	}

	MonthlyWaste struct {
		Month string  `json:"month"`
		Count int     `json:"count"`
		Value float64 `json:"value"`
	}

	// WasteStats is derived from the full waste ledger of the current user and
	// recomputed on every fetch; it is never persisted.
	WasteStats struct {
		TotalItems      int            `json:"total_items"`
		TotalValue      float64        `json:"total_value"`
		ItemsByCategory map[string]int `json:"items_by_category"`
		ItemsByReason   map[string]int `json:"items_by_reason"`
		MonthlyTrend    []MonthlyWaste `json:"monthly_trend"`
	}
)
