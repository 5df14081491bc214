package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessCreateShare   = "share created successfully"
	MessageSuccessClaimShare    = "share claimed successfully"
	MessageSuccessCompleteShare = "share completed successfully"
	MessageSuccessCancelShare   = "share cancelled successfully"
	MessageSuccessGetShares     = "shares retrieved successfully"

	MessageFailedCreateShare   = "failed to create share"
	MessageFailedClaimShare    = "failed to claim share"
	MessageFailedCompleteShare = "failed to complete share"
	MessageFailedCancelShare   = "failed to cancel share"
	MessageFailedGetShares     = "failed to retrieve shares"

	ErrShareNotFound          = errors.New("share not found")
	ErrInvalidShareStatus     = errors.New("invalid share status transition")
	ErrShareNotClaimable      = errors.New("share is not available to claim")
	ErrInvalidAvailableUntil  = errors.New("available until must be in the future")
	ErrUnauthorizedShareWrite = errors.New("unauthorized access to share")
)

type CreateShareRequest struct {
	FoodItemID     string    `json:"food_item_id,omitempty" validate:"omitempty,uuid"`
	Title          string    `json:"title" validate:"required"`
	Description    string    `json:"description" validate:"required"`
	Quantity       float64   `json:"quantity" validate:"required,gt=0"`
	Unit           string    `json:"unit" validate:"required"`
	PickupLocation string    `json:"pickup_location" validate:"required"`
	AvailableUntil time.Time `json:"available_until" validate:"required"`
	ImageURL       string    `json:"image_url,omitempty" validate:"omitempty,url"`
}
