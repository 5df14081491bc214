package waste

import (
	"context"

	"pantrysync/entities"
	"pantrysync/pkg/gateway"
)

const wasteColumns = "*,category:food_categories(*)"

type (
	WasteRepository interface {
		CurrentUserID(ctx context.Context) (string, error)
		GetWasteItems(ctx context.Context, userID string) ([]entities.WasteTracking, error)
		GetAllWasteItems(ctx context.Context, userID string) ([]entities.WasteTracking, error)
		AddWasteItem(ctx context.Context, row map[string]any) (*entities.WasteTracking, error)
		DeleteWasteItem(ctx context.Context, id string) error
	}

	wasteRepository struct {
		client *gateway.Client
	}
)

func NewWasteRepository(client *gateway.Client) WasteRepository {
	return &wasteRepository{client: client}
}

func (r *wasteRepository) CurrentUserID(ctx context.Context) (string, error) {
	return r.client.CurrentUserID(ctx)
}

func (r *wasteRepository) GetWasteItems(ctx context.Context, userID string) ([]entities.WasteTracking, error) {
	var items []entities.WasteTracking
	err := r.client.From("waste_tracking").
		Select(wasteColumns).
		Eq("user_id", userID).
		Order("wasted_date", false).
		Get(ctx, &items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetAllWasteItems is the statistics read: every row, no join, no order.
func (r *wasteRepository) GetAllWasteItems(ctx context.Context, userID string) ([]entities.WasteTracking, error) {
	var items []entities.WasteTracking
	err := r.client.From("waste_tracking").
		Select("*").
		Eq("user_id", userID).
		Get(ctx, &items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *wasteRepository) AddWasteItem(ctx context.Context, row map[string]any) (*entities.WasteTracking, error) {
	var item entities.WasteTracking
	err := r.client.From("waste_tracking").
		Select(wasteColumns).
		Single().
		Insert(ctx, row, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *wasteRepository) DeleteWasteItem(ctx context.Context, id string) error {
	return r.client.From("waste_tracking").Eq("id", id).Delete(ctx)
}
