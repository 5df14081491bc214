package inventory

import (
	"context"

	"pantrysync/entities"
	"pantrysync/pkg/gateway"
)

const itemColumns = "*,category:food_categories(*)"

type (
	FoodRepository interface {
		CurrentUserID(ctx context.Context) (string, error)
		GetFoodItems(ctx context.Context, userID string) ([]entities.FoodItem, error)
		GetFoodCategories(ctx context.Context) ([]entities.FoodCategory, error)
		AddFoodItem(ctx context.Context, row map[string]any) (*entities.FoodItem, error)
		UpdateFoodItem(ctx context.Context, id string, patch map[string]any) (*entities.FoodItem, error)
		DeleteFoodItem(ctx context.Context, id string) error
	}

	foodRepository struct {
		client *gateway.Client
	}
)

func NewFoodRepository(client *gateway.Client) FoodRepository {
	return &foodRepository{client: client}
}

func (r *foodRepository) CurrentUserID(ctx context.Context) (string, error) {
	return r.client.CurrentUserID(ctx)
}

func (r *foodRepository) GetFoodItems(ctx context.Context, userID string) ([]entities.FoodItem, error) {
	var items []entities.FoodItem
	err := r.client.From("food_items").
		Select(itemColumns).
		Eq("user_id", userID).
		Order("expiration_date", true).
		Get(ctx, &items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *foodRepository) GetFoodCategories(ctx context.Context) ([]entities.FoodCategory, error) {
	var categories []entities.FoodCategory
	err := r.client.From("food_categories").
		Select("*").
		Order("name", true).
		Get(ctx, &categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *foodRepository) AddFoodItem(ctx context.Context, row map[string]any) (*entities.FoodItem, error) {
	var item entities.FoodItem
	err := r.client.From("food_items").
		Select(itemColumns).
		Single().
		Insert(ctx, row, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *foodRepository) UpdateFoodItem(ctx context.Context, id string, patch map[string]any) (*entities.FoodItem, error) {
	var item entities.FoodItem
	err := r.client.From("food_items").
		Select(itemColumns).
		Eq("id", id).
		Single().
		Update(ctx, patch, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *foodRepository) DeleteFoodItem(ctx context.Context, id string) error {
	return r.client.From("food_items").Eq("id", id).Delete(ctx)
}
