package community

import (
	"context"
	"time"

	"pantrysync/entities"
	"pantrysync/pkg/gateway"
)

// shareColumns embeds the owner's public profile fields into every share row.
const shareColumns = "*,profile:profiles!community_shares_user_id_fkey(id,full_name,avatar_url,location)"

type (
	ShareRepository interface {
		CurrentUserID(ctx context.Context) (string, error)
		GetAvailableShares(ctx context.Context, notBefore time.Time) ([]entities.CommunityShare, error)
		GetSharesByOwner(ctx context.Context, userID string) ([]entities.CommunityShare, error)
		GetSharesByClaimant(ctx context.Context, userID string) ([]entities.CommunityShare, error)
		CreateShare(ctx context.Context, row map[string]any) (*entities.CommunityShare, error)
		UpdateShare(ctx context.Context, id string, patch map[string]any) (*entities.CommunityShare, error)
	}

	shareRepository struct {
		client *gateway.Client
	}
)

func NewShareRepository(client *gateway.Client) ShareRepository {
	return &shareRepository{client: client}
}

func (r *shareRepository) CurrentUserID(ctx context.Context) (string, error) {
	return r.client.CurrentUserID(ctx)
}

// GetAvailableShares is the public discovery feed: available, not yet
// expired, newest first. Not scoped to the current user.
func (r *shareRepository) GetAvailableShares(ctx context.Context, notBefore time.Time) ([]entities.CommunityShare, error) {
	var shares []entities.CommunityShare
	err := r.client.From("community_shares").
		Select(shareColumns).
		Eq("status", entities.ShareStatusAvailable).
		Gte("available_until", notBefore).
		Order("created_at", false).
		Get(ctx, &shares)
	if err != nil {
		return nil, err
	}
	return shares, nil
}

func (r *shareRepository) GetSharesByOwner(ctx context.Context, userID string) ([]entities.CommunityShare, error) {
	var shares []entities.CommunityShare
	err := r.client.From("community_shares").
		Select(shareColumns).
		Eq("user_id", userID).
		Order("created_at", false).
		Get(ctx, &shares)
	if err != nil {
		return nil, err
	}
	return shares, nil
}

func (r *shareRepository) GetSharesByClaimant(ctx context.Context, userID string) ([]entities.CommunityShare, error) {
	var shares []entities.CommunityShare
	err := r.client.From("community_shares").
		Select(shareColumns).
		Eq("claimed_by", userID).
		Order("created_at", false).
		Get(ctx, &shares)
	if err != nil {
		return nil, err
	}
	return shares, nil
}

func (r *shareRepository) CreateShare(ctx context.Context, row map[string]any) (*entities.CommunityShare, error) {
	var share entities.CommunityShare
	err := r.client.From("community_shares").
		Select(shareColumns).
		Single().
		Insert(ctx, row, &share)
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (r *shareRepository) UpdateShare(ctx context.Context, id string, patch map[string]any) (*entities.CommunityShare, error) {
	var share entities.CommunityShare
	err := r.client.From("community_shares").
		Select(shareColumns).
		Eq("id", id).
		Single().
		Update(ctx, patch, &share)
	if err != nil {
		return nil, err
	}
	return &share, nil
}
