package community

import (
	"context"
	"sync"
	"time"

	"pantrysync/domain"
	"pantrysync/entities"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type (
	// CommunityService is the community board store. Shares live in one
	// normalized record map; the public feed, the owner feed and the claimant
	// feed are id lists joined against it on read, so a share can never hold
	// different field values in two feeds.
	CommunityService interface {
		FetchShares(ctx context.Context)
		FetchMyShares(ctx context.Context)
		FetchClaimedShares(ctx context.Context)
		CreateShare(ctx context.Context, req domain.CreateShareRequest) error
		ClaimShare(ctx context.Context, id string) error
		CompleteShare(ctx context.Context, id string) error
		CancelShare(ctx context.Context, id string) error

		Shares() []entities.CommunityShare
		MyShares() []entities.CommunityShare
		ClaimedShares() []entities.CommunityShare
		Loading() bool
		LoadingCount() int
		Err() string
	}

	communityService struct {
		shareRepository ShareRepository
		validate        *validator.Validate

		mu           sync.Mutex
		records      map[uuid.UUID]entities.CommunityShare
		feedIDs      []uuid.UUID
		mineIDs      []uuid.UUID
		claimedIDs   []uuid.UUID
		loading      bool
		loadingCount int
		err          string
	}
)

func NewCommunityService(shareRepository ShareRepository, validate *validator.Validate) CommunityService {
	return &communityService{
		shareRepository: shareRepository,
		validate:        validate,
		records:         make(map[uuid.UUID]entities.CommunityShare),
	}
}

func (s *communityService) FetchShares(ctx context.Context) {
	s.beginFetch()
	defer s.endFetch()

	shares, err := s.shareRepository.GetAvailableShares(ctx, time.Now())
	if err != nil {
		s.setErr(err)
		return
	}

	s.mu.Lock()
	s.feedIDs = s.absorbLocked(shares)
	s.mu.Unlock()
}

func (s *communityService) FetchMyShares(ctx context.Context) {
	s.beginFetch()
	defer s.endFetch()

	userID, err := s.currentUser(ctx)
	if err != nil {
		s.setErr(err)
		return
	}

	shares, err := s.shareRepository.GetSharesByOwner(ctx, userID)
	if err != nil {
		s.setErr(err)
		return
	}

	s.mu.Lock()
	s.mineIDs = s.absorbLocked(shares)
	s.mu.Unlock()
}

func (s *communityService) FetchClaimedShares(ctx context.Context) {
	s.beginFetch()
	defer s.endFetch()

	userID, err := s.currentUser(ctx)
	if err != nil {
		s.setErr(err)
		return
	}

	shares, err := s.shareRepository.GetSharesByClaimant(ctx, userID)
	if err != nil {
		s.setErr(err)
		return
	}

	s.mu.Lock()
	s.claimedIDs = s.absorbLocked(shares)
	s.mu.Unlock()
}

// CreateShare forces ownership and the available status regardless of the
// draft; the created record enters both the public feed and the owner feed.
func (s *communityService) CreateShare(ctx context.Context, req domain.CreateShareRequest) error {
	s.beginMutation()
	defer s.endMutation()

	if err := s.validate.Struct(req); err != nil {
		s.setErr(err)
		return err
	}

	userID, err := s.currentUser(ctx)
	if err != nil {
		s.setErr(err)
		return err
	}

	row := map[string]any{
		"user_id":         userID,
		"title":           req.Title,
		"description":     req.Description,
		"quantity":        req.Quantity,
		"unit":            req.Unit,
		"pickup_location": req.PickupLocation,
		"available_until": req.AvailableUntil.UTC().Format(time.RFC3339),
		"status":          entities.ShareStatusAvailable,
	}
	if req.FoodItemID != "" {
		row["food_item_id"] = req.FoodItemID
	}
	if req.ImageURL != "" {
		row["image_url"] = req.ImageURL
	}

	share, err := s.shareRepository.CreateShare(ctx, row)
	if err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	s.records[share.ID] = *share
	s.feedIDs = prepend(s.feedIDs, share.ID)
	s.mineIDs = prepend(s.mineIDs, share.ID)
	s.mu.Unlock()
	return nil
}

// ClaimShare moves an available share to the claimant's feed. A claim the
// gateway rejects (already claimed, own share) leaves the local feeds
// untouched.
func (s *communityService) ClaimShare(ctx context.Context, id string) error {
	s.beginMutation()
	defer s.endMutation()

	shareID, err := uuid.Parse(id)
	if err != nil {
		s.setErr(domain.ErrParseUUID)
		return domain.ErrParseUUID
	}

	userID, err := s.currentUser(ctx)
	if err != nil {
		s.setErr(err)
		return err
	}

	share, err := s.shareRepository.UpdateShare(ctx, id, map[string]any{
		"status":     entities.ShareStatusClaimed,
		"claimed_by": userID,
	})
	if err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	s.records[share.ID] = *share
	s.feedIDs = remove(s.feedIDs, shareID)
	s.claimedIDs = prepend(remove(s.claimedIDs, shareID), shareID)
	s.mu.Unlock()
	return nil
}

// CompleteShare finishes a claimed hand-off.
func (s *communityService) CompleteShare(ctx context.Context, id string) error {
	return s.transition(ctx, id, entities.ShareStatusCompleted)
}

// CancelShare withdraws a share that is still available or claimed.
func (s *communityService) CancelShare(ctx context.Context, id string) error {
	return s.transition(ctx, id, entities.ShareStatusCancelled)
}

// transition writes the terminal status, then re-fetches the owner and
// claimant feeds rather than patching them by hand; the public feed just
// drops the id.
func (s *communityService) transition(ctx context.Context, id string, status string) error {
	s.beginMutation()
	defer s.endMutation()

	shareID, err := uuid.Parse(id)
	if err != nil {
		s.setErr(domain.ErrParseUUID)
		return domain.ErrParseUUID
	}

	s.mu.Lock()
	record, known := s.records[shareID]
	s.mu.Unlock()
	if known && !validTransition(record.Status, status) {
		s.setErr(domain.ErrInvalidShareStatus)
		return domain.ErrInvalidShareStatus
	}

	share, err := s.shareRepository.UpdateShare(ctx, id, map[string]any{"status": status})
	if err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	s.records[share.ID] = *share
	s.feedIDs = remove(s.feedIDs, shareID)
	s.mu.Unlock()

	s.FetchMyShares(ctx)
	s.FetchClaimedShares(ctx)
	return nil
}

func validTransition(from, to string) bool {
	switch to {
	case entities.ShareStatusCompleted:
		return from == entities.ShareStatusClaimed
	case entities.ShareStatusCancelled:
		return from == entities.ShareStatusAvailable || from == entities.ShareStatusClaimed
	default:
		return false
	}
}

func (s *communityService) currentUser(ctx context.Context) (string, error) {
	userID, err := s.shareRepository.CurrentUserID(ctx)
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", domain.ErrNotAuthenticated
	}
	return userID, nil
}

// absorbLocked merges fetched rows into the record map and returns their ids
// in server order. Callers hold s.mu.
func (s *communityService) absorbLocked(shares []entities.CommunityShare) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(shares))
	for _, share := range shares {
		s.records[share.ID] = share
		ids = append(ids, share.ID)
	}
	return ids
}

func (s *communityService) view(ids []uuid.UUID) []entities.CommunityShare {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.CommunityShare, 0, len(ids))
	for _, id := range ids {
		if record, ok := s.records[id]; ok {
			out = append(out, record)
		}
	}
	return out
}

func (s *communityService) Shares() []entities.CommunityShare {
	s.mu.Lock()
	ids := make([]uuid.UUID, len(s.feedIDs))
	copy(ids, s.feedIDs)
	s.mu.Unlock()
	return s.view(ids)
}

func (s *communityService) MyShares() []entities.CommunityShare {
	s.mu.Lock()
	ids := make([]uuid.UUID, len(s.mineIDs))
	copy(ids, s.mineIDs)
	s.mu.Unlock()
	return s.view(ids)
}

func (s *communityService) ClaimedShares() []entities.CommunityShare {
	s.mu.Lock()
	ids := make([]uuid.UUID, len(s.claimedIDs))
	copy(ids, s.claimedIDs)
	s.mu.Unlock()
	return s.view(ids)
}

func (s *communityService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *communityService) LoadingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingCount
}

func (s *communityService) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *communityService) beginFetch() {
	s.mu.Lock()
	s.loadingCount++
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *communityService) endFetch() {
	s.mu.Lock()
	if s.loadingCount > 0 {
		s.loadingCount--
	}
	s.loading = s.loadingCount > 0
	s.mu.Unlock()
}

func (s *communityService) beginMutation() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *communityService) endMutation() {
	s.mu.Lock()
	s.loading = s.loadingCount > 0
	s.mu.Unlock()
}

func (s *communityService) setErr(err error) {
	s.mu.Lock()
	s.err = err.Error()
	s.mu.Unlock()
}

func prepend(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	return append([]uuid.UUID{id}, ids...)
}

func remove(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	kept := ids[:0]
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	return kept
}
