package inventory

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"pantrysync/domain"
	"pantrysync/entities"
	"pantrysync/pkg/cache"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	cacheKeyItems      = "food_items"
	cacheKeyCategories = "food_categories"
	cacheKeyOffline    = "food_items_offline"
)

type (
	// InventoryService is the food inventory store. Fetch-class methods
	// record failures in Err and return nothing (the UI polls state);
	// mutations record and return them.
	InventoryService interface {
		FetchItems(ctx context.Context)
		FetchCategories(ctx context.Context)
		AddItem(ctx context.Context, req domain.AddFoodItemRequest) error
		UpdateItem(ctx context.Context, id string, req domain.UpdateFoodItemRequest) error
		DeleteItem(ctx context.Context, id string) error
		SyncOfflineData(ctx context.Context) error

		Items() []entities.FoodItem
		Categories() []entities.FoodCategory
		ItemsSource() domain.SnapshotSource
		PendingCount(ctx context.Context) int
		Loading() bool
		LoadingCount() int
		Err() string
	}

	inventoryService struct {
		foodRepository FoodRepository
		snapshots      cache.Store
		validate       *validator.Validate

		mu           sync.Mutex
		items        []entities.FoodItem
		categories   []entities.FoodCategory
		itemsSource  domain.SnapshotSource
		loading      bool
		loadingCount int
		err          string
	}
)

func NewInventoryService(foodRepository FoodRepository, snapshots cache.Store, validate *validator.Validate) InventoryService {
	return &inventoryService{
		foodRepository: foodRepository,
		snapshots:      snapshots,
		validate:       validate,
		itemsSource:    domain.SourceNone,
	}
}

// FetchItems is a two-phase read: the last persisted snapshot is published
// immediately, then the authoritative list replaces it. A failed fetch falls
// back to the snapshot instead of leaving the list empty.
func (s *inventoryService) FetchItems(ctx context.Context) {
	s.beginFetch()
	defer s.endFetch()

	var cached []entities.FoodItem
	if found, err := cache.GetJSON(ctx, s.snapshots, cacheKeyItems, &cached); err == nil && found {
		s.mu.Lock()
		s.items = cached
		s.itemsSource = domain.SourceCache
		s.mu.Unlock()
	}

	userID, err := s.foodRepository.CurrentUserID(ctx)
	if err == nil && userID == "" {
		err = domain.ErrNotAuthenticated
	}
	if err != nil {
		s.failFetchItems(ctx, err)
		return
	}

	items, err := s.foodRepository.GetFoodItems(ctx, userID)
	if err != nil {
		s.failFetchItems(ctx, err)
		return
	}

	s.mu.Lock()
	s.items = items
	s.itemsSource = domain.SourceFresh
	s.mu.Unlock()
	s.persistItems(ctx)
}

func (s *inventoryService) failFetchItems(ctx context.Context, cause error) {
	s.setErr(cause)

	var cached []entities.FoodItem
	if found, err := cache.GetJSON(ctx, s.snapshots, cacheKeyItems, &cached); err == nil && found {
		s.mu.Lock()
		s.items = cached
		s.itemsSource = domain.SourceStaleFallback
		s.mu.Unlock()
	}
}

// FetchCategories refreshes the reference data, serving any cached copy
// first. Categories are public; no identity is required.
func (s *inventoryService) FetchCategories(ctx context.Context) {
	s.beginFetch()
	defer s.endFetch()

	var cached []entities.FoodCategory
	if found, err := cache.GetJSON(ctx, s.snapshots, cacheKeyCategories, &cached); err == nil && found {
		s.mu.Lock()
		s.categories = cached
		s.mu.Unlock()
	}

	categories, err := s.foodRepository.GetFoodCategories(ctx)
	if err != nil {
		s.setErr(err)
		return
	}

	s.mu.Lock()
	s.categories = categories
	s.mu.Unlock()
	if err := cache.SetJSON(ctx, s.snapshots, cacheKeyCategories, categories); err != nil {
		log.Printf("persisting food categories snapshot: %v", err)
	}
}

// AddItem inserts the draft. On gateway failure the draft joins the offline
// pending queue and the original error is still returned.
func (s *inventoryService) AddItem(ctx context.Context, req domain.AddFoodItemRequest) error {
	s.beginMutation()
	defer s.endMutation()

	if err := s.validate.Struct(req); err != nil {
		s.setErr(err)
		return err
	}

	if err := s.addItem(ctx, req); err != nil {
		s.setErr(err)
		// A draft with malformed dates can never sync; only retryable
		// failures join the queue.
		if !errors.Is(err, domain.ErrInvalidExpirationDate) && !errors.Is(err, domain.ErrInvalidPurchaseDate) {
			s.queueOffline(ctx, req)
		}
		return err
	}
	return nil
}

// addItem is the direct create path, shared with the offline drain, which
// must never re-queue.
func (s *inventoryService) addItem(ctx context.Context, req domain.AddFoodItemRequest) error {
	userID, err := s.foodRepository.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	if userID == "" {
		return domain.ErrNotAuthenticated
	}

	expiration, err := entities.ParseDate(req.ExpirationDate)
	if err != nil {
		return domain.ErrInvalidExpirationDate
	}
	if _, err := entities.ParseDate(req.PurchaseDate); err != nil {
		return domain.ErrInvalidPurchaseDate
	}

	status := req.Status
	if status == "" {
		status = DetermineStatus(expiration.Time)
	}

	row := map[string]any{
		"user_id":          userID,
		"category_id":      req.CategoryID,
		"name":             req.Name,
		"quantity":         req.Quantity,
		"unit":             req.Unit,
		"purchase_date":    req.PurchaseDate,
		"expiration_date":  req.ExpirationDate,
		"storage_location": req.StorageLocation,
		"status":           status,
	}
	if req.Barcode != "" {
		row["barcode"] = req.Barcode
	}
	if req.Notes != "" {
		row["notes"] = req.Notes
	}

	item, err := s.foodRepository.AddFoodItem(ctx, row)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = append([]entities.FoodItem{*item}, s.items...)
	s.mu.Unlock()
	s.persistItems(ctx)
	return nil
}

// UpdateItem sends the patch verbatim; status transitions are not enforced
// here.
func (s *inventoryService) UpdateItem(ctx context.Context, id string, req domain.UpdateFoodItemRequest) error {
	s.beginMutation()
	defer s.endMutation()

	if _, err := uuid.Parse(id); err != nil {
		s.setErr(domain.ErrParseUUID)
		return domain.ErrParseUUID
	}
	if err := s.validate.Struct(req); err != nil {
		s.setErr(err)
		return err
	}

	item, err := s.foodRepository.UpdateFoodItem(ctx, id, req.Patch())
	if err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i] = *item
			break
		}
	}
	s.mu.Unlock()
	s.persistItems(ctx)
	return nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, id string) error {
	s.beginMutation()
	defer s.endMutation()

	parsed, err := uuid.Parse(id)
	if err != nil {
		s.setErr(domain.ErrParseUUID)
		return domain.ErrParseUUID
	}

	if err := s.foodRepository.DeleteFoodItem(ctx, id); err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != parsed {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.mu.Unlock()
	s.persistItems(ctx)
	return nil
}

// SyncOfflineData drains the pending queue in insertion order. Every entry is
// attempted; the queue is cleared only when all of them succeed.
func (s *inventoryService) SyncOfflineData(ctx context.Context) error {
	var pending []domain.PendingFoodItem
	found, err := cache.GetJSON(ctx, s.snapshots, cacheKeyOffline, &pending)
	if err != nil || !found || len(pending) == 0 {
		return nil
	}

	userID, err := s.foodRepository.CurrentUserID(ctx)
	if err != nil || userID == "" {
		return nil
	}

	s.beginMutation()
	defer s.endMutation()

	var errs []error
	for _, entry := range pending {
		if err := s.addItem(ctx, entry.AddFoodItemRequest); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		s.setErr(err)
		return err
	}

	if err := s.snapshots.Delete(ctx, cacheKeyOffline); err != nil {
		log.Printf("clearing offline food item queue: %v", err)
	}
	return nil
}

func (s *inventoryService) queueOffline(ctx context.Context, req domain.AddFoodItemRequest) {
	var pending []domain.PendingFoodItem
	if _, err := cache.GetJSON(ctx, s.snapshots, cacheKeyOffline, &pending); err != nil {
		log.Printf("reading offline food item queue: %v", err)
		return
	}
	pending = append(pending, domain.PendingFoodItem{
		AddFoodItemRequest: req,
		Offline:            true,
		QueuedAt:           time.Now().UnixMilli(),
	})
	if err := cache.SetJSON(ctx, s.snapshots, cacheKeyOffline, pending); err != nil {
		log.Printf("persisting offline food item queue: %v", err)
	}
}

func (s *inventoryService) persistItems(ctx context.Context) {
	s.mu.Lock()
	items := make([]entities.FoodItem, len(s.items))
	copy(items, s.items)
	s.mu.Unlock()

	if err := cache.SetJSON(ctx, s.snapshots, cacheKeyItems, items); err != nil {
		log.Printf("persisting food items snapshot: %v", err)
	}
}

func (s *inventoryService) Items() []entities.FoodItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.FoodItem, len(s.items))
	copy(items, s.items)
	return items
}

func (s *inventoryService) Categories() []entities.FoodCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	categories := make([]entities.FoodCategory, len(s.categories))
	copy(categories, s.categories)
	return categories
}

func (s *inventoryService) ItemsSource() domain.SnapshotSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsSource
}

// PendingCount reports how many offline writes await a drain.
func (s *inventoryService) PendingCount(ctx context.Context) int {
	var pending []domain.PendingFoodItem
	if found, err := cache.GetJSON(ctx, s.snapshots, cacheKeyOffline, &pending); err != nil || !found {
		return 0
	}
	return len(pending)
}

func (s *inventoryService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *inventoryService) LoadingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingCount
}

func (s *inventoryService) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Fetch-class calls share a counter so overlapping fetches keep one combined
// loading flag truthful until the last of them resolves.
func (s *inventoryService) beginFetch() {
	s.mu.Lock()
	s.loadingCount++
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *inventoryService) endFetch() {
	s.mu.Lock()
	if s.loadingCount > 0 {
		s.loadingCount--
	}
	s.loading = s.loadingCount > 0
	s.mu.Unlock()
}

// Mutations carry a single-operation spinner; completion hands the flag back
// to whatever fetches are still in flight.
func (s *inventoryService) beginMutation() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *inventoryService) endMutation() {
	s.mu.Lock()
	s.loading = s.loadingCount > 0
	s.mu.Unlock()
}

func (s *inventoryService) setErr(err error) {
	s.mu.Lock()
	s.err = err.Error()
	s.mu.Unlock()
}

// DetermineStatus derives a draft's status from its expiration date: expired,
// expiring within 3 days, or fresh.
func DetermineStatus(expiration time.Time) string {
	now := time.Now()
	if expiration.Before(now) {
		return entities.FoodStatusExpired
	}
	if expiration.Before(now.AddDate(0, 0, 3)) {
		return entities.FoodStatusExpiringSoon
	}
	return entities.FoodStatusFresh
}
