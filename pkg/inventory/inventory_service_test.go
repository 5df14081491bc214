package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pantrysync/domain"
	"pantrysync/entities"
	"pantrysync/pkg/cache"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFoodRepository struct {
	currentUserID     func(ctx context.Context) (string, error)
	getFoodItems      func(ctx context.Context, userID string) ([]entities.FoodItem, error)
	getFoodCategories func(ctx context.Context) ([]entities.FoodCategory, error)
	addFoodItem       func(ctx context.Context, row map[string]any) (*entities.FoodItem, error)
	updateFoodItem    func(ctx context.Context, id string, patch map[string]any) (*entities.FoodItem, error)
	deleteFoodItem    func(ctx context.Context, id string) error
}

func (s *stubFoodRepository) CurrentUserID(ctx context.Context) (string, error) {
	return s.currentUserID(ctx)
}

func (s *stubFoodRepository) GetFoodItems(ctx context.Context, userID string) ([]entities.FoodItem, error) {
	return s.getFoodItems(ctx, userID)
}

func (s *stubFoodRepository) GetFoodCategories(ctx context.Context) ([]entities.FoodCategory, error) {
	return s.getFoodCategories(ctx)
}

func (s *stubFoodRepository) AddFoodItem(ctx context.Context, row map[string]any) (*entities.FoodItem, error) {
	return s.addFoodItem(ctx, row)
}

func (s *stubFoodRepository) UpdateFoodItem(ctx context.Context, id string, patch map[string]any) (*entities.FoodItem, error) {
	return s.updateFoodItem(ctx, id, patch)
}

func (s *stubFoodRepository) DeleteFoodItem(ctx context.Context, id string) error {
	return s.deleteFoodItem(ctx, id)
}

// memStore is an in-memory cache.Store for tests.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, found := m.data[key]
	return value, found, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStore) Close() error { return nil }

func foodRow(name string) entities.FoodItem {
	purchase, _ := entities.ParseDate("2025-06-01")
	expiration, _ := entities.ParseDate("2025-06-20")
	return entities.FoodItem{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		CategoryID:      uuid.New(),
		Name:            name,
		Quantity:        1,
		Unit:            "pcs",
		PurchaseDate:    purchase,
		ExpirationDate:  expiration,
		StorageLocation: "fridge",
		Status:          entities.FoodStatusFresh,
	}
}

func foodDraft(name string) domain.AddFoodItemRequest {
	return domain.AddFoodItemRequest{
		CategoryID:      uuid.NewString(),
		Name:            name,
		Quantity:        2,
		Unit:            "pcs",
		PurchaseDate:    time.Now().Format("2006-01-02"),
		ExpirationDate:  time.Now().AddDate(0, 0, 10).Format("2006-01-02"),
		StorageLocation: "fridge",
	}
}

func TestFetchItemsServesCacheThenFresh(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemStore()
	cachedItems := []entities.FoodItem{foodRow("old milk")}
	require.NoError(t, cache.SetJSON(ctx, snapshots, "food_items", cachedItems))

	fresh := []entities.FoodItem{foodRow("milk"), foodRow("eggs")}
	repo := &stubFoodRepository{
		currentUserID: func(context.Context) (string, error) { return "user-1", nil },
		getFoodItems: func(context.Context, string) ([]entities.FoodItem, error) {
			return fresh, nil
		},
	}
	service := NewInventoryService(repo, snapshots, validator.New())

	assert.Equal(t, domain.SourceNone, service.ItemsSource())

	service.FetchItems(ctx)

	items := service.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "milk", items[0].Name)
	assert.Equal(t, domain.SourceFresh, service.ItemsSource())
	assert.Empty(t, service.Err())

	var persisted []entities.FoodItem
	found, err := cache.GetJSON(ctx, snapshots, "food_items", &persisted)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, persisted, 2)
}

func TestFetchItemsFailureFallsBackToSnapshot(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemStore()
	cached := []entities.FoodItem{foodRow("milk"), foodRow("eggs"), foodRow("bread")}
	require.NoError(t, cache.SetJSON(ctx, snapshots, "food_items", cached))

	repo := &stubFoodRepository{
		currentUserID: func(context.Context) (string, error) { return "user-1", nil },
		getFoodItems: func(context.Context, string) ([]entities.FoodItem, error) {
			return nil, errors.New("gateway unreachable")
		},
	}
	service := NewInventoryService(repo, snapshots, validator.New())

	service.FetchItems(ctx)

	assert.Len(t, service.Items(), 3)
	assert.Equal(t, domain.SourceStaleFallback, service.ItemsSource())
	assert.Equal(t, "gateway unreachable", service.Err())
	assert.False(t, service.Loading())
}

func TestOverlappingFetchesShareOneLoadingFlag(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	done := make(chan struct{}, 2)

	repo := &stubFoodRepository{
		currentUserID: func(context.Context) (string, error) { return "user-1", nil },
		getFoodItems: func(context.Context, string) ([]entities.FoodItem, error) {
			entered <- struct{}{}
			<-release
			return nil, nil
		},
	}
	service := NewInventoryService(repo, newMemStore(), validator.New())

	for i := 0; i < 2; i++ {
		go func() {
			service.FetchItems(ctx)
			done <- struct{}{}
		}()
	}
	<-entered
	<-entered

	assert.True(t, service.Loading())
	assert.Equal(t, 2, service.LoadingCount())

	release <- struct{}{}
	<-done
	assert.True(t, service.Loading())
	assert.Equal(t, 1, service.LoadingCount())

	release <- struct{}{}
	<-done
	assert.False(t, service.Loading())
	assert.Equal(t, 0, service.LoadingCount())
}

func TestMutationDuringFetchKeepsCounterIntact(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	repo := &stubFoodRepository{
		currentUserID: func(context.Context) (string, error) { return "user-1", nil },
		getFoodItems: func(context.Context, string) ([]entities.FoodItem, error) {
			close(entered)
			<-release
			return nil, nil
		},
		deleteFoodItem: func(context.Context, string) error { return nil },
	}
	service := NewInventoryService(repo, newMemStore(), validator.New())

	go func() {
		service.FetchItems(ctx)
		close(done)
	}()
	<-entered

	require.NoError(t, service.DeleteItem(ctx, uuid.NewString()))

	// The mutation finished but a fetch is still in flight.
	assert.True(t, service.Loading())
	assert.Equal(t, 1, service.LoadingCount())

	close(release)
	<-done
	assert.False(t, service.Loading())
	assert.Equal(t, 0, service.LoadingCount())
}

func TestAddItemQueuesDraftOnGatewayFailure(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemStore()
	repo := &stubFoodRepository{
		currentUserID: func(context.Context) (string, error) { return "user-1", nil },
		addFoodItem: func(context.Context, map[string]any) (*entities.FoodItem, error) {
			return nil, errors.New("gateway unreachable")
		},
	}
	service := NewInventoryService(repo, snapshots, validator.New())

	err := service.AddItem(ctx, foodDraft("milk"))
	require.EqualError(t, err, "gateway unreachable")
	assert.Equal(t, "gateway unreachable", service.Err())
	assert.Empty(t, service.Items())

	require.Equal(t, 1, service.PendingCount(ctx))

	var pending []domain.PendingFoodItem
	found, err := cache.GetJSON(ctx, snapshots, "food_items_offline", &pending)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "milk", pending[0].Name)
	assert.True(t, pending[0].Offline)
	assert.NotZero(t, pending[0].QueuedAt)
}

func TestAddItemDerivesStatusAndPrepends(t *testing.T) {
	ctx := context.Background()
	existing := foodRow("eggs")

	var insertedRow map[string]any
	repo := &stubFoodRepository{
		currentUserID: func(context.Context) (string, error) { return "user-1", nil },
		getFoodItems: func(context.Context, string) ([]entities.FoodItem, error) {
			return []entities.FoodItem{existing}, nil
		},
		addFoodItem: func(_ context.Context, row map[string]any) (*entities.FoodItem, error) {
			insertedRow = row
			item := foodRow(row["name"].(string))
			return &item, nil
		},
	}
	service := NewInventoryService(repo, newMemStore(), validator.New())
	service.FetchItems(ctx)

	draft := foodDraft("milk")
	draft.ExpirationDate = time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	require.NoError(t, service.AddItem(ctx, draft))

	assert.Equal(t, "user-1", insertedRow["user_id"])
	assert.Equal(t, entities.FoodStatusExpiringSoon, insertedRow["status"])
	assert.NotContains(t, insertedRow, "barcode")

	items := service.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "milk", items[0].Name)
	assert.Equal(t, "eggs", items[1].Name)
	assert.Equal(t, 0, service.PendingCount(ctx))
}

func TestAddItemRejectsMalformedDates(t *testing.T) {
	repo := &stubFoodRepository{
		currentUserID: func(context.Context) (string, error) { return "user-1", nil },
	}
	service := NewInventoryService(repo, newMemStore(), validator.New())

	draft := foodDraft("milk")
	draft.ExpirationDate = "20-06-2025"
	err := service.AddItem(context.Background(), draft)
	require.ErrorIs(t, err, domain.ErrInvalidExpirationDate)

	draft = foodDraft("milk")
	draft.PurchaseDate = "yesterday"
	err = service.AddItem(context.Background(), draft)
	require.ErrorIs(t, err, domain.ErrInvalidPurchaseDate)

	// Invalid drafts are not worth queueing for a retry.
	assert.Equal(t, 0, service.PendingCount(context.Background()))
}

func TestSyncOfflineDataDrainsQueueInOrder(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemStore()
	queued := []domain.PendingFoodItem{
		{AddFoodItemRequest: foodDraft("first"), Offline: true, QueuedAt: 1},
		{AddFoodItemRequest: foodDraft("second"), Offline: true, QueuedAt: 2},
	}
	require.NoError(t, cache.SetJSON(ctx, snapshots, "food_items_offline", queued))

	var inserted []string
	repo := &stubFoodRepository{
		currentUserID: func(context.Context) (string, error) { return "user-1", nil },
		addFoodItem: func(_ context.Context, row map[string]any) (*entities.FoodItem, error) {
			inserted = append(inserted, row["name"].(string))
			item := foodRow(row["name"].(string))
			return &item, nil
		},
	}
	service := NewInventoryService(repo, snapshots, validator.New())

	require.NoError(t, service.SyncOfflineData(ctx))

	assert.Equal(t, []string{"first", "second"}, inserted)
	assert.Equal(t, 0, service.PendingCount(ctx))
}

func TestSyncOfflineDataKeepsQueueWhenAnyInsertFails(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemStore()
	queued := []domain.PendingFoodItem{
		{AddFoodItemRequest: foodDraft("first"), Offline: true, QueuedAt: 1},
		{AddFoodItemRequest: foodDraft("second"), Offline: true, QueuedAt: 2},
	}
	require.NoError(t, cache.SetJSON(ctx, snapshots, "food_items_offline", queued))

	calls := 0
	repo := &stubFoodRepository{
		currentUserID: func(context.Context) (string, error) { return "user-1", nil },
		addFoodItem: func(_ context.Context, row map[string]any) (*entities.FoodItem, error) {
			calls++
			if row["name"] == "second" {
				return nil, errors.New("gateway unreachable")
			}
			item := foodRow(row["name"].(string))
			return &item, nil
		},
	}
	service := NewInventoryService(repo, snapshots, validator.New())

	err := service.SyncOfflineData(ctx)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, service.PendingCount(ctx))
	assert.NotEmpty(t, service.Err())
}

func TestSyncOfflineDataSkipsWhenSignedOut(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemStore()
	queued := []domain.PendingFoodItem{
		{AddFoodItemRequest: foodDraft("first"), Offline: true, QueuedAt: 1},
	}
	require.NoError(t, cache.SetJSON(ctx, snapshots, "food_items_offline", queued))

	repo := &stubFoodRepository{
		currentUserID: func(context.Context) (string, error) { return "", nil },
	}
	service := NewInventoryService(repo, snapshots, validator.New())

	require.NoError(t, service.SyncOfflineData(ctx))
	assert.Equal(t, 1, service.PendingCount(ctx))
}

func TestUpdateItemReplacesRowInPlace(t *testing.T) {
	ctx := context.Background()
	existing := foodRow("milk")
	updated := existing
	updated.Quantity = 5

	repo := &stubFoodRepository{
		currentUserID: func(context.Context) (string, error) { return "user-1", nil },
		getFoodItems: func(context.Context, string) ([]entities.FoodItem, error) {
			return []entities.FoodItem{existing}, nil
		},
		updateFoodItem: func(_ context.Context, id string, patch map[string]any) (*entities.FoodItem, error) {
			assert.Equal(t, existing.ID.String(), id)
			assert.Equal(t, map[string]any{"quantity": 5.0}, patch)
			return &updated, nil
		},
	}
	service := NewInventoryService(repo, newMemStore(), validator.New())
	service.FetchItems(ctx)

	quantity := 5.0
	err := service.UpdateItem(ctx, existing.ID.String(), domain.UpdateFoodItemRequest{Quantity: &quantity})
	require.NoError(t, err)

	items := service.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5.0, items[0].Quantity)
}

func TestUpdateItemRejectsMalformedID(t *testing.T) {
	service := NewInventoryService(&stubFoodRepository{}, newMemStore(), validator.New())

	err := service.UpdateItem(context.Background(), "not-a-uuid", domain.UpdateFoodItemRequest{})
	require.ErrorIs(t, err, domain.ErrParseUUID)
}

func TestDeleteItemRemovesRowAndSnapshot(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemStore()
	keep := foodRow("milk")
	gone := foodRow("eggs")

	repo := &stubFoodRepository{
		currentUserID: func(context.Context) (string, error) { return "user-1", nil },
		getFoodItems: func(context.Context, string) ([]entities.FoodItem, error) {
			return []entities.FoodItem{keep, gone}, nil
		},
		deleteFoodItem: func(_ context.Context, id string) error {
			assert.Equal(t, gone.ID.String(), id)
			return nil
		},
	}
	service := NewInventoryService(repo, snapshots, validator.New())
	service.FetchItems(ctx)

	require.NoError(t, service.DeleteItem(ctx, gone.ID.String()))

	items := service.Items()
	require.Len(t, items, 1)
	assert.Equal(t, keep.ID, items[0].ID)

	var persisted []entities.FoodItem
	found, err := cache.GetJSON(ctx, snapshots, "food_items", &persisted)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, persisted, 1)
}

func TestFetchCategoriesServesCacheFirst(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemStore()
	cached := []entities.FoodCategory{{ID: uuid.New(), Name: "dairy"}}
	require.NoError(t, cache.SetJSON(ctx, snapshots, "food_categories", cached))

	fresh := []entities.FoodCategory{
		{ID: uuid.New(), Name: "dairy"},
		{ID: uuid.New(), Name: "produce"},
	}
	repo := &stubFoodRepository{
		getFoodCategories: func(context.Context) ([]entities.FoodCategory, error) {
			return fresh, nil
		},
	}
	service := NewInventoryService(repo, snapshots, validator.New())

	service.FetchCategories(ctx)

	assert.Len(t, service.Categories(), 2)
	assert.Empty(t, service.Err())
}

func TestDetermineStatus(t *testing.T) {
	now := time.Now()
	assert.Equal(t, entities.FoodStatusExpired, DetermineStatus(now.AddDate(0, 0, -1)))
	assert.Equal(t, entities.FoodStatusExpiringSoon, DetermineStatus(now.AddDate(0, 0, 2)))
	assert.Equal(t, entities.FoodStatusFresh, DetermineStatus(now.AddDate(0, 0, 30)))
}
